package game

import (
	"sort"

	"golang.org/x/exp/rand"
)

// Dice is a seedable randomness source so combat is deterministic and
// replayable in tests.
type Dice interface {
	// Roll returns n six-sided rolls sorted descending.
	Roll(n int) []int
	// Shuffle randomizes a collection of n elements via swap.
	Shuffle(n int, swap func(i, j int))
}

type sixSided struct {
	rng *rand.Rand
}

// NewDice returns a six-sided Dice backed by a seeded PRNG.
func NewDice(seed uint64) Dice {
	return &sixSided{rng: rand.New(rand.NewSource(seed))}
}

func (d *sixSided) Roll(n int) []int {
	rolls := make([]int, n)
	for i := range rolls {
		rolls[i] = d.rng.Intn(6) + 1
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rolls)))
	return rolls
}

func (d *sixSided) Shuffle(n int, swap func(i, j int)) {
	d.rng.Shuffle(n, swap)
}
