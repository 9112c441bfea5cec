package game

import "time"

// scriptedDice replays queued rolls so combat outcomes are fixed per test.
type scriptedDice struct {
	rolls [][]int
}

func (d *scriptedDice) Roll(n int) []int {
	if len(d.rolls) == 0 {
		panic("scripted dice exhausted")
	}
	next := d.rolls[0]
	d.rolls = d.rolls[1:]
	if len(next) != n {
		panic("scripted roll size mismatch")
	}
	return next
}

func (d *scriptedDice) Shuffle(n int, swap func(i, j int)) {}

// twoPlayerGame builds a minimal active game in the attack phase:
//
//	X(alice,5) - Y(bob,1) - Z(bob,4) - W(alice,3) - X
//
// West region {X, W} and East region {Y, Z} are both worth 2. A neutral
// island V hangs off Z so a single conquest never crosses the victory
// threshold.
func twoPlayerGame() *Game {
	return &Game{
		ID:                 "g1",
		ScenarioID:         "test",
		Status:             StatusActive,
		StartDate:          date(1453, 1, 1),
		CurrentDate:        date(1453, 1, 1),
		DaysPerTurn:        10,
		Turn:               1,
		CurrentParticipant: "alice",
		Phase:              PhaseAttack,
		Participants: []*Participant{
			{ID: "alice", Nation: "Azure", IsHuman: true},
			{ID: "bob", Nation: "Crimson"},
		},
		Territories: map[string]*Territory{
			"X": {Name: "X", Region: "West", Owner: "alice", Troops: 5, Adjacent: []string{"Y", "W"}},
			"Y": {Name: "Y", Region: "East", Owner: "bob", Troops: 1, Adjacent: []string{"X", "Z"}},
			"Z": {Name: "Z", Region: "East", Owner: "bob", Troops: 4, Adjacent: []string{"Y", "W", "V"}},
			"W": {Name: "W", Region: "West", Owner: "alice", Troops: 3, Adjacent: []string{"X", "Z"}},
			"V": {Name: "V", Region: "Isles", Troops: 2, Adjacent: []string{"Z"}},
		},
		RegionBonuses: map[string]RegionBonus{
			"West":  {Count: 2, Bonus: 2},
			"East":  {Count: 2, Bonus: 2},
			"Isles": {Count: 1, Bonus: 1},
		},
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// snapshotTroops captures troop counts to prove rejected calls mutate nothing.
func snapshotTroops(g *Game) map[string]int {
	troops := map[string]int{}
	for name, t := range g.Territories {
		troops[name] = t.Troops
	}
	return troops
}
