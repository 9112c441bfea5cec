package game

import "time"

// Status is the lifecycle state of a game.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusActive   Status = "active"
	StatusFinished Status = "finished"
)

// Phase is the current step within the acting participant's turn.
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhaseReinforce Phase = "reinforce"
	PhaseAttack    Phase = "attack"
	PhaseFortify   Phase = "fortify"
)

// Game is the full session document: one game record plus its participant and
// territory records, persisted and updated as a single transactional unit.
type Game struct {
	ID         string    `json:"id"`
	ScenarioID string    `json:"scenarioId"`
	Status     Status    `json:"status"`

	StartDate   time.Time `json:"startDate"`
	CurrentDate time.Time `json:"currentDate"`
	DaysPerTurn int       `json:"daysPerTurn"`

	Turn               int    `json:"turn"`
	CurrentParticipant string `json:"currentParticipantId"`
	Phase              Phase  `json:"phase"`

	ReinforcementsRemaining int              `json:"reinforcementsRemaining"`
	FortifyUsed             bool             `json:"fortifyUsed"`
	PendingConquest         *PendingConquest `json:"pendingConquest,omitempty"`
	ConqueredThisTurn       bool             `json:"conqueredThisTurn"`
	Winner                  string           `json:"winnerId,omitempty"`

	Participants []*Participant        `json:"participants"`
	Territories  map[string]*Territory `json:"territories"`

	// Bonus tables copied from the scenario template at creation.
	RegionBonuses  map[string]RegionBonus `json:"regionBonuses"`
	SpecialBonuses []SpecialBonus         `json:"specialBonuses,omitempty"`

	// Card deck state. Exchanges counts trades globally for the escalation table.
	Deck      []Card `json:"deck,omitempty"`
	Discards  []Card `json:"discards,omitempty"`
	Exchanges int    `json:"exchanges"`

	// Version is the store's optimistic locking counter.
	Version int64 `json:"version"`
}

// Participant is a human- or AI-controlled player in one game.
type Participant struct {
	ID                   string `json:"id"`
	Nation               string `json:"nation"`
	Color                string `json:"color"`
	IsHuman              bool   `json:"isHuman"`
	AIModel              string `json:"aiModelId,omitempty"`
	Eliminated           bool   `json:"eliminated"`
	SetupTroopsRemaining int    `json:"setupTroopsRemaining"`
	Cards                []Card `json:"cards,omitempty"`
}

// Territory is one ownable map unit. Adjacency is symmetric across the
// scenario and never changes after creation.
type Territory struct {
	Name     string   `json:"name"`
	Region   string   `json:"region"`
	Owner    string   `json:"ownerId,omitempty"`
	Troops   int      `json:"troopCount"`
	Adjacent []string `json:"adjacent"`
	// StartingNation is the scenario's initial holder, resolved to a
	// participant when the game starts.
	StartingNation string `json:"startingNation,omitempty"`
}

// PendingConquest records an unconfirmed capture. At most one exists per game;
// while set, it blocks further attacks, fortifying, and phase advancement.
type PendingConquest struct {
	From          string `json:"fromTerritory"`
	To            string `json:"toTerritory"`
	MinTroops     int    `json:"minTroopsToMove"`
	MaxTroops     int    `json:"maxTroopsToMove"`
	PreviousOwner string `json:"previousOwner,omitempty"`
}

// RegionBonus awards extra reinforcements for holding every territory of a
// region. Count is the number of territories carrying the region tag.
type RegionBonus struct {
	Count int `json:"count"`
	Bonus int `json:"bonus"`
}

// SpecialBonus awards extra reinforcements for holding a named combination of
// territories, e.g. both shores of a strait.
type SpecialBonus struct {
	Name        string   `json:"name"`
	Territories []string `json:"territories"`
	Bonus       int      `json:"bonus"`
}

func (g *Game) participant(id string) *Participant {
	for _, p := range g.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) territory(name string) *Territory {
	return g.Territories[name]
}

// OwnedCount returns the number of territories held by a participant.
func (g *Game) OwnedCount(participantID string) int {
	n := 0
	for _, t := range g.Territories {
		if t.Owner == participantID {
			n++
		}
	}
	return n
}

// AreAdjacent reports whether two territories share a border.
func (g *Game) AreAdjacent(a, b string) bool {
	ta := g.territory(a)
	if ta == nil {
		return false
	}
	for _, name := range ta.Adjacent {
		if name == b {
			return true
		}
	}
	return false
}

// nextActive returns the next non-eliminated participant after the given one,
// cycling through seating order.
func (g *Game) nextActive(afterID string) *Participant {
	idx := 0
	for i, p := range g.Participants {
		if p.ID == afterID {
			idx = i
			break
		}
	}
	for i := 1; i <= len(g.Participants); i++ {
		p := g.Participants[(idx+i)%len(g.Participants)]
		if !p.Eliminated {
			return p
		}
	}
	return nil
}
