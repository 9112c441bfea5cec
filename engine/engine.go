// Package engine exposes the game operations a controller (UI or AI agent
// loop) calls. Every mutating operation is one read-validate-apply-write
// unit against the store; a rejected call leaves the stored document
// untouched.
package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"conquest/game"
	"conquest/history"
	"conquest/scenario"
	"conquest/store"
)

// Engine orchestrates game state, combat, and knowledge retrieval.
type Engine struct {
	store     store.Store
	gate      *history.Gate
	dice      game.Dice
	scenarios map[string]*scenario.Template
	log       zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDice overrides the dice source, e.g. with a seeded or scripted one.
func WithDice(d game.Dice) Option {
	return func(e *Engine) { e.dice = d }
}

// WithGate wires the knowledge retrieval gate.
func WithGate(g *history.Gate) Option {
	return func(e *Engine) { e.gate = g }
}

// WithLogger sets the engine logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithScenario registers an extra scenario template.
func WithScenario(t *scenario.Template) Option {
	return func(e *Engine) { e.scenarios[t.ID] = t }
}

// New creates an Engine over a store, with all built-in scenarios loaded.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:     s,
		dice:      game.NewDice(uint64(time.Now().UnixNano())),
		scenarios: map[string]*scenario.Template{},
		log:       zerolog.Nop(),
	}
	for _, id := range scenario.BuiltinIDs() {
		if t, err := scenario.Builtin(id); err == nil {
			e.scenarios[id] = t
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateGame creates a waiting game from a scenario template. The template's
// territories and bonus tables are copied into the session document;
// the shared template is never mutated.
func (e *Engine) CreateGame(ctx context.Context, scenarioID string) (*game.Game, error) {
	tmpl, ok := e.scenarios[scenarioID]
	if !ok {
		return nil, &game.NotFoundError{Kind: "scenario", ID: scenarioID}
	}

	g := &game.Game{
		ID:          uuid.NewString(),
		ScenarioID:  tmpl.ID,
		Status:      game.StatusWaiting,
		StartDate:   tmpl.StartDate,
		CurrentDate: tmpl.StartDate,
		DaysPerTurn: tmpl.DaysPerTurn,
		Territories: make(map[string]*game.Territory, len(tmpl.Territories)),
	}

	regionCounts := map[string]int{}
	for _, td := range tmpl.Territories {
		g.Territories[td.Name] = &game.Territory{
			Name:           td.Name,
			Region:         td.Region,
			Troops:         td.Troops,
			Adjacent:       append([]string(nil), td.Adjacent...),
			StartingNation: td.Nation,
		}
		regionCounts[td.Region]++
	}

	g.RegionBonuses = make(map[string]game.RegionBonus, len(tmpl.Regions))
	for region, bonus := range tmpl.Regions {
		g.RegionBonuses[region] = game.RegionBonus{Count: regionCounts[region], Bonus: bonus}
	}
	for _, sb := range tmpl.SpecialBonuses {
		g.SpecialBonuses = append(g.SpecialBonuses, game.SpecialBonus{
			Name:        sb.Name,
			Territories: append([]string(nil), sb.Territories...),
			Bonus:       sb.Bonus,
		})
	}

	if err := e.store.Create(ctx, g); err != nil {
		return nil, err
	}
	e.log.Info().Str("game", g.ID).Str("scenario", tmpl.ID).Msg("game created")
	return g, nil
}

// AddParticipant seats a participant on an unclaimed nation of a waiting game.
func (e *Engine) AddParticipant(ctx context.Context, gameID, nation string, isHuman bool, aiModel string) (*game.Participant, error) {
	var joined *game.Participant
	_, err := e.mutate(ctx, gameID, func(g *game.Game) error {
		if g.Status != game.StatusWaiting {
			return &game.ValidationError{Code: game.CodeWrongStatus, Reason: "game already started"}
		}
		tmpl, ok := e.scenarios[g.ScenarioID]
		if !ok {
			return &game.NotFoundError{Kind: "scenario", ID: g.ScenarioID}
		}
		def := tmpl.Nation(nation)
		if def == nil {
			return &game.ValidationError{Code: game.CodeUnknownNation, Reason: "scenario has no nation " + nation}
		}
		for _, p := range g.Participants {
			if p.Nation == nation {
				return &game.ValidationError{Code: game.CodeNationTaken, Reason: nation + " is already claimed"}
			}
		}
		joined = &game.Participant{
			ID:      uuid.NewString(),
			Nation:  nation,
			Color:   def.Color,
			IsHuman: isHuman,
			AIModel: aiModel,
		}
		g.Participants = append(g.Participants, joined)
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("game", gameID).Str("nation", nation).Bool("human", isHuman).Msg("participant joined")
	return joined, nil
}

// Start activates a waiting game: starting ownership resolves to seated
// participants, setup allotments are dealt, and the card deck is shuffled.
// Territories of unclaimed nations stay neutral.
func (e *Engine) Start(ctx context.Context, gameID string) (*game.Game, error) {
	g, err := e.mutate(ctx, gameID, func(g *game.Game) error {
		if g.Status != game.StatusWaiting {
			return &game.ValidationError{Code: game.CodeWrongStatus, Reason: "game already started"}
		}
		if len(g.Participants) < 2 {
			return &game.ValidationError{Code: game.CodeNotEnoughSides, Reason: "need at least 2 participants"}
		}
		tmpl, ok := e.scenarios[g.ScenarioID]
		if !ok {
			return &game.NotFoundError{Kind: "scenario", ID: g.ScenarioID}
		}

		byNation := map[string]*game.Participant{}
		for _, p := range g.Participants {
			byNation[p.Nation] = p
		}

		garrisons := map[string]int{}
		names := make([]string, 0, len(g.Territories))
		for name, t := range g.Territories {
			names = append(names, name)
			if p, ok := byNation[t.StartingNation]; ok {
				t.Owner = p.ID
				garrisons[p.ID] += t.Troops
			}
		}
		sort.Strings(names)

		for _, p := range g.Participants {
			remaining := tmpl.SetupTroops - garrisons[p.ID]
			if remaining < 0 {
				remaining = 0
			}
			p.SetupTroopsRemaining = remaining
		}

		g.Deck = game.NewDeck(names, e.dice)
		g.Status = game.StatusActive
		g.Phase = game.PhaseSetup
		g.CurrentParticipant = g.Participants[0].ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.log.Info().Str("game", gameID).Int("participants", len(g.Participants)).Msg("game started")
	return g, nil
}

// Game returns the current session document. Read-only; any participant or
// observer may call it.
func (e *Engine) Game(ctx context.Context, gameID string) (*game.Game, error) {
	return e.store.Get(ctx, gameID)
}

// PlaceSetupTroops places setup troops for the current participant.
func (e *Engine) PlaceSetupTroops(ctx context.Context, gameID, participantID, territory string, troops int) (*game.Game, error) {
	return e.mutate(ctx, gameID, func(g *game.Game) error {
		return g.PlaceSetupTroops(participantID, territory, troops)
	})
}

// FinishSetup passes the setup turn along, or begins turn one.
func (e *Engine) FinishSetup(ctx context.Context, gameID, participantID string) (*game.Game, error) {
	return e.mutate(ctx, gameID, func(g *game.Game) error {
		return g.FinishSetup(participantID)
	})
}

// Reinforce places reinforcements for the current participant.
func (e *Engine) Reinforce(ctx context.Context, gameID, participantID, territory string, troops int) (*game.Game, error) {
	return e.mutate(ctx, gameID, func(g *game.Game) error {
		return g.PlaceReinforcements(participantID, territory, troops)
	})
}

// TradeCards trades a card set for extra reinforcements.
func (e *Engine) TradeCards(ctx context.Context, gameID, participantID string, indices []int) (*game.Game, error) {
	return e.mutate(ctx, gameID, func(g *game.Game) error {
		return g.TradeCards(participantID, indices)
	})
}

// Attack resolves one combat round. A conquering round opens a pending
// conquest that must be confirmed before anything else happens in the game.
func (e *Engine) Attack(ctx context.Context, gameID, participantID, from, to string, diceCount int) (*game.Game, *game.AttackResult, error) {
	var result *game.AttackResult
	g, err := e.mutate(ctx, gameID, func(g *game.Game) error {
		var err error
		result, err = g.Attack(e.dice, participantID, from, to, diceCount)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if result.Conquered {
		e.log.Info().Str("game", gameID).Str("from", from).Str("to", to).Msg("territory conquered")
	}
	return g, result, nil
}

// ConfirmConquest completes a pending conquest by moving troops in.
func (e *Engine) ConfirmConquest(ctx context.Context, gameID, participantID string, troopsToMove int) (*game.Game, error) {
	g, err := e.mutate(ctx, gameID, func(g *game.Game) error {
		return g.ConfirmConquest(participantID, troopsToMove)
	})
	if err != nil {
		return nil, err
	}
	if g.Status == game.StatusFinished {
		e.log.Info().Str("game", gameID).Str("winner", g.Winner).Msg("game finished")
	}
	return g, nil
}

// Fortify makes the turn's single troop move between owned territories.
func (e *Engine) Fortify(ctx context.Context, gameID, participantID, from, to string, troops int) (*game.Game, error) {
	return e.mutate(ctx, gameID, func(g *game.Game) error {
		return g.Fortify(participantID, from, to, troops)
	})
}

// AdvancePhase moves the turn to its next phase, or to the next participant.
func (e *Engine) AdvancePhase(ctx context.Context, gameID, participantID string) (*game.Game, error) {
	return e.mutate(ctx, gameID, func(g *game.Game) error {
		return g.AdvancePhase(participantID)
	})
}

// QueryHistory answers a knowledge question under the game's temporal
// horizon. Read-only; the cutoff comes from stored game state, never from
// the caller.
func (e *Engine) QueryHistory(ctx context.Context, gameID, question string, opts history.QueryOptions) ([]history.Result, error) {
	if e.gate == nil {
		return nil, errors.New("no knowledge gate configured")
	}
	g, err := e.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return e.gate.Query(ctx, g, question, opts)
}

// mutate runs one atomic read-validate-apply-write unit. The store's
// optimistic locking turns a concurrent write into ErrVersionConflict,
// which callers may retry with fresh state.
func (e *Engine) mutate(ctx context.Context, gameID string, apply func(*game.Game) error) (*game.Game, error) {
	g, err := e.store.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := apply(g); err != nil {
		return nil, err
	}
	if err := e.store.Update(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}
