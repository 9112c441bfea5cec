package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"conquest/game"
	"conquest/history"
	"conquest/store"
)

// scriptedDice replays queued rolls; Shuffle leaves the deck in order.
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

func seatedDuel(t *testing.T, e *Engine) (gameID, azure, crimson string) {
	t.Helper()
	ctx := context.Background()

	g, err := e.CreateGame(ctx, "duel")
	require.NoError(t, err)
	require.Equal(t, game.StatusWaiting, g.Status)

	a, err := e.AddParticipant(ctx, g.ID, "Azure", true, "")
	require.NoError(t, err)
	c, err := e.AddParticipant(ctx, g.ID, "Crimson", false, "claude-3-5-sonnet")
	require.NoError(t, err)

	return g.ID, a.ID, c.ID
}

func TestCreateGameCopiesTemplate(t *testing.T) {
	e := New(store.NewMemory())
	ctx := context.Background()

	g, err := e.CreateGame(ctx, "duel")
	require.NoError(t, err)
	require.Len(t, g.Territories, 6)
	require.Equal(t, game.RegionBonus{Count: 3, Bonus: 2}, g.RegionBonuses["North"])
	require.Equal(t, g.StartDate, g.CurrentDate)
	require.Empty(t, g.Territories["Aria"].Owner, "ownership resolves at start, not creation")

	t.Run("unknown scenario", func(t *testing.T) {
		_, err := e.CreateGame(ctx, "atlantis")
		var nf *game.NotFoundError
		require.ErrorAs(t, err, &nf)
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := e.Game(ctx, "no-such-game")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestAddParticipantValidation(t *testing.T) {
	e := New(store.NewMemory())
	ctx := context.Background()
	gameID, _, _ := seatedDuel(t, e)

	var verr *game.ValidationError

	_, err := e.AddParticipant(ctx, gameID, "Azure", true, "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, game.CodeNationTaken, verr.Code)

	_, err = e.AddParticipant(ctx, gameID, "Chartreuse", true, "")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, game.CodeUnknownNation, verr.Code)
}

func TestStartDealsSetupTroops(t *testing.T) {
	e := New(store.NewMemory())
	ctx := context.Background()
	gameID, azure, crimson := seatedDuel(t, e)

	g, err := e.Start(ctx, gameID)
	require.NoError(t, err)
	require.Equal(t, game.StatusActive, g.Status)
	require.Equal(t, game.PhaseSetup, g.Phase)
	require.Equal(t, azure, g.CurrentParticipant)

	// Each nation's three garrisons of three troops count against the
	// 12-troop allotment.
	for _, p := range g.Participants {
		require.Equal(t, 3, p.SetupTroopsRemaining, "nation %s", p.Nation)
	}
	require.Equal(t, 3, g.OwnedCount(azure))
	require.Equal(t, 3, g.OwnedCount(crimson))
	require.Len(t, g.Deck, 8, "one card per territory plus two wilds")

	t.Run("cannot start twice", func(t *testing.T) {
		var verr *game.ValidationError
		_, err := e.Start(ctx, gameID)
		require.ErrorAs(t, err, &verr)
		require.Equal(t, game.CodeWrongStatus, verr.Code)
	})
}

func TestStartNeedsTwoParticipants(t *testing.T) {
	e := New(store.NewMemory())
	ctx := context.Background()

	g, err := e.CreateGame(ctx, "duel")
	require.NoError(t, err)
	_, err = e.AddParticipant(ctx, g.ID, "Azure", true, "")
	require.NoError(t, err)

	var verr *game.ValidationError
	_, err = e.Start(ctx, g.ID)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, game.CodeNotEnoughSides, verr.Code)
}

// TestFullOpeningTurn drives a scripted first turn through the engine:
// setup, reinforcement, two combat rounds ending in a conquest, the
// confirmation move, a fortify, and the hand-off to the second participant.
func TestFullOpeningTurn(t *testing.T) {
	dice := &scriptedDice{rolls: [][]int{
		{6, 4, 2}, // round one, attacker
		{3, 1},    // round one, defender loses both
		{6, 5, 4}, // round two, attacker
		{2},       // round two, last defender falls
	}}
	e := New(store.NewMemory(), WithDice(dice))
	ctx := context.Background()
	gameID, azure, crimson := seatedDuel(t, e)

	_, err := e.Start(ctx, gameID)
	require.NoError(t, err)

	// Setup: Azure stacks the frontier, Crimson reinforces the rear.
	_, err = e.PlaceSetupTroops(ctx, gameID, azure, "Aria", 3)
	require.NoError(t, err)
	_, err = e.FinishSetup(ctx, gameID, azure)
	require.NoError(t, err)
	_, err = e.PlaceSetupTroops(ctx, gameID, crimson, "Foxglove", 3)
	require.NoError(t, err)
	g, err := e.FinishSetup(ctx, gameID, crimson)
	require.NoError(t, err)

	require.Equal(t, 1, g.Turn)
	require.Equal(t, game.PhaseReinforce, g.Phase)
	require.Equal(t, azure, g.CurrentParticipant)
	require.Equal(t, 3, g.ReinforcementsRemaining)

	g, err = e.Reinforce(ctx, gameID, azure, "Aria", 3)
	require.NoError(t, err)
	require.Equal(t, 9, g.Territories["Aria"].Troops)

	g, err = e.AdvancePhase(ctx, gameID, azure)
	require.NoError(t, err)
	require.Equal(t, game.PhaseAttack, g.Phase)

	// Round one chips Brackwater down to a single troop.
	g, result, err := e.Attack(ctx, gameID, azure, "Aria", "Brackwater", 3)
	require.NoError(t, err)
	require.False(t, result.Conquered)
	require.Equal(t, 2, result.DefenderLosses)
	require.Equal(t, 1, g.Territories["Brackwater"].Troops)

	// Round two conquers: ownership flips immediately, the move is pending.
	g, result, err = e.Attack(ctx, gameID, azure, "Aria", "Brackwater", 3)
	require.NoError(t, err)
	require.True(t, result.Conquered)
	require.Equal(t, azure, g.Territories["Brackwater"].Owner)
	require.NotNil(t, g.PendingConquest)
	require.Equal(t, 3, g.PendingConquest.MinTroops)
	require.Equal(t, 8, g.PendingConquest.MaxTroops)

	g, err = e.ConfirmConquest(ctx, gameID, azure, 4)
	require.NoError(t, err)
	require.Nil(t, g.PendingConquest)
	require.Equal(t, 5, g.Territories["Aria"].Troops)
	require.Equal(t, 4, g.Territories["Brackwater"].Troops)

	g, err = e.AdvancePhase(ctx, gameID, azure)
	require.NoError(t, err)
	require.Equal(t, game.PhaseFortify, g.Phase)

	g, err = e.Fortify(ctx, gameID, azure, "Aria", "Brackwater", 2)
	require.NoError(t, err)
	require.Equal(t, 6, g.Territories["Brackwater"].Troops)

	// End of turn: Crimson is up, the clock moved one day, the conqueror
	// drew a card.
	g, err = e.AdvancePhase(ctx, gameID, azure)
	require.NoError(t, err)
	require.Equal(t, 2, g.Turn)
	require.Equal(t, crimson, g.CurrentParticipant)
	require.Equal(t, game.PhaseReinforce, g.Phase)
	require.Equal(t, g.StartDate.AddDate(0, 0, 1), g.CurrentDate)
	require.Equal(t, 3, g.ReinforcementsRemaining)
	require.Len(t, g.Deck, 7)
	for _, p := range g.Participants {
		if p.ID == azure {
			require.Len(t, p.Cards, 1)
		}
	}
}

func TestQueryHistoryThroughEngine(t *testing.T) {
	embed := func(text string) []float32 {
		vec, err := history.StubEmbedder{}.Embed(context.Background(), text)
		require.NoError(t, err)
		return vec
	}

	index := history.NewMemoryIndex()
	index.Add(
		history.Snippet{
			ID:        "boer",
			Title:     "Siege of Mafeking",
			Content:   "the siege of mafeking during the boer war",
			EventDate: time.Date(1899, 10, 13, 0, 0, 0, 0, time.UTC),
			Region:    "Africa",
			Embedding: embed("the siege of mafeking during the boer war"),
		},
		history.Snippet{
			ID:        "future",
			Title:     "Relief force arrives",
			Content:   "the siege of mafeking lifted by a relief force",
			EventDate: time.Date(1900, 5, 17, 0, 0, 0, 0, time.UTC),
			Region:    "Africa",
			Embedding: embed("the siege of mafeking lifted by a relief force"),
		},
	)
	gate := history.NewGate(history.StubEmbedder{}, index)

	e := New(store.NewMemory(), WithGate(gate))
	ctx := context.Background()
	gameID, _, _ := seatedDuel(t, e)

	// The duel scenario opens on 1900-01-01; only the 1899 event is visible.
	results, err := e.QueryHistory(ctx, gameID, "siege of mafeking", history.QueryOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "Siege of Mafeking", results[0].Title)
	require.Equal(t, "stub", results[0].Provider)
}

func TestQueryHistoryWithoutGate(t *testing.T) {
	e := New(store.NewMemory())
	gameID, _, _ := seatedDuel(t, e)

	_, err := e.QueryHistory(context.Background(), gameID, "anything", history.QueryOptions{})
	require.Error(t, err)
}
