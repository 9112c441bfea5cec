package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setupPhaseGame() *Game {
	g := twoPlayerGame()
	g.Phase = PhaseSetup
	g.Turn = 0
	g.Participants[0].SetupTroopsRemaining = 4
	g.Participants[1].SetupTroopsRemaining = 3
	return g
}

func TestSetupPlacement(t *testing.T) {
	g := setupPhaseGame()

	require.NoError(t, g.PlaceSetupTroops("alice", "X", 3))
	require.Equal(t, 8, g.Territories["X"].Troops)
	require.Equal(t, 1, g.Participants[0].SetupTroopsRemaining)

	t.Run("cannot place on enemy territory", func(t *testing.T) {
		err := g.PlaceSetupTroops("alice", "Y", 1)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, CodeNotOwner, verr.Code)
	})

	t.Run("cannot overspend the allotment", func(t *testing.T) {
		err := g.PlaceSetupTroops("alice", "X", 2)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, CodeBadTroopCount, verr.Code)
	})
}

func TestSetupCyclesUntilEveryoneIsPlaced(t *testing.T) {
	g := setupPhaseGame()

	// Alice hands off while still holding troops; the turn cycles to bob and
	// back to her. Setup ends only once every allotment reaches zero.
	require.NoError(t, g.PlaceSetupTroops("alice", "X", 2))
	require.NoError(t, g.FinishSetup("alice"))
	require.Equal(t, "bob", g.CurrentParticipant)
	require.Equal(t, PhaseSetup, g.Phase)

	require.NoError(t, g.PlaceSetupTroops("bob", "Y", 3))
	require.NoError(t, g.FinishSetup("bob"))
	require.Equal(t, "alice", g.CurrentParticipant, "alice still has troops to place")
	require.Equal(t, PhaseSetup, g.Phase)

	require.NoError(t, g.PlaceSetupTroops("alice", "W", 2))
	require.NoError(t, g.FinishSetup("alice"))

	require.Equal(t, 1, g.Turn, "first turn begins once all allotments hit zero")
	require.Equal(t, PhaseReinforce, g.Phase)
	require.Equal(t, "alice", g.CurrentParticipant)
	require.False(t, g.FortifyUsed)
	// Alice holds X and W, all of West: max(3, 2/3) + 2.
	require.Equal(t, 5, g.ReinforcementsRemaining)
}

func TestReinforcePhase(t *testing.T) {
	g := twoPlayerGame()
	g.Phase = PhaseReinforce
	g.ReinforcementsRemaining = 5

	t.Run("advance is rejected while troops remain", func(t *testing.T) {
		err := g.AdvancePhase("alice")
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, CodeBadTroopCount, verr.Code)
		require.Equal(t, PhaseReinforce, g.Phase)
	})

	require.NoError(t, g.PlaceReinforcements("alice", "X", 2))
	require.NoError(t, g.PlaceReinforcements("alice", "W", 3))
	require.Equal(t, 0, g.ReinforcementsRemaining)

	t.Run("placement beyond the allotment is rejected", func(t *testing.T) {
		err := g.PlaceReinforcements("alice", "X", 1)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, CodeBadTroopCount, verr.Code)
	})

	require.NoError(t, g.AdvancePhase("alice"))
	require.Equal(t, PhaseAttack, g.Phase)
}

func TestFortifyOncePerTurn(t *testing.T) {
	g := twoPlayerGame()
	g.Phase = PhaseFortify

	t.Run("rejects non-adjacent and enemy endpoints", func(t *testing.T) {
		err := g.Fortify("alice", "X", "Z", 1)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, CodeNotOwner, verr.Code, "Z is enemy-held")

		g2 := twoPlayerGame()
		g2.Phase = PhaseFortify
		g2.Territories["Z"].Owner = "alice"
		err = g2.Fortify("alice", "X", "Z", 1)
		require.ErrorAs(t, err, &verr)
		require.Equal(t, CodeNotAdjacent, verr.Code)
	})

	t.Run("must leave a garrison behind", func(t *testing.T) {
		err := g.Fortify("alice", "X", "W", 5)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, CodeBadTroopCount, verr.Code)
	})

	require.NoError(t, g.Fortify("alice", "X", "W", 4))
	require.Equal(t, 1, g.Territories["X"].Troops)
	require.Equal(t, 7, g.Territories["W"].Troops)

	t.Run("second fortify in the same turn is rejected", func(t *testing.T) {
		err := g.Fortify("alice", "W", "X", 1)
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Equal(t, CodeFortifyUsed, verr.Code)
	})
}

func TestTurnEnd(t *testing.T) {
	g := twoPlayerGame()
	g.Phase = PhaseFortify
	g.FortifyUsed = true
	start := g.CurrentDate

	require.NoError(t, g.AdvancePhase("alice"))

	require.Equal(t, "bob", g.CurrentParticipant)
	require.Equal(t, PhaseReinforce, g.Phase)
	require.False(t, g.FortifyUsed, "fortify resets at turn start")
	require.Equal(t, 2, g.Turn)
	require.Equal(t, start.AddDate(0, 0, g.DaysPerTurn), g.CurrentDate, "in-world calendar advances")
	// Bob holds Y and Z, all of East: max(3, 2/3) + 2.
	require.Equal(t, 5, g.ReinforcementsRemaining)
}

func TestTurnEndSkipsEliminated(t *testing.T) {
	g := twoPlayerGame()
	g.Participants = append(g.Participants, &Participant{ID: "carol", Nation: "Viridian"})
	g.Participants[1].Eliminated = true
	g.Phase = PhaseFortify

	require.NoError(t, g.AdvancePhase("alice"))
	require.Equal(t, "carol", g.CurrentParticipant, "eliminated bob is skipped forever")
}

func TestPendingConquestBlocksAdvanceAndFortify(t *testing.T) {
	g := twoPlayerGame()
	d := &scriptedDice{rolls: [][]int{{6, 4, 2}, {3}}}
	_, err := g.Attack(d, "alice", "X", "Y", 3)
	require.NoError(t, err)

	var verr *ValidationError
	err = g.AdvancePhase("alice")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, CodeConquestPending, verr.Code)
	require.Equal(t, PhaseAttack, g.Phase)

	require.NoError(t, g.ConfirmConquest("alice", 3))
	require.NoError(t, g.AdvancePhase("alice"))
	require.Equal(t, PhaseFortify, g.Phase)
}

func TestOnlyCurrentParticipantMayAct(t *testing.T) {
	g := twoPlayerGame()
	g.Phase = PhaseReinforce
	g.ReinforcementsRemaining = 3

	var verr *ValidationError
	err := g.PlaceReinforcements("bob", "Y", 1)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, CodeNotYourTurn, verr.Code)

	err = g.AdvancePhase("bob")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, CodeNotYourTurn, verr.Code)
}

func TestOperationsRejectedOnFinishedGame(t *testing.T) {
	g := twoPlayerGame()
	g.Status = StatusFinished
	g.Winner = "alice"

	var verr *ValidationError
	err := g.AdvancePhase("alice")
	require.ErrorAs(t, err, &verr)
	require.Equal(t, CodeWrongStatus, verr.Code)
}
