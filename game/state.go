package game

// requireTurn validates the common preconditions of every mutating call: the
// game is active, the caller exists, and it is the caller's turn in the given
// phase. Validation never mutates; callers apply changes only after all
// checks pass.
func (g *Game) requireTurn(participantID string, phase Phase) error {
	if g.Status != StatusActive {
		return reject(CodeWrongStatus, "game is %s", g.Status)
	}
	if g.participant(participantID) == nil {
		return notFound("participant", participantID)
	}
	if g.CurrentParticipant != participantID {
		return reject(CodeNotYourTurn, "it is %s's turn", g.CurrentParticipant)
	}
	if g.Phase != phase {
		return reject(CodeWrongPhase, "operation requires %s phase, game is in %s", phase, g.Phase)
	}
	return nil
}

// PlaceSetupTroops places part of the caller's initial troop allotment onto
// an owned territory. Callers repeat this until their allotment is spent.
func (g *Game) PlaceSetupTroops(participantID, territoryName string, troops int) error {
	if err := g.requireTurn(participantID, PhaseSetup); err != nil {
		return err
	}
	p := g.participant(participantID)
	t := g.territory(territoryName)
	if t == nil {
		return notFound("territory", territoryName)
	}
	if t.Owner != participantID {
		return reject(CodeNotOwner, "%s does not hold %s", participantID, territoryName)
	}
	if troops < 1 || troops > p.SetupTroopsRemaining {
		return reject(CodeBadTroopCount, "can place between 1 and %d troops, got %d",
			p.SetupTroopsRemaining, troops)
	}

	t.Troops += troops
	p.SetupTroopsRemaining -= troops
	return nil
}

// FinishSetup hands the setup turn to the next participant still holding
// unplaced troops. Once nobody does, the first game turn begins.
func (g *Game) FinishSetup(participantID string) error {
	if err := g.requireTurn(participantID, PhaseSetup); err != nil {
		return err
	}

	if next := g.nextWithSetupTroops(participantID); next != nil {
		g.CurrentParticipant = next.ID
		return nil
	}
	g.beginFirstTurn()
	return nil
}

// nextWithSetupTroops cycles through seating order, the caller included,
// looking for unplaced setup troops.
func (g *Game) nextWithSetupTroops(afterID string) *Participant {
	idx := 0
	for i, p := range g.Participants {
		if p.ID == afterID {
			idx = i
			break
		}
	}
	for i := 1; i <= len(g.Participants); i++ {
		p := g.Participants[(idx+i)%len(g.Participants)]
		if !p.Eliminated && p.SetupTroopsRemaining > 0 {
			return p
		}
	}
	return nil
}

func (g *Game) beginFirstTurn() {
	first := g.Participants[0]
	g.Turn = 1
	g.Phase = PhaseReinforce
	g.CurrentParticipant = first.ID
	g.FortifyUsed = false
	g.ReinforcementsRemaining = Reinforcements(g, first.ID)
}

// PlaceReinforcements spends part of the turn's reinforcement allotment on an
// owned territory.
func (g *Game) PlaceReinforcements(participantID, territoryName string, troops int) error {
	if err := g.requireTurn(participantID, PhaseReinforce); err != nil {
		return err
	}
	t := g.territory(territoryName)
	if t == nil {
		return notFound("territory", territoryName)
	}
	if t.Owner != participantID {
		return reject(CodeNotOwner, "%s does not hold %s", participantID, territoryName)
	}
	if troops < 1 || troops > g.ReinforcementsRemaining {
		return reject(CodeBadTroopCount, "can place between 1 and %d reinforcements, got %d",
			g.ReinforcementsRemaining, troops)
	}

	t.Troops += troops
	g.ReinforcementsRemaining -= troops
	return nil
}

// AdvancePhase moves reinforce->attack, attack->fortify, or ends the turn
// from fortify. Setup is left via FinishSetup instead.
func (g *Game) AdvancePhase(participantID string) error {
	if g.Status != StatusActive {
		return reject(CodeWrongStatus, "game is %s", g.Status)
	}
	if g.participant(participantID) == nil {
		return notFound("participant", participantID)
	}
	if g.CurrentParticipant != participantID {
		return reject(CodeNotYourTurn, "it is %s's turn", g.CurrentParticipant)
	}
	if g.PendingConquest != nil {
		return reject(CodeConquestPending, "conquest of %s must be confirmed first", g.PendingConquest.To)
	}

	switch g.Phase {
	case PhaseReinforce:
		if g.ReinforcementsRemaining > 0 {
			return reject(CodeBadTroopCount, "%d reinforcements still to place", g.ReinforcementsRemaining)
		}
		g.Phase = PhaseAttack
	case PhaseAttack:
		g.Phase = PhaseFortify
	case PhaseFortify:
		g.endTurn()
	default:
		return reject(CodeWrongPhase, "cannot advance out of %s phase", g.Phase)
	}
	return nil
}

// Fortify moves troops between two owned adjacent territories, once per turn.
func (g *Game) Fortify(participantID, fromName, toName string, troops int) error {
	if err := g.requireTurn(participantID, PhaseFortify); err != nil {
		return err
	}
	if g.FortifyUsed {
		return reject(CodeFortifyUsed, "only one fortify move per turn")
	}
	from := g.territory(fromName)
	if from == nil {
		return notFound("territory", fromName)
	}
	to := g.territory(toName)
	if to == nil {
		return notFound("territory", toName)
	}
	if from.Owner != participantID || to.Owner != participantID {
		return reject(CodeNotOwner, "both territories must be held by %s", participantID)
	}
	if !g.AreAdjacent(fromName, toName) {
		return reject(CodeNotAdjacent, "%s does not border %s", fromName, toName)
	}
	if troops < 1 || troops > from.Troops-1 {
		return reject(CodeBadTroopCount, "can move between 1 and %d troops out of %s, got %d",
			from.Troops-1, fromName, troops)
	}

	from.Troops -= troops
	to.Troops += troops
	g.FortifyUsed = true
	return nil
}

// endTurn rotates to the next surviving participant: the in-world calendar
// advances, a card is awarded for a conquering turn, oversized hands are
// force-traded, and the new turn's reinforcements are computed.
func (g *Game) endTurn() {
	g.awardCardIfEligible()

	next := g.nextActive(g.CurrentParticipant)
	g.CurrentParticipant = next.ID
	g.Phase = PhaseReinforce
	g.FortifyUsed = false
	g.Turn++
	g.CurrentDate = g.CurrentDate.AddDate(0, 0, g.DaysPerTurn)
	g.ReinforcementsRemaining = Reinforcements(g, next.ID)
	g.forceCardTrades(next)
}
