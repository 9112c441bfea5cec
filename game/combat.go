package game

// MaxAttackDice caps the attacker at three dice per round, standard rules.
const MaxAttackDice = 3

// MaxDefendDice caps the defender at two dice per round.
const MaxDefendDice = 2

// AttackResult reports the outcome of a single dice combat round.
type AttackResult struct {
	AttackerRolls  []int `json:"attackerRolls"`
	DefenderRolls  []int `json:"defenderRolls"`
	AttackerLosses int   `json:"attackerLosses"`
	DefenderLosses int   `json:"defenderLosses"`
	Conquered      bool  `json:"conquered"`
}

// battleLosses compares rolls pairwise, both sorted descending. Ties go to
// the defender.
func battleLosses(attackerRolls, defenderRolls []int) (attackerLosses, defenderLosses int) {
	battles := min(len(attackerRolls), len(defenderRolls))
	for i := 0; i < battles; i++ {
		if attackerRolls[i] > defenderRolls[i] {
			defenderLosses++
		} else {
			attackerLosses++
		}
	}
	return
}

// Attack resolves one combat round from one owned territory against an
// adjacent enemy territory. A round that drops the defender to zero flips
// ownership immediately and opens a pending conquest; the troop transfer
// waits for ConfirmConquest.
func (g *Game) Attack(d Dice, participantID, fromName, toName string, diceCount int) (*AttackResult, error) {
	if err := g.requireTurn(participantID, PhaseAttack); err != nil {
		return nil, err
	}
	if g.PendingConquest != nil {
		return nil, reject(CodeConquestPending, "conquest of %s must be confirmed first", g.PendingConquest.To)
	}
	if diceCount < 1 || diceCount > MaxAttackDice {
		return nil, reject(CodeBadDiceCount, "dice count %d out of range 1..%d", diceCount, MaxAttackDice)
	}
	from := g.territory(fromName)
	if from == nil {
		return nil, notFound("territory", fromName)
	}
	to := g.territory(toName)
	if to == nil {
		return nil, notFound("territory", toName)
	}
	if from.Owner != participantID {
		return nil, reject(CodeNotOwner, "%s does not hold %s", participantID, fromName)
	}
	if to.Owner == participantID {
		return nil, reject(CodeNotOwner, "cannot attack own territory %s", toName)
	}
	if !g.AreAdjacent(fromName, toName) {
		return nil, reject(CodeNotAdjacent, "%s does not border %s", fromName, toName)
	}
	if from.Troops < diceCount+1 {
		return nil, reject(CodeBadTroopCount, "attacking with %d dice requires %d troops in %s, have %d",
			diceCount, diceCount+1, fromName, from.Troops)
	}

	attackerRolls := d.Roll(diceCount)
	defenderRolls := d.Roll(min(MaxDefendDice, to.Troops))
	attackerLosses, defenderLosses := battleLosses(attackerRolls, defenderRolls)

	from.Troops -= attackerLosses
	to.Troops -= defenderLosses

	result := &AttackResult{
		AttackerRolls:  attackerRolls,
		DefenderRolls:  defenderRolls,
		AttackerLosses: attackerLosses,
		DefenderLosses: defenderLosses,
	}

	if to.Troops <= 0 {
		result.Conquered = true
		previousOwner := to.Owner
		to.Troops = 0
		to.Owner = participantID
		g.PendingConquest = &PendingConquest{
			From:          fromName,
			To:            toName,
			MinTroops:     diceCount,
			MaxTroops:     from.Troops - 1,
			PreviousOwner: previousOwner,
		}
		g.ConqueredThisTurn = true
	}
	return result, nil
}

// ConfirmConquest moves troops into a just-captured territory and closes the
// pending conquest. Elimination of the previous owner and the 75% victory
// check both happen here, atomically with the troop transfer.
func (g *Game) ConfirmConquest(participantID string, troopsToMove int) error {
	if err := g.requireTurn(participantID, PhaseAttack); err != nil {
		return err
	}
	pc := g.PendingConquest
	if pc == nil {
		return reject(CodeNoConquest, "no conquest awaiting confirmation")
	}
	if troopsToMove < pc.MinTroops || troopsToMove > pc.MaxTroops {
		return reject(CodeBadTroopCount, "must move between %d and %d troops into %s, got %d",
			pc.MinTroops, pc.MaxTroops, pc.To, troopsToMove)
	}
	from := g.territory(pc.From)
	to := g.territory(pc.To)
	if from.Owner != participantID || to.Owner != participantID {
		return reject(CodeNotOwner, "conquest territories no longer held by %s", participantID)
	}

	from.Troops -= troopsToMove
	to.Troops = troopsToMove
	g.PendingConquest = nil

	if pc.PreviousOwner != "" && g.OwnedCount(pc.PreviousOwner) == 0 {
		if loser := g.participant(pc.PreviousOwner); loser != nil {
			loser.Eliminated = true
		}
	}

	if g.OwnedCount(participantID) >= g.victoryThreshold() {
		g.Status = StatusFinished
		g.Winner = participantID
	}
	return nil
}

// victoryThreshold is ceil(0.75 * total territories).
func (g *Game) victoryThreshold() int {
	total := len(g.Territories)
	return (total*3 + 3) / 4
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
