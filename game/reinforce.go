package game

// Reinforcements computes a participant's per-turn troop allotment:
// max(3, owned/3), plus the bonus of every region held in full, plus any
// fully-held special combination.
func Reinforcements(g *Game, participantID string) int {
	owned := 0
	ownedByRegion := map[string]int{}
	for _, t := range g.Territories {
		if t.Owner == participantID {
			owned++
			ownedByRegion[t.Region]++
		}
	}

	troops := 3
	if owned/3 > troops {
		troops = owned / 3
	}

	for region, bonus := range g.RegionBonuses {
		if bonus.Count > 0 && ownedByRegion[region] == bonus.Count {
			troops += bonus.Bonus
		}
	}

	for _, special := range g.SpecialBonuses {
		holdsAll := true
		for _, name := range special.Territories {
			t := g.territory(name)
			if t == nil || t.Owner != participantID {
				holdsAll = false
				break
			}
		}
		if holdsAll {
			troops += special.Bonus
		}
	}
	return troops
}
