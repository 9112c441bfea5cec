package game

// CardKind is the unit pictured on a territory card.
type CardKind string

const (
	Infantry  CardKind = "infantry"
	Cavalry   CardKind = "cavalry"
	Artillery CardKind = "artillery"
	Wild      CardKind = "wild"
)

// Card is a territory card. Wild cards carry no territory.
type Card struct {
	Kind      CardKind `json:"kind"`
	Territory string   `json:"territory,omitempty"`
}

// forcedTradeThreshold forces a trade before reinforcing with five or more
// cards in hand.
const forcedTradeThreshold = 5

// NewDeck builds a shuffled deck with one card per territory, kinds assigned
// round-robin, plus two wilds.
func NewDeck(territoryNames []string, d Dice) []Card {
	kinds := []CardKind{Infantry, Cavalry, Artillery}
	deck := make([]Card, 0, len(territoryNames)+2)
	for i, name := range territoryNames {
		deck = append(deck, Card{Kind: kinds[i%3], Territory: name})
	}
	deck = append(deck, Card{Kind: Wild}, Card{Kind: Wild})

	d.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// awardCardIfEligible grants one card to the current participant at turn end
// if they conquered at least one territory this turn.
func (g *Game) awardCardIfEligible() {
	if !g.ConqueredThisTurn {
		return
	}
	g.ConqueredThisTurn = false
	if len(g.Deck) == 0 && len(g.Discards) > 0 {
		g.Deck = append(g.Deck, g.Discards...)
		g.Discards = nil
	}
	if len(g.Deck) == 0 {
		return
	}
	p := g.participant(g.CurrentParticipant)
	p.Cards = append(p.Cards, g.Deck[0])
	g.Deck = g.Deck[1:]
}

// TradeCards trades three cards from the caller's hand for reinforcements
// during the reinforce phase. The indices must form a valid set: three of a
// kind, one of each kind, or any two plus a wild.
func (g *Game) TradeCards(participantID string, indices []int) error {
	if err := g.requireTurn(participantID, PhaseReinforce); err != nil {
		return err
	}
	p := g.participant(participantID)
	if len(indices) != 3 {
		return reject(CodeNoCardSet, "a trade takes exactly 3 cards, got %d", len(indices))
	}
	seen := map[int]bool{}
	set := make([]Card, 0, 3)
	for _, idx := range indices {
		if idx < 0 || idx >= len(p.Cards) || seen[idx] {
			return reject(CodeNoCardSet, "invalid card index %d", idx)
		}
		seen[idx] = true
		set = append(set, p.Cards[idx])
	}
	if !isSet(set) {
		return reject(CodeNoCardSet, "cards do not form a tradeable set")
	}

	g.tradeIn(p, indices, set)
	return nil
}

// tradeIn removes the set from the hand, discards it, and credits the
// escalation armies plus the owned-territory bonus.
func (g *Game) tradeIn(p *Participant, indices []int, set []Card) {
	// Remove highest index first so the remaining indices stay valid.
	ordered := append([]int(nil), indices...)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j] > ordered[i] {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	for _, idx := range ordered {
		p.Cards = append(p.Cards[:idx], p.Cards[idx+1:]...)
	}
	g.Discards = append(g.Discards, set...)

	g.Exchanges++
	g.ReinforcementsRemaining += armiesForExchange(g.Exchanges)

	// Holding a traded card's territory grants 2 extra troops there, once.
	for _, card := range set {
		if card.Territory == "" {
			continue
		}
		if t := g.territory(card.Territory); t != nil && t.Owner == p.ID {
			t.Troops += 2
			break
		}
	}
}

// forceCardTrades trades sets down below the hand limit at turn start.
func (g *Game) forceCardTrades(p *Participant) {
	for len(p.Cards) >= forcedTradeThreshold {
		indices := findSet(p.Cards)
		if indices == nil {
			return
		}
		set := []Card{p.Cards[indices[0]], p.Cards[indices[1]], p.Cards[indices[2]]}
		g.tradeIn(p, indices, set)
	}
}

// isSet reports whether three cards form a tradeable set.
func isSet(cards []Card) bool {
	wilds := 0
	kinds := map[CardKind]int{}
	for _, c := range cards {
		if c.Kind == Wild {
			wilds++
		} else {
			kinds[c.Kind]++
		}
	}
	if wilds > 0 {
		return true
	}
	if len(kinds) == 1 || len(kinds) == 3 {
		return true
	}
	return false
}

// findSet returns the indices of a tradeable set in the hand, or nil.
// Preference order: three of a kind, one of each, two plus a wild.
func findSet(hand []Card) []int {
	byKind := map[CardKind][]int{}
	for i, c := range hand {
		byKind[c.Kind] = append(byKind[c.Kind], i)
	}

	for kind, indices := range byKind {
		if kind != Wild && len(indices) >= 3 {
			return indices[:3]
		}
	}

	inf, cav, art := byKind[Infantry], byKind[Cavalry], byKind[Artillery]
	if len(inf) > 0 && len(cav) > 0 && len(art) > 0 {
		return []int{inf[0], cav[0], art[0]}
	}

	if wilds := byKind[Wild]; len(wilds) > 0 {
		var nonWild []int
		for i, c := range hand {
			if c.Kind != Wild {
				nonWild = append(nonWild, i)
			}
		}
		if len(nonWild) >= 2 {
			return []int{nonWild[0], nonWild[1], wilds[0]}
		}
	}
	return nil
}

// armiesForExchange follows the classic escalation: 4, 6, 8, 10, 12, 15,
// then 5 more per additional set.
func armiesForExchange(exchangeNumber int) int {
	switch exchangeNumber {
	case 1:
		return 4
	case 2:
		return 6
	case 3:
		return 8
	case 4:
		return 10
	case 5:
		return 12
	case 6:
		return 15
	default:
		return 15 + 5*(exchangeNumber-6)
	}
}
