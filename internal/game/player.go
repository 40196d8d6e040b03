package game

// Player is one seat in a match. Hands and decks are ordered; draws take
// from the front of the deck and append to the end of the hand.
type Player struct {
	ID        PlayerID
	Name      string
	Team      int // zero means no team
	Hand      []*Card
	Deck      []*Card
	Score     int
	Ready     bool
	Connected bool
	Dummy     bool

	// AutoDraw is tri-state: nil means "not set", which defaults to
	// enabled. Resolved through GameState.resolveAutoDraw so dummy seats
	// can delegate to the host.
	AutoDraw *bool
}

// drawOne moves one card from the front of the deck to the end of the hand.
// Returns nil when the deck is empty.
func (p *Player) drawOne() *Card {
	if len(p.Deck) == 0 {
		return nil
	}
	card := p.Deck[0]
	p.Deck = p.Deck[1:]
	p.Hand = append(p.Hand, card)
	return card
}

// drawUpTo draws at most n cards, fewer if the deck runs out, and returns
// the number drawn.
func (p *Player) drawUpTo(n int) int {
	drawn := 0
	for drawn < n && p.drawOne() != nil {
		drawn++
	}
	return drawn
}

// handCard finds a card in the player's hand by instance id.
func (p *Player) handCard(cardID string) (int, *Card) {
	for i, c := range p.Hand {
		if c.ID == cardID {
			return i, c
		}
	}
	return -1, nil
}

// removeFromHand drops the card at index i, preserving hand order.
func (p *Player) removeFromHand(i int) {
	p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
}
