package game

import "fmt"

// Board mutation operations. These feed the status engine: the session layer
// recomputes the board after every successful call.

// PlaceCard moves a card from a player's hand onto an empty cell. The cell
// must be on the board; placement outside the active region is legal (inert
// cells still exist, they just skip border rules).
func (g *GameState) PlaceCard(playerID PlayerID, cardID string, row, col int) error {
	p := g.PlayerByID(playerID)
	if p == nil {
		return fmt.Errorf("%w: player %d", ErrNotFound, playerID)
	}
	if !g.Board.InBounds(row, col) {
		return fmt.Errorf("%w: cell (%d,%d) out of range", ErrInvalidInput, row, col)
	}
	if g.Board.Cells[row][col] != nil {
		return fmt.Errorf("%w: cell (%d,%d) is occupied", ErrInvalidInput, row, col)
	}
	i, card := p.handCard(cardID)
	if card == nil {
		return fmt.Errorf("%w: card %q not in hand", ErrNotFound, cardID)
	}
	p.removeFromHand(i)
	card.Owner = playerID
	g.Board.Cells[row][col] = card
	return nil
}

// MoveCard relocates a placed card to an empty cell.
func (g *GameState) MoveCard(fromRow, fromCol, toRow, toCol int) error {
	if !g.Board.InBounds(fromRow, fromCol) || !g.Board.InBounds(toRow, toCol) {
		return fmt.Errorf("%w: cell out of range", ErrInvalidInput)
	}
	card := g.Board.Cells[fromRow][fromCol]
	if card == nil {
		return fmt.Errorf("%w: no card at (%d,%d)", ErrNotFound, fromRow, fromCol)
	}
	if g.Board.Cells[toRow][toCol] != nil {
		return fmt.Errorf("%w: cell (%d,%d) is occupied", ErrInvalidInput, toRow, toCol)
	}
	g.Board.Cells[fromRow][fromCol] = nil
	g.Board.Cells[toRow][toCol] = card
	return nil
}

// FlipCard toggles a placed card's face-down flag.
func (g *GameState) FlipCard(row, col int) error {
	if !g.Board.InBounds(row, col) {
		return fmt.Errorf("%w: cell (%d,%d) out of range", ErrInvalidInput, row, col)
	}
	card := g.Board.Cells[row][col]
	if card == nil {
		return fmt.Errorf("%w: no card at (%d,%d)", ErrNotFound, row, col)
	}
	card.FaceDown = !card.FaceDown
	return nil
}

// AddCardStatus attaches a persistent status (e.g. Stun) to a placed card.
// Derived statuses belong to the status engine and are rejected.
func (g *GameState) AddCardStatus(row, col int, t StatusType, by PlayerID) error {
	if t.Derived() {
		return fmt.Errorf("%w: status %q is derived and cannot be set", ErrInvalidInput, t)
	}
	if !g.Board.InBounds(row, col) {
		return fmt.Errorf("%w: cell (%d,%d) out of range", ErrInvalidInput, row, col)
	}
	card := g.Board.Cells[row][col]
	if card == nil {
		return fmt.Errorf("%w: no card at (%d,%d)", ErrNotFound, row, col)
	}
	card.addStatus(t, by)
	return nil
}

// RemoveCardStatus strips a persistent status from a placed card.
func (g *GameState) RemoveCardStatus(row, col int, t StatusType) error {
	if t.Derived() {
		return fmt.Errorf("%w: status %q is derived and cannot be removed", ErrInvalidInput, t)
	}
	if !g.Board.InBounds(row, col) {
		return fmt.Errorf("%w: cell (%d,%d) out of range", ErrInvalidInput, row, col)
	}
	card := g.Board.Cells[row][col]
	if card == nil {
		return fmt.Errorf("%w: no card at (%d,%d)", ErrNotFound, row, col)
	}
	card.removeStatus(t)
	return nil
}
