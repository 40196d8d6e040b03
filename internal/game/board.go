package game

// MaxGridSize is the fixed board dimension. Matches with a smaller active
// grid size still allocate the full board; cells outside the active region
// participate in adjacency and hero lines but not in border-pressure rules.
const MaxGridSize = 7

// Board is a square grid of cells, each holding at most one card. Boards are
// replaced, not mutated: Recompute clones the board and the session installs
// the new snapshot.
type Board struct {
	Cells [MaxGridSize][MaxGridSize]*Card
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{}
}

// InBounds reports whether (row, col) is on the board at all.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < MaxGridSize && col >= 0 && col < MaxGridSize
}

// At returns the card at (row, col), or nil for empty or out-of-range cells.
func (b *Board) At(row, col int) *Card {
	if !b.InBounds(row, col) {
		return nil
	}
	return b.Cells[row][col]
}

// Clone deep-copies the board and every card on it.
func (b *Board) Clone() *Board {
	dup := &Board{}
	for r := range b.Cells {
		for c, card := range b.Cells[r] {
			if card != nil {
				dup.Cells[r][c] = card.clone()
			}
		}
	}
	return dup
}

// region is the centered active sub-square of the board for a given active
// grid size. The offset is symmetric: first = (MaxGridSize-size)/2.
type region struct {
	first, last int
}

func regionFor(size int) region {
	offset := (MaxGridSize - size) / 2
	return region{first: offset, last: offset + size - 1}
}

func (a region) contains(row, col int) bool {
	return row >= a.first && row <= a.last && col >= a.first && col <= a.last
}

// onEdge reports whether the cell sits on the outer ring of the active
// region. Cells outside the region are never on its edge.
func (a region) onEdge(row, col int) bool {
	if !a.contains(row, col) {
		return false
	}
	return row == a.first || row == a.last || col == a.first || col == a.last
}
