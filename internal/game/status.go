package game

// neighborOffsets fixes the adjacency scan order: up, down, left, right.
// Threat attribution ties break on first enemy seen in this order.
var neighborOffsets = [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}

// Recompute derives positional statuses and hero bonuses from raw card
// placement. It is pure: the input state is not mutated, and calling it twice
// without an intervening mutation yields identical boards. There is no error
// path; a well-formed GameState always recomputes.
//
// The pass order is reset, adjacency, hero passives. Statuses from the two
// passes are unioned, never reset between them.
func Recompute(g *GameState) *Board {
	board := g.Board.Clone()

	for r := range board.Cells {
		for c := range board.Cells[r] {
			if card := board.Cells[r][c]; card != nil {
				card.removeStatus(StatusSupport)
				card.removeStatus(StatusThreat)
				card.BonusPower = 0
			}
		}
	}

	teams := make(map[PlayerID]int, len(g.Players))
	for _, p := range g.Players {
		teams[p.ID] = p.Team
	}

	active := regionFor(g.ActiveGridSize)
	applyAdjacency(board, teams, active)
	applyHeroLines(board)

	return board
}

// applyAdjacency walks every cell once and grants Support and Threat from
// 4-directional neighbors. Face-down, stunned, or ownerless neighbors are
// inert; the receiving card must be placed, owned, and face up.
func applyAdjacency(board *Board, teams map[PlayerID]int, active region) {
	for r := range board.Cells {
		for c := range board.Cells[r] {
			card := board.Cells[r][c]
			if card == nil || card.Owner == 0 || card.FaceDown {
				continue
			}

			var friendly PlayerID
			var enemyOrder []PlayerID
			enemyCount := make(map[PlayerID]int, 3)

			for _, off := range neighborOffsets {
				n := board.At(r+off[0], c+off[1])
				if n == nil || n.Owner == 0 || n.FaceDown || n.Stunned() {
					continue
				}
				if sameSide(card.Owner, n.Owner, teams) {
					if friendly == 0 {
						friendly = n.Owner
					}
					continue
				}
				if enemyCount[n.Owner] == 0 {
					enemyOrder = append(enemyOrder, n.Owner)
				}
				enemyCount[n.Owner]++
			}

			if friendly != 0 {
				card.addStatus(StatusSupport, friendly)
			}

			// Pincer: a single enemy on two or more sides.
			var threatBy PlayerID
			for _, enemy := range enemyOrder {
				if enemyCount[enemy] >= 2 {
					threatBy = enemy
					break
				}
			}
			// Border pressure applies only on the active region's edge and
			// only when the pincer did not already fire.
			if threatBy == 0 && len(enemyOrder) > 0 && active.onEdge(r, c) {
				threatBy = enemyOrder[0]
			}
			if threatBy != 0 {
				card.addStatus(StatusThreat, threatBy)
			}
		}
	}
}

// sameSide reports whether two owners count as friendly: identical, or both
// on the same defined team.
func sameSide(a, b PlayerID, teams map[PlayerID]int) bool {
	if a == b {
		return true
	}
	ta, tb := teams[a], teams[b]
	return ta != 0 && ta == tb
}

// lineKey dedupes hero line effects: each (line, owner) pair is applied at
// most once per hero type even when an owner stacks heroes on one line.
type lineKey struct {
	index int
	owner PlayerID
}

// applyHeroLines scans for face-up, owned, non-stunned hero cards and applies
// their row/column passives across the full board, not just the active
// region.
func applyHeroLines(board *Board) {
	supportRows := make(map[lineKey]bool)
	supportCols := make(map[lineKey]bool)
	powerRows := make(map[lineKey]bool)
	powerCols := make(map[lineKey]bool)

	for r := range board.Cells {
		for c := range board.Cells[r] {
			hero := board.Cells[r][c]
			if hero == nil || hero.Owner == 0 || hero.FaceDown || hero.Stunned() {
				continue
			}
			switch hero.BaseID {
			case HeroReverend:
				if rk := (lineKey{r, hero.Owner}); !supportRows[rk] {
					supportRows[rk] = true
					grantRowSupport(board, hero, r)
				}
				if ck := (lineKey{c, hero.Owner}); !supportCols[ck] {
					supportCols[ck] = true
					grantColSupport(board, hero, c)
				}
			case HeroMrPearl:
				if rk := (lineKey{r, hero.Owner}); !powerRows[rk] {
					powerRows[rk] = true
					grantRowPower(board, hero, r)
				}
				if ck := (lineKey{c, hero.Owner}); !powerCols[ck] {
					powerCols[ck] = true
					grantColPower(board, hero, c)
				}
			}
		}
	}
}

func grantRowSupport(board *Board, hero *Card, row int) {
	for c := 0; c < MaxGridSize; c++ {
		grantSupport(board.Cells[row][c], hero)
	}
}

func grantColSupport(board *Board, hero *Card, col int) {
	for r := 0; r < MaxGridSize; r++ {
		grantSupport(board.Cells[r][col], hero)
	}
}

// grantSupport marks a same-owner, face-up card other than the hero itself.
func grantSupport(card, hero *Card) {
	if card == nil || card == hero || card.FaceDown || card.Owner != hero.Owner {
		return
	}
	card.addStatus(StatusSupport, hero.Owner)
}

func grantRowPower(board *Board, hero *Card, row int) {
	for c := 0; c < MaxGridSize; c++ {
		grantPower(board.Cells[row][c], hero)
	}
}

func grantColPower(board *Board, hero *Card, col int) {
	for r := 0; r < MaxGridSize; r++ {
		grantPower(board.Cells[r][col], hero)
	}
}

// grantPower adds +1 bonus power; copies of the power hero never buff each
// other, so any card sharing the hero's template is excluded.
func grantPower(card, hero *Card) {
	if card == nil || card == hero || card.FaceDown || card.Owner != hero.Owner {
		return
	}
	if card.BaseID == hero.BaseID {
		return
	}
	card.BonusPower++
}
