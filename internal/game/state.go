package game

import (
	"fmt"
	rand "math/rand/v2"
)

// Phase is the turn phase. Setup through Scoring cycle modulo phaseCycle;
// Draw is a transient entry phase reachable only by selecting an active
// player, never by the cyclic advance, and always resolves into Setup before
// the state is observed externally.
type Phase int

const (
	PhaseDraw    Phase = -1
	PhaseSetup   Phase = 0
	PhaseCommit  Phase = 1
	PhaseReveal  Phase = 2
	PhaseScoring Phase = 3
)

// phaseCycle is the number of cyclic phases (Setup..Scoring).
const phaseCycle = 4

func (p Phase) String() string {
	switch p {
	case PhaseDraw:
		return "draw"
	case PhaseSetup:
		return "setup"
	case PhaseCommit:
		return "commit"
	case PhaseReveal:
		return "reveal"
	case PhaseScoring:
		return "scoring"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Valid reports whether p is a defined phase index.
func (p Phase) Valid() bool {
	return p >= PhaseDraw && p <= PhaseScoring
}

// DefaultHandSize is the number of cards dealt to each empty hand when a
// match starts. The starting player's extra card comes from the normal
// one-card draw, never from the deal itself.
const DefaultHandSize = 6

// matchWinTarget is the number of round wins that ends a match.
const matchWinTarget = 2

// GameState aggregates everything about one match. It is exclusively owned
// by its session; the package assumes callers never run two operations on the
// same state concurrently.
type GameState struct {
	Board          *Board
	Players        []*Player
	ActiveGridSize int
	Phase          Phase
	ActivePlayer   PlayerID // zero when nobody is selected
	StartingPlayer PlayerID
	Round          int
	Turn           int
	RoundWinners   map[int][]PlayerID
	Winner         PlayerID
	HandSize       int

	Started           bool
	ReadyCheckActive  bool
	RoundEndOpen      bool
	AutoAbilities     bool
	RoundEndTriggered bool

	rng *rand.Rand

	// autoDrawn tracks seats whose draw was performed automatically this
	// match; cleared every time a match starts.
	autoDrawn map[PlayerID]bool
}

// NewGameState creates the state for a fresh match. The active grid size
// must be 5, 6, or 7 and is centered within the fixed board.
func NewGameState(activeGridSize int, rng *rand.Rand) (*GameState, error) {
	if activeGridSize < 5 || activeGridSize > MaxGridSize {
		return nil, fmt.Errorf("%w: active grid size %d (want 5-%d)", ErrInvalidInput, activeGridSize, MaxGridSize)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: nil rng", ErrInvalidInput)
	}
	return &GameState{
		Board:          NewBoard(),
		ActiveGridSize: activeGridSize,
		Phase:          PhaseSetup,
		Round:          1,
		Turn:           1,
		RoundWinners:   make(map[int][]PlayerID),
		HandSize:       DefaultHandSize,
		AutoAbilities:  true,
		rng:            rng,
		autoDrawn:      make(map[PlayerID]bool),
	}, nil
}

// AddPlayer seats a player. Ids must be unique; the caller (session layer)
// assigns them sequentially starting from the host seat.
func (g *GameState) AddPlayer(p *Player) error {
	if p.ID == 0 {
		return fmt.Errorf("%w: player id must be non-zero", ErrInvalidInput)
	}
	if g.PlayerByID(p.ID) != nil {
		return fmt.Errorf("%w: player id %d already seated", ErrInvalidInput, p.ID)
	}
	g.Players = append(g.Players, p)
	return nil
}

// AutoDrawn reports whether the seat's per-turn draw has been performed
// automatically at least once this match. Cleared on match start.
func (g *GameState) AutoDrawn(id PlayerID) bool {
	return g.autoDrawn[id]
}

// Rand exposes the state's deterministic random source so callers can
// shuffle decks with the same stream that picks the starting player.
func (g *GameState) Rand() *rand.Rand {
	return g.rng
}

// PlayerByID returns the seated player, or nil.
func (g *GameState) PlayerByID(id PlayerID) *Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// maxScore returns the highest score across all seats, zero when empty.
func (g *GameState) maxScore() int {
	top := 0
	for _, p := range g.Players {
		if p.Score > top {
			top = p.Score
		}
	}
	return top
}

// resolveAutoDraw is the single tri-state defaulting rule shared by the
// initial deal and the per-turn draw: enabled unless explicitly disabled,
// with dummy seats delegating to the host seat's preference.
func (g *GameState) resolveAutoDraw(p *Player) bool {
	if p.Dummy {
		if host := g.PlayerByID(HostPlayerID); host != nil {
			return autoDrawEnabled(host.AutoDraw)
		}
		return true
	}
	return autoDrawEnabled(p.AutoDraw)
}

func autoDrawEnabled(pref *bool) bool {
	return pref == nil || *pref
}
