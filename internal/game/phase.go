package game

import (
	"fmt"
	"sort"
)

// AdvancePhase steps the cyclic phase forward (Setup → Commit → Reveal →
// Scoring → Setup). Draw is excluded from the cycle: advancing out of Draw
// lands in Setup.
func (g *GameState) AdvancePhase() error {
	if !g.Started {
		return fmt.Errorf("%w: match has not started", ErrInvalidState)
	}
	g.Phase = Phase((int(g.Phase) + 1) % phaseCycle)
	return nil
}

// RetreatPhase steps the cyclic phase backward.
func (g *GameState) RetreatPhase() error {
	if !g.Started {
		return fmt.Errorf("%w: match has not started", ErrInvalidState)
	}
	g.Phase = Phase(((int(g.Phase)-1)%phaseCycle + phaseCycle) % phaseCycle)
	return nil
}

// SetPhase forces the phase to an explicit index in [-1, 3]. Setting Draw
// does not itself trigger a draw; that only happens through active-player
// selection.
func (g *GameState) SetPhase(index int) error {
	p := Phase(index)
	if !p.Valid() {
		return fmt.Errorf("%w: phase index %d out of range", ErrInvalidInput, index)
	}
	if !g.Started {
		return fmt.Errorf("%w: match has not started", ErrInvalidState)
	}
	g.Phase = p
	return nil
}

// ToggleActivePlayer selects or deselects the active player. Selecting the
// already-active player deselects them and, when they were the round's
// starting player during Setup, runs the deselect-variant round-end check.
// Selecting anyone else makes them active, forces Draw, and runs the draw
// procedure immediately.
func (g *GameState) ToggleActivePlayer(id PlayerID) error {
	if !g.Started {
		return fmt.Errorf("%w: match has not started", ErrInvalidState)
	}
	if id == g.ActivePlayer {
		deselected := g.ActivePlayer
		g.ActivePlayer = 0
		if deselected == g.StartingPlayer && g.Phase == PhaseSetup {
			g.evaluateRoundEnd(true)
		}
		return nil
	}
	if g.PlayerByID(id) == nil {
		return fmt.Errorf("%w: player %d", ErrNotFound, id)
	}
	g.ActivePlayer = id
	g.Turn++
	g.Phase = PhaseDraw
	g.runDraw()
	return nil
}

// runDraw executes the per-turn draw rule for the active player. Missing
// player or empty deck skips straight to Setup. Either way the phase always
// ends in Setup and round-end evaluation runs.
func (g *GameState) runDraw() {
	p := g.PlayerByID(g.ActivePlayer)
	if p != nil && len(p.Deck) > 0 && g.resolveAutoDraw(p) {
		p.drawOne()
		g.autoDrawn[p.ID] = true
	}
	g.Phase = PhaseSetup
	g.evaluateRoundEnd(false)
}

// evaluateRoundEnd checks the score threshold (10 + 10 × round). It only
// fires from the starting player's Setup phase, or from a deselect of the
// starting player, and never while the round-end modal is already open.
func (g *GameState) evaluateRoundEnd(deselect bool) {
	if !g.Started || g.RoundEndOpen || g.Phase != PhaseSetup {
		return
	}
	if !deselect && g.ActivePlayer != g.StartingPlayer {
		return
	}
	threshold := 10 + 10*g.Round
	if top := g.maxScore(); top >= threshold {
		g.endRound(top)
	}
}

// endRound records the round's winners (score ties share the win) and fixes
// the match winner once somebody accumulates two round wins. A round number
// is recorded at most once; an already-set match winner never changes.
func (g *GameState) endRound(top int) {
	if _, recorded := g.RoundWinners[g.Round]; !recorded {
		var winners []PlayerID
		for _, p := range g.Players {
			if p.Score == top {
				winners = append(winners, p.ID)
			}
		}
		g.RoundWinners[g.Round] = winners
	}

	if g.Winner == 0 {
		rounds := make([]int, 0, len(g.RoundWinners))
		for r := range g.RoundWinners {
			rounds = append(rounds, r)
		}
		sort.Ints(rounds)

		wins := make(map[PlayerID]int)
	tally:
		for _, r := range rounds {
			for _, id := range g.RoundWinners[r] {
				wins[id]++
				if wins[id] >= matchWinTarget {
					g.Winner = id
					break tally
				}
			}
		}
	}

	g.RoundEndOpen = true
	g.RoundEndTriggered = true
}

// StartNextRound closes the round-end modal and moves on. With a match
// winner already decided it doubles as "rematch": the whole match resets but
// seating, starting player, and phase carry over.
func (g *GameState) StartNextRound() error {
	if !g.Started {
		return fmt.Errorf("%w: match has not started", ErrInvalidState)
	}
	if g.Winner != 0 {
		g.Round = 1
		g.Turn = 1
		g.RoundWinners = make(map[int][]PlayerID)
		g.Winner = 0
		g.RoundEndTriggered = false
	} else {
		g.Round++
	}
	for _, p := range g.Players {
		p.Score = 0
	}
	g.RoundEndOpen = false
	return nil
}

// StartNewMatch resets every round, score, and win record unconditionally,
// independent of phase or active player.
func (g *GameState) StartNewMatch() {
	g.Round = 1
	g.Turn = 1
	g.RoundWinners = make(map[int][]PlayerID)
	g.Winner = 0
	g.RoundEndTriggered = false
	g.RoundEndOpen = false
	for _, p := range g.Players {
		p.Score = 0
	}
}

// SetAutoAbilities toggles automatic ability resolution for the match.
func (g *GameState) SetAutoAbilities(enabled bool) {
	g.AutoAbilities = enabled
}

// SetAutoDraw pins a player's auto-draw preference. Unset preferences
// default to enabled; see resolveAutoDraw.
func (g *GameState) SetAutoDraw(id PlayerID, enabled bool) error {
	p := g.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("%w: player %d", ErrNotFound, id)
	}
	v := enabled
	p.AutoDraw = &v
	return nil
}

// SetScore sets a player's score directly. Scoring itself (counting card
// power) happens client-side in the original game; the engine treats score
// as reported state feeding the round threshold.
func (g *GameState) SetScore(id PlayerID, score int) error {
	p := g.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("%w: player %d", ErrNotFound, id)
	}
	if score < 0 {
		return fmt.Errorf("%w: negative score", ErrInvalidInput)
	}
	p.Score = score
	return nil
}
