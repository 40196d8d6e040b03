package game

import "fmt"

// StartReadyCheck begins the one-shot match-start sequence: everybody's
// readiness is cleared and the ready-check flag raised. Rejected once the
// match has started.
func (g *GameState) StartReadyCheck() error {
	if g.Started {
		return fmt.Errorf("%w: match already started", ErrInvalidState)
	}
	for _, p := range g.Players {
		p.Ready = false
	}
	g.ReadyCheckActive = true
	return nil
}

// CancelReadyCheck aborts an active ready check. A no-op when none is
// running.
func (g *GameState) CancelReadyCheck() {
	if !g.ReadyCheckActive {
		return
	}
	g.ReadyCheckActive = false
	for _, p := range g.Players {
		p.Ready = false
	}
}

// PlayerReady marks a player ready. Readiness after the match has started is
// silently ignored; readiness outside a ready check is an error. When every
// connected non-dummy player is ready the match starts immediately.
func (g *GameState) PlayerReady(id PlayerID) error {
	if g.Started {
		return nil
	}
	if !g.ReadyCheckActive {
		return fmt.Errorf("%w: ready check is not active", ErrInvalidState)
	}
	p := g.PlayerByID(id)
	if p == nil {
		return fmt.Errorf("%w: player %d", ErrNotFound, id)
	}
	p.Ready = true

	if g.allRealPlayersReady() {
		g.startMatch()
	}
	return nil
}

// allRealPlayersReady requires at least one connected non-dummy player and
// every such player ready. Dummy and disconnected seats don't vote.
func (g *GameState) allRealPlayersReady() bool {
	voters := 0
	for _, p := range g.Players {
		if p.Dummy || !p.Connected {
			continue
		}
		if !p.Ready {
			return false
		}
		voters++
	}
	return voters > 0
}

// startMatch performs the one-way transition into a running match: pick the
// starting player uniformly among connected seats (dummies included), deal
// initial hands, then hand control to the normal draw procedure so the
// starting player receives their extra card through the one-card draw rule.
func (g *GameState) startMatch() {
	g.ReadyCheckActive = false
	g.Started = true
	g.autoDrawn = make(map[PlayerID]bool)

	var connected []*Player
	for _, p := range g.Players {
		if p.Connected {
			connected = append(connected, p)
		}
	}
	if len(connected) > 0 {
		pick := connected[g.rng.IntN(len(connected))]
		g.StartingPlayer = pick.ID
		g.ActivePlayer = pick.ID
	}

	// Deal only into empty hands so a replayed start is idempotent.
	for _, p := range g.Players {
		if len(p.Hand) > 0 {
			continue
		}
		if !g.resolveAutoDraw(p) {
			continue
		}
		p.drawUpTo(g.HandSize)
	}

	g.Phase = PhaseDraw
	g.runDraw()
}
