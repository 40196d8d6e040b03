package server

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gridclash/internal/game"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

func newTestService(t *testing.T, clock quartz.Clock) *GameService {
	t.Helper()
	seed := int64(42)
	return NewGameService(nil, testLogger(), clock, Settings{
		Seed:         &seed,
		ReadyTimeout: 30 * time.Second,
	})
}

// seatTwo creates a session with two joined players and returns its id.
func seatTwo(t *testing.T, gs *GameService) string {
	t.Helper()
	sessionID, err := gs.CreateSession(7, nil)
	require.NoError(t, err)

	seat, err := gs.JoinSession(sessionID, "alice", 0)
	require.NoError(t, err)
	require.Equal(t, game.HostPlayerID, seat)

	seat, err = gs.JoinSession(sessionID, "bob", 0)
	require.NoError(t, err)
	require.Equal(t, game.PlayerID(2), seat)

	return sessionID
}

// startMatch runs the ready-check flow to completion.
func startMatch(t *testing.T, gs *GameService, sessionID string) {
	t.Helper()
	require.NoError(t, gs.StartReadyCheck(sessionID))
	require.NoError(t, gs.PlayerReady(sessionID, 1))
	require.NoError(t, gs.PlayerReady(sessionID, 2))
}

func TestCreateSession(t *testing.T) {
	gs := newTestService(t, quartz.NewMock(t))

	sessionID, err := gs.CreateSession(0, nil)
	require.NoError(t, err)
	assert.Len(t, sessionID, 26)

	t.Run("grid size out of range", func(t *testing.T) {
		_, err := gs.CreateSession(4, nil)
		assert.ErrorIs(t, err, game.ErrInvalidInput)
	})

	t.Run("unknown session lookups fail", func(t *testing.T) {
		_, _, err := gs.Snapshot("nonexistent")
		assert.ErrorIs(t, err, game.ErrNotFound)
	})
}

func TestJoinSession(t *testing.T) {
	gs := newTestService(t, quartz.NewMock(t))
	sessionID := seatTwo(t, gs)

	snap, hands, err := gs.Snapshot(sessionID)
	require.NoError(t, err)
	assert.Len(t, snap.Players, 2)
	assert.Equal(t, "alice", snap.Players[0].Name)
	assert.Equal(t, 20, snap.Players[0].DeckCount, "every seat gets a full deck")
	assert.Empty(t, hands[1], "no cards dealt before the match starts")

	t.Run("join after start is rejected for new names", func(t *testing.T) {
		startMatch(t, gs, sessionID)
		_, err := gs.JoinSession(sessionID, "carol", 0)
		assert.ErrorIs(t, err, game.ErrInvalidState)
	})

	t.Run("rejoin by name reclaims the seat", func(t *testing.T) {
		require.NoError(t, gs.LeaveSession(sessionID, 2))
		seat, err := gs.JoinSession(sessionID, "bob", 0)
		require.NoError(t, err)
		assert.Equal(t, game.PlayerID(2), seat)

		snap, _, err := gs.Snapshot(sessionID)
		require.NoError(t, err)
		assert.True(t, snap.Players[1].Connected)
	})
}

func TestAddDummy(t *testing.T) {
	gs := newTestService(t, quartz.NewMock(t))
	sessionID, err := gs.CreateSession(7, nil)
	require.NoError(t, err)

	_, err = gs.JoinSession(sessionID, "alice", 0)
	require.NoError(t, err)

	seat, err := gs.AddDummy(sessionID, "standin", 0)
	require.NoError(t, err)
	assert.Equal(t, game.PlayerID(2), seat)

	snap, _, err := gs.Snapshot(sessionID)
	require.NoError(t, err)
	assert.True(t, snap.Players[1].Dummy)

	// A single human's vote starts the match; the dummy never votes.
	require.NoError(t, gs.StartReadyCheck(sessionID))
	require.NoError(t, gs.PlayerReady(sessionID, 1))
	snap, _, err = gs.Snapshot(sessionID)
	require.NoError(t, err)
	assert.True(t, snap.Started)
}

func TestListSessions(t *testing.T) {
	gs := newTestService(t, quartz.NewMock(t))
	assert.Empty(t, gs.ListSessions())

	first := seatTwo(t, gs)
	_, err := gs.CreateSession(5, nil)
	require.NoError(t, err)

	infos := gs.ListSessions()
	require.Len(t, infos, 2)
	for _, info := range infos {
		if info.ID == first {
			assert.Equal(t, 2, info.PlayerCount)
			assert.Equal(t, 7, info.GridSize)
		} else {
			assert.Equal(t, 0, info.PlayerCount)
			assert.Equal(t, 5, info.GridSize)
		}
	}
}

func TestMatchFlowThroughService(t *testing.T) {
	gs := newTestService(t, quartz.NewMock(t))
	sessionID := seatTwo(t, gs)
	startMatch(t, gs, sessionID)

	snap, hands, err := gs.Snapshot(sessionID)
	require.NoError(t, err)
	require.True(t, snap.Started)
	require.NotZero(t, snap.StartingPlayer)
	assert.Len(t, hands[game.PlayerID(snap.StartingPlayer)], 7)
	for _, p := range snap.Players {
		if p.ID == snap.StartingPlayer {
			assert.True(t, p.AutoDrawn, "the opening auto-draw shows up in the snapshot")
		} else {
			assert.False(t, p.AutoDrawn)
		}
	}

	// Place a card and confirm the board snapshot reflects it.
	starter := game.PlayerID(snap.StartingPlayer)
	cardID := hands[starter][0].ID
	require.NoError(t, gs.PlaceCard(sessionID, starter, cardID, 3, 3))

	snap, hands, err = gs.Snapshot(sessionID)
	require.NoError(t, err)
	require.Len(t, snap.Board, 1)
	assert.Equal(t, cardID, snap.Board[0].Card.ID)
	assert.Len(t, hands[starter], 6)

	t.Run("phase operations route through", func(t *testing.T) {
		require.NoError(t, gs.AdvancePhase(sessionID))
		snap, _, err := gs.Snapshot(sessionID)
		require.NoError(t, err)
		assert.Equal(t, "commit", snap.PhaseName)

		require.NoError(t, gs.RetreatPhase(sessionID))
		require.NoError(t, gs.SetPhase(sessionID, 3))
		snap, _, err = gs.Snapshot(sessionID)
		require.NoError(t, err)
		assert.Equal(t, "scoring", snap.PhaseName)
		require.NoError(t, gs.SetPhase(sessionID, 0))
	})

	t.Run("statuses recompute after each mutation", func(t *testing.T) {
		other := game.PlayerID(3 - int(starter))
		_, otherHands, err := gs.Snapshot(sessionID)
		require.NoError(t, err)
		require.NoError(t, gs.PlaceCard(sessionID, other, otherHands[other][0].ID, 2, 3))
		require.NoError(t, gs.PlaceCard(sessionID, other, otherHands[other][1].ID, 4, 3))

		snap, _, err := gs.Snapshot(sessionID)
		require.NoError(t, err)
		for _, placed := range snap.Board {
			if placed.Row == 3 && placed.Col == 3 {
				require.NotEmpty(t, placed.Card.Statuses, "pincered card should carry Threat")
				assert.Equal(t, game.StatusThreat, placed.Card.Statuses[0].Type)
			}
		}
	})

	t.Run("scores and rounds route through", func(t *testing.T) {
		require.NoError(t, gs.SetScore(sessionID, starter, 12))
		snap, _, err := gs.Snapshot(sessionID)
		require.NoError(t, err)
		for _, p := range snap.Players {
			if game.PlayerID(p.ID) == starter {
				assert.Equal(t, 12, p.Score)
			}
		}
		assert.ErrorIs(t, gs.SetScore(sessionID, starter, -1), game.ErrInvalidInput)
	})
}

func TestReadyCheckExpiry(t *testing.T) {
	mock := quartz.NewMock(t)
	gs := newTestService(t, mock)
	sessionID := seatTwo(t, gs)

	require.NoError(t, gs.StartReadyCheck(sessionID))
	require.NoError(t, gs.PlayerReady(sessionID, 1))

	mock.Advance(30 * time.Second).MustWait(context.Background())

	snap, _, err := gs.Snapshot(sessionID)
	require.NoError(t, err)
	assert.False(t, snap.ReadyCheckActive, "an unanswered ready check expires")
	assert.False(t, snap.Started)
	for _, p := range snap.Players {
		assert.False(t, p.Ready, "expiry clears readiness")
	}

	t.Run("a fresh check still works afterwards", func(t *testing.T) {
		startMatch(t, gs, sessionID)
		snap, _, err := gs.Snapshot(sessionID)
		require.NoError(t, err)
		assert.True(t, snap.Started)
	})
}

func TestReadyCheckTimerDisarmsOnStart(t *testing.T) {
	mock := quartz.NewMock(t)
	gs := newTestService(t, mock)
	sessionID := seatTwo(t, gs)

	startMatch(t, gs, sessionID)

	// The timer was stopped; advancing past the deadline changes nothing.
	mock.Advance(31 * time.Second)

	snap, _, err := gs.Snapshot(sessionID)
	require.NoError(t, err)
	assert.True(t, snap.Started)
}

func TestLeaveSessionMarksDisconnected(t *testing.T) {
	gs := newTestService(t, quartz.NewMock(t))
	sessionID := seatTwo(t, gs)

	require.NoError(t, gs.LeaveSession(sessionID, 2))

	snap, _, err := gs.Snapshot(sessionID)
	require.NoError(t, err)
	assert.False(t, snap.Players[1].Connected)
	assert.Len(t, snap.Players, 2, "seats persist across disconnects")

	assert.ErrorIs(t, gs.LeaveSession(sessionID, 99), game.ErrNotFound)
}
