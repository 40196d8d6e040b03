package game

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/gridclash/internal/randutil"
)

func seatWithDeck(t *testing.T, st *GameState, id PlayerID, dummy bool) *Player {
	t.Helper()
	deck, err := DefaultCardSet().BuildDeck(DefaultDeckList(), fmt.Sprintf("p%d", id))
	require.NoError(t, err)
	p := &Player{
		ID:        id,
		Name:      fmt.Sprintf("player%d", id),
		Deck:      deck,
		Connected: true,
		Dummy:     dummy,
	}
	require.NoError(t, st.AddPlayer(p))
	return p
}

func TestReadyCheckFlow(t *testing.T) {
	st := newTestState(t, 7)
	seatWithDeck(t, st, 1, false)
	seatWithDeck(t, st, 2, false)

	require.NoError(t, st.StartReadyCheck())
	assert.True(t, st.ReadyCheckActive)

	require.NoError(t, st.PlayerReady(1))
	assert.False(t, st.Started, "one of two players ready is not enough")

	require.NoError(t, st.PlayerReady(2))
	assert.True(t, st.Started)
	assert.False(t, st.ReadyCheckActive)
	assert.NotZero(t, st.StartingPlayer)
	assert.Equal(t, st.StartingPlayer, st.ActivePlayer)
	assert.Equal(t, PhaseSetup, st.Phase)
}

func TestReadyCheckValidation(t *testing.T) {
	st := newTestState(t, 7)
	seatWithDeck(t, st, 1, false)

	t.Run("ready outside a check errors", func(t *testing.T) {
		assert.ErrorIs(t, st.PlayerReady(1), ErrInvalidState)
	})

	t.Run("unknown player", func(t *testing.T) {
		require.NoError(t, st.StartReadyCheck())
		assert.ErrorIs(t, st.PlayerReady(99), ErrNotFound)
		st.CancelReadyCheck()
	})

	t.Run("start after match started errors", func(t *testing.T) {
		require.NoError(t, st.StartReadyCheck())
		require.NoError(t, st.PlayerReady(1))
		require.True(t, st.Started)
		assert.ErrorIs(t, st.StartReadyCheck(), ErrInvalidState)
	})

	t.Run("ready after start is a silent no-op", func(t *testing.T) {
		assert.NoError(t, st.PlayerReady(1))
	})
}

func TestCancelReadyCheck(t *testing.T) {
	st := newTestState(t, 7)
	seatWithDeck(t, st, 1, false)
	seatWithDeck(t, st, 2, false)

	require.NoError(t, st.StartReadyCheck())
	require.NoError(t, st.PlayerReady(1))

	st.CancelReadyCheck()
	assert.False(t, st.ReadyCheckActive)
	assert.False(t, st.PlayerByID(1).Ready, "cancellation clears readiness")
	assert.False(t, st.Started)

	// Cancelling again is harmless.
	st.CancelReadyCheck()
}

func TestDummiesDoNotVote(t *testing.T) {
	st := newTestState(t, 7)
	seatWithDeck(t, st, 1, false)
	seatWithDeck(t, st, 2, true)

	require.NoError(t, st.StartReadyCheck())
	require.NoError(t, st.PlayerReady(1))

	assert.True(t, st.Started, "a lone human plus a substitute starts on the human's vote")
}

func TestDisconnectedPlayersDoNotVote(t *testing.T) {
	st := newTestState(t, 7)
	seatWithDeck(t, st, 1, false)
	p2 := seatWithDeck(t, st, 2, false)
	p2.Connected = false

	require.NoError(t, st.StartReadyCheck())
	require.NoError(t, st.PlayerReady(1))

	assert.True(t, st.Started)
}

func TestInitialDeal(t *testing.T) {
	st := newTestState(t, 7)
	seatWithDeck(t, st, 1, false)
	seatWithDeck(t, st, 2, false)

	require.NoError(t, st.StartReadyCheck())
	require.NoError(t, st.PlayerReady(1))
	require.NoError(t, st.PlayerReady(2))

	starter := st.PlayerByID(st.StartingPlayer)
	assert.Len(t, starter.Hand, DefaultHandSize+1)
	for _, p := range st.Players {
		if p.ID != st.StartingPlayer {
			assert.Len(t, p.Hand, DefaultHandSize)
		}
	}
}

func TestStartingPlayerCanBeDummy(t *testing.T) {
	// With many dummies and one human, the uniform pick lands on a dummy for
	// some seed; the match must still start and deal correctly.
	for seed := int64(0); seed < 20; seed++ {
		st, err := NewGameState(7, randutil.New(seed))
		require.NoError(t, err)
		seatWithDeck(t, st, 1, false)
		for id := PlayerID(2); id <= 4; id++ {
			seatWithDeck(t, st, id, true)
		}
		require.NoError(t, st.StartReadyCheck())
		require.NoError(t, st.PlayerReady(1))
		require.True(t, st.Started)
		if st.StartingPlayer != 1 {
			assert.True(t, st.PlayerByID(st.StartingPlayer).Dummy)
			return
		}
	}
	t.Fatal("expected at least one seed to pick a dummy starting player")
}

func TestDummyAutoDrawDelegatesToHost(t *testing.T) {
	t.Run("host preference off blocks dummy draws", func(t *testing.T) {
		st := newTestState(t, 7)
		host := seatWithDeck(t, st, HostPlayerID, false)
		dummy := seatWithDeck(t, st, 2, true)
		off := false
		host.AutoDraw = &off

		require.NoError(t, st.StartReadyCheck())
		require.NoError(t, st.PlayerReady(HostPlayerID))
		require.True(t, st.Started)

		assert.Empty(t, host.Hand, "host disabled their own auto-draw")
		assert.Empty(t, dummy.Hand, "the dummy inherits the host's preference")
	})

	t.Run("host preference unset defaults to enabled", func(t *testing.T) {
		st := newTestState(t, 7)
		host := seatWithDeck(t, st, HostPlayerID, false)
		dummy := seatWithDeck(t, st, 2, true)

		require.NoError(t, st.StartReadyCheck())
		require.NoError(t, st.PlayerReady(HostPlayerID))

		assert.NotEmpty(t, host.Hand)
		assert.NotEmpty(t, dummy.Hand)
	})

	t.Run("dummy own preference is ignored", func(t *testing.T) {
		st := newTestState(t, 7)
		seatWithDeck(t, st, HostPlayerID, false)
		dummy := seatWithDeck(t, st, 2, true)
		off := false
		dummy.AutoDraw = &off

		require.NoError(t, st.StartReadyCheck())
		require.NoError(t, st.PlayerReady(HostPlayerID))

		assert.NotEmpty(t, dummy.Hand, "delegation overrides the dummy's own flag")
	})
}
