package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/gridclash/internal/game"
	"github.com/lox/gridclash/internal/gameid"
	"github.com/lox/gridclash/internal/randutil"
)

// Session is one match: the exclusively-owned game state plus the mutex that
// serializes every externally-triggered operation on it. The core performs
// no locking of its own.
type Session struct {
	ID    string
	State *game.GameState

	mu         sync.Mutex
	logger     *log.Logger
	readyTimer *quartz.Timer
	nextSeat   game.PlayerID
}

// Settings configures match creation defaults.
type Settings struct {
	GridSize     int
	HandSize     int
	CardSet      *game.CardSet
	Deck         game.DeckList
	ReadyTimeout time.Duration
	Seed         *int64 // deterministic session seeds when set
}

// GameService is the session registry. It routes operations into the rules
// engine, recomputes the board after every successful mutation, and
// broadcasts the resulting snapshot.
type GameService struct {
	sessions map[string]*Session
	server   *Server
	logger   *log.Logger
	clock    quartz.Clock
	settings Settings
	mu       sync.RWMutex
}

// NewGameService creates a new game service
func NewGameService(server *Server, logger *log.Logger, clock quartz.Clock, settings Settings) *GameService {
	if settings.GridSize == 0 {
		settings.GridSize = game.MaxGridSize
	}
	if settings.HandSize == 0 {
		settings.HandSize = game.DefaultHandSize
	}
	if settings.CardSet == nil {
		settings.CardSet = game.DefaultCardSet()
	}
	if len(settings.Deck.Cards) == 0 {
		settings.Deck = game.DefaultDeckList()
	}
	if clock == nil {
		clock = quartz.NewReal()
	}

	return &GameService{
		sessions: make(map[string]*Session),
		server:   server,
		logger:   logger.WithPrefix("game-service"),
		clock:    clock,
		settings: settings,
	}
}

// CreateSession creates a new match session. Grid size zero takes the
// configured default; an explicit seed makes the session deterministic.
func (gs *GameService) CreateSession(gridSize int, seed *int64) (string, error) {
	if gridSize == 0 {
		gridSize = gs.settings.GridSize
	}

	sessionSeed := time.Now().UnixNano()
	if seed != nil {
		sessionSeed = *seed
	} else if gs.settings.Seed != nil {
		sessionSeed = *gs.settings.Seed
	}

	state, err := game.NewGameState(gridSize, randutil.New(sessionSeed))
	if err != nil {
		return "", err
	}
	state.HandSize = gs.settings.HandSize

	session := &Session{
		ID:       gameid.Generate(),
		State:    state,
		nextSeat: game.HostPlayerID,
	}
	session.logger = gs.logger.WithPrefix("session").With("id", session.ID)

	gs.mu.Lock()
	gs.sessions[session.ID] = session
	gs.mu.Unlock()

	session.logger.Info("Created session", "gridSize", gridSize, "seed", sessionSeed)
	return session.ID, nil
}

// session looks up a session by ID.
func (gs *GameService) session(id string) (*Session, error) {
	gs.mu.RLock()
	defer gs.mu.RUnlock()
	s, ok := gs.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: session %s", game.ErrNotFound, id)
	}
	return s, nil
}

// ListSessions returns a snapshot of available sessions.
func (gs *GameService) ListSessions() []SessionInfo {
	gs.mu.RLock()
	defer gs.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(gs.sessions))
	for _, s := range gs.sessions {
		s.mu.Lock()
		infos = append(infos, SessionInfo{
			ID:          s.ID,
			PlayerCount: len(s.State.Players),
			GridSize:    s.State.ActiveGridSize,
			Round:       s.State.Round,
			Started:     s.State.Started,
		})
		s.mu.Unlock()
	}
	return infos
}

// mutate runs fn under the session lock. On success the board is recomputed
// and the new state broadcast to every connection in the session.
func (gs *GameService) mutate(sessionID string, fn func(*game.GameState) error) error {
	s, err := gs.session(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	err = fn(s.State)
	var snap StateSnapshot
	var hands map[game.PlayerID][]CardSnapshot
	if err == nil {
		s.State.Board = game.Recompute(s.State)
		snap, hands = SnapshotFromState(s.ID, s.State)
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}

	gs.broadcastState(s, snap, hands)
	return nil
}

// broadcastState fans the snapshot out, attaching each seat's own hand.
func (gs *GameService) broadcastState(s *Session, snap StateSnapshot, hands map[game.PlayerID][]CardSnapshot) {
	if gs.server == nil {
		return
	}
	for _, conn := range gs.server.SessionConnections(s.ID) {
		personal := snap
		personal.Hand = hands[conn.GetSeat()]
		msg, err := NewMessage(MessageTypeStateUpdate, personal)
		if err != nil {
			s.logger.Error("Failed to create state update", "error", err)
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send state update", "error", err, "player", conn.GetPlayer())
		}
	}
	s.logger.Debug("Broadcast state",
		"phase", snap.PhaseName,
		"activePlayer", snap.ActivePlayer,
		"round", snap.Round,
		"turn", snap.Turn)
}

// broadcastSession snapshots under the lock and fans out, for changes made
// outside the mutate pipeline (seating).
func (gs *GameService) broadcastSession(s *Session) {
	s.mu.Lock()
	snap, hands := SnapshotFromState(s.ID, s.State)
	s.mu.Unlock()
	gs.broadcastState(s, snap, hands)
}

// Snapshot returns the current state view without mutating anything.
func (gs *GameService) Snapshot(sessionID string) (StateSnapshot, map[game.PlayerID][]CardSnapshot, error) {
	s, err := gs.session(sessionID)
	if err != nil {
		return StateSnapshot{}, nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, hands := SnapshotFromState(s.ID, s.State)
	return snap, hands, nil
}

// JoinSession seats a named player. The first joiner takes the host seat.
// Seats are dealt a shuffled deck from the configured card pool.
func (gs *GameService) JoinSession(sessionID, playerName string, team int) (game.PlayerID, error) {
	s, err := gs.session(sessionID)
	if err != nil {
		return 0, err
	}

	var seat game.PlayerID
	var seated int
	err = func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.State.Started {
			// Reconnection: reclaim an existing seat by name.
			for _, p := range s.State.Players {
				if p.Name == playerName && !p.Dummy {
					p.Connected = true
					seat = p.ID
					seated = len(s.State.Players)
					return nil
				}
			}
			return fmt.Errorf("%w: match already started", game.ErrInvalidState)
		}

		seat = s.nextSeat
		player := &game.Player{
			ID:        seat,
			Name:      playerName,
			Team:      team,
			Connected: true,
		}
		if err := gs.dealDeck(s, player); err != nil {
			return err
		}
		if err := s.State.AddPlayer(player); err != nil {
			return err
		}
		s.nextSeat++
		seated = len(s.State.Players)
		return nil
	}()
	if err != nil {
		return 0, err
	}

	s.logger.Info("Player joined", "player", playerName, "seat", seat, "players", seated)
	gs.broadcastSession(s)
	return seat, nil
}

// AddDummy seats a substitute player. Substitutes count as connected but
// never vote in ready checks; their draws delegate to the host preference.
func (gs *GameService) AddDummy(sessionID, name string, team int) (game.PlayerID, error) {
	s, err := gs.session(sessionID)
	if err != nil {
		return 0, err
	}

	var seat game.PlayerID
	err = func() error {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.State.Started {
			return fmt.Errorf("%w: match already started", game.ErrInvalidState)
		}

		seat = s.nextSeat
		player := &game.Player{
			ID:        seat,
			Name:      name,
			Team:      team,
			Connected: true,
			Dummy:     true,
		}
		if err := gs.dealDeck(s, player); err != nil {
			return err
		}
		if err := s.State.AddPlayer(player); err != nil {
			return err
		}
		s.nextSeat++
		return nil
	}()
	if err != nil {
		return 0, err
	}

	s.logger.Info("Substitute seated", "name", name, "seat", seat)
	gs.broadcastSession(s)
	return seat, nil
}

// dealDeck builds and shuffles a fresh deck for a seat. Caller holds the
// session lock.
func (gs *GameService) dealDeck(s *Session, p *game.Player) error {
	deck, err := gs.settings.CardSet.BuildDeck(gs.settings.Deck, fmt.Sprintf("p%d", p.ID))
	if err != nil {
		return fmt.Errorf("%w: %v", game.ErrInvalidInput, err)
	}
	randutil.Shuffle(s.State.Rand(), deck)
	p.Deck = deck
	return nil
}

// LeaveSession marks a seat disconnected. State is kept so the player can
// rejoin a started match.
func (gs *GameService) LeaveSession(sessionID string, seat game.PlayerID) error {
	return gs.mutate(sessionID, func(st *game.GameState) error {
		p := st.PlayerByID(seat)
		if p == nil {
			return fmt.Errorf("%w: player %d", game.ErrNotFound, seat)
		}
		p.Connected = false
		return nil
	})
}

// Ready-check sequencing. A configured timeout auto-cancels a ready check
// that never completes; completion or cancellation disarms it.

func (gs *GameService) StartReadyCheck(sessionID string) error {
	if err := gs.mutate(sessionID, func(st *game.GameState) error {
		return st.StartReadyCheck()
	}); err != nil {
		return err
	}
	gs.armReadyTimer(sessionID)
	return nil
}

func (gs *GameService) CancelReadyCheck(sessionID string) error {
	if err := gs.mutate(sessionID, func(st *game.GameState) error {
		st.CancelReadyCheck()
		return nil
	}); err != nil {
		return err
	}
	gs.disarmReadyTimer(sessionID)
	return nil
}

func (gs *GameService) PlayerReady(sessionID string, seat game.PlayerID) error {
	var started bool
	if err := gs.mutate(sessionID, func(st *game.GameState) error {
		if err := st.PlayerReady(seat); err != nil {
			return err
		}
		started = st.Started
		return nil
	}); err != nil {
		return err
	}
	if started {
		gs.disarmReadyTimer(sessionID)
		gs.logSessionState(sessionID, "Match started")
	}
	return nil
}

func (gs *GameService) armReadyTimer(sessionID string) {
	if gs.settings.ReadyTimeout <= 0 {
		return
	}
	s, err := gs.session(sessionID)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readyTimer != nil {
		s.readyTimer.Stop()
	}
	s.readyTimer = gs.clock.AfterFunc(gs.settings.ReadyTimeout, func() {
		gs.expireReadyCheck(sessionID)
	})
}

func (gs *GameService) disarmReadyTimer(sessionID string) {
	s, err := gs.session(sessionID)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readyTimer != nil {
		s.readyTimer.Stop()
		s.readyTimer = nil
	}
}

func (gs *GameService) expireReadyCheck(sessionID string) {
	err := gs.mutate(sessionID, func(st *game.GameState) error {
		if st.Started || !st.ReadyCheckActive {
			return fmt.Errorf("%w: ready check no longer active", game.ErrInvalidState)
		}
		st.CancelReadyCheck()
		return nil
	})
	if err == nil {
		gs.logger.Info("Ready check expired", "session", sessionID)
	}
}

// Phase and match operations, all routed through mutate so each one ends in
// a recompute and broadcast.

func (gs *GameService) AdvancePhase(sessionID string) error {
	return gs.mutate(sessionID, func(st *game.GameState) error { return st.AdvancePhase() })
}

func (gs *GameService) RetreatPhase(sessionID string) error {
	return gs.mutate(sessionID, func(st *game.GameState) error { return st.RetreatPhase() })
}

func (gs *GameService) SetPhase(sessionID string, index int) error {
	return gs.mutate(sessionID, func(st *game.GameState) error { return st.SetPhase(index) })
}

func (gs *GameService) ToggleActivePlayer(sessionID string, seat game.PlayerID) error {
	return gs.mutate(sessionID, func(st *game.GameState) error { return st.ToggleActivePlayer(seat) })
}

func (gs *GameService) SetAutoAbilities(sessionID string, enabled bool) error {
	return gs.mutate(sessionID, func(st *game.GameState) error {
		st.SetAutoAbilities(enabled)
		return nil
	})
}

func (gs *GameService) SetAutoDraw(sessionID string, seat game.PlayerID, enabled bool) error {
	return gs.mutate(sessionID, func(st *game.GameState) error { return st.SetAutoDraw(seat, enabled) })
}

func (gs *GameService) SetScore(sessionID string, seat game.PlayerID, score int) error {
	return gs.mutate(sessionID, func(st *game.GameState) error { return st.SetScore(seat, score) })
}

func (gs *GameService) StartNextRound(sessionID string) error {
	return gs.mutate(sessionID, func(st *game.GameState) error { return st.StartNextRound() })
}

func (gs *GameService) StartNewMatch(sessionID string) error {
	return gs.mutate(sessionID, func(st *game.GameState) error {
		st.StartNewMatch()
		return nil
	})
}

// Board operations.

func (gs *GameService) PlaceCard(sessionID string, seat game.PlayerID, cardID string, row, col int) error {
	return gs.mutate(sessionID, func(st *game.GameState) error {
		return st.PlaceCard(seat, cardID, row, col)
	})
}

func (gs *GameService) MoveCard(sessionID string, fromRow, fromCol, toRow, toCol int) error {
	return gs.mutate(sessionID, func(st *game.GameState) error {
		return st.MoveCard(fromRow, fromCol, toRow, toCol)
	})
}

func (gs *GameService) FlipCard(sessionID string, row, col int) error {
	return gs.mutate(sessionID, func(st *game.GameState) error { return st.FlipCard(row, col) })
}

func (gs *GameService) AddCardStatus(sessionID string, row, col int, t game.StatusType, by game.PlayerID) error {
	return gs.mutate(sessionID, func(st *game.GameState) error {
		return st.AddCardStatus(row, col, t, by)
	})
}

func (gs *GameService) RemoveCardStatus(sessionID string, row, col int, t game.StatusType) error {
	return gs.mutate(sessionID, func(st *game.GameState) error {
		return st.RemoveCardStatus(row, col, t)
	})
}

// logSessionState writes the observability trace line for a session: phase,
// active player, round, and scores.
func (gs *GameService) logSessionState(sessionID, event string) {
	s, err := gs.session(sessionID)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	scores := make(map[game.PlayerID]int, len(s.State.Players))
	for _, p := range s.State.Players {
		scores[p.ID] = p.Score
	}
	s.logger.Info(event,
		"phase", s.State.Phase.String(),
		"activePlayer", s.State.ActivePlayer,
		"round", s.State.Round,
		"scores", fmt.Sprintf("%v", scores))
}
