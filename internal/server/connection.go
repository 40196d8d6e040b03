package server

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/gridclash/internal/game"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn        *websocket.Conn
	send        chan *Message
	playerName  string
	sessionID   string
	seat        game.PlayerID
	logger      *log.Logger
	ctx         context.Context
	cancel      context.CancelFunc
	mu          sync.RWMutex
	closeOnce   sync.Once
	gameService *GameService
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, gameService *GameService) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:        conn,
		send:        make(chan *Message, 256),
		logger:      logger.WithPrefix("conn"),
		ctx:         ctx,
		cancel:      cancel,
		gameService: gameService,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with an authenticated player name
func (c *Connection) SetPlayer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerName = name
}

// GetPlayer returns the authenticated player name
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerName
}

// SetSession associates this connection with a session and seat
func (c *Connection) SetSession(sessionID string, seat game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessionID = sessionID
	c.seat = seat
}

// GetSession returns the associated session ID
func (c *Connection) GetSession() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sessionID
}

// GetSeat returns the player's seat in the joined session, zero if none
func (c *Connection) GetSeat() game.PlayerID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.seat
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage routes incoming messages. Auth and session membership are
// checked here; everything else is validated by the session service and the
// core rules.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if !c.decode(msg.Data, &data) {
			return
		}
		c.handleAuth(data)

	case MessageTypeCreateSession:
		var data CreateSessionData
		if !c.decode(msg.Data, &data) {
			return
		}
		c.handleCreateSession(data)

	case MessageTypeJoinSession:
		var data JoinSessionData
		if !c.decode(msg.Data, &data) {
			return
		}
		c.handleJoinSession(data)

	case MessageTypeAddDummy:
		var data AddDummyData
		if !c.decode(msg.Data, &data) {
			return
		}
		c.handleAddDummy(data)

	case MessageTypeLeaveSession:
		c.handleLeaveSession()

	case MessageTypeListSessions:
		c.handleListSessions()

	case MessageTypeGetState:
		var data SessionRefData
		if !c.decode(msg.Data, &data) {
			return
		}
		c.handleGetState(data)

	default:
		c.handleGameOp(msg)
	}
}

// handleGameOp covers every message that mutates a joined session.
func (c *Connection) handleGameOp(msg *Message) {
	if !c.requireSeat() {
		return
	}
	sessionID := c.GetSession()

	var err error
	switch msg.Type {
	case MessageTypeStartReadyCheck:
		err = c.gameService.StartReadyCheck(sessionID)

	case MessageTypeCancelReadyCheck:
		err = c.gameService.CancelReadyCheck(sessionID)

	case MessageTypePlayerReady:
		err = c.gameService.PlayerReady(sessionID, c.GetSeat())

	case MessageTypeAdvancePhase:
		err = c.gameService.AdvancePhase(sessionID)

	case MessageTypeRetreatPhase:
		err = c.gameService.RetreatPhase(sessionID)

	case MessageTypeSetPhase:
		var data SetPhaseData
		if !c.decode(msg.Data, &data) {
			return
		}
		if data.Phase == nil {
			c.sendError("invalid_input", "phase index is required")
			return
		}
		err = c.gameService.SetPhase(sessionID, *data.Phase)

	case MessageTypeToggleActive:
		var data ToggleActiveData
		if !c.decode(msg.Data, &data) {
			return
		}
		err = c.gameService.ToggleActivePlayer(sessionID, game.PlayerID(data.PlayerID))

	case MessageTypeToggleAbilities:
		var data ToggleAbilitiesData
		if !c.decode(msg.Data, &data) {
			return
		}
		if data.Enabled == nil {
			c.sendError("invalid_input", "enabled flag is required")
			return
		}
		err = c.gameService.SetAutoAbilities(sessionID, *data.Enabled)

	case MessageTypeToggleAutoDraw:
		var data ToggleAutoDrawData
		if !c.decode(msg.Data, &data) {
			return
		}
		if data.Enabled == nil {
			c.sendError("invalid_input", "enabled flag is required")
			return
		}
		seat := game.PlayerID(data.PlayerID)
		if seat == 0 {
			seat = c.GetSeat()
		}
		err = c.gameService.SetAutoDraw(sessionID, seat, *data.Enabled)

	case MessageTypeSetScore:
		var data SetScoreData
		if !c.decode(msg.Data, &data) {
			return
		}
		err = c.gameService.SetScore(sessionID, game.PlayerID(data.PlayerID), data.Score)

	case MessageTypeStartNextRound:
		err = c.gameService.StartNextRound(sessionID)

	case MessageTypeStartNewMatch:
		err = c.gameService.StartNewMatch(sessionID)

	case MessageTypePlaceCard:
		var data PlaceCardData
		if !c.decode(msg.Data, &data) {
			return
		}
		err = c.gameService.PlaceCard(sessionID, c.GetSeat(), data.CardID, data.Row, data.Col)

	case MessageTypeMoveCard:
		var data MoveCardData
		if !c.decode(msg.Data, &data) {
			return
		}
		err = c.gameService.MoveCard(sessionID, data.FromRow, data.FromCol, data.ToRow, data.ToCol)

	case MessageTypeFlipCard:
		var data FlipCardData
		if !c.decode(msg.Data, &data) {
			return
		}
		err = c.gameService.FlipCard(sessionID, data.Row, data.Col)

	case MessageTypeAddCardStatus:
		var data CardStatusData
		if !c.decode(msg.Data, &data) {
			return
		}
		err = c.gameService.AddCardStatus(sessionID, data.Row, data.Col, game.StatusType(data.Status), c.GetSeat())

	case MessageTypeRemoveCardStatus:
		var data CardStatusData
		if !c.decode(msg.Data, &data) {
			return
		}
		err = c.gameService.RemoveCardStatus(sessionID, data.Row, data.Col, game.StatusType(data.Status))

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
		return
	}

	if err != nil {
		c.sendGameError(err)
	}
}

// decode parses a payload, rejecting anything that doesn't parse strictly.
func (c *Connection) decode(raw json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(raw, v); err != nil {
		c.sendError("invalid_message", "Failed to parse message data")
		return false
	}
	return true
}

func (c *Connection) requireSeat() bool {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return false
	}
	if c.GetPlayer() == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return false
	}
	if c.GetSession() == "" || c.GetSeat() == 0 {
		c.sendError("not_in_session", "Must join a session first")
		return false
	}
	return true
}

// sendGameError maps core error kinds onto wire codes.
func (c *Connection) sendGameError(err error) {
	code := "internal_error"
	switch {
	case errors.Is(err, game.ErrNotFound):
		code = "not_found"
	case errors.Is(err, game.ErrInvalidState):
		code = "invalid_state"
	case errors.Is(err, game.ErrInvalidInput):
		code = "invalid_input"
	}
	c.sendError(code, err.Error())
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleAuth(data AuthData) {
	c.logger.Info("Auth request", "playerName", data.PlayerName)

	if data.PlayerName == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}

	c.SetPlayer(data.PlayerName)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:    true,
		PlayerName: data.PlayerName,
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleCreateSession(data CreateSessionData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	if c.GetPlayer() == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	sessionID, err := c.gameService.CreateSession(data.GridSize, data.Seed)
	if err != nil {
		c.sendGameError(err)
		return
	}

	response, _ := NewMessage(MessageTypeSessionCreated, SessionCreatedData{SessionID: sessionID})
	_ = c.SendMessage(response)
}

func (c *Connection) handleJoinSession(data JoinSessionData) {
	c.logger.Info("Join session request", "session", data.SessionID, "player", c.GetPlayer())

	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}
	if c.GetPlayer() == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}

	seat, err := c.gameService.JoinSession(data.SessionID, c.GetPlayer(), data.Team)
	if err != nil {
		c.sendGameError(err)
		return
	}

	c.SetSession(data.SessionID, seat)

	response, _ := NewMessage(MessageTypeSessionJoined, SessionJoinedData{
		SessionID: data.SessionID,
		PlayerID:  int(seat),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleAddDummy(data AddDummyData) {
	if !c.requireSeat() {
		return
	}
	if _, err := c.gameService.AddDummy(data.SessionID, data.Name, data.Team); err != nil {
		c.sendGameError(err)
	}
}

func (c *Connection) handleLeaveSession() {
	if !c.requireSeat() {
		return
	}
	sessionID := c.GetSession()

	if err := c.gameService.LeaveSession(sessionID, c.GetSeat()); err != nil {
		c.sendGameError(err)
		return
	}

	c.SetSession("", 0)

	response, _ := NewMessage(MessageTypeSessionLeft, SessionLeftData{SessionID: sessionID})
	_ = c.SendMessage(response)
}

func (c *Connection) handleListSessions() {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	response, _ := NewMessage(MessageTypeSessionList, SessionListData{
		Sessions: c.gameService.ListSessions(),
	})
	_ = c.SendMessage(response)
}

func (c *Connection) handleGetState(data SessionRefData) {
	if c.gameService == nil {
		c.sendError("service_unavailable", "Game service not available")
		return
	}

	snap, hands, err := c.gameService.Snapshot(data.SessionID)
	if err != nil {
		c.sendGameError(err)
		return
	}
	snap.Hand = hands[c.GetSeat()]

	response, _ := NewMessage(MessageTypeStateUpdate, snap)
	_ = c.SendMessage(response)
}
