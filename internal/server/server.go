package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/gridclash/internal/game"
)

// Server owns the WebSocket listener and the set of live connections.
type Server struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	httpServer  *http.Server
	gameService *GameService
}

// NewServer creates a new WebSocket server
func NewServer(logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Origin checking belongs to the deployment's proxy layer
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetGameService wires the session service used to route messages.
func (s *Server) SetGameService(gameService *GameService) {
	s.gameService = gameService
}

// Start starts the WebSocket server and blocks until it stops.
func (s *Server) Start(addr string) error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	s.logger.Info("Starting WebSocket server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the listener and closes every connection.
func (s *Server) Shutdown(ctx context.Context) error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // ignore close errors during shutdown
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			if _, ok := s.connections[conn]; ok {
				delete(s.connections, conn)

				// Mark the player disconnected in any session they joined
				sessionID := conn.GetSession()
				seat := conn.GetSeat()
				if sessionID != "" && seat != 0 && s.gameService != nil {
					s.logger.Info("Cleaning up disconnected player", "player", conn.GetPlayer(), "session", sessionID)
					_ = s.gameService.LeaveSession(sessionID, seat) // ignore errors during cleanup
				}

				_ = conn.Close()
			}
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s.gameService)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// SessionConnections returns the live connections attached to a session.
func (s *Server) SessionConnections(sessionID string) []*Connection {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var conns []*Connection
	for conn := range s.connections {
		if conn.GetSession() == sessionID {
			conns = append(conns, conn)
		}
	}
	return conns
}

// BroadcastToSession sends a message to all connections in a session.
func (s *Server) BroadcastToSession(sessionID string, msg *Message) {
	count := 0
	for _, conn := range s.SessionConnections(sessionID) {
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send message to client", "error", err, "player", conn.GetPlayer())
		} else {
			count++
		}
	}
	s.logger.Debug("Broadcasted message to session", "session", sessionID, "type", msg.Type, "recipients", count)
}

// SendToSeat sends a message to the connection holding a seat in a session.
func (s *Server) SendToSeat(sessionID string, seat game.PlayerID, msg *Message) error {
	for _, conn := range s.SessionConnections(sessionID) {
		if conn.GetSeat() == seat {
			return conn.SendMessage(msg)
		}
	}
	return fmt.Errorf("no connection for seat %d in session %s", seat, sessionID)
}
