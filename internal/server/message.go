package server

import (
	"encoding/json"
	"time"

	"github.com/lox/gridclash/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type CreateSessionData struct {
	GridSize int    `json:"gridSize,omitempty"` // 0 means server default
	Seed     *int64 `json:"seed,omitempty"`
}

type JoinSessionData struct {
	SessionID string `json:"sessionId"`
	Team      int    `json:"team,omitempty"`
}

type AddDummyData struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Team      int    `json:"team,omitempty"`
}

type SessionRefData struct {
	SessionID string `json:"sessionId"`
}

type SetPhaseData struct {
	SessionID string `json:"sessionId"`
	Phase     *int   `json:"phase"` // pointer so a missing field is detectable
}

type ToggleActiveData struct {
	SessionID string `json:"sessionId"`
	PlayerID  int    `json:"playerId"`
}

type ToggleAbilitiesData struct {
	SessionID string `json:"sessionId"`
	Enabled   *bool  `json:"enabled"`
}

type ToggleAutoDrawData struct {
	SessionID string `json:"sessionId"`
	PlayerID  int    `json:"playerId,omitempty"` // 0 means the sender's seat
	Enabled   *bool  `json:"enabled"`
}

type SetScoreData struct {
	SessionID string `json:"sessionId"`
	PlayerID  int    `json:"playerId"`
	Score     int    `json:"score"`
}

type PlaceCardData struct {
	SessionID string `json:"sessionId"`
	CardID    string `json:"cardId"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
}

type MoveCardData struct {
	SessionID string `json:"sessionId"`
	FromRow   int    `json:"fromRow"`
	FromCol   int    `json:"fromCol"`
	ToRow     int    `json:"toRow"`
	ToCol     int    `json:"toCol"`
}

type FlipCardData struct {
	SessionID string `json:"sessionId"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
}

type CardStatusData struct {
	SessionID string `json:"sessionId"`
	Row       int    `json:"row"`
	Col       int    `json:"col"`
	Status    string `json:"status"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success    bool   `json:"success"`
	PlayerName string `json:"playerName,omitempty"`
	Error      string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type SessionCreatedData struct {
	SessionID string `json:"sessionId"`
}

type SessionJoinedData struct {
	SessionID string `json:"sessionId"`
	PlayerID  int    `json:"playerId"`
}

type SessionLeftData struct {
	SessionID string `json:"sessionId"`
}

type SessionInfo struct {
	ID          string `json:"id"`
	PlayerCount int    `json:"playerCount"`
	GridSize    int    `json:"gridSize"`
	Round       int    `json:"round"`
	Started     bool   `json:"started"`
}

type SessionListData struct {
	Sessions []SessionInfo `json:"sessions"`
}

// StateSnapshot is the full match view broadcast after every successful
// mutation. Hands are omitted in the shared snapshot; each connection gets a
// personalized copy carrying only its own hand.
type StateSnapshot struct {
	SessionID         string               `json:"sessionId"`
	Phase             int                  `json:"phase"`
	PhaseName         string               `json:"phaseName"`
	ActivePlayer      int                  `json:"activePlayer"`
	StartingPlayer    int                  `json:"startingPlayer"`
	Round             int                  `json:"round"`
	Turn              int                  `json:"turn"`
	ActiveGridSize    int                  `json:"activeGridSize"`
	Winner            int                  `json:"winner"`
	RoundWinners      map[int][]int        `json:"roundWinners"`
	Started           bool                 `json:"started"`
	ReadyCheckActive  bool                 `json:"readyCheckActive"`
	RoundEndOpen      bool                 `json:"roundEndOpen"`
	RoundEndTriggered bool                 `json:"roundEndTriggered"`
	AutoAbilities     bool                 `json:"autoAbilities"`
	Players           []PlayerSnapshot     `json:"players"`
	Board             []PlacedCardSnapshot `json:"board"`
	Hand              []CardSnapshot       `json:"hand,omitempty"`
}

type PlayerSnapshot struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Team      int    `json:"team,omitempty"`
	Score     int    `json:"score"`
	HandCount int    `json:"handCount"`
	DeckCount int    `json:"deckCount"`
	Ready     bool   `json:"ready"`
	Connected bool   `json:"connected"`
	Dummy     bool   `json:"dummy"`
	AutoDraw  *bool  `json:"autoDraw,omitempty"`
	AutoDrawn bool   `json:"autoDrawn,omitempty"`
}

type CardSnapshot struct {
	ID         string        `json:"id"`
	BaseID     string        `json:"baseId"`
	Owner      int           `json:"owner,omitempty"`
	FaceDown   bool          `json:"faceDown,omitempty"`
	Power      int           `json:"power"`
	BonusPower int           `json:"bonusPower,omitempty"`
	Statuses   []game.Status `json:"statuses,omitempty"`
}

type PlacedCardSnapshot struct {
	Row  int          `json:"row"`
	Col  int          `json:"col"`
	Card CardSnapshot `json:"card"`
}

// Helper functions to convert between internal types and message types

func CardSnapshotFromGame(c *game.Card) CardSnapshot {
	statuses := make([]game.Status, len(c.Statuses))
	copy(statuses, c.Statuses)
	return CardSnapshot{
		ID:         c.ID,
		BaseID:     c.BaseID,
		Owner:      int(c.Owner),
		FaceDown:   c.FaceDown,
		Power:      c.Power,
		BonusPower: c.BonusPower,
		Statuses:   statuses,
	}
}

func PlayerSnapshotFromGame(p *game.Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:        int(p.ID),
		Name:      p.Name,
		Team:      p.Team,
		Score:     p.Score,
		HandCount: len(p.Hand),
		DeckCount: len(p.Deck),
		Ready:     p.Ready,
		Connected: p.Connected,
		Dummy:     p.Dummy,
		AutoDraw:  p.AutoDraw,
	}
}

// SnapshotFromState builds the shared snapshot plus the per-seat hand views
// used to personalize it.
func SnapshotFromState(sessionID string, st *game.GameState) (StateSnapshot, map[game.PlayerID][]CardSnapshot) {
	snap := StateSnapshot{
		SessionID:         sessionID,
		Phase:             int(st.Phase),
		PhaseName:         st.Phase.String(),
		ActivePlayer:      int(st.ActivePlayer),
		StartingPlayer:    int(st.StartingPlayer),
		Round:             st.Round,
		Turn:              st.Turn,
		ActiveGridSize:    st.ActiveGridSize,
		Winner:            int(st.Winner),
		RoundWinners:      make(map[int][]int, len(st.RoundWinners)),
		Started:           st.Started,
		ReadyCheckActive:  st.ReadyCheckActive,
		RoundEndOpen:      st.RoundEndOpen,
		RoundEndTriggered: st.RoundEndTriggered,
		AutoAbilities:     st.AutoAbilities,
	}

	for round, winners := range st.RoundWinners {
		ids := make([]int, len(winners))
		for i, id := range winners {
			ids[i] = int(id)
		}
		snap.RoundWinners[round] = ids
	}

	for _, p := range st.Players {
		ps := PlayerSnapshotFromGame(p)
		ps.AutoDrawn = st.AutoDrawn(p.ID)
		snap.Players = append(snap.Players, ps)
	}

	for r := 0; r < game.MaxGridSize; r++ {
		for c := 0; c < game.MaxGridSize; c++ {
			if card := st.Board.At(r, c); card != nil {
				snap.Board = append(snap.Board, PlacedCardSnapshot{
					Row:  r,
					Col:  c,
					Card: CardSnapshotFromGame(card),
				})
			}
		}
	}

	hands := make(map[game.PlayerID][]CardSnapshot, len(st.Players))
	for _, p := range st.Players {
		cards := make([]CardSnapshot, 0, len(p.Hand))
		for _, c := range p.Hand {
			cards = append(cards, CardSnapshotFromGame(c))
		}
		hands[p.ID] = cards
	}

	return snap, hands
}
