package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants used by the client-server protocol.
const (
	// Client to server messages
	MessageTypeAuth              MessageType = "auth"
	MessageTypeCreateSession     MessageType = "create_session"
	MessageTypeJoinSession       MessageType = "join_session"
	MessageTypeAddDummy          MessageType = "add_dummy"
	MessageTypeLeaveSession      MessageType = "leave_session"
	MessageTypeListSessions      MessageType = "list_sessions"
	MessageTypeGetState          MessageType = "get_state"
	MessageTypeStartReadyCheck   MessageType = "start_ready_check"
	MessageTypeCancelReadyCheck  MessageType = "cancel_ready_check"
	MessageTypePlayerReady       MessageType = "player_ready"
	MessageTypeAdvancePhase      MessageType = "advance_phase"
	MessageTypeRetreatPhase      MessageType = "retreat_phase"
	MessageTypeSetPhase          MessageType = "set_phase"
	MessageTypeToggleActive      MessageType = "toggle_active_player"
	MessageTypeToggleAbilities   MessageType = "toggle_auto_abilities"
	MessageTypeToggleAutoDraw    MessageType = "toggle_auto_draw"
	MessageTypeSetScore          MessageType = "set_score"
	MessageTypeStartNextRound    MessageType = "start_next_round"
	MessageTypeStartNewMatch     MessageType = "start_new_match"
	MessageTypePlaceCard         MessageType = "place_card"
	MessageTypeMoveCard          MessageType = "move_card"
	MessageTypeFlipCard          MessageType = "flip_card"
	MessageTypeAddCardStatus     MessageType = "add_status"
	MessageTypeRemoveCardStatus  MessageType = "remove_status"

	// Server to client messages
	MessageTypeAuthResponse   MessageType = "auth_response"
	MessageTypeSessionCreated MessageType = "session_created"
	MessageTypeSessionJoined  MessageType = "session_joined"
	MessageTypeSessionLeft    MessageType = "session_left"
	MessageTypeSessionList    MessageType = "session_list"
	MessageTypeStateUpdate    MessageType = "state_update"
	MessageTypeError          MessageType = "error"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
