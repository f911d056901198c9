package ws

import "encoding/json"

// MessageType constants for the session WebSocket protocol.
const (
	// Client -> Server
	TypeWatchSession = "watch_session"
	TypeLeaveSession = "leave_session"
	TypePing         = "ping"

	// Server -> Client
	TypeSessionState      = "session_state"
	TypeParticipantJoined = "participant_joined"
	TypeSessionStarted    = "session_started"
	TypeResultSubmitted   = "result_submitted"
	TypeSessionFinished   = "session_finished"
	TypeSessionExpired    = "session_expired"
	TypeRankingUpdate     = "ranking_update"
	TypeError             = "error"
	TypePong              = "pong"
)

// Message wraps all WebSocket payloads with type and optional request ID.
type Message struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

// NewMessage marshals payload into a Message. Marshal failure here is a
// programming error (all payload types below are plain structs).
func NewMessage(msgType string, payload interface{}) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Message{Type: msgType, Payload: data}
}

// Client messages (incoming)

type WatchSessionPayload struct {
	SessionID string `json:"session_id"`
}

type LeaveSessionPayload struct {
	SessionID string `json:"session_id"`
}

// Server messages (outgoing)

type ParticipantJoinedPayload struct {
	SessionID        string `json:"session_id"`
	StudentID        string `json:"student_id"`
	ParticipantCount int    `json:"participant_count"`
}

type SessionStartedPayload struct {
	SessionID string `json:"session_id"`
	StartedAt string `json:"started_at"`
}

type ResultSubmittedPayload struct {
	SessionID string `json:"session_id"`
	StudentID string `json:"student_id"`
	Score     int    `json:"score"`
}

type SessionFinishedPayload struct {
	SessionID string `json:"session_id"`
	EndedAt   string `json:"ended_at"`
}

type SessionExpiredPayload struct {
	SessionID string `json:"session_id"`
}

// RankingEntry is one row of a live ranking broadcast.
type RankingEntry struct {
	StudentID string  `json:"student_id"`
	Score     int     `json:"score"`
	Accuracy  float64 `json:"accuracy"`
	Rank      int     `json:"rank"`
}

type RankingUpdatePayload struct {
	SessionID string         `json:"session_id"`
	Entries   []RankingEntry `json:"entries"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
