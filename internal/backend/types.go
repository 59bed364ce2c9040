package backend

import "fmt"

// CreateSessionResponse is the create_session reply payload.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// ChatRequest is the chat exchange request payload.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatReply is the chat exchange success payload. BotMessage may be empty
// when the server produced no reply text; ProductID is set only when the
// exchange surfaced a product context.
type ChatReply struct {
	SessionID  string `json:"session_id,omitempty"`
	BotMessage string `json:"bot_message,omitempty"`
	ProductID  string `json:"product_id,omitempty"`
}

// HistoryEntry is one element of the history reply.
type HistoryEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// errorDetail is the structured error body on non-success statuses.
type errorDetail struct {
	Detail string `json:"detail"`
}

// ServerError reports a response the service returned with a non-success
// status. Detail is empty when the body carried no parseable detail field.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Detail)
}
