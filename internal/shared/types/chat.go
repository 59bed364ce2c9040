package types

// Role identifies the author of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry. Immutable once created; the transcript
// is append-only and insertion order is display order.
type Message struct {
	Role    Role   `json:"role"`
	Message string `json:"message"`
}

// Snapshot is the persisted session state. Exactly one snapshot exists in
// storage while a session is active; it is overwritten whole on every
// mutation and deleted when the session is reset or stopped.
type Snapshot struct {
	SessionID string    `json:"sessionId"`
	ProductID string    `json:"productId,omitempty"`
	Messages  []Message `json:"messages"`
}
