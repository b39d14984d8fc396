package chat

import "time"

// Speaker values for Turn.Speaker.
const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

// Turn is one message in a conversation. A turn is immutable once created;
// history only ever grows by appending. Crisis replies carry a Resources
// list which takes rendering precedence over Text on the client.
type Turn struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Speaker   string    `json:"speaker"`
	Text      string    `json:"text"`
	Resources []string  `json:"resources,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
