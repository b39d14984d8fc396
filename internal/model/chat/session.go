package chat

import "time"

// Session captures a transient anonymous conversation. Nothing survives a
// process restart; discarding the session is the only way to clear history.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
