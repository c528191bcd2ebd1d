package chat

import "time"

// Session identifies one proposal conversation. It lives as long as the process.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
