package domain

import "time"

// Session is the transient OAuth install session, keyed by the anti-replay
// state nonce. It only lives for the duration of one authorize round trip.
type Session struct {
	State     string    `json:"state"`
	Shop      string    `json:"shop"`
	CreatedAt time.Time `json:"created_at"`
}
