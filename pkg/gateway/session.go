package gateway

import (
	"time"

	"github.com/google/uuid"
)

// Session is a per-call correlation identifier. It exists only for the
// lifetime of one dispatch and is never shared across calls, even for the
// same caller.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionIssuer mints a unique session per inbound call.
type SessionIssuer struct{}

// NewSessionIssuer creates a session issuer.
func NewSessionIssuer() *SessionIssuer {
	return &SessionIssuer{}
}

// Issue mints a fresh session.
func (si *SessionIssuer) Issue() Session {
	return Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}
