package auth

import (
	"context"
	"fmt"
	"time"
)

// Session is the server-side login state behind the browser cookie. The
// cookie only ever carries the session id; everything else lives here.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry at the given
// instant. Expired sessions are rejected on read, not reaped by a job.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}

type SessionRepository interface {
	Insert(ctx context.Context, session *Session) (err error)
	Find(ctx context.Context, id string) (session *Session, err error)
	Delete(ctx context.Context, id string) (err error)
}

type SessionNotFoundError struct {
	ID string
}

func (err SessionNotFoundError) Error() string {
	return fmt.Sprintf("session with id %q not found", err.ID)
}

type SessionExpiredError struct {
	ID string
}

func (err SessionExpiredError) Error() string {
	return fmt.Sprintf("session with id %q has expired", err.ID)
}
