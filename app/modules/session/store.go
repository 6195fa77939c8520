// Package session manages dashboard login sessions: a pluggable server-side
// store plus the signed cookie token that references it.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound         = errors.New("session not found")
	ErrInvalidToken     = errors.New("invalid session token")
	ErrExpiredToken     = errors.New("expired session token")
	ErrInvalidSignature = errors.New("invalid token signature")
)

// Session is one logged-in dashboard user.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry at the given time.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the session backend contract. The in-memory implementation is a
// stand-in for a shared backend (Redis, the database); handlers only ever see
// this interface so swapping the implementation is a wiring change.
type Store interface {
	Create(ctx context.Context, userID string, ttl time.Duration) (Session, error)
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
}
