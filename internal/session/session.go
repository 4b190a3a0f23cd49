package session

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrSessionInvalid  = errors.New("session invalid")
)

// Session lifetime limits. A session dies when either bound is crossed; the
// two checks are independent.
const (
	IdleTimeout = 30 * time.Minute
	MaxLifetime = 8 * time.Hour
)

// Session represents an authenticated user session. Validity is computed
// from stored timestamps at access time; nothing expires sessions on a timer.
type Session struct {
	ID         string
	TenantID   string
	UserID     string
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
	LastSeenAt time.Time
}

// IsIdle reports whether the session has been inactive past the idle limit.
func (s *Session) IsIdle(now time.Time) bool {
	return now.Sub(s.LastSeenAt) >= IdleTimeout
}

// IsOverMaxLifetime reports whether the session's total age exceeds the
// absolute limit, regardless of activity.
func (s *Session) IsOverMaxLifetime(now time.Time) bool {
	return now.Sub(s.CreatedAt) >= MaxLifetime
}

// IsValidAt reports whether the session is still usable at the given instant.
func (s *Session) IsValidAt(now time.Time) bool {
	return !s.IsIdle(now) && !s.IsOverMaxLifetime(now)
}

// Repository defines the interface for session persistence
type Repository interface {
	// Create creates a new session
	Create(ctx context.Context, session *Session) error

	// Get retrieves a session by ID
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Touch updates the session's last seen time
	Touch(ctx context.Context, sessionID string, seenAt time.Time) error

	// Delete deletes a session
	Delete(ctx context.Context, sessionID string) error

	// DeleteByUserID deletes all sessions for a user
	DeleteByUserID(ctx context.Context, userID string) (int, error)

	// DeleteExpired deletes sessions past either lifetime bound
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
