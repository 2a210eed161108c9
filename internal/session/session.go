// Package session holds the shared user context of the web front-end.
//
// A browser session is a random id stored in a cookie and mapped, through a
// Store, to the hub API session obtained at login plus the cached user
// profile. Two backends are provided:
//   - memory: in-process map for development and single instance deployments
//   - redis: shared storage for multi-instance deployments
//
// User preferences (theme, search page size, selected organization) are not
// stored server side. They live in a signed cookie so anonymous visitors get
// them too; see PrefsCodec.
//
// Sessions are written only by login, logout, profile updates and preference
// changes. Every page reads them through Manager.Middleware.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/packagehub/hub-web/internal/hubapi"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the session lifetime used when none is configured.
const DefaultTTL = 30 * 24 * time.Hour

// Session maps a browser cookie to a hub API session.
type Session struct {
	ID           string          `json:"id"`
	HubSessionID string          `json:"hub_session_id"`
	User         *hubapi.Profile `json:"user,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. It returns ErrNotFound when the session
	// does not exist and ErrExpired when it has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session until its ExpiresAt.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions. It may be a no-op for backends with
	// native expiry.
	Cleanup(ctx context.Context) error
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a session for the given hub session and user.
func New(hubSessionID string, user *hubapi.Profile, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Session{
		ID:           id,
		HubSessionID: hubSessionID,
		User:         user,
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
	}, nil
}
