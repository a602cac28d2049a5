// Package session keeps the per-user editing state (which instance is
// selected, which style source is picked, whether text is being edited) so a
// user can come back to a project where they left it.
//
// Backends:
//   - [MemoryStore]: in-process storage for a single server and tests
//   - [RedisStore]: shared storage for multi-instance deployments
//   - [FileStore]: JSON files for the CLI
//
// # Usage
//
//	store := session.NewMemoryStore()
//
//	sess := session.New("project-1", session.DefaultTTL)
//	sess.Selection = ed.Selection()
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/studio/pkg/editor"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL. Stores
	// delete expired sessions when they encounter them.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// Session is one user's editing context on one project.
type Session struct {
	ID        string           `json:"id"`
	ProjectID string           `json:"project_id"`
	Selection editor.Selection `json:"selection"`
	ExpiresAt time.Time        `json:"expires_at"`
	CreatedAt time.Time        `json:"created_at"`
}

// New creates a session on projectID that lives for ttl.
func New(projectID string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Extend pushes the expiry to ttl from now.
func (s *Session) Extend(ttl time.Duration) {
	s.ExpiresAt = time.Now().Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID. It returns ErrNotFound when the
	// session does not exist and ErrExpired when it has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
