// Package store provides session checkpoint storage for Vibe BPMN Studio.
//
// The session store is the only shared mutable structure of the pipeline. It
// maps a session identifier to the latest pipeline state so a suspended run
// can be resumed by a later request carrying the same id. Diagrams are not
// persisted beyond this in-memory state.
package store

import "github.com/PigStep/Vibe-BPMN-studio/internal/models"

// Store defines keyed checkpoint storage for pipeline session state.
type Store interface {
	// GetSession returns the state for a session id, or nil if none exists.
	GetSession(sessionID string) (*models.SessionState, error)

	// SaveSession writes the latest state for its session id.
	SaveSession(state models.SessionState) error

	// DeleteSession removes the state for a session id. Deleting a missing
	// session is not an error.
	DeleteSession(sessionID string) error

	// Reset removes all sessions. Intended for test isolation and teardown.
	Reset() error
}
