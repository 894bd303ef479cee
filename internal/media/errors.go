package media

import (
	"errors"
	"fmt"
)

// ErrBelowThreshold is returned by StartUpload for files that must use the
// direct (non-resumable) upload path instead. It is raised before any
// network call is made.
var ErrBelowThreshold = errors.New("file is below the resumable upload threshold")

// ErrTerminal is returned when an operation is attempted against a session
// that has already completed or failed.
var ErrTerminal = errors.New("session is in a terminal state")

// UploadError reports a failed upload operation together with the session
// context needed for a manual retry or resume decision. Nothing is retried
// internally.
type UploadError struct {
	Op        string // "start", "chunk", "finish" or "resume"
	SessionID string
	Offset    int64
	Status    Status
	Err       error
}

func (e *UploadError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("upload %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("upload %s failed (session %s, offset %d, status %s): %v",
		e.Op, e.SessionID, e.Offset, e.Status, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}
