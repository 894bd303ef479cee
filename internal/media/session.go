package media

const (
	// DefaultChunkSize is the size of each transmitted byte range. The final
	// chunk of an upload may be shorter.
	DefaultChunkSize = 4 * 1024 * 1024 // 4 MiB

	// DefaultResumableThreshold is the file size above which the resumable
	// session protocol applies. Files at or below it must go through the
	// dashboard's direct upload instead.
	DefaultResumableThreshold = 1024 * 1024 * 1024 // 1 GiB
)

// Status is the lifecycle state of an upload session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Terminal reports whether no further chunk or resume operations are valid
// against a session in this state.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Session describes one resumable upload. The server is the source of truth
// for Offset: it is only ever set from server responses, never from local
// arithmetic.
type Session struct {
	ID          string `json:"sessionId"`
	FileName    string `json:"fileName"`
	TotalSize   int64  `json:"totalSize"`
	Offset      int64  `json:"offset"`
	Status      Status `json:"status"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`

	// PostID is the publishable media object created by a successful
	// finish call. Set only on completed sessions.
	PostID string `json:"postId,omitempty"`
}

// Remaining returns the number of bytes the server has not yet confirmed.
func (s Session) Remaining() int64 {
	return s.TotalSize - s.Offset
}
