package media

import "math"

// Progress is a snapshot of upload completion, derived entirely from the
// session's server-confirmed offset.
type Progress struct {
	SessionID string `json:"sessionId"`
	Offset    int64  `json:"offset"`
	TotalSize int64  `json:"totalSize"`
}

// Percent returns the completion percentage, rounded and clamped to [0, 100].
func (p Progress) Percent() int {
	if p.TotalSize <= 0 {
		return 0
	}
	pct := int(math.Round(float64(p.Offset) / float64(p.TotalSize) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ProgressFunc receives a progress snapshot after every successfully
// acknowledged chunk and after resume negotiation. It is called from the
// goroutine running the transfer loop.
type ProgressFunc func(Progress)
