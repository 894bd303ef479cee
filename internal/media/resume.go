package media

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Resume reattaches the controller to a previously started session. It
// queries the server for the confirmed offset and file identity, adopts them,
// and leaves the controller paused at that offset; the caller then runs
// Transfer to continue, which reads src starting at the resumed offset.
//
// The server can only vouch for the file's size and name, so those are
// cross-checked against src where the server reports them. Byte identity of
// src with the originally uploaded file cannot be verified and is trusted;
// resuming with different content corrupts the remote media object.
func (c *Controller) Resume(ctx context.Context, sessionID string, src *Source) (Progress, error) {
	c.mu.Lock()
	if c.sess.Status.Terminal() {
		err := &UploadError{Op: "resume", SessionID: c.sess.ID, Offset: c.sess.Offset, Status: c.sess.Status, Err: ErrTerminal}
		c.mu.Unlock()
		return Progress{}, err
	}
	c.mu.Unlock()

	if sessionID == "" {
		return Progress{}, fmt.Errorf("session id is required to resume")
	}

	// Pause requests predating this attempt do not apply to it.
	c.pauseRequested.Store(false)

	st, err := c.client.SessionStatus(ctx, sessionID)
	if err != nil {
		c.setStatus(StatusFailed)
		return Progress{}, &UploadError{Op: "resume", SessionID: sessionID, Status: StatusFailed, Err: err}
	}

	if st.FileSize != src.Size {
		c.setStatus(StatusFailed)
		return Progress{}, &UploadError{
			Op:        "resume",
			SessionID: sessionID,
			Offset:    st.StartOffset,
			Status:    StatusFailed,
			Err:       fmt.Errorf("file size mismatch: session expects %d bytes, %s is %d", st.FileSize, src.Name, src.Size),
		}
	}
	if st.FileName != "" && st.FileName != src.Name {
		c.setStatus(StatusFailed)
		return Progress{}, &UploadError{
			Op:        "resume",
			SessionID: sessionID,
			Offset:    st.StartOffset,
			Status:    StatusFailed,
			Err:       fmt.Errorf("file name mismatch: session was started for %s, got %s", st.FileName, src.Name),
		}
	}

	fileName := st.FileName
	if fileName == "" {
		fileName = src.Name
	}

	c.src = src
	c.mu.Lock()
	c.sess = Session{
		ID:        sessionID,
		FileName:  fileName,
		TotalSize: st.FileSize,
		Offset:    st.StartOffset,
		Status:    StatusPaused,
	}
	sess := c.sess
	c.mu.Unlock()

	if c.checkpoints != nil {
		cp, cpErr := c.checkpoints.FindBySession(sessionID)
		if cpErr != nil && src.Path != "" {
			// The checkpoint may carry a stale session id for this file.
			// Reuse it rather than minting a second one that would leave
			// the stale entry behind after completion.
			cp, cpErr = c.checkpoints.FindByPath(src.Path)
		}
		if cpErr == nil {
			c.checkpointID = cp.ID
			c.SetPostMetadata(cp.Title, cp.Description)
		} else {
			c.checkpointID = uuid.NewString()
		}
		c.saveCheckpoint()
	}

	p := Progress{SessionID: sess.ID, Offset: sess.Offset, TotalSize: sess.TotalSize}
	if c.onProgress != nil {
		c.onProgress(p)
	}

	return p, nil
}

// SetPostMetadata sets the title and description forwarded to the finish
// call. Resume negotiation cannot recover them from the server, so callers
// continuing a resumed session re-supply them here.
func (c *Controller) SetPostMetadata(title, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess.Status.Terminal() {
		return
	}
	c.sess.Title = title
	c.sess.Description = description
}
