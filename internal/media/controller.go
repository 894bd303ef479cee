// Package media implements the resumable large-media upload client used for
// video files too large to send in one request. An upload is a server-tracked
// session: the file is transmitted as sequential chunks, the server confirms
// each one by returning the next expected offset, and a finish call turns the
// committed bytes into a publishable media object. Interrupted uploads can be
// reattached later through Resume.
package media

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Controller drives one upload session through its lifecycle:
// idle -> uploading -> {paused, completed, failed}. Completed and failed are
// terminal. A controller owns its session descriptor exclusively; only
// Pause, Session and Status may be called from other goroutines while a
// transfer is running.
type Controller struct {
	client *Client
	src    *Source

	chunkSize int64
	threshold int64

	onProgress ProgressFunc

	checkpoints  *CheckpointStore
	checkpointID string

	pauseRequested atomic.Bool

	mu   sync.Mutex
	sess Session
}

// Option configures a Controller.
type Option func(*Controller)

// WithChunkSize overrides the transmitted chunk size.
func WithChunkSize(n int64) Option {
	return func(c *Controller) { c.chunkSize = n }
}

// WithResumableThreshold overrides the minimum file size accepted by
// StartUpload.
func WithResumableThreshold(n int64) Option {
	return func(c *Controller) { c.threshold = n }
}

// WithProgressFunc registers a callback invoked after every acknowledged
// chunk and after resume negotiation.
func WithProgressFunc(fn ProgressFunc) Option {
	return func(c *Controller) { c.onProgress = fn }
}

// WithCheckpoints enables local persistence of the session descriptor so an
// interrupted upload can be resumed after a process restart. The upload
// protocol itself keeps no durable state; this is purely client-side
// bookkeeping.
func WithCheckpoints(store *CheckpointStore) Option {
	return func(c *Controller) { c.checkpoints = store }
}

// NewController creates an upload controller in the idle state.
func NewController(client *Client, opts ...Option) *Controller {
	c := &Controller{
		client:    client,
		chunkSize: DefaultChunkSize,
		threshold: DefaultResumableThreshold,
		sess:      Session{Status: StatusIdle},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns a snapshot of the session descriptor.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Status returns the current lifecycle state.
func (c *Controller) Status() Status {
	return c.Session().Status
}

// StartUpload creates a new session for src and transfers it until the
// upload completes, fails, or is paused. Files at or below the resumable
// threshold are rejected before any network call; callers must use the
// direct upload path for those.
func (c *Controller) StartUpload(ctx context.Context, src *Source, title, description string) error {
	c.mu.Lock()
	if c.sess.Status != StatusIdle {
		status := c.sess.Status
		c.mu.Unlock()
		return fmt.Errorf("controller is already attached to a session (status %s)", status)
	}
	c.mu.Unlock()

	// Pause requests predating this attempt do not apply to it; anything
	// from here on does, including one racing the start-session call.
	c.pauseRequested.Store(false)

	if src.Size <= c.threshold {
		return &UploadError{
			Op:     "start",
			Status: StatusIdle,
			Err:    fmt.Errorf("%w: %s is %d bytes, threshold is %d", ErrBelowThreshold, src.Name, src.Size, c.threshold),
		}
	}

	resp, err := c.client.StartSession(ctx, src.Name, src.Size, title, description)
	if err != nil {
		c.setStatus(StatusFailed)
		return &UploadError{Op: "start", Status: StatusFailed, Err: err}
	}

	c.src = src
	c.mu.Lock()
	c.sess = Session{
		ID:          resp.UploadSessionID,
		FileName:    src.Name,
		TotalSize:   src.Size,
		Offset:      0,
		Status:      StatusUploading,
		Title:       title,
		Description: description,
	}
	c.mu.Unlock()

	if c.checkpoints != nil {
		c.checkpointID = uuid.NewString()
		c.saveCheckpoint()
	}

	return c.Transfer(ctx)
}

// Pause requests a cooperative stop. The chunk currently in flight is
// allowed to finish; the loop observes the flag before issuing the next one,
// so pause latency is bounded by one round trip. A pause requested while the
// session is still being created stops the upload before the first chunk.
// Transfer continues the session afterwards.
func (c *Controller) Pause() {
	c.pauseRequested.Store(true)
}

// Abandon irreversibly gives up on a session that is not actively
// transferring; a running transfer is cancelled through its context instead.
// No server-side abort call exists in the protocol, so the partially
// uploaded session is left to expire server-side.
func (c *Controller) Abandon() {
	c.mu.Lock()
	if c.sess.Status.Terminal() {
		c.mu.Unlock()
		return
	}
	c.sess.Status = StatusFailed
	c.mu.Unlock()
	c.dropCheckpoint()
}

// Transfer runs the chunk loop from the session's current offset until the
// upload completes, fails, or is paused, finalizing automatically once the
// server has confirmed every byte. It is called by StartUpload and directly
// by callers continuing a paused or resumed session.
func (c *Controller) Transfer(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.sess.Status.Terminal():
		err := &UploadError{Op: "chunk", SessionID: c.sess.ID, Offset: c.sess.Offset, Status: c.sess.Status, Err: ErrTerminal}
		c.mu.Unlock()
		return err
	case c.sess.ID == "":
		c.mu.Unlock()
		return fmt.Errorf("no session attached: call StartUpload or Resume first")
	}
	c.sess.Status = StatusUploading
	sess := c.sess
	c.mu.Unlock()

	for sess.Offset < sess.TotalSize {
		if err := ctx.Err(); err != nil {
			return c.fail("chunk", err)
		}

		if c.pauseRequested.Load() {
			// Consume the request so a later Transfer continues.
			c.pauseRequested.Store(false)
			c.setStatus(StatusPaused)
			c.saveCheckpoint()
			return nil
		}

		n := sess.Remaining()
		if n > c.chunkSize {
			n = c.chunkSize
		}

		data, err := c.src.ReadRange(sess.Offset, n)
		if err != nil {
			return c.fail("chunk", err)
		}

		resp, err := c.client.SendChunk(ctx, sess.ID, sess.Offset, data)
		if err != nil {
			return c.fail("chunk", err)
		}

		// The server's offset is authoritative and may differ from
		// sess.Offset+n (partial acceptance, deduplication). It must
		// still advance and stay within the file, or the loop could
		// stall or read past the end.
		if resp.StartOffset <= sess.Offset || resp.StartOffset > sess.TotalSize {
			return c.fail("chunk", fmt.Errorf("server returned offset %d, expected a value in (%d, %d]",
				resp.StartOffset, sess.Offset, sess.TotalSize))
		}

		sess.Offset = resp.StartOffset
		c.setOffset(resp.StartOffset)
		c.saveCheckpoint()
		c.emitProgress()
	}

	resp, err := c.client.FinishSession(ctx, sess.ID, sess.Title, sess.Description)
	if err != nil {
		// The bytes remain committed server-side, but no publishable
		// object exists. Terminal; nothing to retry here.
		return c.fail("finish", err)
	}

	c.mu.Lock()
	c.sess.PostID = resp.PostID
	c.sess.Status = StatusCompleted
	c.mu.Unlock()
	c.dropCheckpoint()
	return nil
}

func (c *Controller) fail(op string, err error) error {
	c.mu.Lock()
	c.sess.Status = StatusFailed
	uerr := &UploadError{
		Op:        op,
		SessionID: c.sess.ID,
		Offset:    c.sess.Offset,
		Status:    StatusFailed,
		Err:       err,
	}
	c.mu.Unlock()
	return uerr
}

func (c *Controller) setStatus(status Status) {
	c.mu.Lock()
	c.sess.Status = status
	c.mu.Unlock()
}

func (c *Controller) setOffset(offset int64) {
	c.mu.Lock()
	c.sess.Offset = offset
	c.mu.Unlock()
}

func (c *Controller) emitProgress() {
	if c.onProgress == nil {
		return
	}
	sess := c.Session()
	c.onProgress(Progress{
		SessionID: sess.ID,
		Offset:    sess.Offset,
		TotalSize: sess.TotalSize,
	})
}
