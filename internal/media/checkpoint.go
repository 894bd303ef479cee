package media

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Checkpoint is the locally persisted descriptor of an in-flight upload.
// The upload protocol itself keeps no durable client-side state; checkpoints
// exist so the CLI can resume after a process restart without the user
// copying session ids around. The file at Path is re-opened on resume and
// trusted to be unchanged.
type Checkpoint struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"sessionId"`
	FilePath    string    `json:"filePath,omitempty"`
	FileName    string    `json:"fileName"`
	TotalSize   int64     `json:"totalSize"`
	Offset      int64     `json:"offset"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// CheckpointStore persists checkpoints as JSON files, one per upload.
type CheckpointStore struct {
	dir string
}

// DefaultCheckpointDir returns ~/.postline/uploads.
func DefaultCheckpointDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".postline", "uploads"), nil
}

// NewCheckpointStore creates a store rooted at dir. The directory is created
// lazily on first save.
func NewCheckpointStore(dir string) *CheckpointStore {
	return &CheckpointStore{dir: dir}
}

// Save writes or overwrites a checkpoint.
func (s *CheckpointStore) Save(cp *Checkpoint) error {
	if cp.ID == "" {
		return fmt.Errorf("checkpoint is missing an id")
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.dir, err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	path := s.path(cp.ID)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write checkpoint to %s: %w", path, err)
	}

	return nil
}

// Load reads the checkpoint with the given id.
func (s *CheckpointStore) Load(id string) (*Checkpoint, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", id, err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", id, err)
	}

	return &cp, nil
}

// List returns all stored checkpoints.
func (s *CheckpointStore) List() ([]*Checkpoint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint directory %s: %w", s.dir, err)
	}

	var cps []*Checkpoint
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		cp, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		cps = append(cps, cp)
	}
	return cps, nil
}

// FindByPath returns the checkpoint recorded for the given local file path.
func (s *CheckpointStore) FindByPath(path string) (*Checkpoint, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	cps, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, cp := range cps {
		if cp.FilePath == abs || cp.FilePath == path {
			return cp, nil
		}
	}
	return nil, fmt.Errorf("no checkpoint found for %s", path)
}

// FindBySession returns the checkpoint recorded for the given session id.
func (s *CheckpointStore) FindBySession(sessionID string) (*Checkpoint, error) {
	cps, err := s.List()
	if err != nil {
		return nil, err
	}
	for _, cp := range cps {
		if cp.SessionID == sessionID {
			return cp, nil
		}
	}
	return nil, fmt.Errorf("no checkpoint found for session %s", sessionID)
}

// Delete removes a checkpoint. Missing files are not an error.
func (s *CheckpointStore) Delete(id string) error {
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove checkpoint %s: %w", id, err)
	}
	return nil
}

func (s *CheckpointStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// saveCheckpoint persists the current session descriptor. Best effort: a
// checkpoint write failure must not abort an otherwise healthy transfer.
func (c *Controller) saveCheckpoint() {
	if c.checkpoints == nil || c.checkpointID == "" {
		return
	}

	sess := c.Session()
	filePath := ""
	if c.src != nil && c.src.Path != "" {
		if abs, err := filepath.Abs(c.src.Path); err == nil {
			filePath = abs
		} else {
			filePath = c.src.Path
		}
	}

	now := time.Now().UTC()
	cp := &Checkpoint{
		ID:          c.checkpointID,
		SessionID:   sess.ID,
		FilePath:    filePath,
		FileName:    sess.FileName,
		TotalSize:   sess.TotalSize,
		Offset:      sess.Offset,
		Title:       sess.Title,
		Description: sess.Description,
		UpdatedAt:   now,
	}
	if prev, err := c.checkpoints.Load(c.checkpointID); err == nil {
		cp.CreatedAt = prev.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	_ = c.checkpoints.Save(cp)
}

func (c *Controller) dropCheckpoint() {
	if c.checkpoints == nil || c.checkpointID == "" {
		return
	}
	_ = c.checkpoints.Delete(c.checkpointID)
}
