package media

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Source is the local media file being uploaded. Reads are positional so the
// transfer loop can address the exact byte range the server expects without
// carrying seek state.
type Source struct {
	// Name is the file name sent to the server at session creation.
	Name string

	// Path is the local path the source was opened from. Empty for
	// in-memory sources; used only for checkpoint bookkeeping.
	Path string

	// Size is the total size in bytes, fixed for the life of the upload.
	Size int64

	r      io.ReaderAt
	closer io.Closer
}

// OpenFile opens the file at path as an upload source. The caller owns the
// returned source and must Close it when the upload reaches a terminal or
// paused state.
func OpenFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to stat media file %s: %w", path, err)
	}

	return &Source{
		Name:   filepath.Base(path),
		Path:   path,
		Size:   info.Size(),
		r:      f,
		closer: f,
	}, nil
}

// NewSource wraps an in-memory byte slice as an upload source.
func NewSource(name string, data []byte) *Source {
	return &Source{
		Name: name,
		Size: int64(len(data)),
		r:    bytes.NewReader(data),
	}
}

// ReadRange reads exactly n bytes starting at offset. A short read is an
// error: the transfer loop must never send a range that differs from what it
// announced to the server.
func (s *Source) ReadRange(offset, n int64) ([]byte, error) {
	if offset < 0 || n < 0 || offset+n > s.Size {
		return nil, fmt.Errorf("range [%d, %d) is outside file of size %d", offset, offset+n, s.Size)
	}

	buf := make([]byte, n)
	read, err := s.r.ReadAt(buf, offset)
	if err != nil && !(err == io.EOF && int64(read) == n) {
		return nil, fmt.Errorf("failed to read %d bytes at offset %d: %w", n, offset, err)
	}
	if int64(read) != n {
		return nil, fmt.Errorf("short read at offset %d: got %d bytes, want %d", offset, read, n)
	}

	return buf, nil
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
