package adapters

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/simone-trubian/medscribe/internal/core/domain"
)

// Spool stages uploads on disk before they are read into memory. A spooled
// file never outlives the request that created it.
type Spool struct {
	fs       afero.Fs
	dir      string
	maxBytes int64
}

func NewSpool(fs afero.Fs, dir string, maxBytes int64) *Spool {
	return &Spool{fs: fs, dir: dir, maxBytes: maxBytes}
}

// Receive copies src into a spool file, reads it back fully and deletes it.
// Uploads larger than maxBytes fail with an InputError.
func (s *Spool) Receive(ctx context.Context, src io.Reader, filename, mediaType string) (*domain.Upload, error) {
	if err := s.fs.MkdirAll(s.dir, 0o700); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}

	path := filepath.Join(s.dir, uuid.NewString())
	f, err := s.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	defer func() {
		if err := s.fs.Remove(path); err != nil {
			slog.WarnContext(ctx, "failed to remove spool file", "path", path, "error", err)
		}
	}()

	limit := s.maxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	n, err := io.Copy(f, io.LimitReader(src, limit+1))
	closeErr := f.Close()
	if err != nil {
		return nil, fmt.Errorf("spool upload: %w", err)
	}
	if closeErr != nil {
		return nil, fmt.Errorf("spool upload: %w", closeErr)
	}
	if n > limit {
		return nil, &domain.InputError{Kind: domain.InputTooLarge, MediaType: mediaType}
	}

	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read spool file: %w", err)
	}

	return &domain.Upload{
		Filename:  filename,
		MediaType: mediaType,
		Data:      data,
	}, nil
}
