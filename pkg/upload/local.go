package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmpanozzoz/tachyon-api/binder"
)

// LocalStorage persists uploads on the local filesystem. Every operation is
// confined to the base directory.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage creates the base directory if needed and returns a
// filesystem-backed storage. baseURL prefixes public URLs, e.g. "/files/".
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolving base directory: %w", err)
	}
	if err := os.MkdirAll(absBaseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating base directory: %w", err)
	}

	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &LocalStorage{baseDir: absBaseDir, baseURL: baseURL}, nil
}

func (s *LocalStorage) Save(ctx context.Context, f *binder.File, path string) (*Stored, error) {
	if f == nil {
		return nil, ErrNilFile
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	absPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	mimeType, err := SniffMIMEType(f)
	if err != nil {
		mimeType = "application/octet-stream"
	}

	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	dst, err := os.OpenFile(absPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	written, err := copyWithContext(ctx, dst, f)
	if err != nil {
		_ = dst.Close()
		_ = os.Remove(absPath)
		return nil, err
	}

	relPath, err := filepath.Rel(s.baseDir, absPath)
	if err != nil {
		relPath = path
	}

	return &Stored{
		Filename:     SanitizeFilename(f.Filename),
		Size:         written,
		MIMEType:     mimeType,
		Extension:    filepath.Ext(f.Filename),
		RelativePath: filepath.ToSlash(relPath),
	}, nil
}

func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	absPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidPath, path)
	}

	return os.Remove(absPath)
}

func (s *LocalStorage) Exists(ctx context.Context, path string) bool {
	if ctx.Err() != nil {
		return false
	}
	absPath, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(absPath)
	return err == nil
}

func (s *LocalStorage) URL(path string) string {
	return s.baseURL + strings.TrimPrefix(filepath.ToSlash(filepath.Clean(path)), "/")
}

// resolve maps a storage path to an absolute path and verifies it stays
// inside the base directory.
func (s *LocalStorage) resolve(path string) (string, error) {
	cleaned, err := cleanPath(path)
	if err != nil {
		return "", err
	}

	absPath, err := filepath.Abs(filepath.Join(s.baseDir, filepath.FromSlash(cleaned)))
	if err != nil {
		return "", err
	}
	if absPath != s.baseDir && !strings.HasPrefix(absPath, s.baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return absPath, nil
}

// copyWithContext copies in chunks, checking for cancellation between reads
// so a large abandoned upload stops early.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	var written int64
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			nw, writeErr := dst.Write(buf[:n])
			written += int64(nw)
			if writeErr != nil {
				return written, fmt.Errorf("writing file: %w", writeErr)
			}
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("reading upload: %w", readErr)
		}
	}
}

var _ Storage = (*LocalStorage)(nil)
