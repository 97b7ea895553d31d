package upload

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jmpanozzoz/tachyon-api/binder"
)

// Stored describes a persisted upload.
type Stored struct {
	Filename     string
	Size         int64
	MIMEType     string
	Extension    string
	RelativePath string
}

// Storage persists bound uploads. Backends share path semantics: forward
// slashes, relative to the backend's root, no traversal outside it.
type Storage interface {
	// Save writes the upload under path and returns its metadata.
	Save(ctx context.Context, f *binder.File, path string) (*Stored, error)
	// Delete removes a stored file.
	Delete(ctx context.Context, path string) error
	// Exists reports whether a file exists at path.
	Exists(ctx context.Context, path string) bool
	// URL returns the public URL for a stored file.
	URL(path string) string
}

// SniffMIMEType detects the upload's media type from its leading bytes
// rather than trusting the client-declared header, then rewinds the file so
// the caller can still read it from the start.
func SniffMIMEType(f *binder.File) (string, error) {
	if f == nil {
		return "", ErrNilFile
	}

	// http.DetectContentType reads at most 512 bytes.
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if err != nil && err != io.EOF {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return http.DetectContentType(buf[:n]), nil
}

// ValidateSize rejects uploads larger than maxBytes.
func ValidateSize(f *binder.File, maxBytes int64) error {
	if f == nil {
		return ErrNilFile
	}
	if f.Size > maxBytes {
		return ErrFileTooLarge
	}
	return nil
}

// ValidateMIMEType rejects uploads whose sniffed media type is not in the
// allowed list. An empty list allows everything.
func ValidateMIMEType(f *binder.File, allowed ...string) error {
	if f == nil {
		return ErrNilFile
	}
	if len(allowed) == 0 {
		return nil
	}

	mimeType, err := SniffMIMEType(f)
	if err != nil {
		return err
	}
	if slices.Contains(allowed, mimeType) {
		return nil
	}
	return ErrMIMETypeNotAllowed
}

var imageMIMETypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
	"image/bmp":     true,
	"image/tiff":    true,
	"image/avif":    true,
}

// IsImage reports whether the upload is an image, by sniffed media type with
// an extension fallback when sniffing yields a generic type.
func IsImage(f *binder.File) bool {
	if f == nil {
		return false
	}

	if mimeType, err := SniffMIMEType(f); err == nil && imageMIMETypes[mimeType] {
		return true
	}

	switch strings.ToLower(filepath.Ext(f.Filename)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".bmp", ".tiff", ".tif", ".avif":
		return true
	default:
		return false
	}
}

// SanitizeFilename strips path components and NUL bytes from a
// client-supplied filename so it cannot escape the storage root.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\x00", "")

	if name == "" || name == "." || name == ".." || name == "/" {
		return "unnamed"
	}
	return name
}

// cleanPath normalizes a storage path and rejects traversal attempts.
func cleanPath(path string) (string, error) {
	path = strings.TrimPrefix(filepath.ToSlash(path), "/")
	if path == "" || strings.Contains(path, "..") {
		return "", ErrInvalidPath
	}
	return path, nil
}
