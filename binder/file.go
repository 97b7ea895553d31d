package binder

import (
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
)

// File is an uploaded multipart part. It exposes the open part's content for
// streaming reads rather than buffering it: Read, ReadAt, Seek, and Close
// operate directly on the underlying part. The binder tracks every opened
// File on the bind result so handles are released when the request
// completes, whether binding and handling succeeded or not.
type File struct {
	// Filename is the name the client supplied for the part.
	Filename string
	// Size is the part size in bytes.
	Size int64
	// Header holds the part's MIME header fields.
	Header textproto.MIMEHeader

	content multipart.File
}

// ContentType returns the part's media type, falling back to a guess from
// the filename extension when no Content-Type header was sent.
func (f *File) ContentType() string {
	if ct := f.Header.Get("Content-Type"); ct != "" {
		media, _, err := mime.ParseMediaType(ct)
		if err == nil {
			return media
		}
	}
	return mime.TypeByExtension(filepath.Ext(f.Filename))
}

func (f *File) Read(p []byte) (int, error) {
	return f.content.Read(p)
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	return f.content.ReadAt(p, off)
}

func (f *File) Seek(offset int64, whence int) (int64, error) {
	return f.content.Seek(offset, whence)
}

func (f *File) Close() error {
	return f.content.Close()
}

// openFile opens a multipart header into a File ready for reading.
func openFile(header *multipart.FileHeader) (*File, error) {
	content, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &File{
		Filename: header.Filename,
		Size:     header.Size,
		Header:   header.Header,
		content:  content,
	}, nil
}

var (
	_ io.ReadSeekCloser = (*File)(nil)
	_ io.ReaderAt       = (*File)(nil)
)
