package upload

import "errors"

var (
	ErrNilFile            = errors.New("upload: nil file")
	ErrInvalidPath        = errors.New("upload: invalid path")
	ErrInvalidConfig      = errors.New("upload: invalid storage configuration")
	ErrFileNotFound       = errors.New("upload: file not found")
	ErrFileTooLarge       = errors.New("upload: file exceeds the size limit")
	ErrMIMETypeNotAllowed = errors.New("upload: media type is not allowed")
)
