package storage

import "errors"

var (
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrSessionNotFound = errors.New("session not found")
)

var (
	ErrFileRequired    = errors.New("file is required")
	ErrFileTooLarge    = errors.New("file size exceeds limit")
	ErrInvalidFileType = errors.New("invalid file type")
	ErrUnmanagedURL    = errors.New("url does not point into the managed bucket")
)
