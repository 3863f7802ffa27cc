package storage

import "errors"

// Sentinel errors shared by all Storage implementations. Callers compare
// with errors.Is; the disk backend wraps ErrStorageInit and
// ErrFileOperation with the underlying cause.
var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrStorageInit     = errors.New("storage initialization failed")
	ErrFileOperation   = errors.New("file operation failed")
)
