package util

import "errors"

// Sentinel errors for common failure modes
var (
	// ErrUnreadable indicates a file could not be opened or read
	// (permissions, deleted mid-scan, locked by another process)
	ErrUnreadable = errors.New("unreadable file")

	// ErrCorruptStore indicates the catalog database is missing or damaged
	ErrCorruptStore = errors.New("corrupt catalog store")

	// ErrRunInProgress indicates another scan or backup holds the run lock
	ErrRunInProgress = errors.New("run already in progress")

	// ErrNotFound indicates a required resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidConfig indicates invalid configuration
	ErrInvalidConfig = errors.New("invalid configuration")
)
