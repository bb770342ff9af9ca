package site

import "errors"

var (
	// ErrStaticNotDir signals that the configured static path is not a directory.
	ErrStaticNotDir = errors.New("static path is not a directory")
	ErrWatchClosed  = errors.New("watcher closed")
)
