package content

import "errors"

var (
	// ErrCollectionNotFound is returned when the collection directory does not exist.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrInvalidCollection indicates a collection name that escapes the content root.
	ErrInvalidCollection = errors.New("invalid collection")
	// ErrMalformedEntry wraps front matter and data file decoding failures.
	ErrMalformedEntry = errors.New("malformed entry")
)
