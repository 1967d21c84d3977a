package parser

import "errors"

var (
	// ErrNotFound means the bookmark export file does not exist.
	ErrNotFound = errors.New("bookmark file not found")

	// ErrInvalidFormat means the markup carries no root DL container
	// and therefore is not a Netscape bookmark file.
	ErrInvalidFormat = errors.New("not a valid bookmark file")
)
