package repository

import "errors"

// Sentinel kinds for violation log errors.
var (
	ErrClosed = errors.New("violation store closed")
)
