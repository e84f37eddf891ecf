package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound = errors.New("no stored data for team and season")
	ErrClosed   = errors.New("store is closed")
)
