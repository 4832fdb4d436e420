package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound      = errors.New("record not found")
	ErrStaleSession  = errors.New("session was modified by another writer")
	ErrSessionExists = errors.New("session already exists for pair")
)
