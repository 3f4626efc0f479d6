package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrPromptNotFound is returned when a slug is not part of the catalog.
var ErrPromptNotFound = errors.New("prompt not found")
