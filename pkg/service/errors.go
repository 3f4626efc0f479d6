package service

import "errors"

// ErrBadSubmission marks submissions that can never be scored.
var ErrBadSubmission = errors.New("bad submission")
