package service

import "errors"

// ErrConflict marks writes rejected because the row already exists.
var ErrConflict = errors.New("conflict")
