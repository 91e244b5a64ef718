package port

import "errors"

var (
	ErrNotFound    = errors.New("not found")
	ErrUnreachable = errors.New("unreachable")
)
