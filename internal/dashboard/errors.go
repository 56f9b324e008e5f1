package dashboard

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNoCurrentResume  = errors.New("no current resume")
	ErrStoreUnavailable = errors.New("object store not configured")
)
