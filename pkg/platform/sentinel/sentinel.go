package sentinel

import "errors"

// Infrastructure facts returned (optionally wrapped) by stores, lockers and
// publishers. Services translate them into coded domain errors; they never
// reach the HTTP layer directly.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrLocked   = errors.New("locked")
)
