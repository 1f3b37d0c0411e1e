package store

import "errors"

// Errores comunes que devuelven los adapters de storage (memory y postgres).
// Los handlers los comparan con errors.Is sin depender del adapter concreto.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)
