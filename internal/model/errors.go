package model

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrConflict   = errors.New("conflict")
)

// ConflictError carries the reservations that block an admission so
// callers can render them to users.
type ConflictError struct {
	Conflicts []Reservation
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with %d confirmed reservation(s)", len(e.Conflicts))
}

// Unwrap lets errors.Is(err, ErrConflict) match.
func (e *ConflictError) Unwrap() error { return ErrConflict }
