package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// RoomConflictError reports that a candidate meeting would double-book a room.
// Titles holds the parent activity title of every meeting already occupying the
// slot, so callers can tell the user exactly what is booked there.
type RoomConflictError struct {
	RoomID string
	Titles []string
}

func (e *RoomConflictError) Error() string {
	return fmt.Sprintf("room is already booked by: %s", strings.Join(e.Titles, ", "))
}
