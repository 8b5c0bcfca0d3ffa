package session

import "fmt"

// CapacityError is returned when creating a session would exceed the
// configured maximum. Existing sessions are unaffected.
type CapacityError struct {
	// Max is the configured session limit.
	Max int
}

// Error returns the error message.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("session limit reached (%d); delete a session or retry later", e.Max)
}
