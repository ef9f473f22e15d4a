package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("ledger: persistence failed")
	// ErrBusy is returned when a mutation starts while another is still in flight.
	ErrBusy = errors.New("ledger: another operation is in progress")
)

// PersistenceError reports a failed durable write or delete. The in-memory
// sequence is unchanged when it is returned.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrPersistence.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
