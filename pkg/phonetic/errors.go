package phonetic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches any *InvalidInputError.
	ErrInvalidInput = errors.New("invalid training input")
	// ErrEmptyTable matches any *EmptyTableError.
	ErrEmptyTable = errors.New("frequency table slot is empty")
)

// InvalidInputError reports a training word list that yields no segments.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid training input: %s", e.Reason)
}

// Is reports whether target is ErrInvalidInput.
func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

// EmptyTableError reports a slot with no candidates where synthesis needs one.
type EmptyTableError struct {
	Slot Slot
}

func (e *EmptyTableError) Error() string {
	return fmt.Sprintf("frequency table has no %s segments", e.Slot)
}

// Is reports whether target is ErrEmptyTable.
func (e *EmptyTableError) Is(target error) bool {
	return target == ErrEmptyTable
}
