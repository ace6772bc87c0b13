package descriptors

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is matched by every argument validation failure.
var ErrInvalidArgument = errors.New("descriptors: invalid argument")

// ArgumentError reports which argument failed validation.
type ArgumentError struct {
	Argument string
	Reason   string
}

func (e *ArgumentError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("descriptors: %s %s", e.Argument, e.Reason)
}

// Is lets errors.Is(err, ErrInvalidArgument) match any ArgumentError.
func (e *ArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

func nilArgument(name string) error {
	return &ArgumentError{Argument: name, Reason: "must not be nil"}
}
