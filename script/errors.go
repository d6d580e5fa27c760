package script

import (
	"errors"
	"fmt"
)

var (
	ErrParseFault            = errors.New("parse fault")
	ErrRuntimeFault          = errors.New("runtime fault")
	ErrComputeBudgetExceeded = errors.New("compute budget exceeded")
)

// FaultError locates a script fault. Fragment is -1 if the round as a whole
// was rejected.
type FaultError struct {
	Round    int
	Fragment int
	Err      error
}

func (e *FaultError) Error() string {
	if e.Fragment < 0 {
		return fmt.Sprintf("round %d: %v", e.Round, e.Err)
	}
	return fmt.Sprintf("round %d, fragment %d: %v", e.Round, e.Fragment, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}
