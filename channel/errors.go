package channel

import (
	"errors"
	"fmt"
)

var (
	ErrBrokenAlternation     = errors.New("broken mover alternation")
	ErrBadSignature          = errors.New("bad signature")
	ErrEmptyChain            = errors.New("empty chain")
	ErrRoundOffsetOutOfRange = errors.New("round offset out of range")
)

// LinkError reports the first invalid link of a move chain.
type LinkError struct {
	Index int
	Err   error
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link %d: %v", e.Index, e.Err)
}

func (e *LinkError) Unwrap() error {
	return e.Err
}
