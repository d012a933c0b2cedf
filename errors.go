package framepipe

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by pipeline entry points. They are wrapped with
// context before delivery, so callers should test with errors.Is.
var (
	// ErrInvalidState indicates an operation was called in a pipeline state
	// that does not permit it, e.g. Flush before any input stream has been
	// registered.
	ErrInvalidState = errors.New("framepipe: invalid state")

	// ErrReleased indicates the processor has been released and no longer
	// accepts work.
	ErrReleased = errors.New("framepipe: processor released")

	// ErrUnsupported indicates an unsupported input-type/effect combination
	// or an effect parameter outside its valid range.
	ErrUnsupported = errors.New("framepipe: unsupported configuration")
)

// UnknownTimestamp marks a ProcessingError that is not associated with any
// particular input frame.
const UnknownTimestamp = int64(-9223372036854775807 - 1)

// ProcessingError wraps any failure that occurs while a frame is being
// processed. Errors raised on the execution goroutine are captured, wrapped
// and redelivered through Listener.OnError; they are never thrown across
// the goroutine boundary.
type ProcessingError struct {
	// Op names the operation that failed, e.g. "configure", "drawFrame".
	Op string

	// TimestampUs is the presentation timestamp of the frame being processed
	// when the failure occurred, or UnknownTimestamp.
	TimestampUs int64

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *ProcessingError) Error() string {
	if e.TimestampUs == UnknownTimestamp {
		return fmt.Sprintf("framepipe: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("framepipe: %s at %dus: %v", e.Op, e.TimestampUs, e.Err)
}

// Unwrap returns the underlying cause for errors.Is / errors.As.
func (e *ProcessingError) Unwrap() error { return e.Err }

// wrapProcessing wraps err into a ProcessingError unless it is one already.
func wrapProcessing(op string, timestampUs int64, err error) *ProcessingError {
	var pe *ProcessingError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProcessingError{Op: op, TimestampUs: timestampUs, Err: err}
}
