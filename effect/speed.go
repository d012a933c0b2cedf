package effect

import "fmt"

// SpeedChange rescales every frame's presentation timestamp by a constant
// speed factor: outputUs = inputUs / Factor. A factor of 2 plays twice as
// fast, 0.5 twice as slow. Frame order and content are untouched.
type SpeedChange struct {
	Factor float64
}

// Kind implements Effect.
func (SpeedChange) Kind() Kind { return KindSpeedChange }

// Validate implements Effect.
func (s SpeedChange) Validate() error {
	if s.Factor <= 0 {
		return fmt.Errorf("effect: speed factor %v must be positive", s.Factor)
	}
	return nil
}

// MapTimestamp returns the remapped timestamp for an input timestamp.
func (s SpeedChange) MapTimestamp(inputUs int64) int64 {
	return int64(float64(inputUs) / s.Factor)
}

// TimestampMap remaps presentation timestamps through an arbitrary
// function. Within one registered stream the function must be monotonically
// non-decreasing over the stream's input timestamps; downstream consumers
// always observe non-decreasing timestamps per stream segment, and the
// stage reports an error if the function violates that.
type TimestampMap struct {
	Func func(inputUs int64) (outputUs int64)
}

// Kind implements Effect.
func (TimestampMap) Kind() Kind { return KindTimestampMap }

// Validate implements Effect.
func (m TimestampMap) Validate() error {
	if m.Func == nil {
		return fmt.Errorf("effect: timestamp map with nil func")
	}
	return nil
}
