// Package shader implements the stage chain at the heart of the frame
// pipeline.
//
// A Stage consumes one input frame at a time and produces zero or more
// output frames, possibly at remapped timestamps. Stages are linked into
// a Chain built from an ordered effect list; adjacent compatible effects
// are merged into a single stage before the chain is built.
//
// All stage methods run on the pipeline's single execution goroutine, so
// stages are written without internal locking. Errors propagate back
// synchronously through the queueing call; the pipeline coordinator
// turns them into error-listener events.
package shader
