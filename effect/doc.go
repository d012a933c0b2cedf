// Package effect declares the visual transforms a frame pipeline can apply.
//
// Effects are immutable, declarative descriptors. The pipeline compiles an
// ordered effect list into a chain of shader stages when an input stream is
// registered; descriptors carry parameters only, never GPU state.
//
// The set of effects is closed: every descriptor reports a Kind tag, and
// the stage compiler switches exhaustively over kinds. This keeps the
// chain builder checkable and avoids open-ended subclassing.
//
// Effects whose Kind shares a group can be merged by Plan into a single
// stage (adjacent matrix transforms compose into one matrix, adjacent
// color matrices multiply into one). Merging is a pure optimization pass
// over the descriptor list and is semantically transparent.
package effect
