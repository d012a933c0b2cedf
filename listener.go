package framepipe

// Listener receives pipeline events. Each callback fires exactly once per
// corresponding internal event, in the order the events were generated.
//
// Callbacks are delivered on the listener executor configured with
// WithListenerExecutor, decoupled from the pipeline's execution
// goroutine. The default executor invokes callbacks inline on the
// execution goroutine; listeners using it must not call back into the
// processor's blocking entry points.
type Listener interface {
	// OnInputStreamRegistered fires when a RegisterInputStream call has
	// completed and the pipeline is ready for that stream's frames.
	// Fires once per registration, strictly in submission order.
	OnInputStreamRegistered()

	// OnOutputSizeChanged fires before the first output frame of a
	// registration whose effect chain produces a different output size
	// than the previous one.
	OnOutputSizeChanged(width, height int)

	// OnOutputFrameAvailableForRendering fires when a finished frame
	// reaches the output controller, carrying the frame's final
	// (possibly remapped) presentation timestamp.
	OnOutputFrameAvailableForRendering(presentationTimeUs int64)

	// OnOutputFrameRendered fires when a frame has been released to the
	// output sink, carrying the actual release time in nanoseconds.
	// Dropped frames never fire this.
	OnOutputFrameRendered(releaseTimeNs int64)

	// OnError delivers a *ProcessingError. After an error the pipeline
	// should be released; there is no automatic recovery.
	OnError(err error)

	// OnEnded fires exactly once per unflushed end-of-input completion,
	// after the last output frame of the stream has been delivered.
	OnEnded()
}

// NopListener implements Listener with empty methods. Embed it to
// implement only the callbacks of interest.
type NopListener struct{}

func (NopListener) OnInputStreamRegistered()                   {}
func (NopListener) OnOutputSizeChanged(int, int)               {}
func (NopListener) OnOutputFrameAvailableForRendering(int64)   {}
func (NopListener) OnOutputFrameRendered(int64)                {}
func (NopListener) OnError(error)                              {}
func (NopListener) OnEnded()                                   {}

var _ Listener = NopListener{}
