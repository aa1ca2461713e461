package jsonrpc

// Observer receives the engine's lifecycle events. Implementations must be
// safe for concurrent use and must not block.
type Observer interface {
	CallSent(method string)
	// CallFinished reports a call leaving the outstanding set. state is
	// CallClaimed, CallMatched or CallFailed.
	CallFinished(method string, state CallState, err error)
	// FrameBuffered reports a frame stored for a later awaiter. unsolicited
	// is set when no outstanding call has the frame's identity.
	FrameBuffered(method string, unsolicited bool, depth int)
	// FrameDiscarded reports a frame dropped for reason "abandoned",
	// "expired" or "overflow".
	FrameDiscarded(method string, reason string, depth int)
	ConnectionClosed(err error)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) CallSent(string) {}
func (NopObserver) CallFinished(string, CallState, error) {}
func (NopObserver) FrameBuffered(string, bool, int) {}
func (NopObserver) FrameDiscarded(string, string, int) {}
func (NopObserver) ConnectionClosed(error) {}
