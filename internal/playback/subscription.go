package playback

const eventBufferSize = 16

// Subscription provides event channels for a subscriber.
type Subscription struct {
	DisplayChanged <-chan Display
	StateChanged   <-chan StateChange
	Resumed        <-chan ResumeEvent
	Error          <-chan ErrorEvent
	Done           <-chan struct{}

	// Internal write channels
	displayCh chan Display
	stateCh   chan StateChange
	resumeCh  chan ResumeEvent
	errorCh   chan ErrorEvent
	doneCh    chan struct{}
}

// newSubscription creates a new subscription with buffered channels.
func newSubscription() *Subscription {
	s := &Subscription{
		displayCh: make(chan Display, eventBufferSize),
		stateCh:   make(chan StateChange, eventBufferSize),
		resumeCh:  make(chan ResumeEvent, eventBufferSize),
		errorCh:   make(chan ErrorEvent, eventBufferSize),
		doneCh:    make(chan struct{}),
	}
	s.DisplayChanged = s.displayCh
	s.StateChanged = s.stateCh
	s.Resumed = s.resumeCh
	s.Error = s.errorCh
	s.Done = s.doneCh
	return s
}

// close signals subscribers to stop by closing doneCh.
func (s *Subscription) close() {
	close(s.doneCh)
}

// sendDisplay sends a display snapshot (non-blocking). When the buffer is
// full the oldest snapshot is dropped, so a slow reader still ends up with
// the latest one.
func (s *Subscription) sendDisplay(d Display) {
	select {
	case s.displayCh <- d:
		return
	default:
	}
	select {
	case <-s.displayCh:
	default:
	}
	select {
	case s.displayCh <- d:
	default:
	}
}

// sendState sends a state change event (non-blocking).
func (s *Subscription) sendState(e StateChange) {
	select {
	case s.stateCh <- e:
	default:
		// Drop if buffer full
	}
}

// sendResume sends a resume event (non-blocking).
func (s *Subscription) sendResume(e ResumeEvent) {
	select {
	case s.resumeCh <- e:
	default:
	}
}

// sendError sends an error event (non-blocking).
func (s *Subscription) sendError(e ErrorEvent) {
	select {
	case s.errorCh <- e:
	default:
	}
}
