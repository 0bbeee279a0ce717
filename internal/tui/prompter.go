package tui

import (
	"context"
	"sync"

	"github.com/llehouerou/reprise/internal/playback"
)

type promptRequest struct {
	playback.ResumeRequest
	reply chan bool
}

// Prompter is a playback.Confirmer answered by the TUI. ConfirmResume
// blocks until the user answers, ctx is cancelled or the prompter is closed;
// the last two count as "no".
type Prompter struct {
	requests chan promptRequest
	done     chan struct{}
	once     sync.Once
}

// NewPrompter creates a prompter. The model built with it shows its questions.
func NewPrompter() *Prompter {
	return &Prompter{
		requests: make(chan promptRequest),
		done:     make(chan struct{}),
	}
}

// ConfirmResume implements playback.Confirmer.
func (p *Prompter) ConfirmResume(ctx context.Context, req playback.ResumeRequest) bool {
	r := promptRequest{ResumeRequest: req, reply: make(chan bool, 1)}

	select {
	case p.requests <- r:
	case <-ctx.Done():
		return false
	case <-p.done:
		return false
	}

	select {
	case answer := <-r.reply:
		return answer
	case <-ctx.Done():
		return false
	case <-p.done:
		return false
	}
}

// Close answers every pending and future question with "no".
func (p *Prompter) Close() {
	p.once.Do(func() { close(p.done) })
}
