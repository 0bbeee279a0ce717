package playback

import (
	"context"
	"time"
)

// ResumeRequest describes a saved offset the user may resume from.
type ResumeRequest struct {
	Path       string
	Offset     time.Duration
	OffsetText string // HH:MM:SS
}

// Confirmer answers resume prompts. It may block until the user decides;
// implementations should return false when ctx is cancelled.
type Confirmer interface {
	ConfirmResume(ctx context.Context, req ResumeRequest) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, req ResumeRequest) bool

func (f ConfirmFunc) ConfirmResume(ctx context.Context, req ResumeRequest) bool {
	return f(ctx, req)
}

// shouldResume applies the resume policy.
// A nil confirmer in prompt mode answers yes, like a dialog accepted with
// its default button.
func shouldResume(ctx context.Context, mode ResumeMode, c Confirmer, req ResumeRequest) bool {
	if req.Offset <= 0 {
		return false
	}
	switch mode {
	case ResumeAuto:
		return true
	case ResumePrompt:
		if c == nil {
			return true
		}
		return c.ConfirmResume(ctx, req)
	default:
		return false
	}
}
