// Package speech reads replies aloud through Azure TTS and takes spoken
// commands through a local whisper model.
package speech

import (
	"context"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

var _ domain.SpeechProvider = (*NoOp)(nil)

// NoOp is the speech provider used when voice is disabled.
type NoOp struct {
	log *logger.Logger
}

func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Listen always fails with ErrNotImplemented.
func (n *NoOp) Listen(ctx context.Context) (string, error) {
	return "", domain.ErrNotImplemented
}

// Speak logs the text and returns.
func (n *NoOp) Speak(ctx context.Context, text string) error {
	n.log.Debug("speech off: %q", clip(text, 60))
	return nil
}
