package speech

import (
	"context"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

var _ domain.Notifier = (*SpeakingNotifier)(nil)

// SpeakingNotifier prints through an inner notifier and reads the same
// message aloud.
type SpeakingNotifier struct {
	text     domain.Notifier
	narrator *Narrator
	log      *logger.Logger
}

// NewSpeakingNotifier wraps text so every message is also spoken.
func NewSpeakingNotifier(text domain.Notifier, narrator *Narrator, log *logger.Logger) *SpeakingNotifier {
	return &SpeakingNotifier{text: text, narrator: narrator, log: log}
}

func (n *SpeakingNotifier) Notify(ctx context.Context, message string) error {
	if err := n.text.Notify(ctx, message); err != nil {
		return err
	}
	n.narrator.Say(ForSpeech(message), PriorityNormal)
	return nil
}

func (n *SpeakingNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if err := n.text.NotifyUrgent(ctx, message); err != nil {
		return err
	}
	n.narrator.Say(ForSpeech(message), PriorityHigh)
	return nil
}
