package speech

import (
	"context"

	"github.com/hammamikhairi/ottohome/internal/domain"
)

var _ domain.SpeechProvider = (*Voice)(nil)

// Voice joins a Narrator and an Ear into a SpeechProvider. Either half may
// be nil, in which case that direction reports ErrNotImplemented.
type Voice struct {
	narrator *Narrator
	ear      *Ear
}

// NewVoice pairs a narrator for replies with an ear for commands.
func NewVoice(narrator *Narrator, ear *Ear) *Voice {
	return &Voice{narrator: narrator, ear: ear}
}

// Listen blocks until the ear hears a command or ctx is done.
func (v *Voice) Listen(ctx context.Context) (string, error) {
	if v.ear == nil {
		return "", domain.ErrNotImplemented
	}
	select {
	case text := <-v.ear.C():
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Speak queues a reply for narration and returns without waiting.
func (v *Voice) Speak(ctx context.Context, text string) error {
	if v.narrator == nil {
		return domain.ErrNotImplemented
	}
	v.narrator.Say(ForSpeech(text), PriorityNormal)
	return nil
}
