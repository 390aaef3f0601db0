package domain

import "context"

// RecipeCatalog provides recipes. The in-memory catalog is seeded with the
// built-in dishes and may be extended from a file at startup.
type RecipeCatalog interface {
	Names() []string
	List(ctx context.Context) ([]RecipeSummary, error)
	Get(ctx context.Context, name string) (*Recipe, error)
	Search(ctx context.Context, query string) ([]RecipeSummary, error)
}

// SessionStore persists chat sessions and their transcripts.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*Session, error)
}

// IntentParser converts raw user input into a typed intent.
// It never fails on unrecognized input; it returns Unknown instead.
type IntentParser interface {
	Parse(ctx context.Context, input string) (Intent, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout or use text-to-speech.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// SpeechProvider handles voice input/output. Listen blocks until a
// transcribed utterance is available; Speak sends text through the TTS
// pipeline. The no-op implementation is used when voice is disabled.
type SpeechProvider interface {
	Listen(ctx context.Context) (string, error)
	Speak(ctx context.Context, text string) error
}
