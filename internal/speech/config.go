package speech

import (
	"context"
	"time"
)

// DefaultVoice is the Azure neural voice used when none is configured.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-AvaNeural"

// DefaultAudioFormat is the format requested from Azure. The player only
// understands RIFF/WAV payloads.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Output parameters of the audio device.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Synthesizer turns text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	Voice() string
}

// Sink plays WAV audio. Play blocks until playback ends or Stop is called.
type Sink interface {
	Play(wav []byte) error
	Stop()
}

// Priority orders queued utterances. Higher value speaks first.
type Priority int

const (
	PriorityLow      Priority = iota // fillers
	PriorityNormal                   // assistant replies
	PriorityHigh                     // alerts
	PriorityCritical                 // wake acknowledgements
)

// utterance is a queued item waiting to be spoken.
type utterance struct {
	text     string
	priority Priority
	queuedAt time.Time
}
