package speech

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/ottohome/internal/logger"
)

// DefaultWakeWords start active listening when heard at the start of a
// clip. Matching is case-insensitive.
var DefaultWakeWords = []string{
	"hey otto",
	"hey, otto",
	"okay otto",
	"otto home",
	"ottohome",
	"hey home",
	"otto",
}

type earMode int

const (
	earDormant earMode = iota
	earListening
)

// speaker is the part of the Narrator the Ear coordinates with, so the
// microphone does not pick up the assistant's own voice.
type speaker interface {
	Busy() bool
	Interrupt()
	Say(text string, p Priority)
}

// EarOption configures an Ear.
type EarOption func(*Ear)

// WithWakeWords replaces DefaultWakeWords. Empty keeps the defaults.
func WithWakeWords(words ...string) EarOption {
	return func(e *Ear) {
		if len(words) > 0 {
			e.wakeWords = words
		}
	}
}

// WithRecordDuration sets the length of each active-listening clip.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) {
		if d > 0 {
			e.activeClip = d
		}
	}
}

// WithTempDir sets where whisper writes its temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) {
		if dir != "" {
			e.tempDir = dir
		}
	}
}

// WithListenTimeout bounds a single command capture.
func WithListenTimeout(d time.Duration) EarOption {
	return func(e *Ear) { e.listenTimeout = d }
}

// WithSpeaker lets the Ear interrupt and wait for the narrator.
func WithSpeaker(s speaker) EarOption {
	return func(e *Ear) { e.speaker = s }
}

// Ear turns speech into commands with a local whisper model. It idles in
// dormant mode, transcribing short clips and discarding everything that
// does not contain a wake word. After a wake word it records until the
// user stops talking and sends the command text on C.
type Ear struct {
	whisperBin string
	model      string
	tempDir    string
	log        *logger.Logger
	speaker    speaker

	wakeWords     []string
	dormantClip   time.Duration
	activeClip    time.Duration
	listenTimeout time.Duration

	// record captures one clip and returns its transcription.
	record func(ctx context.Context, d time.Duration) string

	mu    sync.Mutex
	muted bool
	mode  earMode
	out   chan string
}

// NewEar creates an Ear backed by whisperBin and the GGML model at model.
func NewEar(whisperBin, model string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:    whisperBin,
		model:         model,
		tempDir:       ".ottohome-stt",
		log:           log,
		wakeWords:     DefaultWakeWords,
		dormantClip:   3 * time.Second,
		activeClip:    time.Second,
		listenTimeout: 15 * time.Second,
		out:           make(chan string, 8),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.record = e.whisperClip
	if _, err := exec.LookPath(whisperBin); err != nil {
		log.Warn("ear: whisper binary %q not found: %v", whisperBin, err)
	}
	return e
}

// C delivers transcribed commands with the wake word removed.
func (e *Ear) C() <-chan string { return e.out }

// Mute pauses listening, for example while a modal is open.
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
}

func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
}

// Run listens until ctx is cancelled.
func (e *Ear) Run(ctx context.Context) {
	e.log.Info("ear: started (wake=%v)", e.wakeWords)
	for ctx.Err() == nil {
		e.mu.Lock()
		muted, mode := e.muted, e.mode
		e.mu.Unlock()

		switch {
		case muted || e.speakerBusy():
			sleep(ctx, 200*time.Millisecond)
		case mode == earDormant:
			e.dormant(ctx)
		default:
			e.listen(ctx)
		}
	}
	e.log.Info("ear: stopped")
}

func (e *Ear) setMode(m earMode) {
	e.mu.Lock()
	e.mode = m
	e.mu.Unlock()
}

func (e *Ear) speakerBusy() bool {
	return e.speaker != nil && e.speaker.Busy()
}

// dormant probes one clip for a wake word.
func (e *Ear) dormant(ctx context.Context) {
	text := cleanTranscription(e.record(ctx, e.dormantClip))
	if text == "" || e.speakerBusy() {
		return
	}
	rest, ok := e.afterWakeWord(text)
	if !ok {
		e.log.Debug("ear: ignored %q", text)
		return
	}
	e.log.Info("ear: wake word in %q", text)
	if e.speaker != nil {
		e.speaker.Interrupt()
	}

	// "hey otto turn on the fan" in a single breath.
	if rest = cleanTranscription(rest); rest != "" {
		e.emit(ctx, rest)
		return
	}
	if e.speaker != nil {
		e.speaker.Say(LineListening(), PriorityCritical)
	}
	e.setMode(earListening)
}

// listen records short clips until silence or timeout and emits the
// accumulated command.
func (e *Ear) listen(ctx context.Context) {
	defer e.setMode(earDormant)

	const (
		silenceBefore = 4 // empty clips tolerated before the user speaks
		silenceAfter  = 2 // and once they have started
	)
	deadline := time.Now().Add(e.listenTimeout)
	var parts []string
	empty := 0
	for ctx.Err() == nil && time.Now().Before(deadline) {
		chunk := cleanTranscription(e.record(ctx, e.activeClip))
		if chunk == "" {
			empty++
			limit := silenceBefore
			if len(parts) > 0 {
				limit = silenceAfter
			}
			if empty >= limit {
				break
			}
			continue
		}
		empty = 0
		if chunk = e.stripWakeWords(chunk); chunk != "" {
			parts = append(parts, chunk)
		}
	}

	if cmd := strings.TrimSpace(strings.Join(parts, " ")); cmd != "" {
		e.emit(ctx, cmd)
	} else {
		e.log.Debug("ear: nothing heard")
	}
}

func (e *Ear) emit(ctx context.Context, cmd string) {
	e.log.Info("ear: command %q", cmd)
	select {
	case e.out <- cmd:
	case <-ctx.Done():
	}
}

// afterWakeWord reports whether text contains a wake word and returns
// whatever follows the first one found.
func (e *Ear) afterWakeWord(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, w := range e.wakeWords {
		idx := strings.Index(lower, strings.ToLower(w))
		if idx < 0 {
			continue
		}
		rest := text[idx+len(w):]
		return strings.Trim(rest, " ,.!?\t\r\n"), true
	}
	return "", false
}

// stripWakeWords removes repeated wake words from a command and
// lower-cases it, which is the form the rule table expects anyway.
func (e *Ear) stripWakeWords(text string) string {
	s := strings.ToLower(text)
	for _, w := range e.wakeWords {
		s = strings.ReplaceAll(s, strings.ToLower(w), "")
	}
	return strings.Trim(spaceRuns.ReplaceAllString(s, " "), " ,.!?")
}

// whisperClip records d of microphone audio and transcribes it.
func (e *Ear) whisperClip(ctx context.Context, d time.Duration) string {
	var (
		result string
		done   = make(chan struct{})
		once   sync.Once
	)
	t, err := audiotranscriber.NewTranscriber(e.whisperBin, e.model, e.tempDir, "wav",
		func(text string) {
			result = text
			once.Do(func() { close(done) })
		},
		e.log.GetLevel() >= logger.LevelVerbose,
	)
	if err != nil {
		e.log.Error("ear: transcriber: %v", err)
		sleep(ctx, 2*time.Second)
		return ""
	}
	if err := t.Start(); err != nil {
		e.log.Error("ear: recording: %v", err)
		sleep(ctx, 2*time.Second)
		return ""
	}
	sleep(ctx, d)
	t.Stop()
	<-done
	if ctx.Err() != nil {
		return ""
	}
	return result
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}

var (
	// "(keyboard clicking)", "[BLANK_AUDIO]", "[laughter]" ...
	annotation = regexp.MustCompile(`[\(\[][A-Za-z_][A-Za-z_\s]*[\)\]]`)
	timestamp  = regexp.MustCompile(`^\[\d{2}:\d{2}:\d{2}[.,]\d{3} --> \d{2}:\d{2}:\d{2}[.,]\d{3}\]\s*`)
)

// Whole-clip outputs whisper produces from silence.
var hallucinations = map[string]bool{
	"...":                     true,
	"you":                     true,
	"thank you.":              true,
	"thanks for watching!":    true,
	"thank you for watching.": true,
	"bye.":                    true,
	"the end.":                true,
}

// cleanTranscription strips whisper timestamps, noise annotations and
// known silence hallucinations.
func cleanTranscription(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	s = timestamp.ReplaceAllString(strings.TrimSpace(s), "")
	s = annotation.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaceRuns.ReplaceAllString(s, " "))
	if hallucinations[strings.ToLower(s)] {
		return ""
	}
	return s
}
