package speech

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hammamikhairi/ottohome/internal/logger"
)

// NarratorOption configures a Narrator.
type NarratorOption func(*Narrator)

// WithChunkSize sets the approximate character budget per synthesis
// request. Longer replies are split at sentence ends and synthesized in
// parallel. Zero disables chunking.
func WithChunkSize(size int) NarratorOption {
	return func(n *Narrator) { n.chunkSize = size }
}

// WithCache replaces the default in-memory clip cache.
func WithCache(c *ClipCache) NarratorOption {
	return func(n *Narrator) { n.cache = c }
}

// WithFailureHook registers fn to be called whenever synthesis or playback
// of an utterance fails. The chat UI shows these as warning lines.
func WithFailureHook(fn func(error)) NarratorOption {
	return func(n *Narrator) { n.onFailure = fn }
}

// Narrator speaks replies one at a time: queue, chunk, synthesize in
// parallel, play in order. Higher priority utterances go first.
type Narrator struct {
	tts       Synthesizer
	sink      Sink
	cache     *ClipCache
	log       *logger.Logger
	chunkSize int
	onFailure func(error)

	mu          sync.Mutex
	queue       []utterance
	wake        chan struct{}
	speaking    bool
	interrupted bool
}

// NewNarrator creates a narrator that synthesizes with tts and plays on sink.
func NewNarrator(tts Synthesizer, sink Sink, log *logger.Logger, opts ...NarratorOption) *Narrator {
	n := &Narrator{
		tts:       tts,
		sink:      sink,
		log:       log,
		chunkSize: 200,
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.cache == nil {
		n.cache = NewClipCache(tts.Voice(), "", false, log)
	}
	return n
}

// Say queues text at the given priority and returns immediately. Queuing
// anything at PriorityNormal or above drops pending fillers.
func (n *Narrator) Say(text string, p Priority) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	n.mu.Lock()
	if p >= PriorityNormal {
		kept := n.queue[:0]
		for _, u := range n.queue {
			if u.priority > PriorityLow {
				kept = append(kept, u)
			}
		}
		n.queue = kept
	}
	n.queue = append(n.queue, utterance{text: text, priority: p, queuedAt: time.Now()})
	depth := len(n.queue)
	n.mu.Unlock()

	n.log.Debug("narrator: queued p=%d depth=%d: %s", p, depth, clip(text, 60))
	select {
	case n.wake <- struct{}{}:
	default:
	}
}

// IsSpeaking reports whether an utterance is being synthesized or played.
func (n *Narrator) IsSpeaking() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.speaking
}

// Pending returns the number of queued utterances.
func (n *Narrator) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.queue)
}

// Busy reports whether the narrator is speaking or has work queued.
func (n *Narrator) Busy() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.speaking || len(n.queue) > 0
}

// Interrupt drops the queue and stops playback, including the remaining
// chunks of a long reply.
func (n *Narrator) Interrupt() {
	n.mu.Lock()
	n.queue = n.queue[:0]
	n.interrupted = true
	n.mu.Unlock()
	n.sink.Stop()
	n.log.Debug("narrator: interrupted")
}

// Run processes the queue until ctx is cancelled.
func (n *Narrator) Run(ctx context.Context) {
	n.log.Info("narrator: started (voice=%s)", n.tts.Voice())
	for {
		select {
		case <-ctx.Done():
			n.log.Info("narrator: stopped")
			return
		case <-n.wake:
			n.drain(ctx)
		}
	}
}

func (n *Narrator) drain(ctx context.Context) {
	for ctx.Err() == nil {
		u, ok := n.next()
		if !ok {
			return
		}
		n.log.Debug("narrator: speaking after %s: %s",
			time.Since(u.queuedAt).Round(time.Millisecond), clip(u.text, 60))
		n.speak(ctx, u.text)

		n.mu.Lock()
		n.speaking = false
		n.mu.Unlock()
	}
}

// next pops the highest priority utterance, oldest first among equals.
func (n *Narrator) next() (utterance, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.queue) == 0 {
		return utterance{}, false
	}
	best := 0
	for i, u := range n.queue {
		if u.priority > n.queue[best].priority {
			best = i
		}
	}
	u := n.queue[best]
	n.queue = append(n.queue[:best], n.queue[best+1:]...)
	n.speaking = true
	n.interrupted = false
	return u, true
}

func (n *Narrator) speak(ctx context.Context, text string) {
	chunks := n.chunks(text)

	clips := make([][]byte, len(chunks))
	errs := make([]error, len(chunks))
	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, c string) {
			defer wg.Done()
			clips[i], errs[i] = n.synthesize(ctx, c)
		}(i, c)
	}
	wg.Wait()

	for i, audio := range clips {
		if errs[i] != nil {
			n.fail(fmt.Errorf("synthesizing %q: %w", clip(chunks[i], 40), errs[i]))
			continue
		}
		if ctx.Err() != nil || n.wasInterrupted() {
			return
		}
		if err := n.sink.Play(audio); err != nil {
			n.fail(fmt.Errorf("playing audio: %w", err))
		}
	}
}

func (n *Narrator) synthesize(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := n.cache.Get(text); ok {
		return audio, nil
	}
	audio, err := n.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	n.cache.Put(text, audio)
	return audio, nil
}

// Prefetch warms the cache for texts likely to be spoken soon, such as the
// fixed greeting. It returns immediately.
func (n *Narrator) Prefetch(ctx context.Context, texts ...string) {
	for _, t := range texts {
		for _, c := range n.chunks(t) {
			if c == "" || n.cache.Has(c) {
				continue
			}
			go func(c string) {
				if _, err := n.synthesize(ctx, c); err != nil {
					n.log.Debug("narrator: prefetch failed: %v", err)
				}
			}(c)
		}
	}
}

// Cache exposes the clip cache for stats.
func (n *Narrator) Cache() *ClipCache { return n.cache }

func (n *Narrator) wasInterrupted() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.interrupted
}

func (n *Narrator) fail(err error) {
	n.log.Error("narrator: %v", err)
	if n.onFailure != nil {
		n.onFailure(err)
	}
}

// chunks splits text at sentence ends into pieces of roughly chunkSize.
func (n *Narrator) chunks(text string) []string {
	if n.chunkSize <= 0 || len(text) <= n.chunkSize {
		return []string{text}
	}
	var out []string
	var cur strings.Builder
	for _, s := range sentences(text) {
		if cur.Len() > 0 && cur.Len()+len(s) > n.chunkSize {
			if c := strings.TrimSpace(cur.String()); c != "" {
				out = append(out, c)
			}
			cur.Reset()
		}
		cur.WriteString(s)
	}
	if c := strings.TrimSpace(cur.String()); c != "" {
		out = append(out, c)
	}
	return out
}

// sentences splits after each '.', '!', '?' or newline, keeping the
// terminator and trailing space with the sentence.
func sentences(text string) []string {
	var out []string
	var cur strings.Builder
	rs := []rune(text)
	for i := 0; i < len(rs); i++ {
		cur.WriteRune(rs[i])
		if rs[i] != '.' && rs[i] != '!' && rs[i] != '?' && rs[i] != '\n' {
			continue
		}
		for i+1 < len(rs) && unicode.IsSpace(rs[i+1]) {
			i++
			cur.WriteRune(rs[i])
		}
		out = append(out, cur.String())
		cur.Reset()
	}
	if cur.Len() > 0 {
		out = append(out, cur.String())
	}
	return out
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
