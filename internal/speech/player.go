package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/wav"

	"github.com/hammamikhairi/ottohome/internal/logger"
)

var _ Sink = (*Player)(nil)

// Player plays WAV payloads on the system audio device via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player
}

// NewPlayer opens the system audio device. It fails when no device is
// available, in which case the caller runs without spoken replies.
func NewPlayer(log *logger.Logger) (*Player, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}
	<-ready

	log.Debug("player: ready (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Play decodes the WAV payload and blocks until it has been played or
// Stop is called.
func (p *Player) Play(data []byte) error {
	pcm, err := decodePCM(data)
	if err != nil {
		return err
	}

	op := p.ctx.NewPlayer(bytes.NewReader(pcm))
	p.mu.Lock()
	p.active = op
	p.mu.Unlock()

	op.Play()
	p.log.Debug("player: %d bytes of pcm", len(pcm))
	for op.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()
	return op.Close()
}

// Stop pauses whatever is playing. Safe to call when idle.
func (p *Player) Stop() {
	p.mu.Lock()
	op := p.active
	p.mu.Unlock()
	if op != nil {
		op.Pause()
		p.log.Debug("player: stopped")
	}
}

// decodePCM converts a WAV payload into signed 16-bit little-endian mono
// samples at SampleRate, the layout the oto context was opened with.
func decodePCM(data []byte) ([]byte, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, errors.New("not a valid WAV payload")
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decoding wav: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, errors.New("wav payload has no samples")
	}

	depth := int(dec.BitDepth)
	if depth == 0 {
		depth = BitDepth
	}
	channels, rate := 1, SampleRate
	if buf.Format != nil {
		if buf.Format.NumChannels > 0 {
			channels = buf.Format.NumChannels
		}
		if buf.Format.SampleRate > 0 {
			rate = buf.Format.SampleRate
		}
	}

	samples := make([]int16, 0, len(buf.Data)/channels)
	for i := 0; i+channels <= len(buf.Data); i += channels {
		sum := 0
		for c := 0; c < channels; c++ {
			sum += toInt16(buf.Data[i+c], depth)
		}
		samples = append(samples, int16(sum/channels))
	}
	if rate != SampleRate {
		samples = resample(samples, rate, SampleRate)
	}

	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out, nil
}

// toInt16 scales a sample of the given bit depth to the 16-bit range.
// 8-bit WAV is unsigned.
func toInt16(v, depth int) int {
	switch depth {
	case 8:
		return (v - 128) << 8
	case 24:
		return v >> 8
	case 32:
		return v >> 16
	default:
		return v
	}
}

// resample does linear interpolation between sample rates.
func resample(in []int16, from, to int) []int16 {
	if len(in) == 0 || from <= 0 || to <= 0 {
		return in
	}
	n := int(int64(len(in)) * int64(to) / int64(from))
	out := make([]int16, n)
	ratio := float64(from) / float64(to)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = int16(float64(in[j])*(1-frac) + float64(in[j+1])*frac)
	}
	return out
}
