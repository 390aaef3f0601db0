package speech

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottohome/internal/domain"
	"github.com/hammamikhairi/ottohome/internal/logger"
)

func TestVoice_Speak(t *testing.T) {
	n := NewNarrator(&fakeSynth{}, &fakeSink{}, logger.New(logger.LevelOff, nil))
	v := NewVoice(n, nil)

	if err := v.Speak(context.Background(), "humidifier: 45%"); err != nil {
		t.Fatal(err)
	}
	u, ok := n.next()
	if !ok || u.text != "humidifier: 45 percent" {
		t.Errorf("queued %q", u.text)
	}
	if _, err := v.Listen(context.Background()); !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("Listen without ear: %v", err)
	}
}

func TestVoice_Listen(t *testing.T) {
	e := scriptedEar(&fakeSpeaker{}, "hey otto make pasta")
	e.dormant(context.Background())
	v := NewVoice(nil, e)

	got, err := v.Listen(context.Background())
	if err != nil || got != "make pasta" {
		t.Errorf("Listen = %q, %v", got, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := v.Listen(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Listen on idle ear: %v", err)
	}
	if err := v.Speak(ctx, "x"); !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("Speak without narrator: %v", err)
	}
}

func TestNoOp(t *testing.T) {
	n := NewNoOp(logger.New(logger.LevelOff, nil))
	if err := n.Speak(context.Background(), "hello"); err != nil {
		t.Error(err)
	}
	if _, err := n.Listen(context.Background()); !errors.Is(err, domain.ErrNotImplemented) {
		t.Errorf("Listen: %v", err)
	}
}
