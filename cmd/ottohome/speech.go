package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hammamikhairi/ottohome/internal/speech"
)

// narrator starts text-to-speech when the config allows it. It returns nil
// when speech is off or unavailable; the reason is logged.
func narrator(ctx context.Context, onFail func(error)) *speech.Narrator {
	cfg := app.cfg.Speech
	if !cfg.Enabled {
		return nil
	}
	if !app.cfg.SpeechAvailable() {
		app.log.Info("speech disabled: set %s and %s to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
		return nil
	}

	player, err := speech.NewPlayer(app.log)
	if err != nil {
		app.log.Error("speech disabled: %v", err)
		return nil
	}
	tts := speech.NewAzureClient(cfg.Key, cfg.Region, app.log, speech.WithVoice(cfg.Voice))
	n := speech.NewNarrator(tts, player, app.log,
		speech.WithCache(speech.NewClipCache(tts.Voice(), cfg.CacheDir, *cfg.DiskCache, app.log)),
		speech.WithFailureHook(onFail),
	)
	go n.Run(ctx)
	n.Prefetch(ctx, speech.LineWelcome())
	app.log.Info("speech enabled (voice=%s, region=%s)", tts.Voice(), cfg.Region)
	return n
}

// ear starts whisper voice input when enabled.
func ear(ctx context.Context, n *speech.Narrator) (*speech.Ear, error) {
	cfg := app.cfg.Voice
	if !cfg.Enabled {
		return nil, nil
	}
	if _, err := os.Stat(cfg.WhisperModel); err != nil {
		return nil, fmt.Errorf("whisper model not found at %s", cfg.WhisperModel)
	}
	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return nil, err
	}
	opts := []speech.EarOption{
		speech.WithWakeWords(cfg.WakeWords...),
		speech.WithRecordDuration(time.Duration(cfg.RecordSecs) * time.Second),
		speech.WithTempDir(cfg.TempDir),
	}
	if n != nil {
		opts = append(opts, speech.WithSpeaker(n))
	}
	e := speech.NewEar(cfg.WhisperBin, cfg.WhisperModel, app.log, opts...)
	go e.Run(ctx)
	app.log.Info("voice input enabled (bin=%s, model=%s)", cfg.WhisperBin, cfg.WhisperModel)
	return e, nil
}
