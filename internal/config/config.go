// Package config loads the YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/ottohome/internal/logger"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "ottohome.yaml"

type Config struct {
	Log     LogConfig     `yaml:"log"`
	Speech  SpeechConfig  `yaml:"speech"`
	Voice   VoiceConfig   `yaml:"voice"`
	Server  ServerConfig  `yaml:"server"`
	Recipes RecipesConfig `yaml:"recipes"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type SpeechConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Voice     string `yaml:"voice"`
	CacheDir  string `yaml:"cache_dir"`
	DiskCache *bool  `yaml:"disk_cache"`
	Key       string `yaml:"key"`
	Region    string `yaml:"region"`
}

type VoiceConfig struct {
	Enabled      bool     `yaml:"enabled"`
	WhisperBin   string   `yaml:"whisper_bin"`
	WhisperModel string   `yaml:"whisper_model"`
	RecordSecs   int      `yaml:"record_secs"`
	TempDir      string   `yaml:"temp_dir"`
	WakeWords    []string `yaml:"wake_words"`
}

type ServerConfig struct {
	Addr        string `yaml:"addr"`
	SessionTTL  string `yaml:"session_ttl"`
	MaxSessions int    `yaml:"max_sessions"`
}

type RecipesConfig struct {
	File string `yaml:"file"`
}

// Load reads and parses the config file at path. Environment references
// like ${AZURE_SPEECH_KEY} are expanded before parsing.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// LoadOptional behaves like Load but returns the defaults when the file
// does not exist.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Parse parses YAML config data and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a config with every default applied.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File == "" {
		c.Log.File = ".ottohome/ottohome.log"
	}
	if c.Speech.Voice == "" {
		c.Speech.Voice = "en-US-AvaNeural"
	}
	if c.Speech.CacheDir == "" {
		c.Speech.CacheDir = ".ottohome/tts-cache"
	}
	if c.Speech.DiskCache == nil {
		on := true
		c.Speech.DiskCache = &on
	}
	if c.Speech.Key == "" {
		c.Speech.Key = os.Getenv("AZURE_SPEECH_KEY")
	}
	if c.Speech.Region == "" {
		c.Speech.Region = os.Getenv("AZURE_SPEECH_REGION")
	}
	if c.Voice.WhisperBin == "" {
		c.Voice.WhisperBin = "whisper-cli"
	}
	if c.Voice.WhisperModel == "" {
		c.Voice.WhisperModel = "bin/ggml-small.bin"
	}
	if c.Voice.RecordSecs == 0 {
		c.Voice.RecordSecs = 2
	}
	if c.Voice.TempDir == "" {
		c.Voice.TempDir = ".ottohome/stt"
	}
	if len(c.Voice.WakeWords) == 0 {
		c.Voice.WakeWords = []string{"hey otto", "okay otto", "otto"}
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.SessionTTL == "" {
		c.Server.SessionTTL = "30m"
	}
}

func (c *Config) validate() error {
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if _, err := time.ParseDuration(c.Server.SessionTTL); err != nil {
		return fmt.Errorf("server.session_ttl: %w", err)
	}
	if c.Voice.RecordSecs < 0 {
		return fmt.Errorf("voice.record_secs must be positive, got %d", c.Voice.RecordSecs)
	}
	if c.Server.MaxSessions < 0 {
		return fmt.Errorf("server.max_sessions must not be negative, got %d", c.Server.MaxSessions)
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logger.Level {
	l, _ := logger.ParseLevel(c.Log.Level)
	return l
}

// SessionTTL returns the parsed idle timeout.
func (c *Config) SessionTTL() time.Duration {
	d, _ := time.ParseDuration(c.Server.SessionTTL)
	return d
}

// SpeechAvailable reports whether TTS is enabled and has credentials.
func (c *Config) SpeechAvailable() bool {
	return c.Speech.Enabled && c.Speech.Key != "" && c.Speech.Region != ""
}
