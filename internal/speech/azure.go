package speech

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hammamikhairi/ottohome/internal/logger"
)

var _ Synthesizer = (*AzureClient)(nil)

// ErrNoCredentials is returned when the Azure key or region is missing.
var ErrNoCredentials = errors.New("azure speech key or region not set")

// AzureOption configures the Azure TTS client.
type AzureOption func(*AzureClient)

// WithVoice sets the TTS voice. Empty keeps the default.
func WithVoice(voice string) AzureOption {
	return func(c *AzureClient) {
		if voice != "" {
			c.voice = voice
		}
	}
}

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) { c.http.Timeout = d }
}

// WithEndpoint overrides the synthesis URL, normally derived from the region.
func WithEndpoint(url string) AzureOption {
	return func(c *AzureClient) { c.endpoint = url }
}

// AzureClient synthesizes replies with the Azure Speech REST API.
type AzureClient struct {
	key      string
	endpoint string
	voice    string
	http     *http.Client
	log      *logger.Logger
}

// NewAzureClient creates a client for the given subscription key and region.
func NewAzureClient(key, region string, log *logger.Logger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		key:      key,
		endpoint: fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region),
		voice:    DefaultVoice,
		http:     &http.Client{Timeout: 30 * time.Second},
		log:      log,
	}
	if region == "" {
		c.endpoint = ""
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Voice returns the configured voice name.
func (c *AzureClient) Voice() string { return c.voice }

// Synthesize returns the reply as a WAV payload.
func (c *AzureClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.key == "" || c.endpoint == "" {
		return nil, ErrNoCredentials
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(c.ssml(text)))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", DefaultAudioFormat)
	req.Header.Set("User-Agent", "OttoHome/1.0")

	c.log.Debug("azure tts: %d chars, voice %s", len(text), c.voice)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("azure tts: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio: %w", err)
	}
	return audio, nil
}

// ssml wraps text in a speak document. The text is XML-escaped so recipe
// steps containing "&" or "<" do not break the request.
func (c *AzureClient) ssml(text string) string {
	var esc bytes.Buffer
	_ = xml.EscapeText(&esc, []byte(text))
	return fmt.Sprintf(
		`<speak version='1.0' xml:lang='en-US'><voice xml:lang='en-US' name='%s'>%s</voice></speak>`,
		c.voice, esc.String(),
	)
}
