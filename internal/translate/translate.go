package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/jky-sys/Screener-3.0/internal/ratelimit"
)

// NoSummary is the placeholder used when a company has no description.
// It is never sent for translation.
const NoSummary = "暂无简介"

// Translator renders text in another language. Implementations return the
// input unchanged when translation is not possible.
type Translator interface {
	Translate(ctx context.Context, text string) string
}

// Nop returns text unchanged
type Nop struct{}

func (Nop) Translate(_ context.Context, text string) string { return text }

const googleURL = "https://translate.googleapis.com/translate_a/single"

// maxChars keeps the query within the endpoint's URL length limit
const maxChars = 4500

// Google uses the public gtx endpoint of Google Translate
type Google struct {
	target  string
	baseURL string
	client  *http.Client
	limiter *ratelimit.Limiter
	log     zerolog.Logger
}

// NewGoogle creates a translator into target (for example "zh-CN")
func NewGoogle(target string, log zerolog.Logger) *Google {
	if target == "" {
		target = "zh-CN"
	}
	return &Google{
		target:  target,
		baseURL: googleURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: ratelimit.NewLimiter("translate", 30),
		log:     log.With().Str("component", "translate").Logger(),
	}
}

// Translate returns the translation of text, or text itself on any failure
func (g *Google) Translate(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" || text == NoSummary {
		return text
	}
	if n := utf8.RuneCountInString(text); n > maxChars {
		g.log.Debug().Int("runes", n).Int("kept", maxChars).Msg("summary truncated before translation")
		text = truncate(text, maxChars)
	}
	out, err := g.translate(ctx, text)
	if err != nil {
		g.log.Debug().Err(err).Msg("translation failed, keeping original")
		return text
	}
	return out
}

func (g *Google) translate(ctx context.Context, text string) (string, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return "", err
	}

	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", "auto")
	params.Set("tl", g.target)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		g.limiter.SignalRateLimited()
		return "", fmt.Errorf("rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	g.limiter.ResetBackoff()

	// [[["translated","source",...], ...], ...]
	var body []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("empty response")
	}
	var segments [][]any
	if err := json.Unmarshal(body[0], &segments); err != nil {
		return "", fmt.Errorf("decoding segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no translated text")
	}
	return sb.String(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
