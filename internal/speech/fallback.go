package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultEndpoint is the public text-to-speech endpoint used by the fallback.
	DefaultEndpoint  = "https://translate.google.com/translate_tts?ie=UTF-8&tl=ja&client=tw-ob"
	defaultCacheSize = 32
	maxAudioBytes    = 4 << 20
)

// Fallback fetches synthesized audio over HTTP and caches it in memory.
type Fallback struct {
	endpoint *url.URL
	client   *http.Client
	cache    *lru.Cache[string, []byte]
}

// NewFallback returns a fetcher for endpoint. The phrase is sent as the "q"
// query parameter. The cache holds at most size entries and evicts the
// oldest one first.
func NewFallback(endpoint string, size int, client *http.Client) (*Fallback, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid speech endpoint: %w", err)
	}
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Fallback{endpoint: u, client: client, cache: cache}, nil
}

// Fetch returns the audio for text, from the cache when present.
func (f *Fallback) Fetch(ctx context.Context, text string) ([]byte, error) {
	// Peek keeps insertion order, so eviction drops the oldest fetch.
	if audio, ok := f.cache.Peek(text); ok {
		return audio, nil
	}
	u := *f.endpoint
	q := u.Query()
	q.Set("q", text)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch speech audio: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Best-effort body close.
	}()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speech endpoint returned %s", resp.Status)
	}
	audio, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read speech audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech endpoint returned no audio")
	}
	f.cache.Add(text, audio)
	return audio, nil
}

// Cached reports how many phrases are cached.
func (f *Fallback) Cached() int {
	return f.cache.Len()
}
