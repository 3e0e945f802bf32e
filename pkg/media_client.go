package pkg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrMediaNotFound is returned when the media store has no object for a key.
var ErrMediaNotFound = errors.New("media object not found")

// MediaInfo describes an uploaded object in the media store.
type MediaInfo struct {
	Key             string `json:"key"`
	URL             string `json:"url"`
	SizeBytes       int64  `json:"size_bytes"`
	ContentType     string `json:"content_type"`
	DurationSeconds int    `json:"duration_seconds"`
}

// MediaClient talks to the media storage service
type MediaClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func NewMediaClient(baseURL, apiKey string, timeout time.Duration) *MediaClient {
	return &MediaClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

func (c *MediaClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	reqURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %v", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrMediaNotFound
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return resp, nil
}

// Resolve looks up the metadata of an uploaded object
func (c *MediaClient) Resolve(ctx context.Context, key string) (*MediaInfo, error) {
	resp, err := c.get(ctx, "objects/"+url.PathEscape(key))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var info MediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %v", err)
	}
	if info.Key == "" {
		info.Key = key
	}
	return &info, nil
}

// StaticMedia resolves keys without a media service; the key is taken as
// the playable URL.
type StaticMedia struct{}

func (StaticMedia) Resolve(_ context.Context, key string) (*MediaInfo, error) {
	return &MediaInfo{Key: key, URL: key}, nil
}
