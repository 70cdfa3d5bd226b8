// Package remote fetches the content catalog and its translations from the
// document-store REST API.
//
// Every collection is listed with
//
//	GET {base}/v1/collections/{collection}/documents?pageToken=...
//
// and pages are followed until nextPageToken is empty. Rate limits and 5xx
// responses are retried with exponential backoff.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Config configures a Client.
type Config struct {
	BaseURL  string
	Token    string
	PageSize int
	Timeout  time.Duration
}

// Client interfaces with the content API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	pageSize   int
	retryDelay func(attempt int) time.Duration
}

// NewClient creates a new content API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		pageSize:   cfg.PageSize,
		retryDelay: calculateRetryDelay,
	}
}

// FetchLullabies returns the lullaby catalog.
func (c *Client) FetchLullabies(ctx context.Context) ([]Lullaby, error) {
	return fetchAll[Lullaby](ctx, c, CollectionLullabies)
}

// FetchLullabyTranslations returns every lullaby name translation.
func (c *Client) FetchLullabyTranslations(ctx context.Context) ([]LullabyTranslation, error) {
	return fetchAll[LullabyTranslation](ctx, c, CollectionLullabyTranslations)
}

// FetchStories returns the story catalog.
func (c *Client) FetchStories(ctx context.Context) ([]Story, error) {
	return fetchAll[Story](ctx, c, CollectionStories)
}

// FetchStoryNameTranslations returns every story name/audio translation.
func (c *Client) FetchStoryNameTranslations(ctx context.Context) ([]StoryNameTranslation, error) {
	return fetchAll[StoryNameTranslation](ctx, c, CollectionStoryNameTranslations)
}

// FetchStoryDescriptionTranslations returns every story description translation.
func (c *Client) FetchStoryDescriptionTranslations(ctx context.Context) ([]StoryDescriptionTranslation, error) {
	return fetchAll[StoryDescriptionTranslation](ctx, c, CollectionStoryDescriptionTranslations)
}

// FetchStoryAudioLanguages returns the narrated-language lists.
func (c *Client) FetchStoryAudioLanguages(ctx context.Context) ([]StoryAudioLanguage, error) {
	return fetchAll[StoryAudioLanguage](ctx, c, CollectionStoryAudioLanguages)
}

func fetchAll[T any](ctx context.Context, c *Client, collection string) ([]T, error) {
	docs, err := c.ListAll(ctx, collection)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", collection, err)
	}

	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := doc.Decode(&v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, doc.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// ListAll fetches every document of collection by following all pages
func (c *Client) ListAll(ctx context.Context, collection string) ([]Document, error) {
	var all []Document
	var pageToken string

	for {
		resp, err := c.List(ctx, collection, pageToken)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Documents...)

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}

	return all, nil
}

// List fetches one page of collection, retrying transient failures
func (c *Client) List(ctx context.Context, collection, pageToken string) (*ListResponse, error) {
	u, err := url.Parse(c.baseURL + "/v1/collections/" + url.PathEscape(collection) + "/documents")
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	q := u.Query()
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	if c.pageSize > 0 {
		q.Set("pageSize", strconv.Itoa(c.pageSize))
	}
	u.RawQuery = q.Encode()

	var resp *ListResponse
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.retryDelay(attempt)):
			}
		}

		resp, lastErr = c.doListRequest(ctx, u.String())
		if lastErr == nil {
			return resp, nil
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doListRequest(ctx context.Context, url string) (*ListResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var listResp ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &listResp, nil
}

func calculateRetryDelay(attempt int) time.Duration {
	delay := initialRetryDelay
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
