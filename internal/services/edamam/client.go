package edamam

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/chefmate/api/internal/httpclient"
	"github.com/chefmate/api/internal/metrics"
)

const providerName = "Edamam"

// maxErrorBody bounds how much of an error response ends up in logs.
const maxErrorBody = 512

// Hit is one recipe record exactly as the provider returned it.
type Hit = json.RawMessage

type searchResponse struct {
	Hits []json.RawMessage `json:"hits"`
}

// Client calls the Edamam recipe search API.
type Client struct {
	baseURL  string
	appID    string
	appKey   string
	pageSize int
	http     *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces the instrumented default client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithTimeout sets the timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.http = httpclient.New(d)
	}
}

func NewClient(baseURL, appID, appKey string, pageSize int, opts ...Option) *Client {
	c := &Client{
		baseURL:  baseURL,
		appID:    appID,
		appKey:   appKey,
		pageSize: pageSize,
		http:     httpclient.New(30 * time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the first page of hits for query.
func (c *Client) Search(ctx context.Context, query string) ([]Hit, error) {
	return c.SearchRange(ctx, query, 0, c.pageSize)
}

// SearchRange returns hits [from, to) for query. A successful response with
// no hits yields ErrNoRecipes; any failed call yields a *ProviderError.
func (c *Client) SearchRange(ctx context.Context, query string, from, to int) (hits []Hit, err error) {
	startTime := time.Now()
	defer func() {
		callErr := err
		if callErr == ErrNoRecipes {
			callErr = nil
		}
		metrics.RecordExternalCall(ctx, "edamam", "search", startTime, callErr)
	}()

	params := url.Values{}
	params.Set("q", query)
	params.Set("app_id", c.appID)
	params.Set("app_key", c.appKey)
	params.Set("from", strconv.Itoa(from))
	params.Set("to", strconv.Itoa(to))

	httpReq, err := http.NewRequestWithContext(httpclient.WithProvider(ctx, providerName), http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Kind: KindTransport, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		slog.WarnContext(ctx, "Failed to fetch recipes", "query", query, "error", err)
		return nil, &ProviderError{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		slog.WarnContext(ctx, "Recipe provider returned error status",
			"query", query,
			"status", resp.StatusCode,
			"body", string(body),
		)
		return nil, &ProviderError{
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		slog.WarnContext(ctx, "Failed to decode recipe response", "query", query, "error", err)
		return nil, &ProviderError{Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
	}

	if len(out.Hits) == 0 {
		return nil, ErrNoRecipes
	}

	return out.Hits, nil
}
