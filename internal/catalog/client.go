package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrTruncated reports that a paginated fetch ended before reaching the
// total announced by the server. The records returned alongside it are
// partial and must not be treated as a complete result set.
var ErrTruncated = errors.New("catalog: paginated result truncated")

// Client talks to the catalog REST API with basic auth.
type Client struct {
	baseURL   string
	username  string
	password  string
	pageLimit int
	pageDelay time.Duration
	http      *http.Client
}

// NewClient builds a catalog client using http.DefaultClient. pageLimit is
// the page size requested per call; pageDelay is the fixed pause between
// page requests to respect rate limits.
func NewClient(baseURL, username, password string, pageLimit int, pageDelay time.Duration) *Client {
	return NewClientWithHTTPClient(baseURL, username, password, pageLimit, pageDelay, http.DefaultClient)
}

// NewClientWithHTTPClient builds a catalog client using a custom HTTP
// client (tests, proxies).
func NewClientWithHTTPClient(baseURL, username, password string, pageLimit int, pageDelay time.Duration, httpClient *http.Client) *Client {
	if pageLimit <= 0 {
		pageLimit = 100
	}
	return &Client{
		baseURL:   baseURL,
		username:  username,
		password:  password,
		pageLimit: pageLimit,
		pageDelay: pageDelay,
		http:      httpClient,
	}
}

// page is the catalog's paginated response envelope. Total is a pointer so
// an absent field can be told apart from zero.
type page struct {
	Results []json.RawMessage `json:"results"`
	Total   *int              `json:"total"`
}

// FetchAll retrieves every record from an offset/limit paginated endpoint.
// The first page's total bounds the loop; when the field is absent the
// first page is taken as the complete result. On any transport, status or
// decode failure the records collected so far are returned together with
// the error, and callers must treat the partial set as a failed fetch.
func (c *Client) FetchAll(ctx context.Context, path string, filters url.Values) ([]json.RawMessage, error) {
	var collected []json.RawMessage
	total := 0
	offset := 0

	for {
		current, err := c.fetchPage(ctx, path, filters, offset)
		if err != nil {
			return collected, err
		}

		if offset == 0 {
			if current.Total != nil {
				total = *current.Total
			} else {
				total = len(current.Results)
			}
		}

		collected = append(collected, current.Results...)
		if len(collected) >= total {
			return collected, nil
		}
		if len(current.Results) == 0 {
			// The server announced more records than it is returning; bail
			// out instead of spinning on empty pages forever.
			return collected, fmt.Errorf("%w: got %d of %d records from %s", ErrTruncated, len(collected), total, path)
		}
		offset += len(current.Results)

		select {
		case <-ctx.Done():
			return collected, ctx.Err()
		case <-time.After(c.pageDelay):
		}
	}
}

func (c *Client) fetchPage(ctx context.Context, path string, filters url.Values, offset int) (page, error) {
	params := url.Values{}
	for key, values := range filters {
		params[key] = values
	}
	params.Set("offset", strconv.Itoa(offset))
	params.Set("limit", strconv.Itoa(c.pageLimit))

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return page{}, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.http.Do(req)
	if err != nil {
		return page{}, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return page{}, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return page{}, fmt.Errorf("read %s: %w", path, err)
	}

	var current page
	if err := json.Unmarshal(body, &current); err != nil {
		return page{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return current, nil
}
