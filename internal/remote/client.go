package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/five82/iqama/internal/prayer"
)

// ErrDisabled is returned by every call on a client without URL or key.
var ErrDisabled = errors.New("remote sync disabled")

// Store defines the remote operations the app depends on. It is implemented
// by *Client and can be faked in tests.
type Store interface {
	Fetch(ctx context.Context) (prayer.AppState, bool, error)
	Push(ctx context.Context, state prayer.AppState) error
}

// Ensure Client implements Store at compile time.
var _ Store = (*Client)(nil)

// Options configures a Client.
type Options struct {
	URL      string
	APIKey   string
	Table    string
	RecordID string
	// HTTPClient overrides the rate-limited default.
	HTTPClient *http.Client
}

// Client talks to a PostgREST-style table holding a single record.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	apiKey    string
	table     string
	recordID  string
	userAgent string
}

const (
	defaultUserAgent = "iqama/0.1"
	defaultTable     = "prayer_times"
	defaultRecordID  = "masjid-prayer-times"
	requestTimeout   = 5 * time.Second
	restPrefix       = "/rest/v1"
)

// NewClient builds a Client. When URL or API key is blank the returned client
// is disabled; Enabled reports false and every call returns ErrDisabled.
func NewClient(opts Options) (*Client, error) {
	c := &Client{
		apiKey:    strings.TrimSpace(opts.APIKey),
		table:     strings.TrimSpace(opts.Table),
		recordID:  strings.TrimSpace(opts.RecordID),
		userAgent: defaultUserAgent,
		http:      opts.HTTPClient,
	}
	if c.table == "" {
		c.table = defaultTable
	}
	if c.recordID == "" {
		c.recordID = defaultRecordID
	}
	if c.http == nil {
		c.http = newRateLimitedHTTPClient(requestTimeout)
	}

	if strings.TrimSpace(opts.URL) == "" || c.apiKey == "" {
		return c, nil
	}
	base, err := parseBaseURL(opts.URL)
	if err != nil {
		return nil, err
	}
	c.baseURL = base
	return c, nil
}

// Enabled reports whether the client has an endpoint and key.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != nil
}

// Endpoint returns the table URL, or "" when disabled.
func (c *Client) Endpoint() string {
	if !c.Enabled() {
		return ""
	}
	return c.tableURL(nil).String()
}

type row struct {
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data"`
}

// Fetch reads the record. The bool result is false when the table has no row
// for the record id yet.
func (c *Client) Fetch(ctx context.Context) (prayer.AppState, bool, error) {
	if !c.Enabled() {
		return prayer.AppState{}, false, ErrDisabled
	}

	values := url.Values{}
	values.Set("id", "eq."+c.recordID)
	values.Set("select", "data")

	var rows []row
	if err := c.do(ctx, http.MethodGet, c.tableURL(values), nil, nil, &rows); err != nil {
		return prayer.AppState{}, false, err
	}
	if len(rows) == 0 || len(rows[0].Data) == 0 || string(rows[0].Data) == "null" {
		return prayer.AppState{}, false, nil
	}
	return prayer.Decode(rows[0].Data), true, nil
}

// Push upserts the full state as the record's data, replacing whatever the
// remote held.
func (c *Client) Push(ctx context.Context, state prayer.AppState) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	body, err := json.Marshal([]row{{ID: c.recordID, Data: prayer.Encode(state)}})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	values := url.Values{}
	values.Set("on_conflict", "id")
	headers := http.Header{}
	headers.Set("Content-Type", "application/json")
	headers.Set("Prefer", "resolution=merge-duplicates,return=minimal")

	return c.do(ctx, http.MethodPost, c.tableURL(values), headers, body, nil)
}

func (c *Client) tableURL(values url.Values) *url.URL {
	u := *c.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + url.PathEscape(c.table)
	if values != nil {
		u.RawQuery = values.Encode()
	}
	return &u
}

func (c *Client) do(ctx context.Context, method string, reqURL *url.URL, headers http.Header, body []byte, dest any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	for k, v := range headers {
		req.Header[k] = v
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &HTTPError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// parseBaseURL normalizes the configured endpoint and appends the REST prefix
// unless it is already present.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse remote url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse remote url %q: missing host", raw)
	}
	path := strings.TrimSuffix(u.Path, "/")
	if !strings.HasSuffix(path, restPrefix) {
		path += restPrefix
	}
	u.Path = path
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
