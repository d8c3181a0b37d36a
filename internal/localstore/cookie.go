package localstore

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	cookieRetention = 365 * 24 * time.Hour
	// cookieSizeLimit matches the per-cookie limit browsers enforce on
	// name plus value.
	cookieSizeLimit = 4096
)

// CookieTier stores each key as a Set-Cookie line in a cookie jar file. Values
// are URL-escaped and written with a 365-day lifetime, Path=/ and
// SameSite=Lax. Expired entries read as absent.
type CookieTier struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewCookieTier returns a CookieTier backed by path.
func NewCookieTier(path string) *CookieTier {
	return &CookieTier{path: path, now: time.Now}
}

func (c *CookieTier) Name() string { return "cookie" }

func (c *CookieTier) Get(key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cookies, err := c.read()
	if err != nil {
		return "", err
	}
	for _, ck := range cookies {
		if ck.Name != key {
			continue
		}
		if c.expired(ck) {
			return "", nil
		}
		value, err := url.QueryUnescape(ck.Value)
		if err != nil {
			return "", fmt.Errorf("unescape cookie %s: %w", key, err)
		}
		return value, nil
	}
	return "", nil
}

func (c *CookieTier) Set(key, value string) error {
	escaped := url.QueryEscape(value)
	if len(key)+len(escaped) > cookieSizeLimit {
		return fmt.Errorf("cookie %s (%d bytes): %w", key, len(key)+len(escaped), ErrTooLarge)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	cookies, err := c.read()
	if err != nil {
		cookies = nil
	}

	now := c.now()
	fresh := &http.Cookie{
		Name:     key,
		Value:    escaped,
		Path:     "/",
		MaxAge:   int(cookieRetention / time.Second),
		Expires:  now.Add(cookieRetention).UTC(),
		SameSite: http.SameSiteLaxMode,
	}

	var buf bytes.Buffer
	replaced := false
	for _, ck := range cookies {
		if ck.Name == key {
			ck = fresh
			replaced = true
		}
		buf.WriteString(ck.String())
		buf.WriteByte('\n')
	}
	if !replaced {
		buf.WriteString(fresh.String())
		buf.WriteByte('\n')
	}
	return writeFileAtomic(c.path, buf.Bytes())
}

func (c *CookieTier) expired(ck *http.Cookie) bool {
	if ck.MaxAge < 0 {
		return true
	}
	return !ck.Expires.IsZero() && !c.now().Before(ck.Expires)
}

func (c *CookieTier) read() ([]*http.Cookie, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.path, err)
	}

	var cookies []*http.Cookie
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 8192), 64*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		ck, err := http.ParseSetCookie(line)
		if err != nil {
			// Skip lines another writer mangled.
			continue
		}
		cookies = append(cookies, ck)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", c.path, err)
	}
	return cookies, nil
}
