// Package evolution sends WhatsApp replies through an Evolution API instance.
package evolution

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
	"sync"
	"time"

	"trip-quote-agent/internal/integrations/paramstore"
)

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

// HTTPStatusError captures non-2xx responses from the Evolution API.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("evolution: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client posts text messages to {baseURL}/message/sendText/{instance}. The
// API key is read from Parameter Store on first use.
type Client struct {
	baseURL    string
	instance   string
	httpClient *http.Client
	getter     paramstore.Getter
	keyParam   string

	keyOnce sync.Once
	apiKey  string
	keyErr  error
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(baseURL, instance string, ps paramstore.Getter, keyParam string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("evolution: base url must not be empty")
	}
	if strings.TrimSpace(instance) == "" {
		return nil, errors.New("evolution: instance must not be empty")
	}
	if ps == nil {
		return nil, errors.New("evolution: paramstore getter must not be nil")
	}
	c := &Client{
		baseURL:    baseURL,
		instance:   strings.TrimSpace(instance),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		getter:     ps,
		keyParam:   keyParam,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolveAPIKey(ctx context.Context) (string, error) {
	c.keyOnce.Do(func() {
		c.apiKey, c.keyErr = paramstore.GetToken(ctx, c.getter, c.keyParam)
	})
	if c.keyErr != nil {
		return "", fmt.Errorf("evolution: %w", c.keyErr)
	}
	return c.apiKey, nil
}

// SendText delivers text to the WhatsApp number.
func (c *Client) SendText(ctx context.Context, number, text string) error {
	number = NormalizeNumber(number)
	if number == "" {
		return errors.New("evolution: number must not be empty")
	}
	apiKey, err := c.resolveAPIKey(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(sendTextRequest{Number: number, Text: text})
	if err != nil {
		return fmt.Errorf("evolution: marshal request: %w", err)
	}

	endpoint := c.baseURL + "/message/sendText/" + url.PathEscape(c.instance)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("evolution: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", apiKey)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("evolution: send text: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &HTTPStatusError{StatusCode: res.StatusCode, URL: endpoint, Body: string(buf)}
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// NormalizeNumber strips the WhatsApp JID suffix ("@s.whatsapp.net") and any
// non-digit characters.
func NormalizeNumber(raw string) string {
	if i := strings.IndexByte(raw, '@'); i >= 0 {
		raw = raw[:i]
	}
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
