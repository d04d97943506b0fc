package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	dnderr "github.com/KirkDiggler/sheet-bot/internal/errors"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
)

// DefaultUserAgent identifies the bot to the query endpoint
const DefaultUserAgent = "sheet-bot/1.0"

type client struct {
	httpClient  *http.Client
	tokens      oauth2.TokenSource
	userAgent   string
	newDelegate func() Delegate
}

// Config holds the collaborators of the sheets client
type Config struct {
	HttpClient  *http.Client
	TokenSource oauth2.TokenSource
	UserAgent   string

	// NewDelegate builds the retry delegate for each Fetch. Defaults to DefaultDelegate.
	NewDelegate func() Delegate
}

// New creates a sheets client
func New(cfg *Config) (Client, error) {
	if cfg == nil {
		return nil, dnderr.InvalidArgument("sheets config is required")
	}
	if cfg.TokenSource == nil {
		return nil, dnderr.InvalidArgument("sheets token source is required")
	}

	c := &client{
		httpClient:  cfg.HttpClient,
		tokens:      cfg.TokenSource,
		userAgent:   cfg.UserAgent,
		newDelegate: cfg.NewDelegate,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.newDelegate == nil {
		c.newDelegate = func() Delegate { return DefaultDelegate{} }
	}

	return c, nil
}

func (c *client) Fetch(ctx context.Context, queryURL string) (string, error) {
	dlg := c.newDelegate()

	for {
		token, err := c.token(dlg)
		if err != nil {
			return "", err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
		if err != nil {
			return "", &ClientError{Kind: KindHTTPError, Err: err}
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err == nil {
			var body string
			body, err = readBody(resp)
			if err == nil {
				if resp.StatusCode >= 200 && resp.StatusCode < 300 {
					return body, nil
				}
				serverErr := parseServerError(body)
				if wait, retry := dlg.HTTPFailure(resp, serverErr); retry {
					log.Printf("[Sheets] status %d, retrying in %v", resp.StatusCode, wait)
					if err := sleep(ctx, wait); err != nil {
						return "", &ClientError{Kind: KindHTTPError, Err: err}
					}
					continue
				}
				return "", statusError(resp.StatusCode, body, serverErr)
			}
		}

		// No usable response: the request failed or the body could not be read
		if ctx.Err() != nil {
			return "", &ClientError{Kind: KindHTTPError, Err: ctx.Err()}
		}
		if wait, retry := dlg.HTTPError(err); retry {
			log.Printf("[Sheets] request failed, retrying in %v: %v", wait, err)
			if err := sleep(ctx, wait); err != nil {
				return "", &ClientError{Kind: KindHTTPError, Err: err}
			}
			continue
		}
		return "", &ClientError{Kind: KindHTTPError, Err: err}
	}
}

func (c *client) token(dlg Delegate) (string, error) {
	tok, err := c.tokens.Token()
	if err == nil && tok.AccessToken != "" {
		return tok.AccessToken, nil
	}
	if err == nil {
		err = errors.New("token source returned an empty access token")
	}

	if fallback, ok := dlg.Token(err); ok && fallback != "" {
		return fallback, nil
	}
	return "", &ClientError{Kind: KindMissingToken, Err: err}
}

func readBody(resp *http.Response) (string, error) {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// parseServerError returns the body as structured error content, or nil
func parseServerError(body string) json.RawMessage {
	if !gjson.Valid(body) {
		return nil
	}
	parsed := gjson.Parse(body)
	if !parsed.IsObject() && !parsed.IsArray() {
		return nil
	}
	return json.RawMessage(parsed.Raw)
}

func statusError(status int, body string, serverErr json.RawMessage) *ClientError {
	if serverErr == nil {
		return &ClientError{Kind: KindFailure, StatusCode: status, Body: body}
	}

	parsed := gjson.ParseBytes(serverErr)
	msg := parsed.Get("error.message").String()
	if msg == "" {
		msg = parsed.Get("message").String()
	}

	return &ClientError{
		Kind:          KindBadRequest,
		StatusCode:    status,
		Body:          body,
		ServerError:   serverErr,
		ServerMessage: msg,
	}
}

// sleep waits for d without holding anything but the calling goroutine
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
