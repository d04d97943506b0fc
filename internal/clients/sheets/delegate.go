package sheets

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Delegate decides how a single Fetch reacts to failures.
// A new Delegate is created for every Fetch, so implementations may keep per-call state.
type Delegate interface {
	// Token is consulted once when the token source fails. Returning false gives up.
	Token(err error) (string, bool)

	// HTTPError is consulted when the request produced no response.
	HTTPError(err error) (time.Duration, bool)

	// HTTPFailure is consulted for a non-2xx response. serverErr is nil when the
	// body was not structured error content.
	HTTPFailure(resp *http.Response, serverErr json.RawMessage) (time.Duration, bool)
}

// DefaultDelegate never retries and has no fallback token
type DefaultDelegate struct{}

func (DefaultDelegate) Token(error) (string, bool) { return "", false }

func (DefaultDelegate) HTTPError(error) (time.Duration, bool) { return 0, false }

func (DefaultDelegate) HTTPFailure(*http.Response, json.RawMessage) (time.Duration, bool) {
	return 0, false
}

// BackoffConfig tunes the exponential back-off used between attempts
type BackoffConfig struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// MaxElapsedTime bounds the whole retry sequence. Zero means no time bound.
	MaxElapsedTime time.Duration

	// MaxRetries bounds the number of retries. Zero means no count bound.
	MaxRetries uint64
}

// DefaultBackoffConfig returns the limits used by the bot
func DefaultBackoffConfig() *BackoffConfig {
	return &BackoffConfig{
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     15 * time.Second,
		MaxElapsedTime:  2 * time.Minute,
		MaxRetries:      8,
	}
}

// backoffDelegate retries transport errors, 429 and 5xx responses
type backoffDelegate struct {
	b       backoff.BackOff
	maxWait time.Duration
}

// NewBackoffDelegate creates a Delegate backed by an exponential back-off
func NewBackoffDelegate(cfg *BackoffConfig) Delegate {
	if cfg == nil {
		cfg = DefaultBackoffConfig()
	}

	eb := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		eb.InitialInterval = cfg.InitialInterval
	}
	if cfg.MaxInterval > 0 {
		eb.MaxInterval = cfg.MaxInterval
	}
	eb.MaxElapsedTime = cfg.MaxElapsedTime
	eb.Reset()

	var b backoff.BackOff = eb
	if cfg.MaxRetries > 0 {
		b = backoff.WithMaxRetries(eb, cfg.MaxRetries)
	}

	return &backoffDelegate{b: b, maxWait: eb.MaxInterval}
}

// BackoffDelegateFactory returns a constructor suitable for Config.NewDelegate
func BackoffDelegateFactory(cfg *BackoffConfig) func() Delegate {
	return func() Delegate {
		return NewBackoffDelegate(cfg)
	}
}

func (d *backoffDelegate) Token(error) (string, bool) {
	return "", false
}

func (d *backoffDelegate) HTTPError(error) (time.Duration, bool) {
	return d.next()
}

func (d *backoffDelegate) HTTPFailure(resp *http.Response, _ json.RawMessage) (time.Duration, bool) {
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
		return 0, false
	}

	wait, ok := d.next()
	if !ok {
		return 0, false
	}

	// Retry-After in seconds wins over our own schedule, capped at MaxInterval
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs > 0 {
		wait = min(time.Duration(secs)*time.Second, d.maxWait)
	}

	return wait, true
}

func (d *backoffDelegate) next() (time.Duration, bool) {
	wait := d.b.NextBackOff()
	if wait == backoff.Stop {
		return 0, false
	}
	return wait, true
}
