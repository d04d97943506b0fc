package sheets_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/KirkDiggler/sheet-bot/internal/clients/sheets"
	"github.com/stretchr/testify/assert"
)

func response(status int, retryAfter string) *http.Response {
	header := http.Header{}
	if retryAfter != "" {
		header.Set("Retry-After", retryAfter)
	}
	return &http.Response{StatusCode: status, Header: header}
}

func TestDefaultDelegate_NeverRetries(t *testing.T) {
	dlg := sheets.DefaultDelegate{}

	_, ok := dlg.Token(errors.New("boom"))
	assert.False(t, ok)

	_, retry := dlg.HTTPError(errors.New("boom"))
	assert.False(t, retry)

	_, retry = dlg.HTTPFailure(response(http.StatusServiceUnavailable, ""), nil)
	assert.False(t, retry)
}

func TestBackoffDelegate_HTTPFailure(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		retryAfter string
		wantRetry  bool
		wantWait   time.Duration
	}{
		{name: "not found is final", status: http.StatusNotFound},
		{name: "bad request is final", status: http.StatusBadRequest},
		{name: "too many requests retries", status: http.StatusTooManyRequests, wantRetry: true},
		{name: "server error retries", status: http.StatusBadGateway, wantRetry: true},
		{name: "retry-after is honored", status: http.StatusServiceUnavailable, retryAfter: "7", wantRetry: true, wantWait: 7 * time.Second},
		{name: "retry-after is capped at max interval", status: http.StatusTooManyRequests, retryAfter: "3600", wantRetry: true, wantWait: 10 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dlg := sheets.NewBackoffDelegate(&sheets.BackoffConfig{
				InitialInterval: time.Millisecond,
				MaxInterval:     10 * time.Second,
				MaxRetries:      3,
			})

			wait, retry := dlg.HTTPFailure(response(tt.status, tt.retryAfter), nil)
			assert.Equal(t, tt.wantRetry, retry)
			if tt.wantWait > 0 {
				assert.Equal(t, tt.wantWait, wait)
			}
		})
	}
}

func TestBackoffDelegate_StopsAfterMaxRetries(t *testing.T) {
	dlg := sheets.NewBackoffDelegate(&sheets.BackoffConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxRetries:      2,
	})

	_, retry := dlg.HTTPError(errors.New("reset"))
	assert.True(t, retry)
	_, retry = dlg.HTTPError(errors.New("reset"))
	assert.True(t, retry)
	_, retry = dlg.HTTPError(errors.New("reset"))
	assert.False(t, retry, "third retry exceeds the cap")
}

func TestBackoffDelegateFactory_FreshStatePerCall(t *testing.T) {
	factory := sheets.BackoffDelegateFactory(&sheets.BackoffConfig{
		InitialInterval: time.Millisecond,
		MaxInterval:     time.Millisecond,
		MaxRetries:      1,
	})

	first := factory()
	_, retry := first.HTTPError(errors.New("reset"))
	assert.True(t, retry)
	_, retry = first.HTTPError(errors.New("reset"))
	assert.False(t, retry)

	second := factory()
	_, retry = second.HTTPError(errors.New("reset"))
	assert.True(t, retry, "a new delegate starts with a full retry budget")
}
