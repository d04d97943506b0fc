package sheets_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KirkDiggler/sheet-bot/internal/clients/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type failingTokenSource struct{}

func (failingTokenSource) Token() (*oauth2.Token, error) {
	return nil, errors.New("metadata server unreachable")
}

// scriptedDelegate retries immediately a fixed number of times
type scriptedDelegate struct {
	fallbackToken string
	retries       int
	httpErrors    int
	failures      int
}

func (d *scriptedDelegate) Token(error) (string, bool) {
	return d.fallbackToken, d.fallbackToken != ""
}

func (d *scriptedDelegate) HTTPError(error) (time.Duration, bool) {
	d.httpErrors++
	return 0, d.httpErrors <= d.retries
}

func (d *scriptedDelegate) HTTPFailure(*http.Response, json.RawMessage) (time.Duration, bool) {
	d.failures++
	return 0, d.failures <= d.retries
}

func staticTokens(token string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
}

func newClient(t *testing.T, httpClient *http.Client, tokens oauth2.TokenSource, dlg sheets.Delegate) sheets.Client {
	t.Helper()
	c, err := sheets.New(&sheets.Config{
		HttpClient:  httpClient,
		TokenSource: tokens,
		NewDelegate: func() sheets.Delegate { return dlg },
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresTokenSource(t *testing.T) {
	_, err := sheets.New(&sheets.Config{})
	assert.Error(t, err)

	_, err = sheets.New(nil)
	assert.Error(t, err)
}

func TestFetch_ReturnsBodyWithHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, sheets.DefaultUserAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`"Strength","12"`))
	}))
	defer server.Close()

	c := newClient(t, server.Client(), staticTokens("secret-token"), sheets.DefaultDelegate{})

	body, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, `"Strength","12"`, body)
}

func TestFetch_MissingToken(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	c := newClient(t, server.Client(), failingTokenSource{}, sheets.DefaultDelegate{})

	_, err := c.Fetch(context.Background(), server.URL)
	require.Error(t, err)

	var clientErr *sheets.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, sheets.KindMissingToken, clientErr.Kind)
	assert.Zero(t, atomic.LoadInt32(&calls), "no request should be sent without a token")
}

func TestFetch_TokenFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer fallback", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	c := newClient(t, server.Client(), failingTokenSource{}, &scriptedDelegate{fallbackToken: "fallback"})

	body, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}

func TestFetch_RetriesTransportFailure(t *testing.T) {
	var attempts int32
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			return nil, errors.New("connection reset by peer")
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{},
			Body:       io.NopCloser(strings.NewReader(`"Strength","12"`)),
		}, nil
	})

	dlg := &scriptedDelegate{retries: 1}
	c := newClient(t, &http.Client{Transport: transport}, staticTokens("tok"), dlg)

	body, err := c.Fetch(context.Background(), "https://example.invalid/tq")
	require.NoError(t, err)
	assert.Equal(t, `"Strength","12"`, body)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
	assert.Equal(t, 1, dlg.httpErrors)
}

func TestFetch_TransportFailureWithoutRetry(t *testing.T) {
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("no route to host")
	})

	c := newClient(t, &http.Client{Transport: transport}, staticTokens("tok"), sheets.DefaultDelegate{})

	_, err := c.Fetch(context.Background(), "https://example.invalid/tq")
	require.Error(t, err)

	var clientErr *sheets.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, sheets.KindHTTPError, clientErr.Kind)
	assert.Contains(t, clientErr.Error(), "no route to host")
}

func TestFetch_StatusErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    sheets.ErrorKind
		wantMessage string
	}{
		{
			name:        "structured error payload",
			status:      http.StatusBadRequest,
			body:        `{"error":{"code":400,"message":"Invalid query"}}`,
			wantKind:    sheets.KindBadRequest,
			wantMessage: "Invalid query",
		},
		{
			name:     "unstructured body",
			status:   http.StatusInternalServerError,
			body:     "<html>oops</html>",
			wantKind: sheets.KindFailure,
		},
		{
			name:     "json scalar is not structured",
			status:   http.StatusForbidden,
			body:     `"denied"`,
			wantKind: sheets.KindFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			c := newClient(t, server.Client(), staticTokens("tok"), sheets.DefaultDelegate{})

			_, err := c.Fetch(context.Background(), server.URL)
			require.Error(t, err)

			var clientErr *sheets.ClientError
			require.ErrorAs(t, err, &clientErr)
			assert.Equal(t, tt.wantKind, clientErr.Kind)
			assert.Equal(t, tt.status, clientErr.StatusCode)
			assert.Equal(t, tt.body, clientErr.Body)
			assert.Equal(t, tt.wantMessage, clientErr.ServerMessage)
		})
	}
}

func TestFetch_RetriesStatusFailure(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("done"))
	}))
	defer server.Close()

	c := newClient(t, server.Client(), staticTokens("tok"), &scriptedDelegate{retries: 3})

	body, err := c.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "done", body)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestFetch_CancelledWhileWaiting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newClient(t, server.Client(), staticTokens("tok"), sheets.NewBackoffDelegate(&sheets.BackoffConfig{
		InitialInterval: time.Hour,
		MaxInterval:     time.Hour,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := c.Fetch(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 10*time.Second)

	var clientErr *sheets.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, sheets.KindHTTPError, clientErr.Kind)
}
