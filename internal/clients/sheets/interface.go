package sheets

//go:generate mockgen -destination=mock/mock_client.go -package=mocksheets . Client

import "context"

// Client fetches the raw text of one tabular query
type Client interface {
	// Fetch issues an authenticated GET for queryURL and returns the response body.
	// Transient failures are retried as the delegate decides; the returned error is
	// always a *ClientError.
	Fetch(ctx context.Context, queryURL string) (string, error)
}
