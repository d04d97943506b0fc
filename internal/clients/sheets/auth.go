package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ReadonlyScope is enough to run visualization queries against a spreadsheet
const ReadonlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

// NewServiceAccountTokenSource reads a service account key file and returns a
// token source that refreshes access tokens as they expire
func NewServiceAccountTokenSource(ctx context.Context, credentialsPath string, scopes ...string) (oauth2.TokenSource, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("credentials path is required")
	}
	if len(scopes) == 0 {
		scopes = []string{ReadonlyScope}
	}

	key, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read application credentials: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(key, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse application credentials: %w", err)
	}

	return jwtConfig.TokenSource(ctx), nil
}
