package gmail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

var (
	// ErrCredentialsMissing indicates the OAuth client credentials file is absent or unreadable
	ErrCredentialsMissing = errors.New("gmail credentials not configured")
	// ErrTokenMissing indicates no cached OAuth token is available
	ErrTokenMissing = errors.New("gmail token not available")
)

// Scopes requested for the mailbox: read for sync, compose/send for the
// reply producer.
var scopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.compose",
	"https://www.googleapis.com/auth/gmail.send",
}

type credentialsFile struct {
	Installed *clientCredentials `json:"installed"`
	Web       *clientCredentials `json:"web"`
}

type clientCredentials struct {
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURIs []string `json:"redirect_uris"`
}

// LoadOAuthConfig reads a Google OAuth client credentials JSON file
// (either the "installed" or "web" flavor) into an oauth2.Config.
func LoadOAuthConfig(credentialsPath string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialsMissing, err)
	}

	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCredentialsMissing, err)
	}

	cc := creds.Installed
	if cc == nil {
		cc = creds.Web
	}
	if cc == nil || cc.ClientID == "" {
		return nil, ErrCredentialsMissing
	}

	cfg := &oauth2.Config{
		ClientID:     cc.ClientID,
		ClientSecret: cc.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}
	if len(cc.RedirectURIs) > 0 {
		cfg.RedirectURL = cc.RedirectURIs[0]
	}
	return cfg, nil
}

// LoadToken reads a cached oauth2 token from tokenPath
func LoadToken(tokenPath string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMissing, err)
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMissing, err)
	}
	return &token, nil
}

// SaveToken writes a token to tokenPath for reuse across runs
func SaveToken(tokenPath string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(tokenPath, data, 0600)
}

// NewHTTPClient builds an HTTP client whose transport injects and
// refreshes the OAuth token. Refreshed tokens are persisted back to
// tokenPath so the next run does not repeat the refresh.
func NewHTTPClient(credentialsPath, tokenPath string) (*http.Client, error) {
	cfg, err := LoadOAuthConfig(credentialsPath)
	if err != nil {
		return nil, err
	}
	token, err := LoadToken(tokenPath)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	source := &savingTokenSource{
		source:    cfg.TokenSource(ctx, token),
		tokenPath: tokenPath,
		last:      token,
	}
	return oauth2.NewClient(ctx, source), nil
}

// savingTokenSource persists refreshed tokens as a side effect of Token
type savingTokenSource struct {
	source    oauth2.TokenSource
	tokenPath string
	last      *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.source.Token()
	if err != nil {
		return nil, err
	}
	if s.last == nil || token.AccessToken != s.last.AccessToken {
		s.last = token
		// Persisting is best effort; a failed write only costs a refresh
		_ = SaveToken(s.tokenPath, token)
	}
	return token, nil
}
