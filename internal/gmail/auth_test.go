package gmail

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestLoadOAuthConfigInstalled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	creds := `{"installed": {"client_id": "id-1", "client_secret": "secret-1", "redirect_uris": ["http://localhost"]}}`
	if err := os.WriteFile(path, []byte(creds), 0600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	cfg, err := LoadOAuthConfig(path)
	if err != nil {
		t.Fatalf("LoadOAuthConfig: %v", err)
	}
	if cfg.ClientID != "id-1" || cfg.ClientSecret != "secret-1" {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.RedirectURL != "http://localhost" {
		t.Errorf("redirect = %q", cfg.RedirectURL)
	}
	if len(cfg.Scopes) == 0 {
		t.Error("scopes not set")
	}
}

func TestLoadOAuthConfigWeb(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	creds := `{"web": {"client_id": "id-2", "client_secret": "secret-2"}}`
	if err := os.WriteFile(path, []byte(creds), 0600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	cfg, err := LoadOAuthConfig(path)
	if err != nil {
		t.Fatalf("LoadOAuthConfig: %v", err)
	}
	if cfg.ClientID != "id-2" {
		t.Errorf("client id = %q", cfg.ClientID)
	}
}

func TestLoadOAuthConfigMissing(t *testing.T) {
	if _, err := LoadOAuthConfig(filepath.Join(t.TempDir(), "nope.json")); !errors.Is(err, ErrCredentialsMissing) {
		t.Errorf("err = %v, want ErrCredentialsMissing", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.json")
	os.WriteFile(path, []byte(`{}`), 0600)
	if _, err := LoadOAuthConfig(path); !errors.Is(err, ErrCredentialsMissing) {
		t.Errorf("err = %v, want ErrCredentialsMissing", err)
	}
}

func TestTokenSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")

	token := &oauth2.Token{
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}
	if err := SaveToken(path, token); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}

	loaded, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken: %v", err)
	}
	if loaded.AccessToken != token.AccessToken || loaded.RefreshToken != token.RefreshToken {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestLoadTokenMissing(t *testing.T) {
	if _, err := LoadToken(filepath.Join(t.TempDir(), "token.json")); !errors.Is(err, ErrTokenMissing) {
		t.Errorf("err = %v, want ErrTokenMissing", err)
	}
}
