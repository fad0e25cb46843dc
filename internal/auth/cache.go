// Package auth manages the OAuth2 credentials that authorize Google Sheets
// calls: a persistent token store port, an in-process credential cache, and
// the HTTP endpoints for the one-time authorization flow.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ErrMissingCredentials is returned when no token set has been persisted
// yet. TokenStore implementations return it from Token when the store is
// empty; the operator must complete the authorization flow first.
var ErrMissingCredentials = errors.New("no stored credentials - complete the authorization flow first")

// TokenStore persists the OAuth2 token set. The store is the system of
// record; the Cache reads through it at most once per process lifetime.
type TokenStore interface {
	Token(ctx context.Context) (*oauth2.Token, error)
	SaveToken(ctx context.Context, token *oauth2.Token) error
}

// SpreadsheetScope is the only scope this service requests.
const SpreadsheetScope = "https://www.googleapis.com/auth/spreadsheets"

// NewConfig builds the OAuth2 configuration for the spreadsheet scope. The
// callback endpoint is served under redirectBase.
func NewConfig(clientID, clientSecret, redirectBase string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectBase + "/oauthcallback",
		Scopes:       []string{SpreadsheetScope},
		Endpoint:     google.Endpoint,
	}
}

// Cache holds the process-wide authorized HTTP client. It starts empty and
// loads the token set from the store on first use; once loaded, callers get
// the cached client without touching persistent storage again. Token
// refresh is left to the oauth2 transport, which refreshes automatically
// when the stored token carries a refresh token.
type Cache struct {
	mu     sync.Mutex
	config *oauth2.Config
	store  TokenStore
	client *http.Client
}

// NewCache creates an empty credential cache backed by store.
func NewCache(config *oauth2.Config, store TokenStore) *Cache {
	return &Cache{
		config: config,
		store:  store,
	}
}

// Client returns an HTTP client that authorizes requests with the stored
// credentials. The first call reads the token set from the store; repeated
// calls return the cached client.
func (c *Cache) Client(ctx context.Context) (*http.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	token, err := c.store.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	// The client outlives this call, so it is not tied to the caller's
	// context.
	c.client = c.config.Client(context.Background(), token)

	return c.client, nil
}

// Seed replaces the cached credentials with a freshly exchanged token set.
// The callback endpoint calls this after persisting new tokens so the next
// append reflects them without a process restart.
func (c *Cache) Seed(token *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.client = c.config.Client(context.Background(), token)
}
