package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/favtunes/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// DefaultTokenTTL applies when the token endpoint omits expires_in.
const DefaultTokenTTL = time.Hour

// TokenCache implements [TokenSource] with a client credentials exchange and a single memoized token.
//
// The memo is reused while now < expiresAt. Concurrent refreshes share one exchange.
type TokenCache struct {
	config   *clientcredentials.Config
	client   *http.Client
	now      func() time.Time
	observer Observer

	mu        sync.Mutex
	token     string
	expiresAt time.Time
	group     singleflight.Group
}

// TokenCacheOpts configures a [TokenCache].
type TokenCacheOpts struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	HTTPClient   *http.Client     // defaults to [http.DefaultClient]
	Now          func() time.Time // defaults to [time.Now]
	Observer     Observer
}

// NewTokenCache creates a token cache for the given client credentials.
func NewTokenCache(opts TokenCacheOpts) (*TokenCache, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret are required", shared.ErrMissingCredentials)
	}
	if opts.TokenURL == "" {
		return nil, fmt.Errorf("%w: token URL is empty", shared.ErrInvalidConfig)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &TokenCache{
		config: &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		client:   opts.HTTPClient,
		now:      opts.Now,
		observer: opts.Observer,
	}, nil
}

// Token returns the memoized token or exchanges credentials for a new one.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	if token, ok := c.cached(); ok {
		return token, nil
	}

	v, err, _ := c.group.Do("token", func() (any, error) {
		if token, ok := c.cached(); ok {
			return token, nil
		}
		return c.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops the memoized token so the next call exchanges again.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiresAt = time.Time{}
}

func (c *TokenCache) cached() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, true
	}
	return "", false
}

func (c *TokenCache) exchange(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.client)

	tok, err := c.config.Token(ctx)
	if err != nil {
		c.observer.observe("token", "error")
		return "", fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	ttl := DefaultTokenTTL
	if !tok.Expiry.IsZero() {
		ttl = time.Until(tok.Expiry)
	}

	c.mu.Lock()
	c.token = tok.AccessToken
	c.expiresAt = c.now().Add(ttl)
	c.mu.Unlock()

	c.observer.observe("token", "ok")
	return tok.AccessToken, nil
}
