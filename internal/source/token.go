package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/abdulachik/releasebot/internal/logging"
)

// tokenExpiryMargin is subtracted from the provider's expires_in so a token
// is never used in its final minute.
const tokenExpiryMargin = 60 * time.Second

// TokenCache holds a client-credentials bearer token and refreshes it lazily.
type TokenCache struct {
	httpClient   *http.Client
	authURL      string
	clientID     string
	clientSecret string
	now          func() time.Time

	mu          sync.Mutex
	accessToken string
	expiry      time.Time
}

// TokenCacheConfig holds configuration for a TokenCache.
type TokenCacheConfig struct {
	HTTPClient   *http.Client
	AuthURL      string
	ClientID     string
	ClientSecret string
	Now          func() time.Time
}

// NewTokenCache creates an empty token cache.
func NewTokenCache(cfg TokenCacheConfig) *TokenCache {
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = spotifyAuthURL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &TokenCache{
		httpClient:   newHTTPClient(cfg.HTTPClient),
		authURL:      authURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		now:          now,
	}
}

// Token returns a valid access token, requesting a new one when the cached
// token is missing or expired.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.expiry) {
		return c.accessToken, nil
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL,
		strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request token: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token request failed: %w", &StatusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response has no access_token")
	}

	c.accessToken = tokenResp.AccessToken
	c.expiry = c.now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - tokenExpiryMargin)

	logging.FromContext(ctx).Debug("obtained Spotify access token", "expires_in", tokenResp.ExpiresIn)

	return c.accessToken, nil
}

// Invalidate drops the cached token so the next call requests a new one.
func (c *TokenCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = ""
	c.expiry = time.Time{}
}
