package ebay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"
)

// DefaultTokenURL is the production client-credentials endpoint.
const DefaultTokenURL = "https://api.ebay.com/identity/v1/oauth2/token"

// tokenSafetyMargin is subtracted from expires_in so a token is refreshed
// before the upstream actually rejects it.
const tokenSafetyMargin = time.Minute

// TokenCache caches one bearer token for the client-credentials flow,
// shared process-wide. Refresh is singleflight-guarded: concurrent callers
// hitting an expired token share one in-flight exchange.
type TokenCache struct {
	creds    Credentials
	tokenURL string
	scope    string
	client   *resty.Client
	logger   *slog.Logger
	now      func() time.Time

	group singleflight.Group

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

// TokenOption configures a TokenCache.
type TokenOption func(*TokenCache)

// WithTokenURL overrides the token endpoint (tests, sandbox).
func WithTokenURL(url string) TokenOption {
	return func(tc *TokenCache) { tc.tokenURL = url }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) TokenOption {
	return func(tc *TokenCache) { tc.now = now }
}

// NewTokenCache creates a TokenCache for the given credentials.
func NewTokenCache(creds Credentials, logger *slog.Logger, opts ...TokenOption) *TokenCache {
	if logger == nil {
		logger = slog.Default()
	}
	tc := &TokenCache{
		creds:    creds,
		tokenURL: DefaultTokenURL,
		scope:    "https://api.ebay.com/oauth/api_scope",
		client:   resty.New().SetTimeout(15 * time.Second),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(tc)
	}
	return tc
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// Token returns a valid bearer token, exchanging credentials if the cached
// value is absent or within the safety margin of expiry.
func (tc *TokenCache) Token(ctx context.Context) (string, error) {
	if !tc.creds.Configured() {
		return "", ErrCredentialsNotConfigured
	}

	tc.mu.Lock()
	if tc.token != "" && tc.now().Before(tc.expiresAt) {
		token := tc.token
		tc.mu.Unlock()
		return token, nil
	}
	tc.mu.Unlock()

	v, err, _ := tc.group.Do("token", func() (any, error) {
		// Re-check: another caller may have refreshed while we queued.
		tc.mu.Lock()
		if tc.token != "" && tc.now().Before(tc.expiresAt) {
			token := tc.token
			tc.mu.Unlock()
			return token, nil
		}
		tc.mu.Unlock()
		return tc.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (tc *TokenCache) exchange(ctx context.Context) (string, error) {
	var out tokenResponse
	resp, err := tc.client.R().
		SetContext(ctx).
		SetBasicAuth(tc.creds.AppID, tc.creds.CertID).
		SetHeader("Content-Type", "application/x-www-form-urlencoded").
		SetFormData(map[string]string{
			"grant_type": "client_credentials",
			"scope":      tc.scope,
		}).
		SetResult(&out).
		Post(tc.tokenURL)
	if err != nil {
		return "", fmt.Errorf("ebay: token exchange: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("ebay: token exchange: http %d", resp.StatusCode())
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("ebay: token exchange returned empty token")
	}

	expiresAt := tc.now().Add(time.Duration(out.ExpiresIn)*time.Second - tokenSafetyMargin)

	tc.mu.Lock()
	tc.token = out.AccessToken
	tc.expiresAt = expiresAt
	tc.mu.Unlock()

	tc.logger.Debug("ebay: token refreshed", "expires_at", expiresAt)
	return out.AccessToken, nil
}
