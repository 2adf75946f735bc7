package provider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/config"
	"github.com/0xweirdlabs/fastapi.prod.starter/pkg/metrics"
	"github.com/sethvargo/go-retry"
	"golang.org/x/oauth2"
)

const serviceLabel = "identity-provider"

// Client is the boundary adapter for the delegated identity provider. It is
// constructed once at boot and safe for concurrent use; when the provider is
// not configured every call returns a misconfigured error instead of panicking.
type Client struct {
	cfg      config.ProviderConfig
	oauth    *oauth2.Config
	http     *http.Client
	external *metrics.ExternalMetrics
}

// New builds a provider client from configuration. ext may be nil.
func New(cfg config.ProviderConfig, ext *metrics.ExternalMetrics) *Client {
	c := &Client{
		cfg:      cfg,
		external: ext,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
	if cfg.Configured() {
		base := strings.TrimRight(cfg.BaseURL, "/")
		c.oauth = &oauth2.Config{
			ClientID:    cfg.APIKey,
			RedirectURL: cfg.RedirectURL,
			Scopes:      strings.Fields(cfg.Scopes),
			Endpoint: oauth2.Endpoint{
				AuthURL:  base + "/authorize",
				TokenURL: base + "/token",
			},
		}
	}
	return c
}

// Configured reports whether delegated flows can be served at all.
func (c *Client) Configured() bool {
	return c != nil && c.oauth != nil
}

// AuthorizationURL builds the provider's consent URL for the named upstream
// provider (e.g. "google"). The returned state embeds the PKCE verifier so the
// callback can complete the exchange statelessly.
func (c *Client) AuthorizationURL(providerName string) (string, error) {
	if !c.Configured() {
		return "", newError(KindMisconfigured, nil)
	}

	verifier := newVerifier()
	state := encodeState(verifier, randomNonce())

	url := c.oauth.AuthCodeURL(
		state,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("provider", providerName),
	)
	return url, nil
}

// ExchangeCode swaps an authorization code for a provider session. Codes are
// single-use; exchange is never retried.
func (c *Client) ExchangeCode(ctx context.Context, code, state string) (*Session, error) {
	if !c.Configured() {
		return nil, newError(KindMisconfigured, nil)
	}
	if code == "" {
		return nil, newError(KindInvalidCode, errors.New("missing authorization code"))
	}

	verifier, err := verifierFromState(state)
	if err != nil {
		return nil, newError(KindInvalidCode, err)
	}

	var token *oauth2.Token
	exchangeErr := c.track(func() error {
		httpCtx := context.WithValue(ctx, oauth2.HTTPClient, c.http)
		var err error
		token, err = c.oauth.Exchange(httpCtx, code, oauth2.VerifierOption(verifier))
		return err
	})
	if exchangeErr != nil {
		return nil, classifyExchange(exchangeErr)
	}

	return &Session{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry,
	}, nil
}

// ValidateToken fetches the user profile behind the bearer token. The fetch is
// idempotent, so transient network failures are retried with backoff; token
// rejections are not.
func (c *Client) ValidateToken(ctx context.Context, token string) (*Profile, error) {
	if !c.Configured() {
		return nil, newError(KindMisconfigured, nil)
	}
	if token == "" {
		return nil, newError(KindInvalidToken, errors.New("empty token"))
	}

	var profile *Profile
	backoff := retry.WithMaxRetries(2, retry.NewFibonacci(100*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		p, err := c.fetchProfile(ctx, token)
		if err != nil {
			if KindOf(err) == KindUnreachable {
				return retry.RetryableError(err)
			}
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		if kind := KindOf(err); kind != "" {
			return nil, err
		}
		return nil, newError(KindUnreachable, err)
	}
	return profile, nil
}

// SignOut revokes the provider session behind the token. Best effort: errors
// are classified but callers typically only log them.
func (c *Client) SignOut(ctx context.Context, token string) error {
	if !c.Configured() {
		return newError(KindMisconfigured, nil)
	}
	return c.track(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/logout"), nil)
		if err != nil {
			return newError(KindUnreachable, err)
		}
		c.authorize(req, token)

		resp, err := c.http.Do(req)
		if err != nil {
			return classifyTransport(err)
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, resp.Body)

		if resp.StatusCode >= http.StatusInternalServerError {
			return newError(KindUnreachable, fmt.Errorf("logout status %d", resp.StatusCode))
		}
		return nil
	})
}

func (c *Client) fetchProfile(ctx context.Context, token string) (*Profile, error) {
	var profile Profile
	err := c.track(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/user"), nil)
		if err != nil {
			return newError(KindUnreachable, err)
		}
		c.authorize(req, token)

		resp, err := c.http.Do(req)
		if err != nil {
			return classifyTransport(err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
				return newError(KindInvalidToken, fmt.Errorf("decode profile: %w", err))
			}
			if profile.ID == "" {
				return newError(KindInvalidToken, errors.New("profile missing subject id"))
			}
			return nil
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return newError(KindInvalidToken, fmt.Errorf("userinfo status %d", resp.StatusCode))
		default:
			return newError(KindUnreachable, fmt.Errorf("userinfo status %d", resp.StatusCode))
		}
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *Client) endpoint(path string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + path
}

func (c *Client) authorize(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
}

func (c *Client) track(fn func() error) error {
	if c.external == nil {
		return fn()
	}
	return c.external.Track(serviceLabel, fn)
}

func classifyTransport(err error) *Error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return newError(KindUnreachable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return newError(KindUnreachable, err)
	}
	return newError(KindUnreachable, err)
}

func classifyExchange(err error) *Error {
	if typed := KindOf(err); typed != "" {
		var existing *Error
		errors.As(err, &existing)
		return existing
	}
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		if retrieveErr.Response != nil && retrieveErr.Response.StatusCode >= http.StatusInternalServerError {
			return newError(KindUnreachable, err)
		}
		return newError(KindInvalidCode, err)
	}
	return classifyTransport(err)
}

func randomNonce() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf)
}
