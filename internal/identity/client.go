// Package identity talks to the external auth provider. Sessions are
// owned by the provider; this package only resolves the bearer token
// of a request into a principal and its directory role.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/logger"
)

// ErrNoSession means the token is absent, expired or unknown to the
// provider. It is the only identity failure that is fatal to a view.
var ErrNoSession = errors.New("no active session")

type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

type SessionService interface {
	GetSession(ctx context.Context, token string) (*Session, error)
	SignOut(ctx context.Context, token string) error
}

// Client is the HTTP client for the auth provider.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) GetSession(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	resp, err := c.do(ctx, http.MethodGet, "/session", token)
	if err != nil {
		return nil, fmt.Errorf("fetching session: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var session Session
		if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
			return nil, fmt.Errorf("decoding session: %w", err)
		}
		return &session, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrNoSession
	default:
		return nil, fmt.Errorf("auth provider returned %d", resp.StatusCode)
	}
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	resp, err := c.do(ctx, http.MethodPost, "/signout", token)
	if err != nil {
		return fmt.Errorf("signing out: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("auth provider returned %d", resp.StatusCode)
	}
	// 4xx means the session was already gone, which is fine.
	return nil
}

func (c *Client) do(ctx context.Context, method, path, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	// The provider is a shared external service; retry transient
	// failures a couple of times before giving up.
	var resp *http.Response
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
			logger.Warn("Identity: retrying auth provider request")
		}
		resp, err = c.http.Do(req)
		if err == nil && resp.StatusCode < 500 {
			return resp, nil
		}
		if resp != nil {
			resp.Body.Close()
		}
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("auth provider returned %d", resp.StatusCode)
}
