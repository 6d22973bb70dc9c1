package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Endpoint paths.
const (
	PathRegister       = "/api/auth/register"
	PathLogin          = "/api/auth/login"
	PathMe             = "/api/auth/me"
	PathChangePassword = "/api/auth/change-password"
	PathLogout         = "/api/auth/logout"
)

// SDKClient is a client for the Gatekeeper authentication service. Cookies
// set by the service are kept in HTTPClient's jar, so a client that has
// registered or logged in is authenticated for subsequent calls.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// UseBearer makes the client send the last issued token as an
	// Authorization header as well as the cookie.
	UseBearer bool

	mu    sync.RWMutex
	token string
}

// NewSDKClient creates a client with a fresh cookie jar.
func NewSDKClient(baseURL string) (*SDKClient, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}, nil
}

// Token returns the token from the last successful register or login.
func (c *SDKClient) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the stored token, e.g. one persisted by the caller.
func (c *SDKClient) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Cookies returns the cookies the jar would send to the service.
func (c *SDKClient) Cookies() []*http.Cookie {
	if c.HTTPClient.Jar == nil {
		return nil
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return nil
	}
	return c.HTTPClient.Jar.Cookies(u)
}

// Register creates an account and authenticates the client as it.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, PathRegister, req, http.StatusCreated)
}

// Login authenticates the client with an email and password.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, PathLogin, req, http.StatusOK)
}

func (c *SDKClient) authenticate(ctx context.Context, path string, req any, expected int) (*AuthResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, path, req)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := decodeJSON(resp, &out, expected); err != nil {
		return nil, err
	}

	c.SetToken(out.Token)
	return &out, nil
}

// Me returns the authenticated user.
func (c *SDKClient) Me(ctx context.Context) (*User, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, PathMe, nil)
	if err != nil {
		return nil, err
	}

	var out MeResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ChangePassword replaces the authenticated user's password.
func (c *SDKClient) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	resp, err := c.doJSON(ctx, http.MethodPut, PathChangePassword, req)
	if err != nil {
		return err
	}

	var out MessageResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// Logout ends the session. The service clears both cookies; the stored
// token is dropped as well.
func (c *SDKClient) Logout(ctx context.Context) error {
	resp, err := c.doJSON(ctx, http.MethodPost, PathLogout, nil)
	if err != nil {
		return err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return err
	}

	c.SetToken("")
	return nil
}
