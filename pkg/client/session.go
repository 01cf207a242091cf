package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jobtracker/jobtracker/pkg/session"
)

// ErrNoSessionCookie is returned when a successful login response carries no
// session cookie.
var ErrNoSessionCookie = errors.New("login response carried no session cookie")

type loginRequest struct {
	Password string `json:"password"`
}

// Login exchanges the admin password for a session token. Login never
// triggers the re-login policy.
func (c *Client) Login(ctx context.Context, password string) error {
	resp, err := c.newRequest(ctx, "").
		SetHeader("Content-Type", "application/json").
		SetBody(loginRequest{Password: password}).
		Post("/api/login")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == session.CookieName && ck.Value != "" {
			c.setToken(ck.Value)
			return nil
		}
	}
	return ErrNoSessionCookie
}

// Logout clears the session on the server and locally. The local token is
// dropped even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	token := c.Token()
	resp, err := c.newRequest(ctx, token).Post("/api/logout")
	c.setToken("")
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	return c.do(ctx, http.MethodGet, "/health", nil, nil, &out)
}
