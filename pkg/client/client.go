package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/jobtracker/jobtracker/pkg/session"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "jobctl"
)

// PasswordFunc supplies the admin password when the session needs to be
// re-established.
type PasswordFunc func(ctx context.Context) (string, error)

// Client talks to the jobtracker API with a session cookie. When a request is
// rejected with 401 and a PasswordFunc is configured, the client logs in again
// and retries that request exactly once. Concurrent rejections share a single
// login.
type Client struct {
	rest      *resty.Client
	baseURL   string
	userAgent string
	timeout   time.Duration
	tlsConfig *tls.Config
	verbose   func(format string, args ...any)

	mu      sync.RWMutex
	token   string
	prompt  PasswordFunc
	onToken func(token string)
	logins  singleflight.Group
}

type Option func(*Client) error

func New(opts ...Option) (*Client, error) {
	c := &Client{
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.baseURL == "" {
		return nil, errors.New("server is required")
	}

	c.rest = resty.New().
		SetBaseURL(c.baseURL).
		SetTimeout(c.timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", c.userAgent).
		SetCookieJar(nil)
	if c.tlsConfig != nil {
		c.rest.SetTLSClientConfig(c.tlsConfig)
	}
	if c.verbose != nil {
		logf := c.verbose
		c.rest.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
			logf("%s %s -> %d (%s) request-id=%s", resp.Request.Method, resp.Request.URL,
				resp.StatusCode(), resp.Time(), resp.Header().Get("X-Request-ID"))
			return nil
		})
	}
	return c, nil
}

func WithServer(server string) Option {
	return func(c *Client) error {
		if server == "" {
			return errors.New("server is required")
		}
		parsed, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("invalid server: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid server %q: scheme must be http or https", server)
		}
		c.baseURL = strings.TrimRight(parsed.String(), "/")
		return nil
	}
}

// WithToken seeds the client with a previously issued session token.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

func WithTLSConfig(caFile string, insecureSkipTLSVerify bool) Option {
	return func(c *Client) error {
		tlsConfig, err := loadTLSConfig(caFile, insecureSkipTLSVerify)
		if err != nil {
			return err
		}
		c.tlsConfig = tlsConfig
		return nil
	}
}

// WithPasswordPrompt enables re-login on 401.
func WithPasswordPrompt(fn PasswordFunc) Option {
	return func(c *Client) error {
		c.prompt = fn
		return nil
	}
}

// WithTokenHook registers fn to be called whenever the session token changes.
// Logout reports an empty token.
func WithTokenHook(fn func(token string)) Option {
	return func(c *Client) error {
		c.onToken = fn
		return nil
	}
}

// WithVerbose logs every response through logf.
func WithVerbose(logf func(format string, args ...any)) Option {
	return func(c *Client) error {
		c.verbose = logf
		return nil
	}
}

func loadTLSConfig(caFile string, insecure bool) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: insecure} // #nosec G402 -- opt-in via flag
	if caFile == "" {
		return tlsConfig, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(data); !ok {
		return nil, errors.New("failed to parse CA file")
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}

// Token returns the current session token, empty when logged out.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	c.token = token
	hook := c.onToken
	c.mu.Unlock()
	if hook != nil {
		hook(token)
	}
}

func (c *Client) newRequest(ctx context.Context, token string) *resty.Request {
	req := c.rest.R().SetContext(ctx).SetError(&apiError{})
	if token != "" {
		req.SetCookie(&http.Cookie{Name: session.CookieName, Value: token})
	}
	return req
}

func (c *Client) send(ctx context.Context, token, method, endpoint string, query url.Values, body, out any) (*resty.Response, error) {
	req := c.newRequest(ctx, token)
	if len(query) > 0 {
		req.SetQueryParamsFromValues(query)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Execute(method, endpoint)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body, out any) error {
	token := c.Token()
	resp, err := c.send(ctx, token, method, endpoint, query, body, out)
	if err != nil {
		return err
	}
	if resp.StatusCode() == http.StatusUnauthorized && c.prompt != nil {
		if err := c.relogin(ctx, token); err != nil {
			return err
		}
		resp, err = c.send(ctx, c.Token(), method, endpoint, query, body, out)
		if err != nil {
			return err
		}
	}
	if resp.IsError() {
		return decodeError(resp)
	}
	return nil
}

// relogin replaces stale with a fresh session. Callers that observed the same
// stale token share one prompt and one login; a caller arriving after the
// token already changed does not log in again.
func (c *Client) relogin(ctx context.Context, stale string) error {
	if c.Token() != stale {
		return nil
	}
	_, err, _ := c.logins.Do("login", func() (any, error) {
		if c.Token() != stale {
			return nil, nil
		}
		password, err := c.prompt(ctx)
		if err != nil {
			return nil, fmt.Errorf("read password: %w", err)
		}
		return nil, c.Login(ctx, password)
	})
	return err
}

type apiError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func decodeError(resp *resty.Response) error {
	httpErr := &HTTPError{StatusCode: resp.StatusCode()}
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil {
		httpErr.Message = strings.TrimSpace(apiErr.Error)
		httpErr.Code = apiErr.Code
	}
	if httpErr.Message == "" {
		httpErr.Message = strings.TrimSpace(string(resp.Body()))
	}
	if httpErr.Message == "" {
		httpErr.Message = resp.Status()
	}
	if secs, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil && secs > 0 {
		httpErr.RetryAfter = time.Duration(secs) * time.Second
	}
	return httpErr
}

type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("request failed (%d): %s (retry in %s)", e.StatusCode, e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err is an HTTPError with the given status code.
func IsStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.StatusCode == status
}
