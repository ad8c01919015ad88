// Package remote implements identity.Service against a SecureVault API
// server over HTTP.
//
// Each attempt is bounded by its own timeout. Network errors, 5xx and 429
// responses are retried with exponential backoff; other 4xx responses are
// mapped to the identity sentinel errors and returned at once. When the
// retries run out the last error is wrapped in identity.ErrUnavailable.
//
// Signup creates an account and is not idempotent. It is retried only when
// the request cannot have been processed: the connection was never
// established, or the server refused it with 429 or 503 and a Retry-After
// header.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/aloks98/securevault"
	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/internal/wire"
	"github.com/aloks98/securevault/validation"
)

// Default client settings.
const (
	DefaultTimeout         = 10 * time.Second
	DefaultMaxRetries      = 3
	DefaultInitialInterval = 200 * time.Millisecond
	DefaultMaxInterval     = 5 * time.Second
)

// Config configures a Client.
type Config struct {
	// BaseURL is the server address, e.g. "http://localhost:8080".
	BaseURL string

	// HTTPClient is used for requests. Defaults to a new http.Client.
	HTTPClient *http.Client

	// Timeout bounds a single attempt.
	Timeout time.Duration

	// MaxRetries is the number of retries after the first attempt.
	// Zero uses DefaultMaxRetries; a negative value disables retries.
	MaxRetries int

	// InitialInterval and MaxInterval shape the exponential backoff.
	InitialInterval time.Duration
	MaxInterval     time.Duration

	// SecurityQuestion accompanies recovery answers.
	// Defaults to the first question of validation.SecurityQuestions.
	SecurityQuestion string

	Logger *zap.Logger
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  map[string]string

	// RetryAfter is set when the answer carried a Retry-After header.
	RetryAfter bool

	// Err is the identity sentinel the answer maps to, if any.
	Err error
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("remote: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote: %d %s", e.Status, http.StatusText(e.Status))
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func (e *APIError) transient() bool {
	return e.Status >= 500 || e.Status == http.StatusTooManyRequests
}

// refused reports an answer given before the request was processed.
func (e *APIError) refused() bool {
	return e.RetryAfter && (e.Status == http.StatusTooManyRequests || e.Status == http.StatusServiceUnavailable)
}

// retryable reports whether err may be retried. Requests that are not
// idempotent are retried only when they were never processed.
func retryable(err error, idempotent bool) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if idempotent {
			return apiErr.transient()
		}
		return apiErr.refused()
	}
	if idempotent {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// Client is an identity.Service backed by the HTTP API.
type Client struct {
	base     *url.URL
	http     *http.Client
	timeout  time.Duration
	retries  uint64
	initial  time.Duration
	max      time.Duration
	question string
	logger   *zap.Logger
	closed   atomic.Bool
}

// New creates a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.BaseURL == "" {
		return nil, errors.New("remote: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("remote: unsupported scheme %q", base.Scheme)
	}

	c := &Client{
		base:     base,
		http:     cfg.HTTPClient,
		timeout:  cfg.Timeout,
		retries:  DefaultMaxRetries,
		initial:  cfg.InitialInterval,
		max:      cfg.MaxInterval,
		question: cfg.SecurityQuestion,
		logger:   cfg.Logger,
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if cfg.MaxRetries < 0 {
		c.retries = 0
	} else if cfg.MaxRetries > 0 {
		c.retries = uint64(cfg.MaxRetries)
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.initial <= 0 {
		c.initial = DefaultInitialInterval
	}
	if c.max <= 0 {
		c.max = DefaultMaxInterval
	}
	if c.question == "" {
		c.question = validation.SecurityQuestions()[0]
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c, nil
}

// Login implements identity.Service.
func (c *Client) Login(ctx context.Context, email, password string) (*identity.Result, error) {
	var resp wire.AuthResponse
	err := c.do(ctx, http.MethodPost, "/v1/auth/login", wire.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	return authResult(&resp)
}

// Signup implements identity.Service.
func (c *Client) Signup(ctx context.Context, req identity.SignupRequest) (*identity.Result, error) {
	body := wire.SignupRequest{
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.Password,
		Role:            req.Role.String(),
		Organization:    req.Organization,
	}
	var resp wire.AuthResponse
	if err := c.send(ctx, http.MethodPost, "/v1/auth/signup", body, &resp, false); err != nil {
		return nil, err
	}
	return authResult(&resp)
}

// ResetPassword implements identity.Service.
func (c *Client) ResetPassword(ctx context.Context, email string) (string, error) {
	var resp wire.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/password-reset", wire.PasswordResetRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// RecoverAccount implements identity.Service. Config.SecurityQuestion is
// sent along with the answer.
func (c *Client) RecoverAccount(ctx context.Context, email, answer string) (string, error) {
	body := wire.RecoveryRequest{
		Email:            email,
		SecurityQuestion: c.question,
		SecurityAnswer:   answer,
	}
	var resp wire.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/v1/auth/recover", body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// Ping implements identity.Service.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil)
}

// Close implements identity.Service.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.http.CloseIdleConnections()
	return nil
}

func authResult(resp *wire.AuthResponse) (*identity.Result, error) {
	if resp.User == nil || resp.Token == "" {
		return nil, fmt.Errorf("%w: incomplete auth response", identity.ErrUnavailable)
	}
	if !resp.User.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", identity.ErrUnknownRole, resp.User.Role)
	}
	return &identity.Result{User: resp.User, Token: resp.Token}, nil
}

func (c *Client) backOff(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = c.initial
	eb.MaxInterval = c.max
	eb.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(eb, c.retries), ctx)
}

// do sends an idempotent request.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	return c.send(ctx, method, path, in, out, true)
}

// send sends in as JSON and decodes a 2xx body into out.
func (c *Client) send(ctx context.Context, method, path string, in, out any, idempotent bool) error {
	if c.closed.Load() {
		return identity.ErrUnavailable
	}

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("remote: encode request: %w", err)
		}
	}

	attempt := 0
	op := func() error {
		attempt++
		err := c.attempt(ctx, method, path, payload, out)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if !retryable(err, idempotent) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Debug("retrying identity request",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(op, c.backOff(ctx), notify)
	if err == nil {
		return nil
	}
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && !apiErr.transient() {
		return err
	}
	msg := "identity service unavailable"
	if !idempotent {
		msg = "identity request outcome unknown"
	}
	c.logger.Warn(msg, zap.String("path", path), zap.Int("attempts", attempt), zap.Error(err))
	return fmt.Errorf("%w: %v", identity.ErrUnavailable, err)
}

func (c *Client) attempt(ctx context.Context, method, path string, payload []byte, out any) error {
	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(actx, method, c.base.String()+path, body)
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e := decodeError(resp.StatusCode, data)
		e.RetryAfter = resp.Header.Get("Retry-After") != ""
		return e
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return backoff.Permanent(fmt.Errorf("remote: decode response: %w", err))
	}
	return nil
}

func decodeError(status int, data []byte) *APIError {
	e := &APIError{Status: status}
	var body wire.ErrorResponse
	if json.Unmarshal(data, &body) == nil {
		e.Code = body.Error.Code
		e.Message = body.Error.Message
		e.Fields = body.Error.Fields
	}

	switch e.Code {
	case securevault.CodeInvalidCredentials:
		e.Err = identity.ErrInvalidCredentials
	case securevault.CodeEmailExists:
		e.Err = identity.ErrEmailExists
	case securevault.CodeEmailNotFound:
		e.Err = identity.ErrEmailNotFound
	case securevault.CodeUnknownRole:
		e.Err = identity.ErrUnknownRole
	case securevault.CodeIdentityUnavailable:
		e.Err = identity.ErrUnavailable
	case wire.CodeValidation:
		e.Err = validation.ErrInvalid
		if len(e.Fields) > 0 {
			e.Err = validation.Errors(e.Fields)
		}
	case "":
		switch status {
		case http.StatusUnauthorized:
			e.Err = identity.ErrInvalidCredentials
		case http.StatusNotFound:
			e.Err = identity.ErrEmailNotFound
		case http.StatusConflict:
			e.Err = identity.ErrEmailExists
		}
	}
	return e
}

var _ identity.Service = (*Client)(nil)
