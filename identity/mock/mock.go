// Package mock implements identity.Service over an in-process directory.
//
// Every call waits for a configurable simulated latency before answering.
// The wait honours context cancellation. Passwords are accepted but not
// checked unless strict credentials are enabled and the account carries a
// password hash.
package mock

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/password"
	"github.com/aloks98/securevault/token"
)

// Latency is the simulated round-trip time of each operation.
type Latency struct {
	Login          time.Duration
	Signup         time.Duration
	ResetPassword  time.Duration
	RecoverAccount time.Duration
}

// DefaultLatency returns the delays of the demo backend.
func DefaultLatency() Latency {
	return Latency{
		Login:          time.Second,
		Signup:         1500 * time.Millisecond,
		ResetPassword:  time.Second,
		RecoverAccount: time.Second,
	}
}

// Service is an identity.Service backed by an identity.Directory.
type Service struct {
	dir     identity.Directory
	issuer  token.Issuer
	hasher  password.Hasher
	strict  bool
	latency Latency
	newID   func() (string, error)
	logger  *zap.Logger
	closed  atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithLatency overrides the simulated delays. Zero disables a delay.
func WithLatency(l Latency) Option {
	return func(s *Service) { s.latency = l }
}

// WithIssuer sets the token issuer. Defaults to token.MockIssuer.
func WithIssuer(i token.Issuer) Option {
	return func(s *Service) { s.issuer = i }
}

// WithHasher hashes passwords of accounts created by Signup.
func WithHasher(h password.Hasher) Option {
	return func(s *Service) { s.hasher = h }
}

// WithStrictCredentials verifies passwords on Login for accounts that
// have a stored hash. Accounts without a hash still sign in.
func WithStrictCredentials(strict bool) Option {
	return func(s *Service) { s.strict = strict }
}

// WithIDGenerator replaces the UUIDv7 generator used for new accounts.
func WithIDGenerator(fn func() (string, error)) Option {
	return func(s *Service) { s.newID = fn }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a Service over dir.
func New(dir identity.Directory, opts ...Option) *Service {
	s := &Service{
		dir:     dir,
		issuer:  token.NewMockIssuer(),
		latency: DefaultLatency(),
		newID:   newTimeOrderedID,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Directory returns the underlying directory.
func (s *Service) Directory() identity.Directory {
	return s.dir
}

// Issuer returns the token issuer.
func (s *Service) Issuer() token.Issuer {
	return s.issuer
}

// Login implements identity.Service.
func (s *Service) Login(ctx context.Context, email, pass string) (*identity.Result, error) {
	if err := s.begin(ctx, s.latency.Login); err != nil {
		return nil, err
	}

	rec, err := s.dir.FindByEmail(ctx, email)
	if errors.Is(err, identity.ErrUserNotFound) {
		return nil, identity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if s.strict && rec.PasswordHash != "" {
		ok, err := password.Verify(pass, rec.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("verify password: %w", err)
		}
		if !ok {
			return nil, identity.ErrInvalidCredentials
		}
	}

	res, err := s.result(&rec.User)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("login", zap.String("user_id", rec.User.ID), zap.String("role", rec.User.Role.String()))
	return res, nil
}

// Signup implements identity.Service.
func (s *Service) Signup(ctx context.Context, req identity.SignupRequest) (*identity.Result, error) {
	if err := s.begin(ctx, s.latency.Signup); err != nil {
		return nil, err
	}
	if !req.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", identity.ErrUnknownRole, req.Role)
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("generate id: %w", err)
	}

	rec := &identity.Record{
		User: identity.User{
			ID:           id,
			Email:        req.Email,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
			Role:         req.Role,
			Organization: req.Organization,
		},
	}
	if s.hasher != nil {
		if rec.PasswordHash, err = s.hasher.Hash(req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.dir.Create(ctx, rec); err != nil {
		return nil, err
	}

	res, err := s.result(&rec.User)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("signup", zap.String("user_id", id), zap.String("role", req.Role.String()))
	return res, nil
}

// ResetPassword implements identity.Service. No credential is changed.
func (s *Service) ResetPassword(ctx context.Context, email string) (string, error) {
	if err := s.begin(ctx, s.latency.ResetPassword); err != nil {
		return "", err
	}
	if err := s.exists(ctx, email); err != nil {
		return "", err
	}
	return identity.MessagePasswordReset, nil
}

// RecoverAccount implements identity.Service. The answer is not verified.
func (s *Service) RecoverAccount(ctx context.Context, email, _ string) (string, error) {
	if err := s.begin(ctx, s.latency.RecoverAccount); err != nil {
		return "", err
	}
	if err := s.exists(ctx, email); err != nil {
		return "", err
	}
	return identity.MessageAccountRecovery, nil
}

// Ping implements identity.Service.
func (s *Service) Ping(ctx context.Context) error {
	if s.closed.Load() {
		return identity.ErrUnavailable
	}
	return ctx.Err()
}

// Close implements identity.Service.
func (s *Service) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *Service) begin(ctx context.Context, d time.Duration) error {
	if s.closed.Load() {
		return identity.ErrUnavailable
	}
	return sleep(ctx, d)
}

func (s *Service) exists(ctx context.Context, email string) error {
	_, err := s.dir.FindByEmail(ctx, email)
	if errors.Is(err, identity.ErrUserNotFound) {
		return identity.ErrEmailNotFound
	}
	return err
}

func (s *Service) result(u *identity.User) (*identity.Result, error) {
	tok, err := s.issuer.Issue(u.ID, map[string]any{"role": u.Role.String()})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &identity.Result{User: u.Clone(), Token: tok}, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func newTimeOrderedID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ identity.Service = (*Service)(nil)
