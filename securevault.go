// Package securevault holds the signed-in state of a SecureVault client.
//
// A Session mediates between an identity service, which authenticates and
// registers users, and a key-value store, which persists the signed-in
// user between runs. The application root creates one Session and passes
// it to whatever needs the current user.
//
// Basic usage:
//
//	sess, err := securevault.New(
//	    securevault.WithStore(memory.New()),
//	    securevault.WithIdentity(mock.New(idmemory.NewSeeded())),
//	)
//	if err != nil {
//	    return err
//	}
//	defer sess.Close()
//
//	if err := sess.Restore(ctx); err != nil {
//	    return err
//	}
//	user, err := sess.Login(ctx, "admin@securetech.com", "password")
package securevault

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/aloks98/securevault/identity"
	"github.com/aloks98/securevault/store"
)

// Session is the signed-in state of one client. It is safe for
// concurrent use.
type Session struct {
	config   *Config
	store    store.Store
	creds    *store.Credentials
	identity identity.Service
	logger   *zap.Logger
	group    singleflight.Group

	// flightMu protects flights
	flightMu sync.Mutex
	flights  map[string]*flight

	// mu protects the fields below
	mu       sync.RWMutex
	user     *identity.User
	token    string
	restored bool
	inflight int
	subs     map[int]func(State)
	nextSub  int
	closed   bool
}

// New creates a Session with the given options.
// WithStore and WithIdentity must be provided.
//
// The session starts in the loading state; call Restore to load the
// persisted credentials.
func New(opts ...Option) (*Session, error) {
	cfg := NewConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.store == nil {
		return nil, ErrStoreRequired
	}
	if cfg.identity == nil {
		return nil, ErrIdentityRequired
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		config:   cfg,
		store:    cfg.store,
		creds:    store.NewCredentialsWithKeys(cfg.store, cfg.TokenKey, cfg.UserKey),
		identity: cfg.identity,
		logger:   logger.Named("session"),
		subs:     make(map[int]func(State)),
		flights:  make(map[string]*flight),
	}

	if cfg.AutoMigrate {
		if err := s.store.Migrate(context.Background()); err != nil {
			return nil, fmt.Errorf("failed to migrate store: %w", err)
		}
	}

	return s, nil
}

// Config returns the current configuration.
// The returned config should not be modified.
func (s *Session) Config() *Config {
	return s.config
}

// Store returns the underlying store.
func (s *Session) Store() store.Store {
	return s.store
}

// Identity returns the identity service.
func (s *Session) Identity() identity.Service {
	return s.identity
}

// Restore loads the persisted credentials. The session becomes
// authenticated only if both the token and a decodable user are present;
// an incomplete or corrupt pair is removed from storage and the session
// becomes anonymous.
func (s *Session) Restore(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	token, user, err := s.creds.Load(ctx)
	switch {
	case err == nil:
		s.logger.Debug("restored session", zap.String("user_id", user.ID))
		s.transition(func() {
			s.user, s.token, s.restored = user, token, true
		})
		return nil

	case errors.Is(err, store.ErrNoCredentials):
		s.transition(func() { s.restored = true })
		return nil

	case errors.Is(err, store.ErrIncomplete), errors.Is(err, store.ErrCorrupt):
		s.logger.Warn("discarding unusable persisted credentials", zap.Error(err))
		s.transition(func() { s.restored = true })
		if cerr := s.creds.Clear(ctx); cerr != nil {
			return wrapError(fmt.Errorf("%w: %v", ErrStoreUnavailable, cerr))
		}
		return nil

	default:
		s.logger.Error("failed to read persisted credentials", zap.Error(err))
		s.transition(func() { s.restored = true })
		return wrapError(fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
}

// Login signs in the account registered under email. On success the
// token and user are persisted and the session becomes authenticated. On
// failure the previous state is kept.
func (s *Session) Login(ctx context.Context, email, password string) (*identity.User, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "login\x00"+email+"\x00"+password, func(ctx context.Context) (*identity.Result, error) {
		return s.identity.Login(ctx, email, password)
	})
}

// Signup registers a new account and signs it in.
func (s *Session) Signup(ctx context.Context, req identity.SignupRequest) (*identity.User, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.authenticate(ctx, "signup\x00"+fmt.Sprint(req), func(ctx context.Context) (*identity.Result, error) {
		return s.identity.Signup(ctx, req)
	})
}

func (s *Session) authenticate(ctx context.Context, key string, call func(context.Context) (*identity.Result, error)) (*identity.User, error) {
	if !s.config.Deduplicate {
		u, err := s.signIn(ctx, call)
		if err != nil {
			return nil, err
		}
		return u.Clone(), nil
	}
	return s.joinFlight(ctx, key, call)
}

// signIn performs one identity call and persists its result. Once the
// identity service has accepted the call, the credentials are saved even
// if ctx is cancelled, so a committed signup is never left unsaved.
func (s *Session) signIn(ctx context.Context, call func(context.Context) (*identity.Result, error)) (*identity.User, error) {
	s.begin()
	defer s.end()

	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := call(cctx)
	if err != nil {
		s.logger.Info("authentication failed", zap.Error(err))
		return nil, wrapError(err)
	}

	pctx, pcancel := s.withTimeout(context.WithoutCancel(ctx))
	defer pcancel()
	if err := s.creds.Save(pctx, res.Token, res.User); err != nil {
		s.logger.Error("failed to persist credentials", zap.Error(err))
		return nil, wrapError(fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}

	s.transition(func() {
		s.user, s.token = res.User.Clone(), res.Token
	})
	s.logger.Info("signed in", zap.String("user_id", res.User.ID), zap.String("role", res.User.Role.String()))
	return res.User, nil
}

// Logout removes the persisted credentials and makes the session
// anonymous. Calling it on an anonymous session is a no-op. The in-memory
// state is cleared even when the store fails; the store error is returned.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	var userID string
	s.transition(func() {
		if s.user != nil {
			userID = s.user.ID
		}
		s.user, s.token = nil, ""
		s.restored = true
	})

	if err := s.creds.Clear(ctx); err != nil {
		s.logger.Error("failed to clear persisted credentials", zap.Error(err))
		return wrapError(fmt.Errorf("%w: %v", ErrStoreUnavailable, err))
	}
	if userID != "" {
		s.logger.Info("signed out", zap.String("user_id", userID))
	}
	return nil
}

// ResetPassword asks the identity service to send a reset email and
// returns its confirmation message. The session state is unchanged.
func (s *Session) ResetPassword(ctx context.Context, email string) (string, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	msg, err := s.identity.ResetPassword(cctx, email)
	return msg, wrapError(err)
}

// RecoverAccount starts account recovery and returns the confirmation
// message. The session state is unchanged.
func (s *Session) RecoverAccount(ctx context.Context, email, answer string) (string, error) {
	if err := s.checkOpen(); err != nil {
		return "", err
	}
	cctx, cancel := s.withTimeout(ctx)
	defer cancel()

	msg, err := s.identity.RecoverAccount(cctx, email, answer)
	return msg, wrapError(err)
}

// State returns a snapshot of the session state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *identity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// Token returns the session token, or "".
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a user is signed in.
func (s *Session) IsAuthenticated() bool {
	return s.State().Authenticated
}

// IsLoading reports whether the session is restoring or an
// authentication call is in flight.
func (s *Session) IsLoading() bool {
	return s.State().Loading
}

// Subscribe registers fn to be called with the new state after every
// state change. fn runs on the goroutine that caused the change. The
// returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Ping verifies that the store and the identity service are reachable.
func (s *Session) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := s.identity.Ping(ctx); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	return nil
}

// Close releases the store and the identity service. The persisted
// credentials are kept. Close is idempotent.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.subs = make(map[int]func(State))
	s.mu.Unlock()

	return errors.Join(s.identity.Close(), s.store.Close())
}

func (s *Session) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return wrapError(ErrSessionClosed)
	}
	return nil
}

func (s *Session) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.OperationTimeout > 0 {
		return context.WithTimeout(ctx, s.config.OperationTimeout)
	}
	return context.WithCancel(ctx)
}

func (s *Session) begin() {
	s.transition(func() { s.inflight++ })
}

func (s *Session) end() {
	s.transition(func() { s.inflight-- })
}

// transition applies mutate under the lock and notifies subscribers when
// the visible state changed.
func (s *Session) transition(mutate func()) {
	s.mu.Lock()
	before := s.snapshot()
	mutate()
	after := s.snapshot()

	var subs []func(State)
	if !before.equal(after) {
		subs = make([]func(State), 0, len(s.subs))
		for _, fn := range s.subs {
			subs = append(subs, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(after)
	}
}

// snapshot must be called with mu held.
func (s *Session) snapshot() State {
	return State{
		User:          s.user.Clone(),
		Authenticated: s.user != nil,
		Loading:       !s.restored || s.inflight > 0,
	}
}
