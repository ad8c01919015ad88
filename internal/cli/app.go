package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/aloks98/securevault"
	"github.com/aloks98/securevault/identity"
	idmemory "github.com/aloks98/securevault/identity/memory"
	"github.com/aloks98/securevault/identity/mock"
	"github.com/aloks98/securevault/identity/remote"
	"github.com/aloks98/securevault/internal/config"
	"github.com/aloks98/securevault/internal/logger"
	"github.com/aloks98/securevault/password"
	"github.com/aloks98/securevault/rbac"
	"github.com/aloks98/securevault/store"
	"github.com/aloks98/securevault/store/memory"
	redisstore "github.com/aloks98/securevault/store/redis"
	sqlstore "github.com/aloks98/securevault/store/sql"
	"github.com/aloks98/securevault/token"
)

// App carries the state shared by every command of one invocation.
type App struct {
	v          *viper.Viper
	configPath string

	cfg *config.Config
	log *logger.Logger

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// mockService is set by openIdentity in mock mode.
	mockService *mock.Service
}

// NewApp creates an App reading from in and writing to out and errOut.
func NewApp(in io.Reader, out, errOut io.Writer) *App {
	return &App{
		v:      viper.New(),
		in:     in,
		out:    out,
		errOut: errOut,
		log:    logger.Nop(),
	}
}

func (a *App) load() error {
	cfg, err := config.Load(a.v, a.configPath)
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log.WithComponent("cli")
	return nil
}

func (a *App) openStore() (store.Store, error) {
	sc := a.cfg.Store
	switch sc.Driver {
	case "memory":
		return memory.New(), nil

	case "redis":
		return redisstore.New(&redisstore.Config{
			Addr:      sc.Redis.Addr,
			Password:  sc.Redis.Password,
			DB:        sc.Redis.DB,
			Namespace: a.cfg.Profile,
		})

	default:
		dialect, err := sqlstore.ParseDialect(sc.Driver)
		if err != nil {
			return nil, err
		}
		dsn := sc.DSN
		if dialect == sqlstore.SQLite {
			if dsn, err = sqlstore.SQLiteDSN(dsn); err != nil {
				return nil, fmt.Errorf("failed to prepare sqlite database: %w", err)
			}
		}
		return sqlstore.New(&sqlstore.Config{
			Dialect:     dialect,
			DSN:         dsn,
			TablePrefix: sc.TablePrefix,
			Namespace:   a.cfg.Profile,
		})
	}
}

func (a *App) openIdentity() (identity.Service, error) {
	ic := a.cfg.Identity
	if ic.Mode == "remote" {
		return remote.New(&remote.Config{
			BaseURL:    ic.RemoteURL,
			Timeout:    ic.Timeout,
			MaxRetries: ic.MaxRetries,
			Logger:     a.log.Zap().Named("remote"),
		})
	}

	svc, err := a.newMock()
	if err != nil {
		return nil, err
	}
	a.mockService = svc
	return svc, nil
}

func (a *App) newMock() (*mock.Service, error) {
	ic := a.cfg.Identity

	hasher, err := password.New(ic.PasswordHasher)
	if err != nil {
		return nil, err
	}
	opts := []mock.Option{
		mock.WithHasher(hasher),
		mock.WithStrictCredentials(ic.StrictCredentials),
		mock.WithLogger(a.log.Zap().Named("mock")),
	}
	if !ic.SimulateLatency {
		opts = append(opts, mock.WithLatency(mock.Latency{}))
	}
	if secret := a.cfg.Server.JWTSecret; secret != "" {
		issuer, err := token.NewJWTIssuer(&token.Config{
			Secret: secret,
			TTL:    a.cfg.Server.JWTTTL,
			Issuer: "securevault",
		})
		if err != nil {
			return nil, err
		}
		opts = append(opts, mock.WithIssuer(issuer))
	}
	return mock.New(idmemory.NewSeeded(), opts...), nil
}

// openSession builds a Session from the configuration and restores the
// persisted user.
func (a *App) openSession(ctx context.Context) (*securevault.Session, error) {
	st, err := a.openStore()
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	svc, err := a.openIdentity()
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("failed to create identity service: %w", err)
	}

	sc := a.cfg.Session
	sess, err := securevault.New(
		securevault.WithStore(st),
		securevault.WithIdentity(svc),
		securevault.WithLogger(a.log.Zap()),
		securevault.WithKeys(sc.TokenKey, sc.UserKey),
		securevault.WithOperationTimeout(sc.OperationTimeout),
		securevault.WithAutoMigrate(true),
	)
	if err != nil {
		_ = svc.Close()
		_ = st.Close()
		return nil, err
	}

	if err := sess.Restore(ctx); err != nil {
		a.log.Warnw("could not restore session", "error", err)
	}
	return sess, nil
}

func (a *App) policy() *rbac.Policy {
	return rbac.DefaultPolicy()
}

func (a *App) stdinFile() (*os.File, bool) {
	f, ok := a.in.(*os.File)
	return f, ok
}
