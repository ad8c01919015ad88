package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aloks98/securevault/api"
	"github.com/aloks98/securevault/ratelimit"
)

const shutdownTimeout = 10 * time.Second

func (a *App) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the mock identity service over HTTP",
		Long: `serve exposes the seeded mock identity service and the role dashboards
as a JSON API. Clients configured with identity.mode=remote talk to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", addr, err)
			}
			return a.serve(cmd.Context(), ln)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.addr)")
	return cmd
}

// serve runs the API on ln until ctx is done.
func (a *App) serve(ctx context.Context, ln net.Listener) error {
	svc, err := a.newMock()
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer svc.Close()

	limiter, err := a.newLimiter()
	if err != nil {
		_ = ln.Close()
		return err
	}
	if limiter != nil {
		defer limiter.Close()
	}

	srv, err := api.New(&api.Config{
		Identity:       svc,
		Directory:      svc.Directory(),
		Issuer:         svc.Issuer(),
		Policy:         a.policy(),
		Limiter:        limiter,
		AllowedOrigins: a.cfg.Server.AllowedOrigins,
		Logger:         a.log.Zap().Named("api"),
	})
	if err != nil {
		_ = ln.Close()
		return err
	}

	httpSrv := srv.HTTPServer(ln.Addr().String())
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.Serve(ln)
	}()
	a.success("Listening on http://%s", ln.Addr())
	a.log.Infow("server started", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.log.Infow("shutting down server")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newLimiter returns nil when rate limiting is disabled.
func (a *App) newLimiter() (ratelimit.Limiter, error) {
	rl := a.cfg.Server.RateLimit
	if !rl.Enabled {
		return nil, nil
	}
	if rl.Backend != "redis" {
		return ratelimit.NewMemoryLimiter(rl.Requests, rl.Window), nil
	}

	rc := a.cfg.Store.Redis
	client := redis.NewClient(&redis.Options{
		Addr:     rc.Addr,
		Password: rc.Password,
		DB:       rc.DB,
	})
	limiter, err := ratelimit.NewRedisLimiter(&ratelimit.RedisConfig{
		Client:   client,
		Requests: rl.Requests,
		Window:   rl.Window,
	})
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &ownedLimiter{RedisLimiter: limiter, client: client}, nil
}

// ownedLimiter closes the Redis client it was built on.
type ownedLimiter struct {
	*ratelimit.RedisLimiter
	client *redis.Client
}

func (l *ownedLimiter) Close() error {
	return errors.Join(l.RedisLimiter.Close(), l.client.Close())
}
