package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"chatroom/internal/reaper"
	"chatroom/internal/retention"
	"chatroom/pkg/api"
	"chatroom/pkg/chat"
	"chatroom/pkg/config"
	"chatroom/pkg/logger"
	"chatroom/pkg/security"
	"chatroom/pkg/store"
	"chatroom/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff     config.EffectiveConfigResult
	version string

	st  *store.Store
	svc *chat.Service
	srv *http.Server
}

// New validates the effective config, opens the store and builds the core
// service. It does not start the HTTP server or the background loops;
// call Run to start those and block until shutdown.
func New(eff config.EffectiveConfigResult, version string) (*App, error) {
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	validation.SetRules(validation.Rules{
		NameMaxLen: eff.Config.Limits.NameMaxLen,
		TextMaxLen: eff.Config.Limits.TextMaxLen,
	})

	st, err := store.Open(eff.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}
	// participants survive a restart; seed the gauge from disk
	if ps, err := st.ListParticipants(); err == nil {
		store.ParticipantsActive.Set(float64(len(ps)))
	}

	return &App{eff: eff, version: version, st: st, svc: chat.New(st)}, nil
}

// Service exposes the core for tests and tooling.
func (a *App) Service() *chat.Service { return a.svc }

// Run starts the reaper, the retention scheduler and the HTTP server, and
// blocks until ctx is canceled or a fatal server error occurs. The store
// is closed on the way out.
func (a *App) Run(ctx context.Context) error {
	stopReaper := reaper.Start(ctx, a.svc, a.eff.Config.Presence)
	defer stopReaper()

	stopRetention, err := retention.Start(ctx, a.st, a.eff.Config.Retention)
	if err != nil {
		_ = a.st.Close()
		return err
	}
	defer stopRetention()

	sec := security.SecConfig{
		AllowedOrigins: a.eff.Config.Security.CORS.AllowedOrigins,
		RPS:            a.eff.Config.Security.RateLimit.RPS,
		Burst:          a.eff.Config.Security.RateLimit.Burst,
		MaxBodySize:    int64(a.eff.Config.Limits.MaxBodySize),
	}
	a.srv = &http.Server{
		Addr:              a.eff.Addr,
		Handler:           security.Middleware(sec)(api.Handler(a.svc)),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http_listening", "addr", a.eff.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown_requested")
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = a.srv.Shutdown(shCtx)
		return a.st.Close()
	case err := <-errCh:
		_ = a.st.Close()
		return err
	}
}
