package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/possuite/backoffice/internal/api"
	"github.com/possuite/backoffice/internal/api/handler"
	"github.com/possuite/backoffice/internal/api/metrics"
	"github.com/possuite/backoffice/internal/infrastructure/db/mongo"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	var skipIndexes bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), skipIndexes)
		},
	}
	cmd.Flags().BoolVar(&skipIndexes, "skip-indexes", false, "Do not create MongoDB indexes on startup")
	return cmd
}

func serve(parent context.Context, skipIndexes bool) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := bootstrap(ctx, "backoffice-api")
	if err != nil {
		return err
	}
	defer a.close()

	if !skipIndexes {
		if err := mongo.EnsureIndexes(ctx, a.db); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	a.mailQueue.Start(workerCtx)

	router := api.NewRouter(api.Deps{
		Auth:          a.auth,
		Subscriptions: metrics.InstrumentSubscriptions(a.subscriptions),
		Stores:        a.stores,
		Roles:         a.roles,
		Staff:         a.staff,
		Products:      a.products,
		Reports:       a.reports,
		Authenticator: a.authenticator,
		Authorizer:    a.authorizer,
		Limiter:       a.limiter,
		Tenants:       a.stores,
		Health: map[string]handler.DependencyCheck{
			"mongodb": handler.MongoCheck(a.db),
			"redis":   handler.RedisCheck(a.rdb),
		},
		Log: a.log,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort("", a.cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", srv.Addr).Str("env", a.cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		stopWorkers()
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("server forced to shutdown")
	}

	// Stop mail workers once the last request has finished.
	stopWorkers()
	a.mailQueue.Wait()

	a.log.Info().Msg("server exited gracefully")
	return nil
}
