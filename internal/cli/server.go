package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	transport "movies-battle/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	svc, err := loadServices(ctx, configPath)
	if err != nil {
		return err
	}
	defer svc.Close()
	logger := svc.logger

	if svc.persistent {
		if err := runMigrationsWithConfig(ctx, svc.cfg, logger); err != nil {
			return err
		}
	} else if err := seed(ctx, svc); err != nil {
		// An in-memory server starts empty otherwise.
		logger.Warn("seeding in-memory stores failed", zap.Error(err))
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = svc.cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      transport.NewRouter(svc.games, svc.ranking, svc.catalog, logger.Named("http")),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		logger.Info("starting movies battle", zap.String("port", finalPort), zap.Bool("persistent", svc.persistent))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down server")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
