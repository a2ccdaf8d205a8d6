package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jon4hz/bookshelf/internal/api"
	"github.com/jon4hz/bookshelf/internal/bootstrap"
	"github.com/jon4hz/bookshelf/internal/mailer"
	"github.com/jon4hz/bookshelf/internal/password"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Bookshelf server",
	Long:  `Start the Bookshelf web server. The database schema is created and the example users are seeded before the first request is served.`,
	Example: `bookshelf serve --config config.yml
bookshelf serve -c /path/to/config.yml --log-level debug
`,
	RunE: startServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func startServer(cmd *cobra.Command, _ []string) error {
	cfg, db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hasher := password.NewBcrypt(cfg.Auth.BcryptCost)
	if err := bootstrap.Run(ctx, db, hasher, cfg.Seed); err != nil {
		return fmt.Errorf("failed to bootstrap database: %w", err)
	}

	server, err := api.New(cfg, db, hasher, mailer.New(cfg.Email), log.GetLevel() == log.DebugLevel)
	if err != nil {
		return fmt.Errorf("failed to create API server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting API server", "listen", cfg.Listen)
		errCh <- server.Run()
	}()

	log.Info("bookshelf started successfully")
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("API server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}
