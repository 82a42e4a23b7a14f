package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"notesapi/api"
	"notesapi/config"
	"notesapi/logger"
	"notesapi/ratelimit"

	"github.com/spf13/cobra"
)

var serverPort string

var serverCmd = &cobra.Command{
	Use:         "server",
	Short:       "Starts the notes API server",
	Annotations: map[string]string{storeAnnotation: storeMigrated},
	RunE: func(cmd *cobra.Command, args []string) error {
		port := serverPort
		if !cmd.Flags().Changed("port") && config.AppConfig.Server.Port != "" {
			port = config.AppConfig.Server.Port
		}

		opts := api.Options{DefaultLimit: config.AppConfig.Pagination.DefaultLimit}
		rl := ratelimit.DefaultConfig
		rl.RPS = config.AppConfig.Server.RateLimit.RPS
		rl.Burst = config.AppConfig.Server.RateLimit.Burst
		if rl.Enabled() {
			opts.Limiter = ratelimit.New(rl)
			defer opts.Limiter.Stop()
			logger.Info("Rate limiting clients to %.2f req/s (burst %d)", rl.RPS, rl.Burst)
		}

		router := api.NewRouter(noteService(), tagService(), opts)
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Server listening on :%s (database %s)", port, store.Path())
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Could not start server: %v", err)
				return err
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown failed: %v", err)
			return err
		}
		logger.Info("Server stopped.")
		return nil
	},
}

func init() {
	serverCmd.Flags().StringVarP(&serverPort, "port", "p", config.DefaultServerPort, "Port for the server to listen on")
	rootCmd.AddCommand(serverCmd)
}
