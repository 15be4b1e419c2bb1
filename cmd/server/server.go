package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// newHTTPServer builds the server with the configured timeouts.
func (app *application) newHTTPServer(handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         ":" + strconv.Itoa(app.config.Server.Port),
		Handler:      handler,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
	}
}

// startHTTPServer serves router until ctx is cancelled or ListenAndServe
// fails, then shuts down gracefully and releases application resources.
func (app *application) startHTTPServer(ctx context.Context, router http.Handler) error {
	server := app.newHTTPServer(router)

	serveErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", slog.Int("port", app.config.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case err := <-serveErr:
		if err != nil {
			app.logger.Error("server failed", slog.String("error", err.Error()))
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.logger.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", slog.String("error", err.Error()))
		if runErr == nil {
			runErr = fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	app.cleanup()

	if runErr == nil {
		app.logger.Info("server shutdown completed")
	}
	return runErr
}
