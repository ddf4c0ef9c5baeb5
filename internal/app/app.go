// Package app wires the roster sync components together and manages their lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/stacklok/roster-sync/internal/config"
)

// RosterApp runs the admin HTTP server, the event loop and the reconciliation schedule
type RosterApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the coordinator in the background and serves HTTP until the server stops
func (app *RosterApp) Start() error {
	listener, err := net.Listen("tcp", app.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", app.httpServer.Addr, err)
	}
	return app.StartWithListener(listener)
}

// StartWithListener is Start on an existing listener (useful for testing with port 0)
func (app *RosterApp) StartWithListener(listener net.Listener) error {
	go func() {
		if err := app.components.Coordinator.Start(app.ctx); err != nil {
			slog.Error("Coordinator failed", "error", err)
		}
	}()

	slog.Info("Server listening", "address", listener.Addr().String())
	if err := app.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Stop stops the coordinator, shuts the HTTP server down within timeout and releases storage
func (app *RosterApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if err := app.components.Coordinator.Stop(); err != nil {
		slog.Error("Failed to stop coordinator", "error", err)
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.httpServer.Shutdown(shutdownCtx)
	app.components.Close()
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *RosterApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *RosterApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the application components
func (app *RosterApp) Components() *AppComponents {
	return app.components
}
