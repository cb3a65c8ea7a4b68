package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flivyn/flivynterm/pkg/auth"
	"github.com/flivyn/flivynterm/pkg/configuration"
	"github.com/flivyn/flivynterm/pkg/logger"
	"github.com/flivyn/flivynterm/pkg/metrics"
	"github.com/flivyn/flivynterm/pkg/resources"
	"github.com/flivyn/flivynterm/pkg/store"
	"github.com/flivyn/flivynterm/pkg/terminal"
	tlsmanager "github.com/flivyn/flivynterm/pkg/tls"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve terminal sessions over HTTP and WebSocket",
	RunE:  runServe,
}

const shutdownTimeout = 10 * time.Second

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	interpreter, err := newInterpreter()
	if err != nil {
		return err
	}

	dbPath := configuration.GetString("Database", "path", "flivynterm.db")
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database %s: %w", dbPath, err)
	}
	defer st.Close()
	logger.Info(logger.AreaDatabase, "Database tables successfully initialized at %s", dbPath)

	registry := resources.NewRegistry(resources.LimitsFromConfig())
	registry.StartCleanup(ctx, configuration.GetDuration("Sessions", "cleanup_interval", 5*time.Minute))

	opts := terminal.OptionsFromConfig()
	opts.Interpreter = interpreter
	opts.Recorder = st
	opts.Registry = registry
	handler := terminal.NewHandler(opts)
	defer handler.Shutdown()

	tlsManager, err := tlsmanager.NewManager(tlsmanager.ConfigFromSettings())
	if err != nil {
		return fmt.Errorf("TLS manager initialization failed: %w", err)
	}

	mux := newMux(handler, st, registry)
	return listen(ctx, metrics.Middleware(mux), tlsManager)
}

func newMux(handler *terminal.Handler, st *store.Store, registry *resources.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", handler.HandleWebSocket)
	mux.HandleFunc("/api/auth/session", auth.HandleCreateSession)
	mux.HandleFunc("/api/auth/validate", auth.HandleTokenValidation)
	mux.HandleFunc("/api/auth/logout", auth.HandleLogout)
	mux.HandleFunc("/api/stats", statsHandler(handler, st, registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("ok\n"))
	})

	if configuration.GetBool("Metrics", "enabled", true) {
		path := configuration.GetString("Metrics", "path", "/metrics")
		mux.Handle(path, metrics.Handler())
		logger.Info(logger.AreaMetrics, "Prometheus metrics exposed at %s", path)
	}

	staticDir := configuration.GetString("Server", "static_dir", "web")
	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
		logger.Info(logger.AreaGeneral, "Serving static files from %s", staticDir)
	} else {
		logger.Warn(logger.AreaGeneral, "Static directory %s not found, serving API only", staticDir)
	}
	return mux
}

type serverStats struct {
	Live      resources.Stats `json:"live"`
	Connected int             `json:"connected"`
	History   store.Stats     `json:"history"`
}

func statsHandler(handler *terminal.Handler, st *store.Store, registry *resources.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		history, err := st.Stats(r.Context(), 10)
		if err != nil {
			logger.Error(logger.AreaDatabase, "Stats query failed: %v", err)
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(serverStats{
			Live:      registry.Stats(),
			Connected: handler.ConnectedClients(),
			History:   history,
		})
	}
}

// listen runs the plain HTTP server and, when TLS is enabled, the HTTPS
// server next to it until ctx is cancelled or a server fails.
func listen(ctx context.Context, h http.Handler, tlsManager *tlsmanager.Manager) error {
	addr := configuration.GetString("Server", "listen_address", ":8080")
	errCh := make(chan error, 2)
	var servers []*http.Server

	start := func(srv *http.Server, serve func() error) {
		servers = append(servers, srv)
		go func() {
			if err := serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server on %s: %w", srv.Addr, err)
			}
		}()
	}

	if tlsManager.Enabled() {
		httpsSrv := &http.Server{
			Addr:              ":" + tlsManager.HTTPSPort(),
			Handler:           h,
			TLSConfig:         tlsManager.TLSConfig(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info(logger.AreaGeneral, "Starting HTTPS server on %s", httpsSrv.Addr)
		start(httpsSrv, func() error { return httpsSrv.ListenAndServeTLS("", "") })

		if tlsManager.NeedsHTTPServer() {
			h = tlsManager.HTTPHandler(h)
		}
	}

	httpSrv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	logger.Info(logger.AreaGeneral, "Starting HTTP server on %s", addr)
	start(httpSrv, httpSrv.ListenAndServe)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info(logger.AreaGeneral, "Shutting down")
	case runErr = <-errCh:
		logger.Error(logger.AreaGeneral, "Server failed: %v", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn(logger.AreaGeneral, "Shutdown of %s: %v", srv.Addr, err)
		}
	}
	return runErr
}
