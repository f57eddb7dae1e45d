package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/activityboard/internal/api"
	"example.com/activityboard/internal/apiclient"
	"example.com/activityboard/internal/board"
	"example.com/activityboard/internal/config"
	httptransport "example.com/activityboard/internal/transport/http"
	"example.com/activityboard/internal/view"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.New(cfg.APIBaseURL, cfg.APITimeout, apiclient.WithLogger(logger))
	sessions := api.NewSessions(func() *board.Board {
		return board.New(view.NewDocument(cfg.Title), client,
			board.WithLogger(logger),
			board.WithHideDelay(cfg.StatusHideDelay),
		)
	}, api.WithIdleTimeout(cfg.SessionIdle), api.WithSecureCookie(cfg.CSRFSecure))

	router := mux.NewRouter()
	api.NewHandler(sessions, logger).RegisterRoutes(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.Use(api.RequestLogger(logger))

	var handler http.Handler = router
	if cfg.CSRFKey != "" {
		handler = csrf.Protect([]byte(cfg.CSRFKey),
			csrf.FieldName(api.CSRFField),
			csrf.Secure(cfg.CSRFSecure),
			csrf.Path("/"),
		)(router)
	} else {
		logger.Warn("CSRF_KEY not set; form posts are not CSRF protected")
	}

	serverCfg := httptransport.ServerConfig{
		Address:         cfg.HTTPAddress,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
	server := httptransport.NewServer(serverCfg, handler)

	logger.Info("activity board listening", "address", cfg.HTTPAddress, "api", cfg.APIBaseURL)
	if err := httptransport.Serve(ctx, server, serverCfg); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("activity board stopped")
}
