package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swimfit/backend/internal/app"
	"swimfit/backend/internal/config"
	apihttp "swimfit/backend/internal/http"
	"swimfit/backend/internal/logging"
	"swimfit/backend/internal/middleware"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat, nil)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	var verifier middleware.TokenVerifier
	if cfg.RequireAuth {
		verifier = a.Firebase.Auth
		log.Info().Msg("id token auth enabled on /api")
	}

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:              cfg,
		Log:              log,
		Verifier:         verifier,
		ClientSvc:        a.Clients,
		SessionSvc:       a.Sessions,
		AttendanceSvc:    a.Attendance,
		NotificationsSvc: a.Notifications,
		StatsSvc:         a.Stats,
		RetentionSvc:     a.Retention,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 20 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.StoreBackend).Str("project", cfg.ProjectID).Msg("API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
