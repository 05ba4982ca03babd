package main

import (
	"net/http"
	"os"
	"time"

	"pup-hangouts/internal/adapters/notify/webhook"
	"pup-hangouts/internal/platform/config"
	"pup-hangouts/internal/platform/logger"
	"pup-hangouts/internal/ports/notify"
	"pup-hangouts/internal/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewFromEnv().Error("invalid configuration", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	log := logger.NewFromEnv().With(map[string]any{"app": cfg.AppName})

	var sender notify.Sender
	if cfg.NotifyBaseURL != "" {
		s, err := webhook.NewSender(webhook.Config{
			BaseURL: cfg.NotifyBaseURL,
			APIKey:  cfg.NotifyAPIKey,
		})
		if err != nil {
			log.Error("invalid notify config", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		sender = s
	}

	r := router.NewRouter(router.Options{
		AuthVerifier:   nil, // sin verifier para modo dev
		Sender:         sender,
		NotifyEnabled:  cfg.NotifyEnabled,
		NotifyThrottle: cfg.NotifyThrottle,
		Log:            log,
	})

	addr := ":" + cfg.Port

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
