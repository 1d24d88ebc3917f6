package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"taskplanner/internal/adapter/postgres"
	"taskplanner/internal/ai"
	"taskplanner/internal/app"
	"taskplanner/internal/config"

	adapthttp "taskplanner/internal/adapter/http"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	authSvc := app.NewAuthService(db, postgres.NewSessionRepo(db), cfg)
	services := adapthttp.Services{
		Auth:          authSvc,
		Tasks:         app.NewTaskService(db),
		Pomodoro:      app.NewPomodoroService(db),
		Calendar:      app.NewCalendarService(db),
		Notifications: app.NewNotificationService(db),
	}

	oidcCfg, err := buildOIDC(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("configure sso")
	}

	server := adapthttp.New(services, ai.NewClient(cfg), oidcCfg, cfg, logger)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      server.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info().Str("addr", cfg.Addr).Msg("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("serve")
	}
}

func buildOIDC(cfg *config.Config) (adapthttp.OIDCConfig, error) {
	if !cfg.OIDC.Enabled() {
		return adapthttp.OIDCConfig{}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, cfg.OIDC.IssuerURL)
	if err != nil {
		return adapthttp.OIDCConfig{}, err
	}

	return adapthttp.OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: &oauth2.Config{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			RedirectURL:  cfg.OIDC.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}
