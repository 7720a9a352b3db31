package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/baladhub/balad-backend/pkg/api"
	"github.com/baladhub/balad-backend/pkg/auth"
	"github.com/baladhub/balad-backend/pkg/config"
	"github.com/baladhub/balad-backend/pkg/identity"
	"github.com/baladhub/balad-backend/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := newLogger(cfg.Log)

	db, err := storage.Connect(cfg.Postgres)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s3, err := storage.NewS3Client(ctx, cfg.S3)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	var apple identity.AppleExchanger
	if cfg.AppleConfigured() {
		provider, err := identity.NewAppleProvider(identity.AppleConfig{
			TeamID:      cfg.Apple.TeamID,
			ClientID:    cfg.Apple.ClientID,
			BundleID:    cfg.Apple.BundleID,
			KeyID:       cfg.Apple.KeyID,
			PrivateKey:  cfg.Apple.PrivateKey,
			RedirectURL: cfg.Apple.RedirectURL,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to initialize apple sign-in")
		}
		apple = provider
	} else {
		log.Warn("apple sign-in credentials missing, provider disabled")
	}

	var google identity.GoogleExchanger
	if cfg.Google.Enabled {
		google = identity.NewGoogleProvider()
	} else {
		log.Warn("google sign-in disabled")
	}

	issuer := auth.NewSessionIssuer(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	identityHandlers := identity.NewHandlers(storage.NewUserStore(db), issuer, apple, google, log)

	server := api.NewServer(api.Deps{
		DB:       db,
		Store:    s3,
		Identity: identityHandlers,
		Log:      log,
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("graceful shutdown failed")
		}
	}

	log.Info("server stopped")
}

func newLogger(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.JSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
