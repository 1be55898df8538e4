package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	bloggeradapter "github.com/adiwicaksono/blogpanel/internal/adapter/driven/blogger"
	"github.com/adiwicaksono/blogpanel/internal/adapter/driven/fixture"
	googleadapter "github.com/adiwicaksono/blogpanel/internal/adapter/driven/google"
	sqliteadapter "github.com/adiwicaksono/blogpanel/internal/adapter/driven/sqlite"
	httphandler "github.com/adiwicaksono/blogpanel/internal/adapter/driving/http"
	"github.com/adiwicaksono/blogpanel/internal/application"
	"github.com/adiwicaksono/blogpanel/internal/config"
	"github.com/adiwicaksono/blogpanel/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on missing required env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"mode", cfg.Mode,
		"token_refresh_buffer", cfg.TokenRefreshBuffer,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire store adapters.
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.SecretKey)
	blogStore := sqliteadapter.NewBlogRepo(db)
	postStore := sqliteadapter.NewPostRepo(db)
	pageStore := sqliteadapter.NewPageRepo(db)
	commentStore := sqliteadapter.NewCommentRepo(db)
	adminStore := sqliteadapter.NewAdminRepo(db)
	mediaStore := sqliteadapter.NewMediaRepo(db)

	// 6. Credential lifecycle service over the OAuth exchanger.
	exchanger := googleadapter.NewExchanger(cfg.OAuthClientID, cfg.OAuthClientSecret, cfg.OAuthRedirectURL)
	authSvc := application.NewAuthService(credentialStore, exchanger, cfg.TokenRefreshBuffer, slog.Default())

	// 7. Upstream content client: live API or seeded demo fixtures. Demo
	// mode has no OAuth credential, so it gets a synthetic checker too.
	var contentClient driven.ContentClient
	var credChecker application.CredentialChecker = authSvc
	switch cfg.Mode {
	case config.ModeDemo:
		contentClient = fixture.NewClient()
		credChecker = fixture.Credentials{}
		slog.Info("demo mode: serving seeded content, no upstream calls")
	default:
		contentClient = bloggeradapter.NewClient(authSvc, cfg.UpstreamTimeout)
		slog.Info("live mode: upstream client created", "timeout", cfg.UpstreamTimeout)
	}

	// 8. Application services.
	renderer := application.NewRenderer()
	syncSvc := application.NewSyncService(credChecker, contentClient, blogStore, postStore, pageStore, commentStore, renderer, slog.Default())
	sessionSvc := application.NewSessionService(adminStore, cfg.SessionSecret, cfg.SessionTTL, slog.Default())
	statsSvc := application.NewStatsService(syncSvc, slog.Default())
	mediaSvc := application.NewMediaService(mediaStore, cfg.UploadDir, slog.Default())

	// 8b. Bootstrap the initial admin account when configured and absent.
	if cfg.AdminPassword != "" {
		if err := sessionSvc.Bootstrap(ctx, cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	// 9. HTTP handler and server.
	handler := httphandler.NewHandler(authSvc, sessionSvc, syncSvc, statsSvc, mediaSvc,
		cfg.UploadDir, cfg.MaxUploadBytes, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.NewServeMux(handler, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("blogpanel started", "listen_addr", cfg.ListenAddr, "mode", cfg.Mode)

	// 10. Wait for shutdown signal, then drain the HTTP server.
	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	return nil
}
