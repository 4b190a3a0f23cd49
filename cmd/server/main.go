// Copyright 2026 The AgentVox Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agentvox/agentvox/internal/apikey"
	"github.com/agentvox/agentvox/internal/audit"
	"github.com/agentvox/agentvox/internal/billing"
	"github.com/agentvox/agentvox/internal/config"
	"github.com/agentvox/agentvox/internal/identity"
	"github.com/agentvox/agentvox/internal/observability/logger"
	"github.com/agentvox/agentvox/internal/observability/metrics"
	"github.com/agentvox/agentvox/internal/observability/tracing"
	"github.com/agentvox/agentvox/internal/session"
	"github.com/agentvox/agentvox/internal/store/postgres"
	"github.com/agentvox/agentvox/internal/team"
	transportHTTP "github.com/agentvox/agentvox/internal/transport/http"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.InitLogger(logger.Config{
		Level:       cfg.Observability.LogLevel,
		Format:      cfg.Observability.LogFormat,
		ServiceName: cfg.Observability.ServiceName,
	})
	slog.Info("starting agentvox control plane", logger.Component("server"), slog.String("mode", cfg.Server.Mode))

	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := runMigrate(cfg); err != nil {
			fmt.Printf("Migration failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx := context.Background()

	// Initialize tracer
	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	}
	defer tracer.Shutdown(ctx)

	// Initialize meter and register the Prometheus HTTP collectors
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	}
	metrics.RegisterPrometheus()

	// Initialize database
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		slog.Error("failed to connect to database", logger.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	keyRepo := postgres.NewAPIKeyRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	inviteRepo := postgres.NewInviteRepository(db)
	tenantRepo := postgres.NewTenantRepository(db)

	// Audit entries go to the durable store and mirror into the log stream.
	recorder := &audit.Tee{Store: auditRepo, Stream: audit.NewSlogRecorder()}

	passwordHasher := identity.NewPasswordHasher(
		cfg.Security.Argon2Memory,
		cfg.Security.Argon2Iterations,
		cfg.Security.Argon2Parallelism,
		cfg.Security.Argon2SaltLength,
		cfg.Security.Argon2KeyLength,
	)

	tokens, err := session.NewTokenService(
		[]byte(cfg.Session.TokenSecret),
		cfg.Session.Issuer,
		cfg.Session.Audience,
		cfg.Session.AccessTTL,
		cfg.Session.RefreshTTL,
	)
	if err != nil {
		slog.Error("failed to initialize token service", logger.Error(err))
		os.Exit(1)
	}

	guard := session.NewGuard(userRepo, sessionRepo, passwordHasher, tokens, session.NewTOTPVerifier(), recorder)

	keyCache, err := apikey.NewValidityCache(cfg.Security.APIKeyCacheSize)
	if err != nil {
		slog.Error("failed to initialize api key cache", logger.Error(err))
		os.Exit(1)
	}
	keyService := apikey.NewService(keyRepo, keyCache, recorder)

	teamEnforcer := team.NewEnforcer(memberRepo, inviteRepo, cfg.Plans.Limits(), tenantRepo, guard, recorder)
	refundGate := billing.NewGate(recorder)

	// Rate limiter
	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	// Configure SameSite mode
	sameSite := http.SameSiteLaxMode
	switch cfg.Session.CookieSameSite {
	case "Strict":
		sameSite = http.SameSiteStrictMode
	case "None":
		sameSite = http.SameSiteNoneMode
	}

	// Initialize HTTP handler
	handler := transportHTTP.NewHandler(
		guard,
		tokens,
		keyService,
		teamEnforcer,
		refundGate,
		auditRepo,
		userRepo,
		meter,
		transportHTTP.SessionConfig{
			CookieName:     cfg.Session.CookieName,
			CookieSecure:   cfg.Session.CookieSecure,
			CookieSameSite: sameSite,
		},
	)

	// One process serves exactly one plane. The other plane's routes do not
	// exist on this router.
	router := transportHTTP.NewRouter(handler, rateLimiter, cfg.Server.Mode)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Purge expired sessions and invites in the background
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			now := time.Now()
			if n, err := sessionRepo.DeleteExpired(ctx, now); err != nil {
				slog.ErrorContext(ctx, "failed to purge expired sessions", logger.Error(err))
			} else if n > 0 {
				slog.InfoContext(ctx, "purged expired sessions", logger.RowsAffected(int64(n)))
			}
			if n, err := inviteRepo.DeleteExpired(ctx, now); err != nil {
				slog.ErrorContext(ctx, "failed to purge expired invites", logger.Error(err))
			} else if n > 0 {
				slog.InfoContext(ctx, "purged expired invites", logger.RowsAffected(int64(n)))
			}
		}
	}()

	// Start server
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		slog.Info(fmt.Sprintf("listening on %s", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", logger.Error(err))
	}

	slog.Info("server stopped")
}

func runMigrate(cfg *config.Config) error {
	ctx := context.Background()
	db, err := postgres.New(ctx, postgres.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		User:         cfg.Database.User,
		Password:     cfg.Database.Password,
		Database:     cfg.Database.Database,
		SSLMode:      cfg.Database.SSLMode,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	fmt.Println("Applying initial schema...")
	if err := db.Migrate(ctx, postgres.InitialSchema); err != nil {
		return err
	}
	fmt.Println("Migration successful.")
	return nil
}
