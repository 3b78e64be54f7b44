package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/otcheredev/hospital-dashboard/internal/api"
	"github.com/otcheredev/hospital-dashboard/internal/cache"
	"github.com/otcheredev/hospital-dashboard/internal/config"
	"github.com/otcheredev/hospital-dashboard/internal/gateways"
	"github.com/otcheredev/hospital-dashboard/internal/handlers"
	"github.com/otcheredev/hospital-dashboard/internal/metrics"
	"github.com/otcheredev/hospital-dashboard/internal/middleware"
	"github.com/otcheredev/hospital-dashboard/internal/services"
	"github.com/otcheredev/hospital-dashboard/internal/session"
	"github.com/otcheredev/hospital-dashboard/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	// Initialize logger and metrics
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	metrics.Init()
	log.Info().Msg("Starting hospital dashboard client")

	// Pick the durable session backend
	var backend cache.Store
	switch cfg.Session.Backend {
	case "redis":
		addr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
		backend, err = cache.NewRedisStore(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		log.Info().Msg("Redis session backend initialized")
	case "memory":
		backend = cache.NewMemoryStore()
		log.Info().Msg("Memory session backend initialized (sessions will not survive restarts)")
	default:
		backend, err = cache.NewFileStore(cfg.Session.StateDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open state directory")
		}
		log.Info().Str("dir", cfg.Session.StateDir).Msg("File session backend initialized")
	}
	defer backend.Close()

	// Wire session, client and gateways
	store := session.NewStore(backend)
	client := api.NewClient(cfg.API.BaseURL, store, cfg.API.Timeout)
	sessions := session.NewController(store, client)

	patients := gateways.NewPatientGateway(client)
	users := gateways.NewUserGateway(client)
	audit := gateways.NewAuditBrowser(client)
	compliance := gateways.NewComplianceGateway(client)
	exports := gateways.NewExportService(client, cfg.Export.Dir)

	dashboard := services.NewDashboardService(sessions, patients, users, audit, compliance, exports, cfg.Poll.StatsDays)

	dashboard.OnRawModeChange(func(raw bool) {
		log.Info().Bool("raw", raw).Msg("Raw mode toggled, refreshing")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
		defer cancel()
		dashboard.Refresh(ctx)
	})

	ctx := context.Background()

	// Restore or establish a session
	sess := sessions.Bootstrap(ctx)
	if sess.Authenticated() {
		log.Info().Str("username", sess.Username).Str("role", string(sess.Role)).Msg("Restored persisted session")
	} else if cfg.Auth.Username != "" {
		if err := interactiveLogin(ctx, sessions, cfg.Auth.Username, cfg.Auth.Password); err != nil {
			log.Fatal().Err(err).Msg("Login failed")
		}
	} else {
		log.Warn().Msg("No session and no credentials configured; serving anonymous status only")
	}

	// Initial snapshot and polling
	refreshCtx, cancelRefresh := context.WithTimeout(ctx, cfg.API.Timeout)
	dashboard.Refresh(refreshCtx)
	cancelRefresh()

	poller := services.NewPoller(cfg.Poll.Interval)
	poller.Run(dashboard.RefreshStats)
	defer poller.Stop()

	// Local status server
	var srv *http.Server
	if cfg.Status.Enabled {
		r := chi.NewRouter()
		r.Use(chimiddleware.RequestID)
		r.Use(chimiddleware.RealIP)
		r.Use(middleware.Recovery)
		r.Use(middleware.Logging)
		r.Use(chimiddleware.Compress(5))

		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			ExposedHeaders:   []string{"Content-Length", "Content-Type"},
			AllowCredentials: false,
			MaxAge:           300,
		}))

		statusHandler := handlers.NewStatusHandler(sessions, dashboard, compliance)
		r.Get("/health", statusHandler.Health)
		r.Get("/ready", statusHandler.Ready)
		r.Get("/status", statusHandler.Status)

		if cfg.Metrics.Enabled {
			r.Handle("/metrics", promhttp.Handler())
		}

		addr := fmt.Sprintf("%s:%d", cfg.Status.Host, cfg.Status.Port)
		srv = &http.Server{
			Addr:         addr,
			Handler:      r,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}

		go func() {
			log.Info().Str("addr", addr).Msg("Status server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Status server failed to start")
			}
		}()
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")
	poller.Stop()

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Status server forced to shutdown")
		}
	}

	log.Info().Msg("Stopped")
}

// interactiveLogin runs the credential step and prompts on stdin for the
// 6-digit MFA code. A locally rejected code re-prompts without a network
// call; a server rejection re-prompts against the same challenge.
func interactiveLogin(ctx context.Context, sessions *session.Controller, username, password string) error {
	challenge, err := sessions.Login(ctx, username, password)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "MFA code sent to %s\n", challenge.EmailHint)
	reader := bufio.NewReader(os.Stdin)

	for attempt := 0; attempt < 3; attempt++ {
		fmt.Fprint(os.Stderr, "Enter 6-digit code: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read code: %w", err)
		}

		sess, err := sessions.VerifyMFA(ctx, challenge, strings.TrimSpace(line))
		if err != nil {
			if errors.Is(err, api.ErrInvalidInput) {
				fmt.Fprintln(os.Stderr, "Code must be exactly 6 digits")
				continue
			}
			log.Warn().Err(err).Msg("MFA verification rejected")
			continue
		}

		log.Info().Str("username", sess.Username).Str("role", string(sess.Role)).Msg("Logged in")
		return nil
	}

	return fmt.Errorf("mfa verification failed after 3 attempts")
}
