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

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"becca-platform/internal/audit"
	"becca-platform/internal/auth"
	"becca-platform/internal/catalog"
	"becca-platform/internal/channels"
	"becca-platform/internal/config"
	"becca-platform/internal/dispatch"
	"becca-platform/internal/history"
	"becca-platform/internal/httpapi"
	"becca-platform/internal/llm"
	"becca-platform/internal/mailer"
	"becca-platform/internal/pricing"
	"becca-platform/internal/reporting"
	"becca-platform/internal/search"
	"becca-platform/internal/settings"
	"becca-platform/internal/speech"
	"becca-platform/internal/voice"
	"becca-platform/internal/wallet"
	"becca-platform/pkg/logger"
	"becca-platform/pkg/metrics"
	"becca-platform/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local development convenience; absent in production.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	m := metrics.New("becca")

	voiceClient, err := voice.NewClient(cfg.Voice)
	if err != nil {
		// Voice is the product core; unlike the other adapters it is not optional.
		log.Error("voice adapter init failed", "err", err)
		os.Exit(1)
	}

	channelSvc := channels.NewService(db, channels.RedisCache{RDB: rdb})
	settingsSvc := settings.NewService(db)
	catalogSvc := catalog.NewService(db)
	historySvc := history.NewService(db)
	walletSvc := wallet.NewService(db)
	auditSvc := audit.NewService(audit.NewPostgresRepository(db))
	pricingSvc := pricing.NewService(cfg.Pricing)
	reportSvc := reporting.NewService(reporting.NewPostgresRepository(db))

	dispatcher := dispatch.NewDispatcher(
		dispatch.NewPostgresStore(db),
		voiceClient,
		settingsSvc,
		cfg.Voice.AssistantID,
		cfg.Dispatch,
	).
		WithLock(dispatch.RedisPassLock{RDB: rdb, TTL: cfg.Dispatch.PassTimeout}).
		WithRecorder(historySvc).
		WithMetrics(m)

	h := httpapi.Handlers{
		Auth:        authManager,
		Channels:    channelSvc,
		Settings:    settingsSvc,
		Catalog:     catalogSvc,
		History:     historySvc,
		Wallet:      walletSvc,
		Pricing:     pricingSvc,
		Audit:       auditSvc,
		Reports:     reportSvc,
		Voice:       voiceClient,
		AssistantID: cfg.Voice.AssistantID,
		Dispatcher:  dispatcher,
	}

	// Optional adapters: a missing credential disables the surface, it does
	// not stop the process.
	if c, err := speech.NewClient(cfg.Speech); err != nil {
		log.Warn("speech cloning disabled", "err", err)
	} else {
		h.Speech = c
	}
	if c, err := llm.NewClient(cfg.LLM); err != nil {
		log.Warn("chat gateway disabled", "err", err)
	} else {
		h.LLM = c
	}
	if c, err := search.NewClient(cfg.Search); err != nil {
		log.Warn("web search disabled", "err", err)
	} else {
		h.Search = c
	}
	if c, err := mailer.NewClient(cfg.Email); err != nil {
		log.Warn("email disabled", "err", err)
	} else {
		h.Mailer = c
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpapi.CORS())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, authManager)

	runner := dispatch.Runner{Dispatcher: dispatcher, Interval: cfg.Dispatch.Interval}
	go runner.Run(logger.With(rootCtx, log))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		// Chat streams over SSE; the write timeout must cover a whole stream.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
