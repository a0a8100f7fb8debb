package main

import (
	"context"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"wishbook/internal/auth"
	"wishbook/internal/channel"
	"wishbook/internal/config"
	"wishbook/internal/contact"
	"wishbook/internal/db"
	"wishbook/internal/genai"
	httpapi "wishbook/internal/http"
	"wishbook/internal/http/handler"
	"wishbook/internal/logger"
	"wishbook/internal/metrics"
	"wishbook/internal/plan"
	"wishbook/internal/render"
	"wishbook/internal/scheduler"
	"wishbook/internal/wish"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if err := logger.Configure(cfg.LogLevel); err != nil {
		logger.Error("invalid log level", "error", err)
		os.Exit(1)
	}

	gdb, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrateAndIndexes(gdb); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	latency := metrics.NewLatencyHistory(metrics.DefaultCapacity)
	gen := genai.NewClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel, latency)
	renderer := &render.Renderer{AssetsDir: cfg.AssetsDir}

	adapters := map[string]channel.Adapter{
		wish.PlatformEmail: &channel.EmailAdapter{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
		},
		wish.PlatformWhatsApp: &channel.WhatsAppAdapter{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			From:       cfg.TwilioWhatsAppFrom,
		},
		wish.PlatformTelegram: &channel.TelegramAdapter{
			Token: cfg.TelegramBotToken,
		},
	}

	store := &wish.Store{DB: gdb}
	proc := &wish.Processor{
		Store:           store,
		Gen:             gen,
		Renderer:        renderer,
		Adapters:        adapters,
		GenerateTimeout: cfg.GenerateTimeout,
		DeliveryTimeout: cfg.DeliveryTimeout,
	}
	sched := scheduler.New(proc.Process, proc.MarkFailed, scheduler.Options{
		PollInterval: cfg.SchedulerPollInterval,
		GraceWindow:  cfg.SchedulerGraceWindow,
		Workers:      cfg.SchedulerWorkers,
	})
	proc.Sched = sched

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := wish.RebuildJobs(ctx, store, sched, cfg.SchedulerGraceWindow); err != nil {
		logger.Error("job rebuild failed", "error", err)
		os.Exit(1)
	}
	sched.Start(ctx)

	sweeper := &wish.Sweeper{Store: store, Jobs: sched, Grace: cfg.SchedulerGraceWindow}
	cr := cron.New()
	if _, err := cr.AddFunc("@hourly", func() {
		if _, err := sweeper.Sweep(context.Background()); err != nil {
			logger.Error("sweep failed", "error", err)
		}
	}); err != nil {
		logger.Error("cron registration failed", "error", err)
		os.Exit(1)
	}
	cr.Start()

	jwtSvc := auth.NewJWT(cfg.JWTSecret)
	plans := &plan.Store{DB: gdb}
	contacts := &contact.Store{DB: gdb}

	router := httpapi.NewRouter(httpapi.RouterDeps{
		DB:                   gdb,
		JWT:                  jwtSvc,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
		Auth:                 &handler.AuthHandler{DB: gdb, JWT: jwtSvc},
		Me:                   &handler.MeHandler{DB: gdb},
		Wishes:               &handler.WishHandler{DB: gdb, Store: store, Plans: plans, Jobs: sched},
		Generate:             &handler.GenerateHandler{Gen: gen, Store: store, Timeout: cfg.GenerateTimeout},
		Contacts:             &handler.ContactHandler{Contacts: contacts, Wishes: store, Jobs: sched},
		Admin:                &handler.AdminHandler{DB: gdb, Store: store, Sched: sched, Latency: latency},
	})

	srv := &nethttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != nethttp.ErrServerClosed {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}

	cronCtx := cr.Stop()
	<-cronCtx.Done()

	sched.Shutdown()
	logger.Info("shutdown complete")
}
