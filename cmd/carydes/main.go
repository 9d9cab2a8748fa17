// Package main contains the entrypoint for the CARYDES Telegram relay.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/carydes/internal/audit"
	"github.com/edgard/carydes/internal/bot"
	"github.com/edgard/carydes/internal/bot/handlers"
	"github.com/edgard/carydes/internal/bot/tasks"
	"github.com/edgard/carydes/internal/config"
	"github.com/edgard/carydes/internal/database"
	"github.com/edgard/carydes/internal/inference"
	"github.com/edgard/carydes/internal/logger"
	"github.com/edgard/carydes/internal/memory"
	"github.com/edgard/carydes/internal/ratelimit"
	"github.com/edgard/carydes/internal/relay"
	"github.com/edgard/carydes/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the exit code.
func run(ctx context.Context) int {
	envFile := flag.String("env-file", ".env", "Path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(slog.Default(), *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "carydes: %v\n", err)
		return 1
	}

	log, logCloser, err := logger.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "carydes: %v\n", err)
		return 1
	}
	defer logCloser.Close()

	if err := os.MkdirAll(cfg.Audit.ChatlogDir, 0o750); err != nil {
		log.Error("Failed to create chat log directory", "path", cfg.Audit.ChatlogDir, "error", err)
		return 1
	}

	sinks := []audit.Sink{audit.NewFileSink(cfg.Audit.ChatlogDir)}

	var store database.Store
	if cfg.Audit.DBPath != "" {
		db, err := database.NewDB(cfg.Audit.DBPath, log)
		if err != nil {
			log.Error("Failed to open audit database", "path", cfg.Audit.DBPath, "error", err)
			return 1
		}
		defer database.CloseDB(db, log)

		store = database.NewStore(db, log)
		sinks = append(sinks, audit.NewDBSink(store))
	}

	auditLog := audit.New(log, sinks...)
	mem := memory.New()
	limiter := ratelimit.New()
	llm := inference.NewClient(cfg, mem, log, nil)

	// Assigned once the router exists; no update is dispatched before Start.
	var defaultHandler tgbot.HandlerFunc
	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			defaultHandler(ctx, b, update)
		}),
	}

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}

	sender := telegram.NewSender(tg)
	router := relay.NewRouter(cfg, limiter, auditLog, mem, llm, sender, log)

	hDeps := handlers.HandlerDeps{
		Logger: log,
		Config: cfg,
		Sender: sender,
		Router: router,
		Prober: llm,
	}
	defaultHandler = handlers.NewMessageHandler(hDeps)

	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllCommands(hDeps)); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Config:  cfg,
		Limiter: limiter,
		Audit:   auditLog,
		Store:   store,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	log.Info("Starting CARYDES",
		"bot_username", me.Username,
		"lm_studio_url", cfg.LMStudio.URL,
		"model", cfg.LMStudio.Model,
		"whitelisted_users", len(cfg.Telegram.Whitelist),
		"chatlog_dir", cfg.Audit.ChatlogDir,
		"audit_db", cfg.Audit.DBPath != "")

	if status := llm.Probe(ctx); status != inference.StatusResponding {
		log.Warn("LM Studio is not ready yet; messages will fail until it is", "status", status.String())
	}

	runErr := bot.NewBot(log, tg, sched).Run(ctx)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("CARYDES stopped")
	return 0
}
