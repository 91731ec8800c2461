package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"conversion-guard/config"
	"conversion-guard/config/postgre"
	"conversion-guard/internal/collector"
	"conversion-guard/internal/httpserver"
	"conversion-guard/internal/notify"
	"conversion-guard/internal/orchestrator"
	"conversion-guard/internal/rule"
	storagePostgre "conversion-guard/internal/storage/postgre"
	"conversion-guard/pkg/discord"
	"conversion-guard/pkg/jwt"
	"conversion-guard/pkg/log"
	"conversion-guard/pkg/mailer"
	"conversion-guard/pkg/metrics"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Println("Failed to load config:", err)
		return
	}

	// Initialize logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	logger.Info(ctx, "Starting conversion guard service...")

	// PostgreSQL - source tables, alert log and run markers
	db, err := postgre.Connect(ctx, cfg.Postgres)
	if err != nil {
		logger.Errorf(ctx, "Failed to connect to PostgreSQL: %v", err)
		return
	}
	defer postgre.Disconnect(ctx, db)
	logger.Info(ctx, "PostgreSQL client initialized")

	repo := storagePostgre.New(logger, db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Errorf(ctx, "Failed to ensure schema: %v", err)
		return
	}

	// Discord webhook (optional)
	var discordClient discord.IDiscord
	if cfg.Discord.WebhookURL != "" {
		discordClient, err = discord.New(logger, cfg.Discord.WebhookURL)
		if err != nil {
			logger.Warnf(ctx, "Failed to initialize Discord webhook: %v", err)
		} else {
			logger.Info(ctx, "Discord webhook initialized")
		}
	}

	// Collectors refresh the source tables from the configured snapshot.
	var collectors []collector.Collector
	if cfg.Collector.SnapshotPath != "" {
		snap, err := collector.LoadSnapshot(cfg.Collector.SnapshotPath)
		if err != nil {
			logger.Errorf(ctx, "Failed to load snapshot: %v", err)
			return
		}
		collectors = collector.FromSnapshot(snap, repo)
		logger.Infof(ctx, "Snapshot collectors initialized from %s", cfg.Collector.SnapshotPath)
	}

	// Rules
	ruleCfg := rule.Config{
		AppIDs:           cfg.AppIDs(),
		IntervalLookback: cfg.Rules.IntervalLookback,
		ReleaseGrace:     cfg.Rules.ReleaseGrace,
		StoreLookback:    cfg.Rules.StoreLookback,
	}
	var rules []rule.Rule
	for _, name := range rule.Names() {
		r, err := rule.New(name, ruleCfg, repo, logger)
		if err != nil {
			logger.Errorf(ctx, "Failed to build rule %s: %v", name, err)
			return
		}
		rules = append(rules, r)
	}

	// Notification channels
	var notifiers []notify.Notifier
	if cfg.Mailer.BaseURL != "" {
		m, err := mailer.New(logger, cfg.Mailer.BaseURL)
		if err != nil {
			logger.Errorf(ctx, "Failed to initialize mailer: %v", err)
			return
		}
		notifiers = append(notifiers, notify.NewEmailNotifier(m, cfg.Recipients()))
		logger.Info(ctx, "Email notifier initialized")
	}
	if discordClient != nil {
		notifiers = append(notifiers, notify.NewDiscordNotifier(discordClient))
		logger.Info(ctx, "Discord notifier initialized")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	orch := orchestrator.New(cfg.AppIDs(), collectors, rules, notifiers, repo, m, logger)

	// JWT validator guards the admin API.
	validator := jwt.NewValidator(jwt.Config{
		SecretKey: cfg.JWT.SecretKey,
	})

	srv, err := httpserver.New(logger, httpserver.Config{
		Port:         cfg.Server.Port,
		Environment:  cfg.Environment.Name,
		Orchestrator: orch,
		Repo:         repo,
		App:          cfg,
		Validator:    validator,
		Discord:      discordClient,
		HealthCheck:  postgre.HealthCheck,
	})
	if err != nil {
		logger.Errorf(ctx, "Failed to initialize HTTP server: %v", err)
		return
	}

	if err := srv.Run(); err != nil {
		logger.Errorf(ctx, "HTTP server stopped with error: %v", err)
	}
}
