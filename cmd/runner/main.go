package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"conversion-guard/config"
	"conversion-guard/config/postgre"
	"conversion-guard/internal/collector"
	"conversion-guard/internal/notify"
	"conversion-guard/internal/orchestrator"
	"conversion-guard/internal/rule"
	storagePostgre "conversion-guard/internal/storage/postgre"
	"conversion-guard/pkg/discord"
	"conversion-guard/pkg/log"
	"conversion-guard/pkg/mailer"
	"conversion-guard/pkg/metrics"
)

// One-shot batch entrypoint: collect, evaluate, notify, exit. Meant for
// cron or a scheduled job runner.
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Println("Failed to load config:", err)
		return
	}

	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	db, err := postgre.Connect(ctx, cfg.Postgres)
	if err != nil {
		logger.Errorf(ctx, "Failed to connect to PostgreSQL: %v", err)
		return
	}
	defer postgre.Disconnect(ctx, db)

	repo := storagePostgre.New(logger, db)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Errorf(ctx, "Failed to ensure schema: %v", err)
		return
	}

	var collectors []collector.Collector
	if cfg.Collector.SnapshotPath != "" {
		snap, err := collector.LoadSnapshot(cfg.Collector.SnapshotPath)
		if err != nil {
			logger.Errorf(ctx, "Failed to load snapshot: %v", err)
			return
		}
		collectors = collector.FromSnapshot(snap, repo)
	}

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

	var notifiers []notify.Notifier
	if cfg.Mailer.BaseURL != "" {
		m, err := mailer.New(logger, cfg.Mailer.BaseURL)
		if err != nil {
			logger.Errorf(ctx, "Failed to initialize mailer: %v", err)
			return
		}
		notifiers = append(notifiers, notify.NewEmailNotifier(m, cfg.Recipients()))
	}
	if cfg.Discord.WebhookURL != "" {
		discordClient, err := discord.New(logger, cfg.Discord.WebhookURL)
		if err != nil {
			logger.Warnf(ctx, "Failed to initialize Discord webhook: %v", err)
		} else {
			notifiers = append(notifiers, notify.NewDiscordNotifier(discordClient))
		}
	}

	orch := orchestrator.New(
		cfg.AppIDs(),
		collectors,
		rules,
		notifiers,
		repo,
		metrics.New(prometheus.NewRegistry()),
		logger,
	)

	orch.Run(ctx)
	logger.Info(ctx, "Run complete")
}
