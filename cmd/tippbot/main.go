package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwirth/tippbot/internal/notify"
	pkgconfig "github.com/mwirth/tippbot/internal/pkg/config"
	"github.com/mwirth/tippbot/internal/pkg/health"
	"github.com/mwirth/tippbot/internal/pkg/logging"
	"github.com/mwirth/tippbot/internal/pkg/metrics"
	"github.com/mwirth/tippbot/internal/pkg/models"
	"github.com/mwirth/tippbot/internal/predict"
	"github.com/mwirth/tippbot/internal/scheduler"
	"github.com/mwirth/tippbot/internal/site"
	"github.com/mwirth/tippbot/internal/site/kicktipp"
	"github.com/mwirth/tippbot/internal/tipper"
)

const defaultConfigPath = "configs/production.yaml"

type flags struct {
	configPath string
	headless   bool
	notify     bool
	runFor     time.Duration
}

func main() {
	if err := run(); err != nil {
		slog.Error("Tippbot failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()
	slog.Info("Loading config", "path", cfg.configPath)

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if _, err := logging.Setup(appConfig.Logging.Level, "tippbot"); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	slog.Info("Config loaded",
		"competition", appConfig.Site.Competition,
		"interval", appConfig.Tipping.Interval(),
		"lead_time", appConfig.Tipping.LeadTime(),
		"headless", cfg.headless,
	)

	predictor, err := predict.New(appConfig.Predictor)
	if err != nil {
		return fmt.Errorf("failed to build predictor: %w", err)
	}

	driver, err := kicktipp.New(kicktipp.Config{
		BaseURL:     appConfig.Site.BaseURL,
		BrowserPath: appConfig.Site.BrowserPath,
		Headless:    cfg.headless,
		Timeout:     appConfig.Site.Timeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to start browser driver: %w", err)
	}
	defer driver.Close()

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	notifier := buildNotifier(cfg, appConfig)

	coordinator := tipper.New(driver, predictor, tipper.Config{
		MaxAttempts:  appConfig.Tipping.MaxSubmitAttempts,
		RetryBackoff: appConfig.Tipping.RetryBackoff(),
	})

	sched := scheduler.New(scheduler.Config{
		Interval:    appConfig.Tipping.Interval(),
		LeadTime:    appConfig.Tipping.LeadTime(),
		Competition: appConfig.Site.Competition,
		Credentials: site.Credentials{
			Email:    appConfig.Site.Email,
			Password: appConfig.Site.Password,
		},
		OverwriteTips: appConfig.Tipping.OverwriteTips,
	}, driver, coordinator, notifier)

	status := health.NewStatus()
	status.SetStateFunc(func() string { return sched.State().String() })
	sched.OnCycleEnd = func(result *models.CycleResult) {
		status.RecordCycle(result)
		metrics.ObserveCycle(result)
	}

	health.Run(ctx, health.AddrFor(appConfig.Health.Port), status, appConfig.Health.ReadHeaderTimeout())

	err = sched.Run(ctx)
	slog.Info("Tippbot shutdown complete")
	return err
}

func parseFlags() flags {
	var cfg flags

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.BoolVar(&cfg.headless, "headless", true, "Run the browser headless; set to false to watch the session locally")
	flag.BoolVar(&cfg.notify, "notify", true, "Deliver cycle results to the configured notifiers")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10s, 1m). 0 = run until SIGINT/SIGTERM")
	flag.Parse()
	return cfg
}

// buildNotifier assembles the configured delivery channels. A notifier
// that fails to initialize is skipped with a log line; notification is
// best-effort and never blocks tipping.
func buildNotifier(cfg flags, appConfig *pkgconfig.Config) notify.Notifier {
	if !cfg.notify {
		slog.Info("Notifications disabled by flag")
		return nil
	}

	var notifiers []notify.Notifier
	if tg := appConfig.Notify.Telegram; tg.Enabled() {
		n, err := notify.NewTelegram(tg.Token, tg.ChatID)
		if err != nil {
			slog.Error("Telegram notifier unavailable, continuing without it", "error", err)
		} else {
			notifiers = append(notifiers, n)
		}
	}
	if wh := appConfig.Notify.Webhook; wh.Enabled() {
		notifiers = append(notifiers, notify.NewWebhook(wh.URL, wh.Timeout()))
	}
	if len(notifiers) == 0 {
		slog.Warn("No notifiers configured; cycle results will only be logged")
		return nil
	}
	return notify.NewMulti(notifiers...)
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			slog.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
}
