// Command wingbot runs the wing options strategy against the Taiwan index
// options market.
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
	"time"

	"github.com/joho/godotenv"

	"github.com/cwhuang/wingbot/internal/alerting"
	"github.com/cwhuang/wingbot/internal/calibrate"
	"github.com/cwhuang/wingbot/internal/catalog"
	"github.com/cwhuang/wingbot/internal/config"
	"github.com/cwhuang/wingbot/internal/executor"
	"github.com/cwhuang/wingbot/internal/gateway"
	"github.com/cwhuang/wingbot/internal/gateway/sinopac"
	"github.com/cwhuang/wingbot/internal/ladder"
	"github.com/cwhuang/wingbot/internal/market"
	"github.com/cwhuang/wingbot/internal/metrics"
	"github.com/cwhuang/wingbot/internal/persistence"
	"github.com/cwhuang/wingbot/internal/strategy"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	var err error
	switch os.Args[1] {
	case "run":
		err = runCmd(os.Args[2:])
	case "validate":
		err = validateCmd(os.Args[2:])
	case "calibrate":
		err = calibrateCmd(os.Args[2:])
	case "version":
		fmt.Printf("wingbot %s\n", version)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: wingbot <command> [flags]

commands:
  run        run the strategy
  validate   check a config file and exit
  calibrate  estimate the ladder scale from historical bars
  version    print the version`)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func runCmd(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	logLevel := fs.String("log-level", "info", "log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := newLogger(*logLevel)
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting wingbot",
		"version", version,
		"symbol", cfg.Market.FuturesSymbol,
		"gateway", cfg.Gateway.Type,
	)

	cat, err := catalog.FromSymbols(cfg.Strategy.OptionSymbols)
	if err != nil {
		return fmt.Errorf("build catalog: %w", err)
	}

	levels, err := ladder.Build(cfg.ReferencePriceDecimal(), cfg.ScaleDecimal())
	if err != nil {
		return fmt.Errorf("build ladder: %w", err)
	}

	bands, err := ladder.BuildBands(levels, cat, ladder.DefaultQuantitySchedule(), ladder.DefaultPriceSchedule())
	if err != nil {
		return fmt.Errorf("build bands: %w", err)
	}
	logger.Info("ladder built",
		"reference", cfg.Strategy.ReferencePrice,
		"scale", cfg.Strategy.Scale,
		"lowest", levels[0],
		"highest", levels[len(levels)-1],
	)

	calendar, err := market.NewCalendar(cfg.Market.Timezone)
	if err != nil {
		return err
	}
	board := market.NewPriceBoard(cfg.Market.FuturesSymbol)

	alerter := buildAlerter(cfg, logger)
	rec := metrics.NewRecorder()

	gw, err := buildGateway(cfg, logger)
	if err != nil {
		return err
	}
	if err := gw.Connect(ctx); err != nil {
		return fmt.Errorf("connect gateway: %w", err)
	}
	defer func() { _ = gw.Close() }()
	rec.SetGatewayConnected(true)

	var repo persistence.Repository
	if cfg.Persistence.Enabled {
		sqlite, err := persistence.NewSQLiteRepository(cfg.Persistence.Path)
		if err != nil {
			return fmt.Errorf("open checkpoint store: %w", err)
		}
		if err := sqlite.Migrate(ctx); err != nil {
			return err
		}
		defer func() { _ = sqlite.Close() }()
		repo = sqlite
	}

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(fmt.Sprintf(":%d", cfg.Metrics.Port), logger)
		metricsSrv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	driver := executor.New(gw, alerter, rec, executor.Config{
		TrialLimit:    cfg.Execution.TrialLimit,
		AttemptWait:   cfg.AttemptWait(),
		ResendEvery:   cfg.Execution.ResendEvery,
		EscalateEvery: cfg.Execution.EscalateEvery,
		PriceTick:     cfg.PriceTickDecimal(),
	}, logger)

	wing := strategy.New(strategy.Config{
		Symbol:       cfg.Market.FuturesSymbol,
		TradingDay:   time.Now().Format("2006-01-02"),
		PollInterval: cfg.PollInterval(),
	}, bands, board, calendar, driver, gw, alerter, repo, rec, logger)

	err = wing.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutdown requested")
		return nil
	}
	return err
}

func validateCmd(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := config.Load(*configPath); err != nil {
		return err
	}
	fmt.Printf("%s: ok\n", *configPath)
	return nil
}

func calibrateCmd(args []string) error {
	fs := flag.NewFlagSet("calibrate", flag.ExitOnError)
	input := fs.String("input", "", "path to historical session CSV (date,expiry,session,open,close,final_close)")
	logLevel := fs.String("log-level", "info", "log level")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *input == "" {
		return errors.New("calibrate: -input is required")
	}

	logger := newLogger(*logLevel)

	f, err := os.Open(*input)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	result, err := calibrate.New(logger).Calibrate(f)
	if err != nil {
		return err
	}

	fmt.Printf("samples: %d\nmean settlement delta: %s\nscale (stddev): %s\n",
		result.Samples, result.Mean, result.Scale)
	return nil
}

func buildGateway(cfg *config.Config, logger *slog.Logger) (gateway.Gateway, error) {
	switch cfg.Gateway.Type {
	case "paper":
		return gateway.NewPaperGateway(gateway.FullFillPolicy, logger), nil
	case "sinopac":
		return sinopac.NewClient(sinopac.Config{
			Host:                 cfg.Gateway.Host,
			Port:                 cfg.Gateway.Port,
			APIKey:               cfg.Gateway.APIKey,
			SecretKey:            cfg.Gateway.SecretKey,
			Simulation:           cfg.Gateway.Simulation,
			ConnectTimeout:       cfg.ConnectTimeout(),
			MaxRequestsPerSecond: cfg.Gateway.RateLimitPerSec,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unsupported gateway type %q", cfg.Gateway.Type)
	}
}

func buildAlerter(cfg *config.Config, logger *slog.Logger) alerting.Alerter {
	multi := alerting.NewMultiAlerter(logger)
	if !cfg.Alerting.Enabled {
		multi.AddAlerter(alerting.NewConsoleAlerter(logger))
		return multi
	}
	for _, ch := range cfg.Alerting.Channels {
		switch ch.Type {
		case "telegram":
			multi.AddAlerter(alerting.NewTelegramAlerter(alerting.TelegramConfig{
				BotToken: ch.BotToken,
				ChatID:   ch.ChatID,
			}))
		case "console":
			multi.AddAlerter(alerting.NewConsoleAlerter(logger))
		}
	}
	return multi
}
