// Package strategy runs the wing ladder: eight trigger bands around a
// reference price, each selling a credit spread when the underlying crosses
// its level and buying back the neighbouring spread toward the centre.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/alerting"
	"github.com/cwhuang/wingbot/internal/executor"
	"github.com/cwhuang/wingbot/internal/gateway"
	"github.com/cwhuang/wingbot/internal/ladder"
	"github.com/cwhuang/wingbot/internal/market"
	"github.com/cwhuang/wingbot/internal/metrics"
	"github.com/cwhuang/wingbot/internal/persistence"
	"github.com/cwhuang/wingbot/internal/types"
)

// Config holds the wing strategy parameters.
type Config struct {
	// Symbol is the futures contract providing the reference price feed.
	Symbol string
	// TradingDay keys checkpoints, formatted 2006-01-02.
	TradingDay string
	// PollInterval is the price polling cadence.
	PollInterval time.Duration
}

// Wing drives the trigger bands against the live price feed. Bands are
// processed sequentially: at most one combo order is in flight at any time,
// which is what lets the reconciler run unkeyed.
type Wing struct {
	cfg      Config
	bands    []*ladder.TriggerBand
	board    *market.PriceBoard
	calendar *market.Calendar
	driver   *executor.Driver
	gw       gateway.Gateway
	alerter  alerting.Alerter
	repo     persistence.Repository
	rec      *metrics.Recorder
	logger   *slog.Logger

	now func() time.Time
}

// New creates the wing strategy. The repository may be nil to run without
// checkpoints.
func New(
	cfg Config,
	bands []*ladder.TriggerBand,
	board *market.PriceBoard,
	calendar *market.Calendar,
	driver *executor.Driver,
	gw gateway.Gateway,
	alerter alerting.Alerter,
	repo persistence.Repository,
	rec *metrics.Recorder,
	logger *slog.Logger,
) *Wing {
	if logger == nil {
		logger = slog.Default()
	}
	if alerter == nil {
		alerter = alerting.NewConsoleAlerter(logger)
	}
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &Wing{
		cfg:      cfg,
		bands:    bands,
		board:    board,
		calendar: calendar,
		driver:   driver,
		gw:       gw,
		alerter:  alerter,
		repo:     repo,
		rec:      rec,
		logger:   logger,
		now:      time.Now,
	}
}

// Run executes the strategy until every band has triggered or the context is
// cancelled.
func (w *Wing) Run(ctx context.Context) error {
	if err := w.restore(ctx); err != nil {
		return err
	}

	if err := w.subscribe(ctx); err != nil {
		return err
	}
	defer func() { _ = w.gw.UnsubscribeTicks(w.cfg.Symbol) }()

	w.notify(ctx, alerting.EventStrategyStarted, "wing strategy started",
		"symbol", w.cfg.Symbol,
		"trading_day", w.cfg.TradingDay,
		"bands", len(w.bands),
	)

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	var lastPrice decimal.Decimal
	var havePrice bool

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if !w.calendar.IsOpen(w.now()) {
			if err := w.suspend(ctx); err != nil {
				return err
			}
			// Stale prices from before the break must not fire triggers.
			havePrice = false
			continue
		}
		w.rec.SetMarketOpen(true)

		price, err := w.board.Latest()
		if err != nil {
			if errors.Is(err, types.ErrNoTick) {
				continue
			}
			return err
		}
		if havePrice && price.Equal(lastPrice) {
			continue
		}
		lastPrice, havePrice = price, true

		if err := w.evaluate(ctx, price); err != nil {
			return err
		}

		if ladder.AllTriggered(w.bands) {
			w.notify(ctx, alerting.EventStrategyCompleted, "all bands triggered, strategy complete",
				"symbol", w.cfg.Symbol,
				"trading_day", w.cfg.TradingDay,
			)
			w.logger.Info("strategy complete", "bands", len(w.bands))
			return nil
		}
	}
}

// evaluate walks every untriggered band against the price and executes those
// whose predicate holds. A band becomes triggered only once its entry leg
// fills; a fill shortfall leaves it untriggered so a later crossing retries
// with whatever quantity remains, and the other bands keep working.
func (w *Wing) evaluate(ctx context.Context, price decimal.Decimal) error {
	for _, band := range w.bands {
		if band.Triggered() || !band.Comparison.Holds(price, band.TriggerPrice) {
			continue
		}

		w.logger.Info("trigger crossed",
			"band", band.Name(),
			"price", price,
			"side", band.Entry.Side.String(),
		)
		w.notify(ctx, alerting.EventBandTriggered,
			fmt.Sprintf("%s triggered at %s", band.Name(), price),
			"side", band.Entry.Side.String(),
			"open_qty", band.OpenQty(),
			"close_qty", band.CloseQty(),
		)

		if err := w.driver.ExecuteOpen(ctx, band); err != nil {
			if ctx.Err() != nil {
				return err
			}
			w.logger.Error("open leg failed", "band", band.Name(), "error", err)
			w.checkpoint(ctx)
			continue
		}

		band.MarkTriggered()
		w.rec.RecordBandTriggered(band.Entry.Side.String())
		w.logger.Info("band triggered", "band", band.Name(), "price", price)
		w.checkpoint(ctx)

		if err := w.driver.ExecuteClose(ctx, band); err != nil {
			if ctx.Err() != nil {
				return err
			}
			w.logger.Error("close leg failed", "band", band.Name(), "error", err)
		}
		w.checkpoint(ctx)
	}
	return nil
}

// suspend pauses until the session reopens, releasing the tick subscription
// for the duration. Cancellation interrupts the wait.
func (w *Wing) suspend(ctx context.Context) error {
	w.rec.SetMarketOpen(false)
	wait := w.calendar.UntilOpen(w.now())
	reopen := w.now().Add(wait)

	_ = w.gw.UnsubscribeTicks(w.cfg.Symbol)
	w.logger.Info("market closed, suspending", "until", reopen, "wait", wait)
	w.notify(ctx, alerting.EventMarketClosed, "market closed, strategy suspended",
		"until", reopen.Format(time.RFC3339),
	)

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	w.logger.Info("market reopened, resuming")
	return w.subscribe(ctx)
}

func (w *Wing) subscribe(ctx context.Context) error {
	err := w.gw.SubscribeTicks(ctx, w.cfg.Symbol, func(tick types.Tick) {
		w.board.Update(tick)
		w.rec.RecordTick(w.cfg.Symbol, tick.Close)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", w.cfg.Symbol, err)
	}
	return nil
}

// restore loads the trading day's checkpoint, if any.
func (w *Wing) restore(ctx context.Context) error {
	if w.repo == nil {
		return nil
	}
	states, err := w.repo.LoadBandStates(ctx, w.cfg.TradingDay)
	if err != nil {
		return fmt.Errorf("restore checkpoint: %w", err)
	}
	for _, s := range states {
		if s.Index < 0 || s.Index >= len(w.bands) {
			continue
		}
		w.bands[s.Index].Restore(s.Triggered, s.OpenQty, s.CloseQty)
	}
	if len(states) > 0 {
		w.logger.Info("checkpoint restored", "trading_day", w.cfg.TradingDay, "bands", len(states))
	}
	return nil
}

// checkpoint persists all band states. Persistence failures are logged, not
// fatal: losing a checkpoint is recoverable, halting mid-execution is not.
func (w *Wing) checkpoint(ctx context.Context) {
	if w.repo == nil {
		return
	}
	for _, band := range w.bands {
		state := persistence.BandState{
			Index:        band.Index,
			TriggerPrice: band.TriggerPrice.String(),
			Triggered:    band.Triggered(),
			OpenQty:      band.OpenQty(),
			CloseQty:     band.CloseQty(),
		}
		if err := w.repo.SaveBandState(ctx, w.cfg.TradingDay, state); err != nil {
			w.logger.Error("checkpoint failed",
				"band", strconv.Itoa(band.Index),
				"error", err,
			)
		}
	}
}

func (w *Wing) notify(ctx context.Context, event alerting.Event, message string, fields ...any) {
	if err := w.alerter.Alert(ctx, alerting.EventSeverity(event), message, fields...); err != nil {
		w.logger.Error("alert delivery failed", "event", string(event), "error", err)
	}
}
