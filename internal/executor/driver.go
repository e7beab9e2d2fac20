// Package executor works a band's combo order against the market until it
// fills or the retry budget runs out. Orders are IOC, so every resend is a
// fresh order; the driver owns the resend cadence, the price walk, and the
// partial-fill quantity shrinking.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/internal/alerting"
	"github.com/cwhuang/wingbot/internal/gateway"
	"github.com/cwhuang/wingbot/internal/ladder"
	"github.com/cwhuang/wingbot/internal/metrics"
	"github.com/cwhuang/wingbot/internal/reconcile"
	"github.com/cwhuang/wingbot/internal/types"
)

// Config tunes the retry loop.
type Config struct {
	// TrialLimit is the number of polling attempts before giving up.
	TrialLimit int
	// AttemptWait is the pause between polling attempts.
	AttemptWait time.Duration
	// ResendEvery is the attempt interval between order resubmissions.
	ResendEvery int
	// EscalateEvery is the attempt interval between limit price concessions.
	EscalateEvery int
	// PriceTick is the size of each price concession.
	PriceTick decimal.Decimal
}

// DefaultConfig returns the production retry tuning.
func DefaultConfig() Config {
	return Config{
		TrialLimit:    200,
		AttemptWait:   500 * time.Millisecond,
		ResendEvery:   10,
		EscalateEvery: 50,
		PriceTick:     decimal.NewFromInt(1),
	}
}

// Validate checks the config for values the loop cannot run with.
func (c Config) Validate() error {
	if c.TrialLimit <= 0 {
		return fmt.Errorf("%w: trial limit must be positive, got %d", types.ErrInvalidConfig, c.TrialLimit)
	}
	if c.ResendEvery <= 0 {
		return fmt.Errorf("%w: resend interval must be positive, got %d", types.ErrInvalidConfig, c.ResendEvery)
	}
	if c.EscalateEvery <= 0 {
		return fmt.Errorf("%w: escalation interval must be positive, got %d", types.ErrInvalidConfig, c.EscalateEvery)
	}
	if c.AttemptWait <= 0 {
		return fmt.Errorf("%w: attempt wait must be positive, got %s", types.ErrInvalidConfig, c.AttemptWait)
	}
	return nil
}

// Driver executes the entry and close legs of a trigger band.
type Driver struct {
	gw      gateway.Gateway
	alerter alerting.Alerter
	rec     *metrics.Recorder
	cfg     Config
	logger  *slog.Logger
}

// New creates an execution driver.
func New(gw gateway.Gateway, alerter alerting.Alerter, rec *metrics.Recorder, cfg Config, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	if alerter == nil {
		alerter = alerting.NewConsoleAlerter(logger)
	}
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	return &Driver{
		gw:      gw,
		alerter: alerter,
		rec:     rec,
		cfg:     cfg,
		logger:  logger,
	}
}

// leg identifies which side of the band an execution works.
type leg int

const (
	legOpen leg = iota
	legClose
)

func (l leg) String() string {
	if l == legClose {
		return "close"
	}
	return "open"
}

// ExecuteOpen works the band's entry combo to completion. The limit price
// concedes downward as attempts accumulate, giving up credit to get filled.
func (d *Driver) ExecuteOpen(ctx context.Context, band *ladder.TriggerBand) error {
	return d.execute(ctx, band, legOpen)
}

// ExecuteClose works the band's covering combo. Innermost bands have no close
// leg and return immediately. The limit price concedes upward, paying more to
// buy the neighbouring spread back.
func (d *Driver) ExecuteClose(ctx context.Context, band *ladder.TriggerBand) error {
	if band.Close == nil {
		return nil
	}
	return d.execute(ctx, band, legClose)
}

func (d *Driver) execute(ctx context.Context, band *ladder.TriggerBand, l leg) error {
	var (
		desc  *ladder.ComboDescriptor
		price decimal.Decimal
		qty   int
	)
	if l == legOpen {
		desc, price, qty = band.Entry, band.OpenPrice, band.OpenQty()
	} else {
		desc, price, qty = band.Close, band.ClosePrice, band.CloseQty()
	}
	if qty == 0 {
		return nil
	}

	intent := gateway.IntentOpen
	if l == legClose {
		intent = gateway.IntentCover
	}

	logger := d.logger.With("band", band.Name(), "leg", l.String())

	// One reconciler per leg execution. Registering it here and detaching on
	// return guarantees reports from an earlier leg never bleed into this one.
	rec := reconcile.New()
	d.gw.SetReportHandler(rec.Handle)
	defer d.gw.SetReportHandler(nil)

	timer := time.NewTimer(d.cfg.AttemptWait)
	defer timer.Stop()

	for attempt := 0; attempt < d.cfg.TrialLimit; attempt++ {
		// The concession cadence is independent of the resend cadence; a new
		// price between resends takes effect on the next resubmission.
		if attempt > 0 && attempt%d.cfg.EscalateEvery == 0 {
			if l == legOpen {
				price = price.Sub(d.cfg.PriceTick)
			} else {
				price = price.Add(d.cfg.PriceTick)
			}
			logger.Info("conceding limit price", "price", price, "attempt", attempt)
		}

		if attempt%d.cfg.ResendEvery == 0 {
			order := gateway.OpenCombo(desc, price, qty)
			if l == legClose {
				order = gateway.CloseCombo(desc, price, qty)
			}
			if err := d.gw.SubmitCombo(ctx, order); err != nil {
				return fmt.Errorf("submit %s combo for %s: %w", l, band.Name(), err)
			}
			d.rec.RecordSubmission(string(intent))
			logger.Info("combo submitted",
				"order_id", order.ClientOrderID,
				"price", price,
				"quantity", qty,
				"attempt", attempt,
			)
		}

		timer.Reset(d.cfg.AttemptWait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if rec.Pending() == 0 {
			continue
		}

		result, err := rec.Evaluate()
		if err != nil {
			continue
		}

		switch result.Status {
		case types.FillStatusFilled:
			d.rec.RecordFilled(string(intent))
			d.rec.RecordAttempts(string(intent), attempt+1)
			logger.Info("combo filled", "order_id", result.OrderID, "quantity", result.OriginalQty)
			d.notify(ctx, alerting.EventOrderFilled,
				fmt.Sprintf("%s %s leg filled", band.Name(), l),
				"order_id", result.OrderID,
				"quantity", result.OriginalQty,
				"price", price.String(),
			)
			return nil

		case types.FillStatusPartial:
			qty = result.UnfilledQty
			if l == legOpen {
				band.ShrinkOpenQty(qty)
			} else {
				band.ShrinkCloseQty(qty)
			}
			d.rec.RecordPartialFill(string(intent))
			logger.Warn("partial fill",
				"order_id", result.OrderID,
				"filled", result.FilledQty,
				"unfilled", qty,
			)
			d.notify(ctx, alerting.EventPartialFill,
				fmt.Sprintf("%s %s leg partially filled", band.Name(), l),
				"order_id", result.OrderID,
				"filled", result.FilledQty,
				"unfilled", qty,
			)
			if qty <= 0 {
				d.rec.RecordAttempts(string(intent), attempt+1)
				return nil
			}

		case types.FillStatusCancelled:
			// IOC cancel with nothing filled. Keep the quantity and let the
			// resend cadence try again.
			logger.Info("combo cancelled unfilled", "order_id", result.OrderID, "attempt", attempt)
		}
	}

	d.rec.RecordRetryExhausted(string(intent))
	d.rec.RecordAttempts(string(intent), d.cfg.TrialLimit)
	logger.Error("retry budget exhausted", "remaining", qty, "price", price)
	d.notify(ctx, alerting.EventRetryExhausted,
		fmt.Sprintf("%s %s leg unfilled after %d attempts", band.Name(), l, d.cfg.TrialLimit),
		"remaining", qty,
		"last_price", price.String(),
	)
	return fmt.Errorf("%s leg of %s: %d remaining after %d attempts: %w",
		l, band.Name(), qty, d.cfg.TrialLimit, types.ErrFillShortfall)
}

// notify sends an alert and logs on failure. Alert delivery never fails an
// execution.
func (d *Driver) notify(ctx context.Context, event alerting.Event, message string, fields ...any) {
	if err := d.alerter.Alert(ctx, alerting.EventSeverity(event), message, fields...); err != nil {
		d.logger.Error("alert delivery failed", "event", string(event), "error", err)
	}
}
