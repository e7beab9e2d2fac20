// Package calibrate derives the ladder scale from historical weekly-contract
// bars.
//
// The ladder spans the move the underlying makes over the life of one weekly
// contract. For each weekly expiry the sample is the settlement-day close
// minus the contract's after-hours session open, observed on Wednesdays; the
// scale is the standard deviation of those deltas across expiries.
package calibrate

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cwhuang/wingbot/pkg/stat"
)

// Row is one session record from the exchange's daily report. Numeric cells
// may be absent (the exchange publishes "-" for untraded sessions), so the
// price fields are nullable.
type Row struct {
	Date       time.Time
	Expiry     string
	Session    string
	Open       decimal.NullDecimal
	Close      decimal.NullDecimal
	FinalClose decimal.NullDecimal
}

// Result summarizes one calibration run.
type Result struct {
	// Samples is the number of expiries that entered the estimate.
	Samples int
	// Mean is the average settlement delta, signed.
	Mean decimal.Decimal
	// Scale is the standard deviation of the settlement deltas. This is the
	// value the ladder builder takes as its scale.
	Scale decimal.Decimal
}

// dateLayouts are tried in order when parsing the date column.
var dateLayouts = []string{"2006-01-02", "2006/01/02", "20060102"}

// LoadRows parses session records from CSV. The header row names the columns;
// date, expiry, session, open, close and final_close are required, any extra
// columns are ignored. Rows are expected in chronological order.
func LoadRows(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"date", "expiry", "session", "open", "close", "final_close"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q in header %v", required, header)
		}
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}
		line++

		date, err := parseDate(record[cols["date"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		open, err := parsePrice(record[cols["open"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse open: %w", line, err)
		}
		closePrice, err := parsePrice(record[cols["close"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse close: %w", line, err)
		}
		finalClose, err := parsePrice(record[cols["final_close"]])
		if err != nil {
			return nil, fmt.Errorf("row %d: parse final_close: %w", line, err)
		}

		rows = append(rows, Row{
			Date:       date,
			Expiry:     strings.TrimSpace(record[cols["expiry"]]),
			Session:    strings.TrimSpace(record[cols["session"]]),
			Open:       open,
			Close:      closePrice,
			FinalClose: finalClose,
		})
	}

	return rows, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// parsePrice reads a nullable price cell. Empty and "-" mean no trade.
func parsePrice(s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

// isWeeklyExpiry keeps weekly contract codes and drops monthlies and
// calendar-spread rows.
func isWeeklyExpiry(expiry string) bool {
	return strings.Contains(expiry, "W") && !strings.Contains(expiry, "/")
}

// isAfterHours recognizes the after-hours session marker. The exchange
// publishes the label in Chinese; exported data sets commonly translate it.
func isAfterHours(session string) bool {
	switch strings.ToLower(session) {
	case "盤後", "after_hours", "afterhours":
		return true
	}
	return false
}

// SettlementDeltas extracts, per weekly expiry, the settlement-row close
// minus the most recent after-hours session open. Only Wednesday rows are
// considered; the settlement row is the one whose final_close is zero. The
// after-hours open carries forward within an expiry until the settlement row
// consumes it, so interleaved expiries do not disturb each other.
func SettlementDeltas(rows []Row) []decimal.Decimal {
	afterOpen := make(map[string]decimal.Decimal)
	taken := make(map[string]bool)

	var deltas []decimal.Decimal
	for _, row := range rows {
		if !isWeeklyExpiry(row.Expiry) || row.Date.Weekday() != time.Wednesday {
			continue
		}
		if isAfterHours(row.Session) && row.Open.Valid {
			afterOpen[row.Expiry] = row.Open.Decimal
		}
		if taken[row.Expiry] {
			continue
		}
		if !row.FinalClose.Valid || !row.FinalClose.Decimal.IsZero() || !row.Close.Valid {
			continue
		}
		open, ok := afterOpen[row.Expiry]
		if !ok {
			continue
		}
		deltas = append(deltas, row.Close.Decimal.Sub(open))
		taken[row.Expiry] = true
	}
	return deltas
}

// Calibrator computes the ladder scale from historical session records.
type Calibrator struct {
	logger *slog.Logger
}

// New creates a calibrator.
func New(logger *slog.Logger) *Calibrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calibrator{logger: logger}
}

// Calibrate reads session records from r and returns the scale estimate. At
// least two settled weekly expiries are required.
func (c *Calibrator) Calibrate(r io.Reader) (Result, error) {
	rows, err := LoadRows(r)
	if err != nil {
		return Result{}, err
	}

	deltas := SettlementDeltas(rows)
	if len(deltas) < 2 {
		return Result{}, fmt.Errorf("need at least 2 settled expiries, got %d", len(deltas))
	}

	result := Result{
		Samples: len(deltas),
		Mean:    stat.Mean(deltas),
		Scale:   stat.StdDev(deltas),
	}

	c.logger.Info("calibration complete",
		"rows", len(rows),
		"samples", result.Samples,
		"mean", result.Mean,
		"scale", result.Scale,
	)

	return result, nil
}
