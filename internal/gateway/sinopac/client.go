package sinopac

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/cwhuang/wingbot/internal/gateway"
	"github.com/cwhuang/wingbot/internal/types"
)

// Bridge protocol message IDs. Fields within a message are NUL-separated and
// each frame carries a 4-byte big-endian size prefix.
const (
	msgTick      = 1
	msgSubscribe = 2
	msgUnsub     = 3
	msgCombo     = 4
	msgLogin     = 5
	msgNewAck    = 10
	msgCancelAck = 11
	msgFill      = 12
)

// Connection states.
const (
	stateDisconnected int32 = iota
	stateConnecting
	stateConnected
)

// Client implements gateway.Gateway against the Shioaji bridge sidecar.
type Client struct {
	cfg    Config
	logger *slog.Logger

	conn        net.Conn
	state       atomic.Int32
	connMu      sync.Mutex
	writeMu     sync.Mutex
	connectedAt time.Time

	limiter *rate.Limiter

	tickMu   sync.RWMutex
	tickSubs map[string]gateway.TickHandler

	reportMu      sync.RWMutex
	reportHandler gateway.ReportHandler

	done chan struct{}
	wg   sync.WaitGroup
}

// NewClient creates a bridge client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:      cfg,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), cfg.MaxRequestsPerSecond),
		tickSubs: make(map[string]gateway.TickHandler),
		done:     make(chan struct{}),
	}
}

// Connect dials the bridge and logs the broker session in.
func (c *Client) Connect(ctx context.Context) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.state.Load() == stateConnected {
		return nil
	}
	c.state.Store(stateConnecting)

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))
	c.logger.Info("connecting to bridge",
		"addr", addr,
		"simulation", c.cfg.Simulation,
	)

	dialer := net.Dialer{Timeout: c.cfg.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.state.Store(stateDisconnected)
		return fmt.Errorf("%w: %v", gateway.ErrConnectionTimeout, err)
	}
	c.conn = conn
	c.connectedAt = time.Now()

	if err := c.login(); err != nil {
		_ = conn.Close()
		c.state.Store(stateDisconnected)
		return fmt.Errorf("login: %w", err)
	}

	c.state.Store(stateConnected)
	c.done = make(chan struct{})

	c.wg.Add(1)
	go c.readLoop()

	c.logger.Info("connected to bridge", "connected_at", c.connectedAt)
	return nil
}

// login sends the credentials frame and waits for the bridge acknowledgment.
func (c *Client) login() error {
	sim := "0"
	if c.cfg.Simulation {
		sim = "1"
	}
	frame := fmt.Sprintf("%d\x00%s\x00%s\x00%s\x00", msgLogin, c.cfg.APIKey, c.cfg.SecretKey, sim)
	if err := c.writeFrame([]byte(frame)); err != nil {
		return fmt.Errorf("write login: %w", err)
	}

	_ = c.conn.SetReadDeadline(time.Now().Add(c.cfg.ConnectTimeout))
	payload, err := readFrame(c.conn)
	_ = c.conn.SetReadDeadline(time.Time{})
	if err != nil {
		return fmt.Errorf("read login response: %w", err)
	}

	fields := bytes.Split(payload, []byte{0})
	if len(fields) < 2 || string(fields[1]) != "ok" {
		return fmt.Errorf("bridge refused login: %q", payload)
	}
	return nil
}

// readLoop decodes frames until the connection drops or Close is called.
// Close unblocks the pending read by closing the socket.
func (c *Client) readLoop() {
	defer c.wg.Done()

	for {
		payload, err := readFrame(c.conn)
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Error("bridge read error", "error", err)
				c.state.Store(stateDisconnected)
			}
			return
		}
		c.processFrame(payload)
	}
}

// processFrame dispatches one decoded frame. Reports are decoded here, at the
// boundary, so the rest of the process only ever sees typed values.
func (c *Client) processFrame(payload []byte) {
	fields := bytes.Split(payload, []byte{0})
	if len(fields) < 2 {
		c.logger.Debug("short frame", "size", len(payload))
		return
	}

	msgID, err := strconv.Atoi(string(fields[0]))
	if err != nil {
		c.logger.Debug("invalid message id", "data", string(fields[0]))
		return
	}

	switch msgID {
	case msgTick:
		c.handleTick(fields)
	case msgNewAck, msgCancelAck, msgFill:
		c.handleReport(msgID, fields)
	default:
		c.logger.Debug("unhandled message", "msg_id", msgID)
	}
}

// handleTick decodes msgID, symbol, price, epoch-ms.
func (c *Client) handleTick(fields [][]byte) {
	if len(fields) < 4 {
		return
	}
	symbol := string(fields[1])
	price, err := decimal.NewFromString(string(fields[2]))
	if err != nil {
		c.logger.Debug("bad tick price", "symbol", symbol, "data", string(fields[2]))
		return
	}
	at := time.Now()
	if ms, err := strconv.ParseInt(string(fields[3]), 10, 64); err == nil {
		at = time.UnixMilli(ms)
	}

	c.tickMu.RLock()
	handler := c.tickSubs[symbol]
	c.tickMu.RUnlock()
	if handler != nil {
		handler(types.Tick{ExchangeID: symbol, Close: price, At: at})
	}
}

// handleReport decodes msgID, orderID, quantity into the typed report.
func (c *Client) handleReport(msgID int, fields [][]byte) {
	if len(fields) < 3 {
		return
	}
	orderID := string(fields[1])
	qty, err := strconv.Atoi(string(fields[2]))
	if err != nil {
		c.logger.Debug("bad report quantity", "order_id", orderID, "data", string(fields[2]))
		return
	}

	var report types.ExecutionReport
	switch msgID {
	case msgNewAck:
		report = types.NewAck{OrderID: orderID, Quantity: qty}
	case msgCancelAck:
		report = types.CancelAck{OrderID: orderID, CancelQuantity: qty}
	case msgFill:
		report = types.TradeFill{OrderID: orderID, Quantity: qty}
	default:
		return
	}

	c.reportMu.RLock()
	handler := c.reportHandler
	c.reportMu.RUnlock()
	if handler != nil {
		handler(report)
	}
}

// SubscribeTicks registers a handler and asks the bridge for the feed.
func (c *Client) SubscribeTicks(ctx context.Context, symbol string, h gateway.TickHandler) error {
	if c.state.Load() != stateConnected {
		return types.ErrNotConnected
	}

	c.tickMu.Lock()
	_, resubscribe := c.tickSubs[symbol]
	c.tickSubs[symbol] = h
	c.tickMu.Unlock()

	// The bridge keeps the upstream subscription alive; a handler swap needs
	// no wire traffic.
	if resubscribe {
		return nil
	}

	frame := fmt.Sprintf("%d\x00%s\x00", msgSubscribe, symbol)
	if err := c.send(ctx, frame); err != nil {
		c.tickMu.Lock()
		delete(c.tickSubs, symbol)
		c.tickMu.Unlock()
		return fmt.Errorf("subscribe %s: %w", symbol, err)
	}

	c.logger.Info("subscribed to ticks", "symbol", symbol)
	return nil
}

// UnsubscribeTicks stops the feed for a symbol.
func (c *Client) UnsubscribeTicks(symbol string) error {
	c.tickMu.Lock()
	_, ok := c.tickSubs[symbol]
	delete(c.tickSubs, symbol)
	c.tickMu.Unlock()
	if !ok {
		return nil
	}

	frame := fmt.Sprintf("%d\x00%s\x00", msgUnsub, symbol)
	if err := c.send(context.Background(), frame); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", symbol, err)
	}

	c.logger.Info("unsubscribed from ticks", "symbol", symbol)
	return nil
}

// SetReportHandler registers the execution report sink. Nil detaches.
func (c *Client) SetReportHandler(h gateway.ReportHandler) {
	c.reportMu.Lock()
	c.reportHandler = h
	c.reportMu.Unlock()
}

// SubmitCombo transmits a two-leg IOC order.
func (c *Client) SubmitCombo(ctx context.Context, order gateway.ComboOrder) error {
	if c.state.Load() != stateConnected {
		return types.ErrNotConnected
	}

	frame := fmt.Sprintf("%d\x00%s\x00%s\x00%s\x00%d\x00%s\x00%s\x00%s\x00%s\x00",
		msgCombo,
		order.ClientOrderID,
		order.Intent,
		order.Price.String(),
		order.Quantity,
		order.Legs[0].Instrument.Symbol,
		order.Legs[0].Action,
		order.Legs[1].Instrument.Symbol,
		order.Legs[1].Action,
	)
	if err := c.send(ctx, frame); err != nil {
		return fmt.Errorf("%w: %v", gateway.ErrSubmitRejected, err)
	}

	c.logger.Info("combo submitted",
		"order_id", order.ClientOrderID,
		"intent", order.Intent,
		"price", order.Price,
		"quantity", order.Quantity,
	)
	return nil
}

// Close shuts the connection down and waits for the read loop.
func (c *Client) Close() error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.state.Load() == stateDisconnected {
		return nil
	}

	close(c.done)
	if c.conn != nil {
		_ = c.conn.Close()
	}
	c.wg.Wait()
	c.state.Store(stateDisconnected)

	c.logger.Info("disconnected from bridge")
	return nil
}

// send rate-limits and writes one frame.
func (c *Client) send(ctx context.Context, frame string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	return c.writeFrame([]byte(frame))
}

func (c *Client) writeFrame(payload []byte) error {
	size := len(payload)
	data := make([]byte, 4+size)
	data[0] = byte(size >> 24)
	data[1] = byte(size >> 16)
	data[2] = byte(size >> 8)
	data[3] = byte(size)
	copy(data[4:], payload)

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_, err := c.conn.Write(data)
	return err
}

// readFrame reads one size-prefixed frame.
func readFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	size := int(header[0])<<24 | int(header[1])<<16 | int(header[2])<<8 | int(header[3])
	if size <= 0 || size > 1<<20 {
		return nil, fmt.Errorf("frame size %d out of range", size)
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

var _ gateway.Gateway = (*Client)(nil)
