package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/yourusername/futures-signal/internal/models"
)

// QuoteHandler is called for every quote received from the stream
type QuoteHandler func(quote Quote) error

// Quote is one tick from the live stream
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Size      float64   `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// subscribeMessage subscribes the connection to a symbol's quote feed
type subscribeMessage struct {
	Op     string `json:"op"`
	Symbol string `json:"symbol"`
	APIKey string `json:"api_key,omitempty"`
}

// ReconnectConfig controls reconnection behavior
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// QuoteStream maintains a WebSocket connection to the live quote feed and
// aggregates ticks into the in-progress daily bar. At the session close the
// accumulated bar can be flushed into the historical series.
type QuoteStream struct {
	streamURL       string
	apiKey          string
	symbol          string
	reconnectConfig ReconnectConfig
	logger          *logrus.Logger

	mu              sync.RWMutex
	conn            *websocket.Conn
	isConnected     bool
	subscribed      bool
	closed          bool
	handlers        []QuoteHandler
	lastMessageTime time.Time
	currentBar      *models.Bar
	tickCount       int
}

// NewQuoteStream creates a new quote stream client
func NewQuoteStream(streamURL, apiKey, symbol string, logger *logrus.Logger) *QuoteStream {
	if logger == nil {
		logger = logrus.New()
	}
	return &QuoteStream{
		streamURL:       streamURL,
		apiKey:          apiKey,
		symbol:          symbol,
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
		handlers:        make([]QuoteHandler, 0),
	}
}

// SetReconnectConfig overrides the reconnect behavior. Must be called
// before Connect.
func (s *QuoteStream) SetReconnectConfig(cfg ReconnectConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnectConfig = cfg
}

// Connect establishes the WebSocket connection and starts the read loop.
// A dropped connection is re-dialed with exponential backoff until the
// retry budget runs out, the context is cancelled, or Close is called.
func (s *QuoteStream) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.isConnected {
		s.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	s.closed = false
	s.mu.Unlock()

	conn, err := s.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to quote stream: %w", err)
	}
	s.adoptConn(conn)

	s.logger.WithField("url", s.streamURL).Info("Connected to quote stream")

	go s.run(ctx, conn)

	return nil
}

func (s *QuoteStream) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, s.streamURL, nil)
	return conn, err
}

func (s *QuoteStream) adoptConn(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()
}

// Subscribe sends the symbol subscription message
func (s *QuoteStream) Subscribe() error {
	s.mu.Lock()
	s.subscribed = true
	s.mu.Unlock()

	return s.sendMessage(subscribeMessage{
		Op:     "subscribe",
		Symbol: s.symbol,
		APIKey: s.apiKey,
	})
}

// AddHandler registers a quote handler
func (s *QuoteStream) AddHandler(handler QuoteHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// run reads quotes until the connection drops, then re-dials. A deliberate
// Close or a cancelled context ends the loop; an exhausted retry budget
// closes the stream.
func (s *QuoteStream) run(ctx context.Context, conn *websocket.Conn) {
	for {
		s.readQuotes(conn)

		s.mu.Lock()
		s.isConnected = false
		resubscribe := s.subscribed
		closed := s.closed
		s.mu.Unlock()

		if closed || ctx.Err() != nil {
			return
		}

		next, err := s.reconnect(ctx)
		if err != nil {
			s.logger.WithError(err).Error("Quote stream gave up reconnecting")
			s.Close()
			return
		}
		conn = next
		s.adoptConn(conn)

		if resubscribe {
			if err := s.Subscribe(); err != nil {
				s.logger.WithError(err).Warn("Resubscribe after reconnect failed")
			}
		}
	}
}

// reconnect re-dials with exponential backoff.
func (s *QuoteStream) reconnect(ctx context.Context) (*websocket.Conn, error) {
	cfg := s.reconnectConfig
	backoff := cfg.InitialBackoff
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}

		conn, err := s.dial(ctx)
		if err == nil {
			s.logger.WithFields(logrus.Fields{
				"url":     s.streamURL,
				"attempt": attempt,
			}).Info("Quote stream reconnected")
			return conn, nil
		}
		s.logger.WithError(err).WithField("attempt", attempt).Warn("Quote stream reconnect failed")

		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
		if backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
	return nil, fmt.Errorf("exhausted %d reconnect attempts", cfg.MaxRetries)
}

// readQuotes reads quotes from one WebSocket connection until it fails.
func (s *QuoteStream) readQuotes(conn *websocket.Conn) {
	for {
		var raw json.RawMessage
		if err := conn.ReadJSON(&raw); err != nil {
			s.logger.WithError(err).Warn("Quote stream read failed")
			return
		}

		var quote Quote
		if err := json.Unmarshal(raw, &quote); err != nil {
			s.logger.WithError(err).Debug("Skipping unparseable stream message")
			continue
		}
		if quote.Symbol != "" && quote.Symbol != s.symbol {
			continue
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.applyQuote(quote)
		handlers := s.handlers
		s.mu.Unlock()

		for _, handler := range handlers {
			if err := handler(quote); err != nil {
				s.logger.WithError(err).Warn("Quote handler error")
			}
		}
	}
}

// applyQuote folds a tick into the in-progress daily bar. Callers hold mu.
func (s *QuoteStream) applyQuote(quote Quote) {
	day := time.Date(quote.Timestamp.Year(), quote.Timestamp.Month(), quote.Timestamp.Day(),
		0, 0, 0, 0, time.UTC)

	if s.currentBar == nil || !s.currentBar.Date.Equal(day) {
		s.currentBar = &models.Bar{
			Date:  day,
			Open:  quote.Price,
			High:  quote.Price,
			Low:   quote.Price,
			Close: quote.Price,
		}
		s.tickCount = 0
	}

	if quote.Price > s.currentBar.High {
		s.currentBar.High = quote.Price
	}
	if quote.Price < s.currentBar.Low {
		s.currentBar.Low = quote.Price
	}
	s.currentBar.Close = quote.Price
	s.currentBar.Volume += quote.Size
	s.tickCount++
}

// CurrentBar returns a snapshot of the in-progress daily bar, or nil when
// no quotes have arrived yet.
func (s *QuoteStream) CurrentBar() *models.Bar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentBar == nil {
		return nil
	}
	snapshot := *s.currentBar
	return &snapshot
}

// TickCount returns the number of ticks folded into the current bar.
func (s *QuoteStream) TickCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickCount
}

// sendMessage sends a JSON message over the connection
func (s *QuoteStream) sendMessage(msg interface{}) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	conn := s.conn
	s.mu.RUnlock()

	return conn.WriteJSON(msg)
}

// IsConnected returns whether the stream is connected
func (s *QuoteStream) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

// LastMessageTime returns the time of the last received message
func (s *QuoteStream) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close stops the stream; the read loop will not reconnect afterwards.
func (s *QuoteStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.isConnected = false

	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
