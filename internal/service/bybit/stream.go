package bybit

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"Barashor/pkg/logger"
)

// StreamConfig carries the ticker stream parameters.
type StreamConfig struct {
	URL            string
	ReconnectDelay time.Duration
	PingInterval   time.Duration
}

// Stream keeps the price cache warm from the Bybit public ticker WebSocket,
// so evaluations between REST refreshes see near-live prices. It is an
// optimization only: losing the stream degrades to REST-fetched prices.
type Stream struct {
	cfg    StreamConfig
	client *Client
	log    *logger.Logger
}

func NewStream(cfg StreamConfig, client *Client, log *logger.Logger) *Stream {
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = 20 * time.Second
	}
	return &Stream{cfg: cfg, client: client, log: log}
}

// tickers.* payloads are partial: absent fields keep their previous value,
// so only lastPrice is decoded and empty updates are skipped.
type streamMessage struct {
	Topic string `json:"topic"`
	Data  struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"data"`
}

type streamCommand struct {
	Op   string   `json:"op"`
	Args []string `json:"args,omitempty"`
}

// Run subscribes to the given symbols and pumps ticker updates into the
// price cache until ctx is cancelled. Connection loss triggers reconnect
// with the configured delay.
func (s *Stream) Run(ctx context.Context, symbols []string) {
	for {
		if err := s.connectAndPump(ctx, symbols); err != nil {
			s.log.Warn("ticker stream dropped", logger.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.cfg.ReconnectDelay):
		}
	}
}

func (s *Stream) connectAndPump(ctx context.Context, symbols []string) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := s.subscribe(conn, symbols); err != nil {
		return err
	}
	s.log.Info("ticker stream connected", logger.Int("symbols", len(symbols)))

	// The server drops idle connections; an application-level ping keeps it
	// open. Closing the connection on ctx cancel unblocks ReadMessage.
	pingCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-pingCtx.Done():
				conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteJSON(streamCommand{Op: "ping"}); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		var msg streamMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			continue
		}
		if msg.Data.Symbol == "" || msg.Data.LastPrice == "" {
			continue
		}
		price, err := strconv.ParseFloat(msg.Data.LastPrice, 64)
		if err != nil || price <= 0 {
			continue
		}
		s.client.WarmPrice(msg.Data.Symbol, price)
	}
}

// subscribe batches topic args; the server caps args per request.
func (s *Stream) subscribe(conn *websocket.Conn, symbols []string) error {
	const batch = 10
	for i := 0; i < len(symbols); i += batch {
		end := i + batch
		if end > len(symbols) {
			end = len(symbols)
		}
		args := make([]string, 0, batch)
		for _, sym := range symbols[i:end] {
			args = append(args, "tickers."+sym)
		}
		if err := conn.WriteJSON(streamCommand{Op: "subscribe", Args: args}); err != nil {
			return err
		}
	}
	return nil
}
