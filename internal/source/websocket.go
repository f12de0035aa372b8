package source

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"
	"time"

	"nhooyr.io/websocket"

	"ariproxy/internal/config"
	"ariproxy/internal/constants"
	"ariproxy/internal/logger"
	"ariproxy/pkg/health"
	"ariproxy/pkg/metrics"
	"ariproxy/pkg/retry"
)

// WebSocketSource reads the ARI event stream of one Stasis application.
// Lost connections are redialed with exponential backoff.
type WebSocketSource struct {
	cfg       config.AriConfig
	logger    logger.Logger
	connected atomic.Bool
}

func NewWebSocketSource(cfg config.AriConfig, log logger.Logger) *WebSocketSource {
	return &WebSocketSource{cfg: cfg, logger: log}
}

func (s *WebSocketSource) Run(ctx context.Context, frames chan<- []byte) error {
	endpoint, err := EventsURL(s.cfg)
	if err != nil {
		return err
	}

	for {
		conn, err := s.dial(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("giving up on ari websocket: %w", err)
		}

		err = s.read(ctx, conn, frames)
		if ctx.Err() != nil {
			return nil
		}
		s.logger.Warnw("ARI websocket connection lost, reconnecting", "error", err)
		metrics.WebsocketReconnectsTotal.Inc()
	}
}

func (s *WebSocketSource) dial(ctx context.Context, endpoint string) (*websocket.Conn, error) {
	policy := retry.Policy{
		MaxAttempts:     s.cfg.Reconnect.MaxAttempts,
		InitialInterval: s.cfg.Reconnect.InitialInterval,
		MaxInterval:     s.cfg.Reconnect.MaxInterval,
		Multiplier:      s.cfg.Reconnect.Multiplier,
	}
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = constants.ReconnectInitialInterval
	}
	if policy.MaxInterval <= 0 {
		policy.MaxInterval = constants.ReconnectMaxInterval
	}

	var conn *websocket.Conn
	err := retry.Do(ctx, policy, func() error {
		c, _, err := websocket.Dial(ctx, endpoint, nil)
		if err != nil {
			return err
		}
		conn = c
		return nil
	}, func(attempt int, err error, next time.Duration) {
		s.logger.Warnw("ARI websocket dial failed",
			"attempt", attempt,
			"error", err,
			"retry_in", next,
		)
	})
	if err != nil {
		return nil, err
	}

	conn.SetReadLimit(constants.WebsocketReadLimit)
	s.logger.Infow("ARI websocket connected",
		"url", s.cfg.URL,
		"application", s.cfg.Application,
	)
	return conn, nil
}

func (s *WebSocketSource) read(ctx context.Context, conn *websocket.Conn, frames chan<- []byte) error {
	s.connected.Store(true)
	defer s.connected.Store(false)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.ping(connCtx, conn)

	defer conn.Close(websocket.StatusNormalClosure, "shutdown")

	for {
		typ, data, err := conn.Read(connCtx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			s.logger.Debugw("Ignoring non-text ARI frame", "type", typ.String())
			continue
		}
		metrics.WebsocketFramesTotal.Inc()

		select {
		case frames <- data:
		case <-connCtx.Done():
			return connCtx.Err()
		}
	}
}

func (s *WebSocketSource) ping(ctx context.Context, conn *websocket.Conn) {
	interval := s.cfg.PingInterval
	if interval <= 0 {
		interval = constants.WebsocketPingInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				s.logger.Warnw("ARI websocket ping failed", "error", err)
				_ = conn.Close(websocket.StatusGoingAway, "ping timeout")
				return
			}
		}
	}
}

func (s *WebSocketSource) CheckHealth(ctx context.Context) health.Report {
	if s.connected.Load() {
		return health.Healthy("source.ari")
	}
	return health.Unhealthy("source.ari", errors.New("ari websocket not connected"))
}

// EventsURL adds the application and credentials to the configured events
// endpoint.
func EventsURL(cfg config.AriConfig) (string, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid ari url %q: %w", cfg.URL, err)
	}

	q := u.Query()
	q.Set("app", cfg.Application)
	if cfg.User != "" {
		q.Set("api_key", cfg.User+":"+cfg.Password)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
