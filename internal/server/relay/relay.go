// Package relay передает WhatsApp сообщения во внешний relay: каждое
// сообщение записывается PUT запросом по адресу <base>/<id>.json,
// откуда его забирает телефон клиники.
package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"go.uber.org/ratelimit"

	"github.com/iudanet/clinicsync/internal/metrics"
)

// ErrNotConfigured relay URL не задан
var ErrNotConfigured = errors.New("relay is not configured")

// Config параметры relay
type Config struct {
	BaseURL  string
	Timeout  time.Duration
	Delay    time.Duration
	Attempts uint
	// PerSecond ограничивает частоту PUT запросов к relay, 0 без ограничения
	PerSecond uint
}

// Message тело записи в relay
type Message struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

// StatusError relay ответил неуспешным статусом
type StatusError struct {
	Body       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("relay responded %d: %s", e.StatusCode, e.Body)
}

// Client HTTP клиент relay
type Client struct {
	resty   *resty.Client
	limiter ratelimit.Limiter
	logger  *slog.Logger
	metrics *metrics.RelayMetrics
	cfg     Config
}

func New(cfg Config, logger *slog.Logger, m *metrics.RelayMetrics) *Client {
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	r := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.PerSecond > 0 {
		limiter = ratelimit.New(int(cfg.PerSecond))
	}
	return &Client{
		resty:   r,
		limiter: limiter,
		logger:  logger,
		metrics: m,
		cfg:     cfg,
	}
}

// Send записывает сообщение под ключом id. Сетевые ошибки, 429 и 5xx
// повторяются до cfg.Attempts раз с экспоненциальной задержкой.
func (c *Client) Send(ctx context.Context, id string, msg Message) error {
	if c.cfg.BaseURL == "" {
		return ErrNotConfigured
	}

	err := retry.Do(
		func() error { return c.put(ctx, id, msg) },
		retry.Context(ctx),
		retry.Attempts(c.cfg.Attempts),
		retry.Delay(c.cfg.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WarnContext(ctx, "relay attempt failed",
				slog.String("message_id", id),
				slog.Uint64("attempt", uint64(n+1)),
				slog.Any("error", err))
		}),
	)
	if err != nil {
		return fmt.Errorf("relay send %s: %w", id, err)
	}
	return nil
}

func (c *Client) put(ctx context.Context, id string, msg Message) error {
	c.limiter.Take()
	c.metrics.ObserveAttempt()

	resp, err := c.resty.R().
		SetContext(ctx).
		SetBody(msg).
		Put("/" + id + ".json")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return &StatusError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return true
}
