package sync

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// DefaultInterval период проходов синхронизации по умолчанию
const DefaultInterval = 10 * time.Second

// DefaultOnlineCheck период проверки связи с сервером
const DefaultOnlineCheck = 3 * time.Second

// Poller выполняет один проход синхронизации
type Poller interface {
	Poll(ctx context.Context) (*PassResult, error)
}

// Runner periodically polls the engine until its context is cancelled.
// A pass runs immediately on start, then every Interval plus a random
// delay in [0, Jitter), and whenever Trigger is called.
type Runner struct {
	poller   Poller
	logger   *slog.Logger
	trigger  chan struct{}
	Interval time.Duration
	Jitter   time.Duration
	// OnPass вызывается после каждого прохода, если задан
	OnPass func(*PassResult, error)
}

// NewRunner создает Runner с интервалом по умолчанию
func NewRunner(poller Poller, logger *slog.Logger) *Runner {
	return &Runner{
		poller:   poller,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
		Interval: DefaultInterval,
	}
}

// Trigger requests an immediate pass, e.g. after connectivity returns.
// Requests made while one is already queued are coalesced.
func (r *Runner) Trigger() {
	select {
	case r.trigger <- struct{}{}:
	default:
	}
}

// Run блокируется до отмены ctx
func (r *Runner) Run(ctx context.Context) error {
	r.poll(ctx)

	timer := time.NewTimer(r.nextDelay())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "sync runner stopped")
			return ctx.Err()
		case <-timer.C:
			r.poll(ctx)
		case <-r.trigger:
			r.poll(ctx)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		}
		timer.Reset(r.nextDelay())
	}
}

// WatchConnectivity проверяет связь каждые every и запускает внеочередной
// проход, когда сервер снова стал доступен. Блокируется до отмены ctx.
func (r *Runner) WatchConnectivity(ctx context.Context, online Connectivity, every time.Duration) error {
	if every <= 0 {
		every = DefaultOnlineCheck
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	was := online.Online(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			now := online.Online(ctx)
			if now && !was {
				r.logger.InfoContext(ctx, "server is reachable again, syncing")
				r.Trigger()
			}
			was = now
		}
	}
}

func (r *Runner) poll(ctx context.Context) {
	result, err := r.poller.Poll(ctx)
	if err != nil && ctx.Err() == nil {
		r.logger.ErrorContext(ctx, "sync pass failed", slog.Any("error", err))
	}
	if result != nil && !result.Ran() {
		r.logger.DebugContext(ctx, "sync pass skipped", slog.String("reason", string(result.SkipReason)))
	}
	if r.OnPass != nil {
		r.OnPass(result, err)
	}
}

func (r *Runner) nextDelay() time.Duration {
	d := r.Interval
	if d <= 0 {
		d = DefaultInterval
	}
	if r.Jitter > 0 {
		d += rand.N(r.Jitter)
	}
	return d
}
