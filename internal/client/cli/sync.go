package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/clinicsync/internal/client/auth"
	"github.com/iudanet/clinicsync/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")

	if err := c.requireSession(ctx); err != nil {
		return err
	}

	result, err := c.syncer.Poll(ctx)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}
	c.printPass(result)
	return nil
}

func (c *Cli) printPass(result *sync.PassResult) {
	switch result.SkipReason {
	case sync.SkipOffline:
		c.io.Println("Server is not reachable, changes stay in the local queue.")
		return
	case sync.SkipConflictPending:
		c.io.Println("⚠️  Sync is paused until conflicts are resolved. Run 'clinicsync conflicts'.")
		return
	case sync.SkipInProgress:
		c.io.Println("Another sync pass is running.")
		return
	}

	c.io.Println()
	c.io.Printf("Synced:    %d\n", result.Synced)
	if result.Rekeyed > 0 {
		c.io.Printf("Re-keyed:  %d\n", result.Rekeyed)
	}
	if result.Discarded > 0 {
		c.io.Printf("Discarded: %d (rejected by server)\n", result.Discarded)
	}
	if result.Failed > 0 {
		c.io.Printf("Failed:    %d (will retry)\n", result.Failed)
	}
	if result.Skipped > 0 {
		c.io.Printf("Waiting:   %d\n", result.Skipped)
	}
	if result.Conflicts > 0 {
		c.io.Println("⚠️  Conflict detected. Run 'clinicsync conflicts' to review it.")
	}
}

// sessionPoller обновляет токен перед каждым проходом
type sessionPoller struct {
	auth   auth.Service
	syncer Syncer
}

func (p *sessionPoller) Poll(ctx context.Context) (*sync.PassResult, error) {
	if _, err := p.auth.EnsureTokenValid(ctx); err != nil {
		return nil, err
	}
	return p.syncer.Poll(ctx)
}

// watchCommands команды, доступные в приглашении watch. Они работают с той же
// открытой базой, что и проходы синхронизации.
var watchCommands = map[string]bool{
	"status":           true,
	"new-patient":      true,
	"add-consultation": true,
	"edit":             true,
	"queue":            true,
	"sync":             true,
	"conflicts":        true,
	"resolve":          true,
	"autosend":         true,
	"location":         true,
	"find":             true,
	"consultations":    true,
}

func (c *Cli) runWatch(ctx context.Context) error {
	if err := c.requireSession(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := c.runner
	if c.watch.Interval > 0 {
		runner.Interval = c.watch.Interval
	}
	runner.Jitter = c.watch.Jitter
	runner.OnPass = func(result *sync.PassResult, err error) {
		if err != nil || result == nil || !result.Ran() {
			return
		}
		if result.Synced+result.Discarded+result.Failed+result.Conflicts > 0 {
			c.io.Printf("[%s] synced=%d failed=%d conflicts=%d\n",
				result.StartedAt.Local().Format(time.TimeOnly), result.Synced, result.Failed, result.Conflicts)
		}
	}

	c.io.Printf("Watching the queue every %s, press Ctrl+C to stop.\n", runner.Interval)
	c.io.Println("Desk commands (new-patient, edit, resolve, ...) can be typed here.")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := runner.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if c.watch.Online != nil {
		g.Go(func() error {
			if err := runner.WatchConnectivity(gctx, c.watch.Online, c.watch.OnlineCheck); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	// чтение stdin нельзя прервать, поэтому читатель живет вне errgroup,
	// а команды выполняются внутри нее
	lines := make(chan string)
	next := make(chan struct{}, 1)
	go c.readCommands(gctx, lines, next)
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					// stdin закрыт, продолжаем синхронизацию без приглашения
					<-gctx.Done()
					return nil
				}
				c.runWatchCommand(gctx, line)
				next <- struct{}{}
			}
		}
	})

	if c.watch.MetricsAddr != "" && c.watch.Registry != nil {
		srv := &http.Server{
			Addr:              c.watch.MetricsAddr,
			Handler:           promhttp.HandlerFor(c.watch.Registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	c.io.Println("Stopped.")
	return err
}

// readCommands читает строки и ждет сигнала next перед следующей, чтобы
// не перехватить ответы на вопросы выполняемой команды
func (c *Cli) readCommands(ctx context.Context, lines chan<- string, next <-chan struct{}) {
	defer close(lines)
	for {
		line, err := c.io.ReadInput("clinicsync> ")
		if err != nil {
			return
		}
		select {
		case lines <- line:
		case <-ctx.Done():
			return
		}
		select {
		case <-next:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Cli) runWatchCommand(ctx context.Context, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	command, args := fields[0], fields[1:]

	switch {
	case command == "help":
		c.io.Println("Available: " + strings.Join(sortedWatchCommands(), ", "))
		return
	case !watchCommands[command]:
		c.io.Printf("Command %q is not available while watching.\n", command)
		return
	case command == "sync":
		c.QueueChanged()
		c.io.Println("Sync requested.")
		return
	}

	if err := c.Run(ctx, command, args); err != nil {
		c.io.Printf("Error: %v\n", err)
	}
}

func sortedWatchCommands() []string {
	out := make([]string, 0, len(watchCommands))
	for name := range watchCommands {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}
