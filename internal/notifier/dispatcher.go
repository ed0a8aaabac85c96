package notifier

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/obraguard/obraguard/internal/metrics"
	"github.com/obraguard/obraguard/internal/models"
	"github.com/obraguard/obraguard/internal/storage"
)

// DefaultWorkers bounds concurrent channel sends in one dispatch pass.
const DefaultWorkers = 4

// Summary reports the outcome of one dispatch pass.
type Summary struct {
	Attempted int `json:"attempted"`
	Sent      int `json:"sent"`
	Errored   int `json:"errored"`
}

// Dispatcher attempts delivery of deliverable notifications. Each pass is a
// short-lived invocation over whatever the store currently holds; the store's
// atomic outcome methods make concurrent passes safe.
type Dispatcher struct {
	storage storage.Storage
	senders map[models.Channel]Sender
	workers int
	limiter *rate.Limiter
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	// Workers is the concurrent send bound (default 4).
	Workers int
	// SendsPerSecond throttles outbound email/webhook sends across the
	// whole pass. Zero disables throttling.
	SendsPerSecond float64
}

// NewDispatcher creates a dispatcher with the given channel senders.
func NewDispatcher(store storage.Storage, senders []Sender, opts DispatcherOptions) *Dispatcher {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.SendsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.SendsPerSecond), 1)
	}

	byChannel := make(map[models.Channel]Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}

	return &Dispatcher{
		storage: store,
		senders: byChannel,
		workers: workers,
		limiter: limiter,
	}
}

// Dispatch attempts delivery of all deliverable notifications, or only those
// of one alert when alertID is non-empty. Per-item failures are recorded on
// the notification and aggregated into the summary; only store-level failures
// abort the pass. Cancellation is honored between notifications.
func (d *Dispatcher) Dispatch(ctx context.Context, alertID string) (Summary, error) {
	start := time.Now()
	defer func() {
		metrics.DispatchDuration.Observe(time.Since(start).Seconds())
	}()

	pending, err := d.storage.Notifications().ListPending(ctx, alertID)
	if err != nil {
		return Summary{}, fmt.Errorf("list pending notifications: %w", err)
	}

	var attempted, sent, errored atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for _, n := range pending {
		if gctx.Err() != nil {
			break
		}
		n := n
		attempted.Add(1)
		g.Go(func() error {
			if d.deliver(gctx, n) {
				sent.Add(1)
			} else {
				errored.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summaryFrom(&attempted, &sent, &errored), err
	}
	return summaryFrom(&attempted, &sent, &errored), ctx.Err()
}

// deliver attempts one notification and records the outcome. Returns true
// when the notification was marked SENT.
func (d *Dispatcher) deliver(ctx context.Context, n *models.Notification) bool {
	sender, ok := d.senders[n.Channel]
	if !ok {
		d.recordFailure(n, fmt.Sprintf("no sender registered for channel %s", n.Channel))
		return false
	}

	// Dashboard delivery is store-local; only external channels consume
	// rate limiter tokens.
	if n.Channel != models.ChannelDashboard {
		if err := d.limiter.Wait(ctx); err != nil {
			d.recordFailure(n, fmt.Sprintf("rate limiter: %v", err))
			return false
		}
	}

	if err := sender.Send(ctx, n); err != nil {
		d.recordFailure(n, err.Error())
		return false
	}

	// The outcome write runs on a fresh context: a pass abandoned mid-send
	// must still record results for sends that already happened.
	markCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.storage.Notifications().MarkSent(markCtx, n.ID); err != nil {
		log.Printf("mark notification %s sent: %v", n.ID, err)
		return false
	}
	metrics.NotificationsSentTotal.WithLabelValues(string(n.Channel)).Inc()
	return true
}

func (d *Dispatcher) recordFailure(n *models.Notification, errText string) {
	metrics.NotificationsFailedTotal.WithLabelValues(string(n.Channel)).Inc()

	markCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.storage.Notifications().MarkFailed(markCtx, n.ID, errText); err != nil {
		log.Printf("mark notification %s failed: %v", n.ID, err)
		return
	}
	log.Printf("notification %s (%s) delivery failed, attempt %d/%d: %s",
		n.ID, n.Channel, n.Attempts+1, n.MaxAttempts, errText)
}

func summaryFrom(attempted, sent, errored *atomic.Int64) Summary {
	return Summary{
		Attempted: int(attempted.Load()),
		Sent:      int(sent.Load()),
		Errored:   int(errored.Load()),
	}
}
