package background

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/metrics"
	"github.com/robfig/cron/v3"
)

const relayTimeout = 30 * time.Second

// OutboxRelay moves committed order events from the outbox table to the
// broker. Delivery is at-least-once: a record is marked sent only after the
// broker accepted it.
type OutboxRelay struct {
	Outbox    domain.OutboxRepository
	Publisher domain.PublisherPort
	Metrics   *metrics.PaymentMetrics
	BatchSize int
}

func NewOutboxRelay(outbox domain.OutboxRepository, pub domain.PublisherPort, m *metrics.PaymentMetrics, batchSize int) *OutboxRelay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &OutboxRelay{Outbox: outbox, Publisher: pub, Metrics: m, BatchSize: batchSize}
}

// RelayOnce publishes one batch of pending records in id order. Records with
// the same topic are sent together; the first failing batch stops the pass.
func (r *OutboxRelay) RelayOnce(ctx context.Context) (sent int, err error) {
	defer func() {
		if r.Metrics != nil {
			r.Metrics.RecordOutboxRelay(sent, err)
		}
	}()

	records, err := r.Outbox.FetchPending(ctx, r.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch pending outbox records: %w", err)
	}

	var ids []int64
	for start := 0; start < len(records); {
		end := start + 1
		for end < len(records) && records[end].Topic == records[start].Topic {
			end++
		}

		batch := records[start:end]
		msgs := make([]domain.Message, 0, len(batch))
		for _, rec := range batch {
			msgs = append(msgs, domain.Message{Key: []byte(rec.Key), Value: rec.Payload})
		}
		if err = r.Publisher.Publish(ctx, batch[0].Topic, msgs...); err != nil {
			err = fmt.Errorf("publish to %s: %w", batch[0].Topic, err)
			break
		}
		for _, rec := range batch {
			ids = append(ids, rec.ID)
		}
		start = end
	}

	if len(ids) > 0 {
		if markErr := r.Outbox.MarkSent(ctx, ids); markErr != nil {
			return 0, fmt.Errorf("mark outbox records sent: %w", markErr)
		}
	}
	return len(ids), err
}

type BackgroundTasks struct {
	cron  *cron.Cron
	relay *OutboxRelay
}

func NewBackgroundTasks(relay *OutboxRelay, schedule string) (*BackgroundTasks, error) {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	bt := &BackgroundTasks{cron: c, relay: relay}

	if _, err := c.AddFunc(schedule, bt.relayOutbox); err != nil {
		return nil, fmt.Errorf("schedule outbox relay %q: %w", schedule, err)
	}
	return bt, nil
}

func (bt *BackgroundTasks) StartAll() {
	bt.cron.Start()
	slog.Info("background tasks started", "jobs", len(bt.cron.Entries()))
}

// Stop prevents new runs and waits for a running job, bounded by ctx.
func (bt *BackgroundTasks) Stop(ctx context.Context) {
	select {
	case <-bt.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("background tasks did not stop in time")
	}
}

func (bt *BackgroundTasks) relayOutbox() {
	ctx, cancel := context.WithTimeout(context.Background(), relayTimeout)
	defer cancel()

	sent, err := bt.relay.RelayOnce(ctx)
	if err != nil {
		slog.Error("outbox relay failed", "sent", sent, "error", err)
		return
	}
	if sent > 0 {
		slog.Debug("outbox relayed", "sent", sent)
	}
}
