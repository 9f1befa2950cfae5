package background

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/LavaJover/shvark-payment-service/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeOutbox struct {
	mu      sync.Mutex
	records []*domain.OutboxRecord
	sent    map[int64]bool
}

func (o *fakeOutbox) FetchPending(_ context.Context, limit int) ([]*domain.OutboxRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	var out []*domain.OutboxRecord
	for _, r := range o.records {
		if !o.sent[r.ID] && len(out) < limit {
			out = append(out, r)
		}
	}
	return out, nil
}

func (o *fakeOutbox) MarkSent(_ context.Context, ids []int64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, id := range ids {
		o.sent[id] = true
	}
	return nil
}

type fakePublisher struct {
	failTopic string
	published map[string][]domain.Message
}

func (p *fakePublisher) Publish(_ context.Context, topic string, msgs ...domain.Message) error {
	if topic == p.failTopic {
		return errors.New("broker unavailable")
	}
	p.published[topic] = append(p.published[topic], msgs...)
	return nil
}

func newOutbox(topics ...string) *fakeOutbox {
	o := &fakeOutbox{sent: make(map[int64]bool)}
	for i, topic := range topics {
		o.records = append(o.records, &domain.OutboxRecord{
			ID:      int64(i + 1),
			Topic:   topic,
			Key:     "O1",
			Payload: []byte(`{"type":"order.created"}`),
		})
	}
	return o
}

func TestRelayOncePublishesAndMarksSent(t *testing.T) {
	outbox := newOutbox("orders", "orders", "audit")
	pub := &fakePublisher{published: make(map[string][]domain.Message)}
	reg := prometheus.NewRegistry()
	relay := NewOutboxRelay(outbox, pub, metrics.NewPaymentMetrics(reg), 10)

	sent, err := relay.RelayOnce(context.Background())
	if err != nil {
		t.Fatalf("RelayOnce: %v", err)
	}
	if sent != 3 {
		t.Errorf("sent = %d, want 3", sent)
	}
	if len(pub.published["orders"]) != 2 || len(pub.published["audit"]) != 1 {
		t.Errorf("published = %v", pub.published)
	}
	if string(pub.published["orders"][0].Key) != "O1" {
		t.Errorf("message key = %s", pub.published["orders"][0].Key)
	}

	sent, err = relay.RelayOnce(context.Background())
	if err != nil || sent != 0 {
		t.Errorf("second pass: sent=%d err=%v", sent, err)
	}
	if got := testutil.ToFloat64(relay.Metrics.OutboxRelayedTotal); got != 3 {
		t.Errorf("relayed counter = %v, want 3", got)
	}
}

func TestRelayOnceStopsAtFailedBatch(t *testing.T) {
	outbox := newOutbox("orders", "audit", "orders")
	pub := &fakePublisher{failTopic: "audit", published: make(map[string][]domain.Message)}
	reg := prometheus.NewRegistry()
	relay := NewOutboxRelay(outbox, pub, metrics.NewPaymentMetrics(reg), 10)

	sent, err := relay.RelayOnce(context.Background())
	if err == nil {
		t.Fatal("expected publish error")
	}
	if sent != 1 {
		t.Errorf("sent = %d, want 1", sent)
	}
	if !outbox.sent[1] || outbox.sent[2] || outbox.sent[3] {
		t.Errorf("sent flags = %v", outbox.sent)
	}
	if got := testutil.ToFloat64(relay.Metrics.OutboxErrorsTotal); got != 1 {
		t.Errorf("error counter = %v, want 1", got)
	}
}

func TestNewBackgroundTasksRejectsBadSchedule(t *testing.T) {
	relay := NewOutboxRelay(newOutbox(), &fakePublisher{}, nil, 0)
	if relay.BatchSize != 100 {
		t.Errorf("default batch size = %d", relay.BatchSize)
	}
	if _, err := NewBackgroundTasks(relay, "every now and then"); err == nil {
		t.Error("expected schedule parse error")
	}

	bt, err := NewBackgroundTasks(relay, "@every 1h")
	if err != nil {
		t.Fatalf("NewBackgroundTasks: %v", err)
	}
	bt.StartAll()
	bt.Stop(context.Background())
}
