package usecase

import (
	"fmt"
	"sync"
	"time"

	"github.com/jaevor/go-nanoid"
)

const (
	orderNoAlphabet     = "0123456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	orderNoRandomLength = 10
	orderNoTimeLayout   = "20060102150405"
)

// OrderNoGenerator issues order numbers of the form
// yyyyMMddHHmmss + milliseconds + random suffix, 27 characters in total.
type OrderNoGenerator struct {
	mu     sync.Mutex
	random func() string
	now    func() time.Time
}

func NewOrderNoGenerator() (*OrderNoGenerator, error) {
	random, err := nanoid.CustomASCII(orderNoAlphabet, orderNoRandomLength)
	if err != nil {
		return nil, fmt.Errorf("init order number generator: %w", err)
	}
	return &OrderNoGenerator{random: random, now: time.Now}, nil
}

func (g *OrderNoGenerator) Next() string {
	t := g.now()

	g.mu.Lock()
	suffix := g.random()
	g.mu.Unlock()

	return fmt.Sprintf("%s%03d%s", t.Format(orderNoTimeLayout), t.Nanosecond()/int(time.Millisecond), suffix)
}

// RefundReference is the out_refund_no sent to the provider. It is derived
// from the order number so a retried refund reuses it.
func RefundReference(orderNo string) string {
	return orderNo + "R"
}
