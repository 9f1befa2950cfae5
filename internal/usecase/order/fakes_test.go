package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/LavaJover/shvark-payment-service/internal/domain"
	"github.com/shopspring/decimal"
)

// memoryStore is an in-memory order and transaction ledger with the same
// conditional-transition semantics as the gorm repository.
type memoryStore struct {
	mu sync.Mutex

	nextOrderID int64
	nextTxID    int64
	orders      map[string]*domain.Order
	txs         []*domain.Transaction
	events      []*domain.OrderEvent

	updateCalls int
	failGet     error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{orders: make(map[string]*domain.Order)}
}

func (s *memoryStore) CreateOrder(_ context.Context, order *domain.Order, event *domain.OrderEvent) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.orders[order.OrderNo]; ok {
		return 0, fmt.Errorf("duplicate order no %s", order.OrderNo)
	}
	s.nextOrderID++
	order.ID = s.nextOrderID
	stored := *order
	s.orders[order.OrderNo] = &stored
	if event != nil {
		s.events = append(s.events, event)
	}
	return order.ID, nil
}

func (s *memoryStore) GetOrderByOrderNo(_ context.Context, orderNo string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failGet != nil {
		return nil, s.failGet
	}
	o, ok := s.orders[orderNo]
	if !ok {
		return nil, domain.NotFoundf("order %s not found", orderNo)
	}
	cp := *o
	return &cp, nil
}

func (s *memoryStore) GetOrderByID(_ context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.NotFoundf("order #%d not found", id)
}

func (s *memoryStore) UpdateOrder(_ context.Context, order *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.orders[order.OrderNo]
	if !ok {
		return domain.NotFoundf("order %s not found", order.OrderNo)
	}
	if stored.Status != order.Status {
		return domain.InvalidStatef("order %s is %s, update expected %s", order.OrderNo, stored.Status, order.Status)
	}
	s.updateCalls++
	cp := *order
	s.orders[order.OrderNo] = &cp
	return nil
}

func (s *memoryStore) GetOrdersByUserID(_ context.Context, userID int64, page, pageSize int) ([]*domain.Order, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []*domain.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			cp := *o
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := (page - 1) * pageSize
	if start >= len(all) {
		return []*domain.Order{}, int64(len(all)), nil
	}
	end := start + pageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (s *memoryStore) ProcessTransition(_ context.Context, t *domain.OrderTransition) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[t.OrderNo]
	if !ok {
		return nil, domain.NotFoundf("order %s not found", t.OrderNo)
	}
	if o.Status != t.From || !t.From.CanTransitionTo(t.To) {
		return nil, domain.InvalidStatef("order %s is %s, expected %s", t.OrderNo, o.Status, t.From)
	}
	if t.Transaction != nil {
		for _, existing := range s.txs {
			if existing.TransactionNo == t.Transaction.TransactionNo {
				return nil, domain.NewError(domain.KindDuplicateNotification, "transaction already recorded", nil)
			}
		}
	}

	o.Status = t.To
	if t.TransactionID != "" {
		o.TransactionID = t.TransactionID
	}
	o.UpdatedAt = time.Now()

	if t.Transaction != nil {
		s.nextTxID++
		tx := *t.Transaction
		tx.ID = s.nextTxID
		tx.OrderID = o.ID
		tx.CreatedAt = time.Now()
		s.txs = append(s.txs, &tx)
	}
	if t.Event != nil {
		s.events = append(s.events, t.Event)
	}

	cp := *o
	return &cp, nil
}

func (s *memoryStore) CreateTransaction(_ context.Context, tx *domain.Transaction) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTxID++
	cp := *tx
	cp.ID = s.nextTxID
	s.txs = append(s.txs, &cp)
	return cp.ID, nil
}

func (s *memoryStore) GetTransactionsByOrderID(_ context.Context, orderID int64) ([]*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Transaction
	for _, tx := range s.txs {
		if tx.OrderID == orderID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *memoryStore) GetTransactionByNo(_ context.Context, transactionNo string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range s.txs {
		if tx.TransactionNo == transactionNo {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, domain.NotFoundf("transaction %s not found", transactionNo)
}

func (s *memoryStore) countTransactions(orderNo string, typ domain.TransactionType) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[orderNo]
	if !ok {
		return 0
	}
	n := 0
	for _, tx := range s.txs {
		if tx.OrderID == o.ID && tx.Type == typ && tx.Status == domain.TransactionSuccess {
			n++
		}
	}
	return n
}

func (s *memoryStore) setStatus(orderNo string, status domain.OrderStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[orderNo].Status = status
}

// fakeGateway parses notifications of the form "orderNo|transactionId|amount"
// and lets each test override individual calls.
type fakeGateway struct {
	mu           sync.Mutex
	intentCalls  int
	refundCalls  int
	refundRefs   []string
	CreateIntent func(orderNo string, amount decimal.Decimal) (*domain.PaymentParameters, error)
	RefundFunc   func(orderNo, ref string, amount decimal.Decimal) (*domain.RefundResult, error)
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, orderNo, _ string, amount decimal.Decimal, _ string) (*domain.PaymentParameters, error) {
	g.mu.Lock()
	g.intentCalls++
	g.mu.Unlock()

	if g.CreateIntent != nil {
		return g.CreateIntent(orderNo, amount)
	}
	return &domain.PaymentParameters{
		AppID:    "wx-test",
		Package:  "prepay_id=PP-" + orderNo,
		PrepayID: "PP-" + orderNo,
		SignType: "MD5",
		PaySign:  "SIGN",
	}, nil
}

func (g *fakeGateway) Refund(_ context.Context, orderNo, refundRef string, amount decimal.Decimal) (*domain.RefundResult, error) {
	g.mu.Lock()
	g.refundCalls++
	g.refundRefs = append(g.refundRefs, refundRef)
	g.mu.Unlock()

	if g.RefundFunc != nil {
		return g.RefundFunc(orderNo, refundRef, amount)
	}
	return &domain.RefundResult{RefundID: "RF-" + orderNo, RefundRef: refundRef, Amount: amount}, nil
}

func (g *fakeGateway) VerifyAndParseNotification(raw []byte) (*domain.PaymentNotification, error) {
	parts := strings.Split(string(raw), "|")
	if len(parts) != 3 {
		return nil, domain.Verificationf("bad signature")
	}
	amount, err := decimal.NewFromString(parts[2])
	if err != nil {
		return nil, errors.New("unparseable amount")
	}
	return &domain.PaymentNotification{
		OrderNo:       parts[0],
		TransactionID: parts[1],
		Amount:        amount,
		PaidAt:        time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Raw:           string(raw),
	}, nil
}

func notification(orderNo, txID, amount string) []byte {
	return []byte(orderNo + "|" + txID + "|" + amount)
}
