package broker

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Simulated is the in-process stand-in for a real brokerage connection.
// Orders are acknowledged after an artificial fill delay; no positions are
// tracked. Real protocol integrations replace this behind the Gateway
// interface.
type Simulated struct {
	fillDelay time.Duration
	now       func() time.Time
	seq       atomic.Int64

	mu   sync.Mutex
	open map[string]struct{}

	// FailNext forces the next submission to error. Test hook.
	FailNext error
}

func NewSimulated(fillDelay time.Duration, now func() time.Time) *Simulated {
	if now == nil {
		now = time.Now
	}
	return &Simulated{fillDelay: fillDelay, now: now, open: make(map[string]struct{})}
}

func (s *Simulated) SubmitOrder(ctx context.Context, req OrderRequest) (OrderAck, error) {
	if err := s.FailNext; err != nil {
		s.FailNext = nil
		return OrderAck{}, err
	}
	if req.LotSize <= 0 {
		return OrderAck{}, fmt.Errorf("simulated broker: lot size must be positive, got %v", req.LotSize)
	}

	if s.fillDelay > 0 {
		select {
		case <-ctx.Done():
			return OrderAck{}, ctx.Err()
		case <-time.After(s.fillDelay):
		}
	}

	ack := OrderAck{
		OrderID: fmt.Sprintf("sim-%d-%d", s.now().UnixMilli(), s.seq.Add(1)),
		Status:  "filled",
	}
	s.mu.Lock()
	s.open[ack.OrderID] = struct{}{}
	s.mu.Unlock()
	log.Printf("simulated order %s: %s %s %.2f lots @ %.5f", ack.OrderID, req.Direction, req.CurrencyPair, req.LotSize, req.EntryPrice)
	return ack, nil
}

func (s *Simulated) CloseOrder(ctx context.Context, orderID string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.open[orderID]; !ok {
		return fmt.Errorf("simulated broker: unknown order %s", orderID)
	}
	delete(s.open, orderID)
	log.Printf("simulated order %s closed", orderID)
	return nil
}
