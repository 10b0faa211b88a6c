package broker

import (
	"context"

	"copytrader/internal/domain"
)

// OrderRequest is the order the risk engine asks the broker to place.
// Prices are the adjusted levels, not the raw signal levels.
type OrderRequest struct {
	CurrencyPair string
	Direction    domain.SignalType
	LotSize      float64
	EntryPrice   float64
	StopLoss     *float64
	TakeProfit   *float64
	Comment      string
}

type OrderAck struct {
	OrderID string
	Status  string
}

// Gateway submits orders to a brokerage. Submissions either succeed with an
// acknowledgement or fail; the engine never retries on its own.
type Gateway interface {
	SubmitOrder(ctx context.Context, req OrderRequest) (OrderAck, error)
	CloseOrder(ctx context.Context, orderID string) error
}
