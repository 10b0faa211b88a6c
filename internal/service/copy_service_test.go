package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"copytrader/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

func TestCopyServiceCopySignalPersistsTrade(t *testing.T) {
	sl := 1.08
	signalRepo := &stubCopySignalRepo{
		signals: map[string]*domain.Signal{
			"sig-1": {
				ID:           "sig-1",
				CurrencyPair: "EUR/USD",
				SignalType:   domain.SignalBuy,
				EntryPrice:   1.085,
				StopLoss:     &sl,
				Status:       domain.SignalActive,
			},
		},
	}
	accountRepo := &stubCopyAccountRepo{
		accounts: map[string]*domain.TradingAccount{
			"acct-1": {ID: "acct-1", Balance: 50000, Currency: "USD", APIKey: "k", APISecret: "s"},
		},
	}
	tradeRepo := &stubCopyTradeRepo{}
	copier := &stubCopier{
		trade: domain.CopiedTrade{ID: "trade-1", SignalID: "sig-1", AccountID: "acct-1", Status: domain.TradeOpen},
	}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), signalRepo, accountRepo, tradeRepo, copier)

	trade, err := svc.CopySignal(context.Background(), "sig-1", "acct-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trade == nil || trade.ID != "trade-1" {
		t.Fatalf("unexpected trade: %+v", trade)
	}
	if copier.lastSettings != domain.DefaultCopySettings {
		t.Fatalf("expected default settings, got %+v", copier.lastSettings)
	}
	if len(tradeRepo.inserted) != 1 {
		t.Fatalf("expected 1 persisted trade, got %d", len(tradeRepo.inserted))
	}
	if signalRepo.incremented != "sig-1" {
		t.Fatalf("expected copy count increment for sig-1, got %q", signalRepo.incremented)
	}
}

func TestCopyServiceCopySignalCustomSettings(t *testing.T) {
	signalRepo := &stubCopySignalRepo{
		signals: map[string]*domain.Signal{
			"sig-1": {ID: "sig-1", CurrencyPair: "EUR/USD", SignalType: domain.SignalBuy, EntryPrice: 1.085, Status: domain.SignalActive},
		},
	}
	accountRepo := &stubCopyAccountRepo{
		accounts: map[string]*domain.TradingAccount{
			"acct-1": {ID: "acct-1", Balance: 50000, Currency: "USD", APIKey: "k", APISecret: "s"},
		},
	}
	copier := &stubCopier{trade: domain.CopiedTrade{ID: "trade-1"}}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), signalRepo, accountRepo, &stubCopyTradeRepo{}, copier)

	custom := domain.CopySettings{RiskPercentage: 1, MaxPositionSize: 0.5, Multiplier: 2}
	if _, err := svc.CopySignal(context.Background(), "sig-1", "acct-1", &custom); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if copier.lastSettings != custom {
		t.Fatalf("expected custom settings, got %+v", copier.lastSettings)
	}
}

func TestCopyServiceCopySignalUnknownSignal(t *testing.T) {
	svc := NewCopyService(
		trace.NewNoopTracerProvider().Tracer("test"),
		&stubCopySignalRepo{},
		&stubCopyAccountRepo{},
		&stubCopyTradeRepo{},
		&stubCopier{},
	)

	if _, err := svc.CopySignal(context.Background(), "missing", "acct-1", nil); err == nil {
		t.Fatal("expected signal not found error")
	}
}

func TestCopyServiceCopySignalUnknownAccount(t *testing.T) {
	signalRepo := &stubCopySignalRepo{
		signals: map[string]*domain.Signal{
			"sig-1": {ID: "sig-1", CurrencyPair: "EUR/USD", SignalType: domain.SignalBuy, EntryPrice: 1.085, Status: domain.SignalActive},
		},
	}
	svc := NewCopyService(
		trace.NewNoopTracerProvider().Tracer("test"),
		signalRepo,
		&stubCopyAccountRepo{},
		&stubCopyTradeRepo{},
		&stubCopier{},
	)

	if _, err := svc.CopySignal(context.Background(), "sig-1", "missing", nil); err == nil {
		t.Fatal("expected account not found error")
	}
}

func TestCopyServiceCopySignalCopierErrorNotPersisted(t *testing.T) {
	signalRepo := &stubCopySignalRepo{
		signals: map[string]*domain.Signal{
			"sig-1": {ID: "sig-1", CurrencyPair: "EUR/USD", SignalType: domain.SignalBuy, EntryPrice: 1.085, Status: domain.SignalActive},
		},
	}
	accountRepo := &stubCopyAccountRepo{
		accounts: map[string]*domain.TradingAccount{"acct-1": {ID: "acct-1", Balance: 50000, Currency: "USD"}},
	}
	tradeRepo := &stubCopyTradeRepo{}
	copier := &stubCopier{err: errors.New("order rejected")}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), signalRepo, accountRepo, tradeRepo, copier)

	if _, err := svc.CopySignal(context.Background(), "sig-1", "acct-1", nil); err == nil {
		t.Fatal("expected copier error")
	}
	if len(tradeRepo.inserted) != 0 {
		t.Fatal("rejected trade must not be persisted")
	}
	if signalRepo.incremented != "" {
		t.Fatal("copy count must not change on rejection")
	}
}

func TestCopyServiceListSignalsNormalizesFilter(t *testing.T) {
	signalRepo := &stubCopySignalRepo{}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), signalRepo, &stubCopyAccountRepo{}, &stubCopyTradeRepo{}, &stubCopier{})

	if _, err := svc.ListSignals(context.Background(), domain.SignalFilter{Type: "SIDEWAYS"}); err == nil {
		t.Fatal("expected invalid signal type error")
	}

	if _, err := svc.ListSignals(context.Background(), domain.SignalFilter{Pair: " eur/usd "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if signalRepo.lastFilter.Pair != "EUR/USD" {
		t.Fatalf("expected uppercase pair, got %s", signalRepo.lastFilter.Pair)
	}
	if signalRepo.lastFilter.Limit != 50 {
		t.Fatalf("expected default limit=50, got %d", signalRepo.lastFilter.Limit)
	}
}

func TestCopyServiceProjectProfit(t *testing.T) {
	sl := 1.08
	tp := 1.095
	tradeRepo := &stubCopyTradeRepo{
		trades: map[string]*domain.CopiedTrade{
			"trade-1": {
				ID:           "trade-1",
				CurrencyPair: "EUR/USD",
				Direction:    domain.SignalBuy,
				EntryPrice:   1.0853,
				StopLoss:     &sl,
				TakeProfit:   &tp,
				LotSize:      0.7,
				Status:       domain.TradeOpen,
				OpenTime:     time.Unix(1000, 0).UTC(),
			},
		},
	}
	copier := &stubCopier{projection: domain.ProfitProjection{PotentialProfit: 678.3, PotentialLoss: 371, RiskRewardRatio: 678.3 / 371}}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), &stubCopySignalRepo{}, &stubCopyAccountRepo{}, tradeRepo, copier)

	projection, err := svc.ProjectProfit(context.Background(), "trade-1", "USD")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if projection.PotentialProfit != 678.3 {
		t.Fatalf("unexpected projection: %+v", projection)
	}
	if copier.lastPLSignal.CurrencyPair != "EUR/USD" || copier.lastPLLot != 0.7 {
		t.Fatalf("unexpected projection inputs: %+v lot=%v", copier.lastPLSignal, copier.lastPLLot)
	}

	if _, err := svc.ProjectProfit(context.Background(), "missing", "USD"); err == nil {
		t.Fatal("expected trade not found error")
	}
}

func TestCopyServiceIngestSignals(t *testing.T) {
	signalRepo := &stubCopySignalRepo{}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), signalRepo, &stubCopyAccountRepo{}, &stubCopyTradeRepo{}, &stubCopier{})

	count, err := svc.IngestSignals(context.Background(), []domain.Signal{
		{ID: " sig-1 ", CurrencyPair: "eur/usd", SignalType: domain.SignalBuy, EntryPrice: 1.085},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 || len(signalRepo.upserted) != 1 {
		t.Fatalf("expected one stored signal, got count=%d upserted=%d", count, len(signalRepo.upserted))
	}
	stored := signalRepo.upserted[0]
	if stored.ID != "sig-1" || stored.CurrencyPair != "EUR/USD" {
		t.Fatalf("expected normalized signal, got %+v", stored)
	}
	if stored.Status != domain.SignalActive {
		t.Fatalf("expected default active status, got %s", stored.Status)
	}
	if stored.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestCopyServiceIngestSignalsRejectsInvalid(t *testing.T) {
	signalRepo := &stubCopySignalRepo{}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), signalRepo, &stubCopyAccountRepo{}, &stubCopyTradeRepo{}, &stubCopier{})

	cases := []domain.Signal{
		{CurrencyPair: "EUR/USD", SignalType: domain.SignalBuy, EntryPrice: 1.0},
		{ID: "sig-1", CurrencyPair: "EURUSD", SignalType: domain.SignalBuy, EntryPrice: 1.0},
		{ID: "sig-1", CurrencyPair: "EUR/USD", SignalType: "HOLD", EntryPrice: 1.0},
		{ID: "sig-1", CurrencyPair: "EUR/USD", SignalType: domain.SignalBuy, EntryPrice: 0},
	}
	for i, sig := range cases {
		valid := domain.Signal{ID: "ok", CurrencyPair: "EUR/USD", SignalType: domain.SignalSell, EntryPrice: 1.2}
		if _, err := svc.IngestSignals(context.Background(), []domain.Signal{valid, sig}); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
	if len(signalRepo.upserted) != 0 {
		t.Fatal("invalid batches must not reach the repository")
	}

	if _, err := svc.IngestSignals(context.Background(), nil); err == nil {
		t.Fatal("expected error for empty batch")
	}
}

func TestCopyServiceCloseTrade(t *testing.T) {
	tradeRepo := &stubCopyTradeRepo{
		trades: map[string]*domain.CopiedTrade{
			"trade-1": {ID: "trade-1", AccountID: "acct-1", CurrencyPair: "EUR/USD", Direction: domain.SignalBuy, EntryPrice: 1.0853, LotSize: 0.7, Status: domain.TradeOpen},
		},
	}
	profit := 560.0
	copier := &stubCopier{closeProfit: &profit}
	accountRepo := &stubCopyAccountRepo{}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), &stubCopySignalRepo{}, accountRepo, tradeRepo, copier)

	closed, err := svc.CloseTrade(context.Background(), "trade-1", 1.0933, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closed.Status != domain.TradeClosed {
		t.Fatalf("expected closed trade, got %s", closed.Status)
	}
	if copier.lastClosePrice != 1.0933 {
		t.Fatalf("expected close price forwarded, got %v", copier.lastClosePrice)
	}
	if len(tradeRepo.closed) != 1 {
		t.Fatalf("expected one persisted close, got %d", len(tradeRepo.closed))
	}
	if accountRepo.adjustedID != "acct-1" || accountRepo.adjustedDelta != 560 {
		t.Fatalf("expected balance credit for acct-1, got %s %v", accountRepo.adjustedID, accountRepo.adjustedDelta)
	}

	if _, err := svc.CloseTrade(context.Background(), "missing", 1.09, "USD"); err == nil {
		t.Fatal("expected trade not found error")
	}
}

func TestCopyServiceCloseTradeCopierErrorNotPersisted(t *testing.T) {
	tradeRepo := &stubCopyTradeRepo{
		trades: map[string]*domain.CopiedTrade{
			"trade-1": {ID: "trade-1", CurrencyPair: "EUR/USD", Direction: domain.SignalBuy, EntryPrice: 1.0853, LotSize: 0.7, Status: domain.TradeClosed},
		},
	}
	copier := &stubCopier{closeErr: errors.New("trade trade-1 is not open")}
	svc := NewCopyService(trace.NewNoopTracerProvider().Tracer("test"), &stubCopySignalRepo{}, &stubCopyAccountRepo{}, tradeRepo, copier)

	if _, err := svc.CloseTrade(context.Background(), "trade-1", 1.0933, "USD"); err == nil {
		t.Fatal("expected copier error")
	}
	if len(tradeRepo.closed) != 0 {
		t.Fatal("failed close must not be persisted")
	}
}

type stubCopySignalRepo struct {
	signals     map[string]*domain.Signal
	lastFilter  domain.SignalFilter
	incremented string
	upserted    []domain.Signal
	upsertErr   error
}

func (s *stubCopySignalRepo) GetSignal(ctx context.Context, id string) (*domain.Signal, error) {
	return s.signals[id], nil
}

func (s *stubCopySignalRepo) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	s.lastFilter = filter
	return nil, nil
}

func (s *stubCopySignalRepo) UpsertSignals(ctx context.Context, signals []domain.Signal) error {
	s.upserted = append(s.upserted, signals...)
	return s.upsertErr
}

func (s *stubCopySignalRepo) IncrementCopyCount(ctx context.Context, id string) error {
	s.incremented = id
	return nil
}

type stubCopyAccountRepo struct {
	accounts      map[string]*domain.TradingAccount
	adjustedID    string
	adjustedDelta float64
}

func (s *stubCopyAccountRepo) GetAccount(ctx context.Context, id string) (*domain.TradingAccount, error) {
	return s.accounts[id], nil
}

func (s *stubCopyAccountRepo) AdjustBalance(ctx context.Context, id string, delta float64) error {
	s.adjustedID = id
	s.adjustedDelta = delta
	return nil
}

type stubCopyTradeRepo struct {
	trades     map[string]*domain.CopiedTrade
	inserted   []domain.CopiedTrade
	closed     []domain.CopiedTrade
	lastFilter domain.TradeFilter
}

func (s *stubCopyTradeRepo) InsertTrade(ctx context.Context, t *domain.CopiedTrade) error {
	s.inserted = append(s.inserted, *t)
	return nil
}

func (s *stubCopyTradeRepo) GetTrade(ctx context.Context, id string) (*domain.CopiedTrade, error) {
	return s.trades[id], nil
}

func (s *stubCopyTradeRepo) ListTrades(ctx context.Context, filter domain.TradeFilter) ([]domain.CopiedTrade, error) {
	s.lastFilter = filter
	return nil, nil
}

func (s *stubCopyTradeRepo) CloseTrade(ctx context.Context, t *domain.CopiedTrade) error {
	s.closed = append(s.closed, *t)
	return nil
}

type stubCopier struct {
	trade          domain.CopiedTrade
	err            error
	closeErr       error
	closeProfit    *float64
	projection     domain.ProfitProjection
	lastSettings   domain.CopySettings
	lastPLSignal   domain.Signal
	lastPLLot      float64
	lastClosePrice float64
}

func (s *stubCopier) CopySignal(ctx context.Context, signal domain.Signal, account domain.TradingAccount, settings domain.CopySettings) (domain.CopiedTrade, error) {
	s.lastSettings = settings
	if s.err != nil {
		return domain.CopiedTrade{}, s.err
	}
	return s.trade, nil
}

func (s *stubCopier) CloseTrade(ctx context.Context, trade domain.CopiedTrade, closePrice float64, accountCurrency string) (domain.CopiedTrade, error) {
	s.lastClosePrice = closePrice
	if s.closeErr != nil {
		return domain.CopiedTrade{}, s.closeErr
	}
	closed := trade
	closed.Status = domain.TradeClosed
	closed.Profit = s.closeProfit
	return closed, nil
}

func (s *stubCopier) PotentialPL(signal domain.Signal, lotSize float64, accountCurrency string) domain.ProfitProjection {
	s.lastPLSignal = signal
	s.lastPLLot = lotSize
	return s.projection
}
