package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"copytrader/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type CopySignalRepository interface {
	GetSignal(ctx context.Context, id string) (*domain.Signal, error)
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
	UpsertSignals(ctx context.Context, signals []domain.Signal) error
	IncrementCopyCount(ctx context.Context, id string) error
}

type CopyAccountRepository interface {
	GetAccount(ctx context.Context, id string) (*domain.TradingAccount, error)
	AdjustBalance(ctx context.Context, id string, delta float64) error
}

type CopyTradeRepository interface {
	InsertTrade(ctx context.Context, t *domain.CopiedTrade) error
	GetTrade(ctx context.Context, id string) (*domain.CopiedTrade, error)
	ListTrades(ctx context.Context, filter domain.TradeFilter) ([]domain.CopiedTrade, error)
	CloseTrade(ctx context.Context, t *domain.CopiedTrade) error
}

// TradeCopier sizes, submits, and settles trades. Implemented by the risk engine.
type TradeCopier interface {
	CopySignal(ctx context.Context, signal domain.Signal, account domain.TradingAccount, settings domain.CopySettings) (domain.CopiedTrade, error)
	CloseTrade(ctx context.Context, trade domain.CopiedTrade, closePrice float64, accountCurrency string) (domain.CopiedTrade, error)
	PotentialPL(signal domain.Signal, lotSize float64, accountCurrency string) domain.ProfitProjection
}

type CopyService struct {
	tracer      trace.Tracer
	signalRepo  CopySignalRepository
	accountRepo CopyAccountRepository
	tradeRepo   CopyTradeRepository
	copier      TradeCopier
}

func NewCopyService(
	tracer trace.Tracer,
	signalRepo CopySignalRepository,
	accountRepo CopyAccountRepository,
	tradeRepo CopyTradeRepository,
	copier TradeCopier,
) *CopyService {
	return &CopyService{
		tracer:      tracer,
		signalRepo:  signalRepo,
		accountRepo: accountRepo,
		tradeRepo:   tradeRepo,
		copier:      copier,
	}
}

// CopySignal loads the signal and account, hands them to the risk engine, and
// persists whatever came back. A nil settings pointer selects the defaults.
func (s *CopyService) CopySignal(ctx context.Context, signalID, accountID string, settings *domain.CopySettings) (*domain.CopiedTrade, error) {
	_, span := s.tracer.Start(ctx, "copy-service.copy-signal")
	defer span.End()

	if s.signalRepo == nil || s.accountRepo == nil || s.tradeRepo == nil || s.copier == nil {
		return nil, fmt.Errorf("copy service is not fully initialized")
	}

	signal, err := s.signalRepo.GetSignal(ctx, signalID)
	if err != nil {
		return nil, fmt.Errorf("load signal %s: %w", signalID, err)
	}
	if signal == nil {
		return nil, fmt.Errorf("signal not found: %s", signalID)
	}

	account, err := s.accountRepo.GetAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("load account %s: %w", accountID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account not found: %s", accountID)
	}

	effective := domain.DefaultCopySettings
	if settings != nil {
		effective = *settings
	}

	trade, err := s.copier.CopySignal(ctx, *signal, *account, effective)
	if err != nil {
		return nil, err
	}

	if err := s.tradeRepo.InsertTrade(ctx, &trade); err != nil {
		return nil, fmt.Errorf("persist trade: %w", err)
	}
	if err := s.signalRepo.IncrementCopyCount(ctx, signal.ID); err != nil {
		log.Printf("copy count increment error for signal %s: %v", signal.ID, err)
	}
	return &trade, nil
}

// IngestSignals validates and stores a batch of provider signals. The whole
// batch is rejected on the first invalid entry so a partial upsert never
// happens. Returns the number of stored signals.
func (s *CopyService) IngestSignals(ctx context.Context, signals []domain.Signal) (int, error) {
	_, span := s.tracer.Start(ctx, "copy-service.ingest-signals")
	defer span.End()

	if s.signalRepo == nil {
		return 0, fmt.Errorf("copy service is not fully initialized")
	}
	if len(signals) == 0 {
		return 0, fmt.Errorf("no signals to ingest")
	}

	for i := range signals {
		sig := &signals[i]
		sig.ID = strings.TrimSpace(sig.ID)
		sig.CurrencyPair = strings.ToUpper(strings.TrimSpace(sig.CurrencyPair))
		if sig.ID == "" {
			return 0, fmt.Errorf("signal %d: missing id", i)
		}
		if _, _, ok := domain.SplitPair(sig.CurrencyPair); !ok {
			return 0, fmt.Errorf("signal %s: invalid currency pair %q", sig.ID, sig.CurrencyPair)
		}
		if !sig.SignalType.IsValid() {
			return 0, fmt.Errorf("signal %s: invalid type %q", sig.ID, sig.SignalType)
		}
		if sig.EntryPrice <= 0 {
			return 0, fmt.Errorf("signal %s: invalid entry price %v", sig.ID, sig.EntryPrice)
		}
		if sig.Status == "" {
			sig.Status = domain.SignalActive
		}
		if sig.CreatedAt.IsZero() {
			sig.CreatedAt = time.Now().UTC()
		}
	}

	if err := s.signalRepo.UpsertSignals(ctx, signals); err != nil {
		return 0, fmt.Errorf("store signals: %w", err)
	}
	return len(signals), nil
}

func (s *CopyService) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	_, span := s.tracer.Start(ctx, "copy-service.list-signals")
	defer span.End()

	if s.signalRepo == nil {
		return nil, fmt.Errorf("copy service is not fully initialized")
	}

	filter.Pair = strings.ToUpper(strings.TrimSpace(filter.Pair))
	if filter.Type != "" && !filter.Type.IsValid() {
		return nil, fmt.Errorf("invalid signal type: %s", filter.Type)
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	return s.signalRepo.ListSignals(ctx, filter)
}

func (s *CopyService) GetSignal(ctx context.Context, id string) (*domain.Signal, error) {
	_, span := s.tracer.Start(ctx, "copy-service.get-signal")
	defer span.End()

	if s.signalRepo == nil {
		return nil, fmt.Errorf("copy service is not fully initialized")
	}
	return s.signalRepo.GetSignal(ctx, id)
}

func (s *CopyService) ListTrades(ctx context.Context, filter domain.TradeFilter) ([]domain.CopiedTrade, error) {
	_, span := s.tracer.Start(ctx, "copy-service.list-trades")
	defer span.End()

	if s.tradeRepo == nil {
		return nil, fmt.Errorf("copy service is not fully initialized")
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.tradeRepo.ListTrades(ctx, filter)
}

// CloseTrade settles an open trade at the given market price and records the
// outcome. The account currency defaults to USD when empty.
func (s *CopyService) CloseTrade(ctx context.Context, tradeID string, closePrice float64, accountCurrency string) (*domain.CopiedTrade, error) {
	_, span := s.tracer.Start(ctx, "copy-service.close-trade")
	defer span.End()

	if s.tradeRepo == nil || s.copier == nil {
		return nil, fmt.Errorf("copy service is not fully initialized")
	}
	if accountCurrency == "" {
		accountCurrency = "USD"
	}

	trade, err := s.tradeRepo.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("load trade %s: %w", tradeID, err)
	}
	if trade == nil {
		return nil, fmt.Errorf("trade not found: %s", tradeID)
	}

	closed, err := s.copier.CloseTrade(ctx, *trade, closePrice, accountCurrency)
	if err != nil {
		return nil, err
	}
	if err := s.tradeRepo.CloseTrade(ctx, &closed); err != nil {
		return nil, fmt.Errorf("persist trade close: %w", err)
	}

	// The trade is settled; a failed balance credit is reconciled out of band.
	if s.accountRepo != nil && closed.Profit != nil && closed.AccountID != "" {
		if err := s.accountRepo.AdjustBalance(ctx, closed.AccountID, *closed.Profit); err != nil {
			log.Printf("balance adjust error for account %s: %v", closed.AccountID, err)
		}
	}
	return &closed, nil
}

// ProjectProfit recomputes the potential outcome of an open trade at its
// recorded levels.
func (s *CopyService) ProjectProfit(ctx context.Context, tradeID, accountCurrency string) (*domain.ProfitProjection, error) {
	_, span := s.tracer.Start(ctx, "copy-service.project-profit")
	defer span.End()

	if s.tradeRepo == nil || s.copier == nil {
		return nil, fmt.Errorf("copy service is not fully initialized")
	}

	trade, err := s.tradeRepo.GetTrade(ctx, tradeID)
	if err != nil {
		return nil, fmt.Errorf("load trade %s: %w", tradeID, err)
	}
	if trade == nil {
		return nil, fmt.Errorf("trade not found: %s", tradeID)
	}

	projection := s.copier.PotentialPL(domain.Signal{
		CurrencyPair: trade.CurrencyPair,
		SignalType:   trade.Direction,
		EntryPrice:   trade.EntryPrice,
		StopLoss:     trade.StopLoss,
		TakeProfit:   trade.TakeProfit,
	}, trade.LotSize, accountCurrency)
	return &projection, nil
}
