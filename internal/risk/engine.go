package risk

import (
	"context"
	"fmt"
	"math"
	"time"

	"copytrader/internal/broker"
	"copytrader/internal/domain"
	"copytrader/internal/rates"

	"github.com/google/uuid"
)

const (
	defaultStopLossPips = 50
	slippagePips        = 3
	standardLotUnits    = 100000
	minLotSize          = 0.01
)

// TradeMonitor is notified once a trade is opened. Implementations must not
// block; the engine fires the hand-off and moves on.
type TradeMonitor interface {
	Watch(ctx context.Context, trade domain.CopiedTrade)
}

// Engine turns an active Signal into a sized, validated brokerage order.
// It holds no state between calls; every CopySignal invocation is independent.
type Engine struct {
	gateway broker.Gateway
	monitor TradeMonitor
	rates   rates.Provider
	now     func() time.Time
	newID   func() string
}

func NewEngine(gateway broker.Gateway, monitor TradeMonitor, rateProvider rates.Provider, now func() time.Time) *Engine {
	if rateProvider == nil {
		rateProvider = rates.NewStatic()
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{
		gateway: gateway,
		monitor: monitor,
		rates:   rateProvider,
		now:     now,
		newID:   uuid.NewString,
	}
}

// SetMonitor installs the watcher notified for each opened trade. A nil
// monitor disables notifications.
func (e *Engine) SetMonitor(monitor TradeMonitor) {
	e.monitor = monitor
}

// CopySignal validates the signal and account, sizes the position against the
// account's risk settings, adjusts the price levels for slippage, and submits
// the order. Validation failures surface before any gateway call; gateway
// errors propagate unchanged.
func (e *Engine) CopySignal(ctx context.Context, signal domain.Signal, account domain.TradingAccount, settings domain.CopySettings) (domain.CopiedTrade, error) {
	if err := validateSignal(signal); err != nil {
		return domain.CopiedTrade{}, err
	}
	if err := validateAccount(account); err != nil {
		return domain.CopiedTrade{}, err
	}

	lotSize := e.calculateLotSize(signal, account, settings)
	entryPrice, stopLoss, takeProfit := adjustPriceLevels(signal, settings)

	trade := domain.CopiedTrade{
		ID:           e.newID(),
		SignalID:     signal.ID,
		AccountID:    account.ID,
		CurrencyPair: signal.CurrencyPair,
		Direction:    signal.SignalType,
		EntryPrice:   entryPrice,
		StopLoss:     stopLoss,
		TakeProfit:   takeProfit,
		LotSize:      lotSize,
		Status:       domain.TradePending,
		OpenTime:     e.now().UTC(),
	}

	ack, err := e.gateway.SubmitOrder(ctx, broker.OrderRequest{
		CurrencyPair: trade.CurrencyPair,
		Direction:    trade.Direction,
		LotSize:      trade.LotSize,
		EntryPrice:   trade.EntryPrice,
		StopLoss:     trade.StopLoss,
		TakeProfit:   trade.TakeProfit,
		Comment:      "signal_" + signal.ID,
	})
	if err != nil {
		return domain.CopiedTrade{}, err
	}

	trade.BrokerOrderID = ack.OrderID
	trade.Status = domain.TradeOpen

	if e.monitor != nil {
		e.monitor.Watch(ctx, trade)
	}

	return trade, nil
}

// CloseTrade settles an open trade at the given price: the brokerage order is
// closed first, then the realized pips and account-currency profit are
// recorded. Losses come back as negative values.
func (e *Engine) CloseTrade(ctx context.Context, trade domain.CopiedTrade, closePrice float64, accountCurrency string) (domain.CopiedTrade, error) {
	if trade.Status != domain.TradeOpen {
		return domain.CopiedTrade{}, fmt.Errorf("trade %s is not open (status %s)", trade.ID, trade.Status)
	}
	if closePrice <= 0 {
		return domain.CopiedTrade{}, fmt.Errorf("%w: %v", domain.ErrInvalidPrice, closePrice)
	}

	if trade.BrokerOrderID != "" {
		if err := e.gateway.CloseOrder(ctx, trade.BrokerOrderID); err != nil {
			return domain.CopiedTrade{}, err
		}
	}

	pipSize := domain.PipSize(trade.CurrencyPair)
	pips := (closePrice - trade.EntryPrice) / pipSize
	if trade.Direction == domain.SignalSell {
		pips = -pips
	}
	profit := pips * e.pipValue(trade.CurrencyPair, accountCurrency) * trade.LotSize

	closeTime := e.now().UTC()
	trade.Status = domain.TradeClosed
	trade.CloseTime = &closeTime
	trade.Profit = &profit
	trade.Pips = &pips
	return trade, nil
}

// PotentialPL projects the profit, loss, and risk/reward ratio of taking the
// signal at the given lot size. Missing levels contribute zero pips; a zero
// loss distance yields a zero ratio rather than a division error.
func (e *Engine) PotentialPL(signal domain.Signal, lotSize float64, accountCurrency string) domain.ProfitProjection {
	pipSize := domain.PipSize(signal.CurrencyPair)
	pipValue := e.pipValue(signal.CurrencyPair, accountCurrency)

	var profitPips, lossPips float64
	if signal.TakeProfit != nil {
		profitPips = math.Abs(*signal.TakeProfit-signal.EntryPrice) / pipSize
	}
	if signal.StopLoss != nil {
		lossPips = math.Abs(signal.EntryPrice-*signal.StopLoss) / pipSize
	}

	proj := domain.ProfitProjection{
		PotentialProfit: profitPips * pipValue * lotSize,
		PotentialLoss:   lossPips * pipValue * lotSize,
	}
	if lossPips > 0 {
		proj.RiskRewardRatio = profitPips / lossPips
	}
	return proj
}

func validateSignal(signal domain.Signal) error {
	if signal.Status != domain.SignalActive {
		return fmt.Errorf("%w: status is %s", domain.ErrSignalNotActive, signal.Status)
	}
	if signal.EntryPrice <= 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPrice, signal.EntryPrice)
	}

	if signal.StopLoss != nil && signal.TakeProfit != nil {
		if signal.SignalType == domain.SignalBuy {
			if *signal.StopLoss >= signal.EntryPrice {
				return fmt.Errorf("%w: stop loss must be below entry price for BUY signals", domain.ErrInconsistentLevels)
			}
			if *signal.TakeProfit <= signal.EntryPrice {
				return fmt.Errorf("%w: take profit must be above entry price for BUY signals", domain.ErrInconsistentLevels)
			}
		} else {
			if *signal.StopLoss <= signal.EntryPrice {
				return fmt.Errorf("%w: stop loss must be above entry price for SELL signals", domain.ErrInconsistentLevels)
			}
			if *signal.TakeProfit >= signal.EntryPrice {
				return fmt.Errorf("%w: take profit must be below entry price for SELL signals", domain.ErrInconsistentLevels)
			}
		}
	}
	return nil
}

func validateAccount(account domain.TradingAccount) error {
	if account.Balance <= 0 {
		return domain.ErrInsufficientBalance
	}
	if account.APIKey == "" || account.APISecret == "" {
		return domain.ErrMissingCredentials
	}
	return nil
}

// calculateLotSize applies the classic risk formula: the amount the account is
// willing to lose divided by the monetary value of the stop distance, then
// scaled, capped, and rounded to a broker-valid increment.
func (e *Engine) calculateLotSize(signal domain.Signal, account domain.TradingAccount, settings domain.CopySettings) float64 {
	riskAmount := account.Balance * settings.RiskPercentage / 100
	pipValue := e.pipValue(signal.CurrencyPair, account.Currency)
	pipSize := domain.PipSize(signal.CurrencyPair)

	stopLossPips := float64(defaultStopLossPips)
	if signal.StopLoss != nil {
		stopLossPips = math.Abs(signal.EntryPrice-*signal.StopLoss) / pipSize
	}

	lotSize := riskAmount / (stopLossPips * pipValue)
	lotSize *= settings.Multiplier
	lotSize = math.Min(lotSize, settings.MaxPositionSize)
	lotSize = roundToValidLotSize(lotSize)
	return math.Max(lotSize, minLotSize)
}

// pipValue is the account-currency value of one pip on a standard lot.
// Cross-currency conversion goes through the injected rate provider, which by
// default is a fixed approximate table.
func (e *Engine) pipValue(pair, accountCurrency string) float64 {
	pipValue := domain.PipSize(pair) * standardLotUnits
	if _, quote, ok := domain.SplitPair(pair); ok && quote != accountCurrency {
		pipValue *= e.rates.Rate(quote, accountCurrency)
	}
	return pipValue
}

// Brokers accept 0.01 steps below a tenth of a lot and 0.1 steps above.
func roundToValidLotSize(lotSize float64) float64 {
	if lotSize < 0.1 {
		return math.Round(lotSize*100) / 100
	}
	return math.Round(lotSize*10) / 10
}

// adjustPriceLevels shifts the entry by a slippage buffer in the adverse
// direction and carries the stop/target levels only when the corresponding
// setting is enabled. The buffer scales with the pair's pip size, so JPY
// quotes get 0.03 rather than the 0.0003 most pairs see.
func adjustPriceLevels(signal domain.Signal, settings domain.CopySettings) (entryPrice float64, stopLoss, takeProfit *float64) {
	slippage := slippagePips * domain.PipSize(signal.CurrencyPair)

	entryPrice = signal.EntryPrice
	if signal.SignalType == domain.SignalBuy {
		entryPrice += slippage
	} else {
		entryPrice -= slippage
	}

	if settings.UseStopLoss {
		stopLoss = signal.StopLoss
	}
	if settings.UseTakeProfit {
		takeProfit = signal.TakeProfit
	}
	return entryPrice, stopLoss, takeProfit
}
