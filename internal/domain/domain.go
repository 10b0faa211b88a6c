package domain

import (
	"errors"
	"strings"
	"time"
)

type SignalType string

const (
	SignalBuy  SignalType = "BUY"
	SignalSell SignalType = "SELL"
)

func (t SignalType) IsValid() bool {
	return t == SignalBuy || t == SignalSell
}

type SignalStatus string

const (
	SignalActive    SignalStatus = "active"
	SignalClosed    SignalStatus = "closed"
	SignalCancelled SignalStatus = "cancelled"
)

// Signal is an immutable trade recommendation published by a provider.
type Signal struct {
	ID              string       `json:"id"`
	CurrencyPair    string       `json:"currency_pair"`
	SignalType      SignalType   `json:"signal_type"`
	EntryPrice      float64      `json:"entry_price"`
	StopLoss        *float64     `json:"stop_loss,omitempty"`
	TakeProfit      *float64     `json:"take_profit,omitempty"`
	Status          SignalStatus `json:"status"`
	ConfidenceLevel int          `json:"confidence_level,omitempty"`
	AnalysisSummary string       `json:"analysis_summary,omitempty"`
	Tags            []string     `json:"tags,omitempty"`
	CopyCount       int          `json:"copy_count"`
	CreatedAt       time.Time    `json:"created_at"`
}

// TradingAccount is a brokerage account trades are sized against.
type TradingAccount struct {
	ID            string  `json:"id"`
	Broker        string  `json:"broker"`
	AccountNumber string  `json:"account_number"`
	Balance       float64 `json:"balance"`
	Currency      string  `json:"currency"`
	Leverage      float64 `json:"leverage"`
	APIKey        string  `json:"-"`
	APISecret     string  `json:"-"`
}

// CopySettings is the per-copy risk policy chosen by the user.
type CopySettings struct {
	RiskPercentage  float64 `json:"risk_percentage"`
	MaxPositionSize float64 `json:"max_position_size"`
	UseStopLoss     bool    `json:"use_stop_loss"`
	UseTakeProfit   bool    `json:"use_take_profit"`
	TrailStopLoss   bool    `json:"trail_stop_loss"`
	Multiplier      float64 `json:"multiplier"`
}

// DefaultCopySettings risks 2% per trade, capped at one standard lot.
var DefaultCopySettings = CopySettings{
	RiskPercentage:  2,
	MaxPositionSize: 1.0,
	UseStopLoss:     true,
	UseTakeProfit:   true,
	TrailStopLoss:   false,
	Multiplier:      1.0,
}

type TradeStatus string

const (
	TradePending TradeStatus = "pending"
	TradeOpen    TradeStatus = "open"
	TradeClosed  TradeStatus = "closed"
)

// CopiedTrade is one brokerage order derived from a Signal. The engine
// constructs it; the trade repository owns it afterwards.
type CopiedTrade struct {
	ID            string      `json:"id"`
	SignalID      string      `json:"signal_id"`
	AccountID     string      `json:"account_id"`
	BrokerOrderID string      `json:"broker_order_id,omitempty"`
	CurrencyPair  string      `json:"currency_pair"`
	Direction     SignalType  `json:"direction"`
	EntryPrice    float64     `json:"entry_price"`
	StopLoss      *float64    `json:"stop_loss,omitempty"`
	TakeProfit    *float64    `json:"take_profit,omitempty"`
	LotSize       float64     `json:"lot_size"`
	Status        TradeStatus `json:"status"`
	OpenTime      time.Time   `json:"open_time"`
	CloseTime     *time.Time  `json:"close_time,omitempty"`
	Profit        *float64    `json:"profit,omitempty"`
	Pips          *float64    `json:"pips,omitempty"`
}

// ProfitProjection is the potential outcome of a trade at its declared levels.
type ProfitProjection struct {
	PotentialProfit float64 `json:"potential_profit"`
	PotentialLoss   float64 `json:"potential_loss"`
	RiskRewardRatio float64 `json:"risk_reward_ratio"`
}

type SignalFilter struct {
	Pair   string
	Status SignalStatus
	Type   SignalType
	Limit  int
}

type TradeFilter struct {
	AccountID string
	Status    TradeStatus
	Limit     int
}

// NewsArticle is an aggregated headline served through the cache pipeline.
type NewsArticle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary,omitempty"`
	Source      string    `json:"source"`
	URL         string    `json:"url,omitempty"`
	Impact      string    `json:"impact,omitempty"`
	Currencies  []string  `json:"currencies,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Validation failures surfaced by the risk engine. Callers match with
// errors.Is; messages carry the BUY/SELL specifics.
var (
	ErrSignalNotActive     = errors.New("cannot copy inactive signal")
	ErrInvalidPrice        = errors.New("invalid entry price")
	ErrInconsistentLevels  = errors.New("inconsistent price levels")
	ErrInsufficientBalance = errors.New("insufficient account balance")
	ErrMissingCredentials  = errors.New("account API credentials not configured")
)

// SplitPair breaks "EUR/USD" into base and quote. Reports false for anything
// that is not exactly two non-empty segments.
func SplitPair(pair string) (base, quote string, ok bool) {
	parts := strings.Split(pair, "/")
	if len(parts) != 2 {
		return "", "", false
	}
	base = strings.ToUpper(strings.TrimSpace(parts[0]))
	quote = strings.ToUpper(strings.TrimSpace(parts[1]))
	if base == "" || quote == "" {
		return "", "", false
	}
	return base, quote, true
}

// PipSize is 0.01 for JPY-quoted pairs and 0.0001 otherwise.
func PipSize(pair string) float64 {
	if _, quote, ok := SplitPair(pair); ok && quote == "JPY" {
		return 0.01
	}
	return 0.0001
}
