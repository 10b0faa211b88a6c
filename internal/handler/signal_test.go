package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"copytrader/internal/broker"
	"copytrader/internal/domain"
	"copytrader/internal/risk"
	"copytrader/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func newTestHandler(signalRepo *handlerSignalRepoStub, accountRepo *handlerAccountRepoStub, tradeRepo *handlerTradeRepoStub) *Handler {
	tracer := trace.NewNoopTracerProvider().Tracer("handler-test")
	engine := risk.NewEngine(broker.NewSimulated(0, nil), nil, nil, nil)
	return &Handler{
		tracer:      tracer,
		copyService: service.NewCopyService(tracer, signalRepo, accountRepo, tradeRepo, engine),
	}
}

func TestGetSignalsSuccess(t *testing.T) {
	sl := 1.08
	signalRepo := &handlerSignalRepoStub{
		resp: []domain.Signal{{
			ID:           "sig-1",
			CurrencyPair: "EUR/USD",
			SignalType:   domain.SignalBuy,
			EntryPrice:   1.085,
			StopLoss:     &sl,
			Status:       domain.SignalActive,
			CreatedAt:    time.Unix(0, 0).UTC(),
		}},
	}
	h := newTestHandler(signalRepo, &handlerAccountRepoStub{}, &handlerTradeRepoStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/signals?pair=eur/usd&type=buy&limit=5", nil)

	router := gin.New()
	router.GET("/api/signals", h.GetSignals)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if signalRepo.lastFilter.Pair != "EUR/USD" {
		t.Fatalf("expected pair EUR/USD, got %s", signalRepo.lastFilter.Pair)
	}
	if signalRepo.lastFilter.Type != domain.SignalBuy {
		t.Fatalf("expected type BUY, got %s", signalRepo.lastFilter.Type)
	}
	if signalRepo.lastFilter.Limit != 5 {
		t.Fatalf("expected limit 5, got %d", signalRepo.lastFilter.Limit)
	}

	var resp struct {
		Signals []domain.Signal `json:"signals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(resp.Signals) != 1 || resp.Signals[0].CurrencyPair != "EUR/USD" {
		t.Fatalf("unexpected response payload: %+v", resp)
	}
}

func TestGetSignalsBadParams(t *testing.T) {
	h := newTestHandler(&handlerSignalRepoStub{}, &handlerAccountRepoStub{}, &handlerTradeRepoStub{})

	router := gin.New()
	router.GET("/api/signals", h.GetSignals)

	for _, query := range []string{"?type=HOLD", "?limit=abc", "?limit=500"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/signals"+query, nil)
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", query, w.Code)
		}
	}
}

func TestGetSignalNotFound(t *testing.T) {
	h := newTestHandler(&handlerSignalRepoStub{}, &handlerAccountRepoStub{}, &handlerTradeRepoStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/signals/missing", nil)
	router := gin.New()
	router.GET("/api/signals/:id", h.GetSignal)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestIngestSignalsSuccess(t *testing.T) {
	signalRepo := &handlerSignalRepoStub{}
	h := newTestHandler(signalRepo, &handlerAccountRepoStub{}, &handlerTradeRepoStub{})

	w := httptest.NewRecorder()
	body := strings.NewReader(`[{"id":"sig-1","currency_pair":"eur/usd","signal_type":"BUY","entry_price":1.085}]`)
	req := httptest.NewRequest(http.MethodPost, "/api/signals", body)
	req.Header.Set("Content-Type", "application/json")
	router := gin.New()
	router.POST("/api/signals", h.IngestSignals)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(signalRepo.upserted) != 1 || signalRepo.upserted[0].CurrencyPair != "EUR/USD" {
		t.Fatalf("unexpected upserted signals: %+v", signalRepo.upserted)
	}
}

func TestIngestSignalsRejectsBadBatch(t *testing.T) {
	signalRepo := &handlerSignalRepoStub{}
	h := newTestHandler(signalRepo, &handlerAccountRepoStub{}, &handlerTradeRepoStub{})

	router := gin.New()
	router.POST("/api/signals", h.IngestSignals)

	for _, body := range []string{
		`{"id":"sig-1"}`,
		`[{"id":"sig-1","currency_pair":"EUR/USD","signal_type":"HOLD","entry_price":1.085}]`,
		`[]`,
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/signals", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, w.Code)
		}
	}
	if len(signalRepo.upserted) != 0 {
		t.Fatalf("bad batches must not be stored: %+v", signalRepo.upserted)
	}
}

func TestCopySignalSuccess(t *testing.T) {
	sl := 1.082
	signalRepo := &handlerSignalRepoStub{
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
	accountRepo := &handlerAccountRepoStub{
		accounts: map[string]*domain.TradingAccount{
			"acct-1": {ID: "acct-1", Balance: 10000, Currency: "USD", APIKey: "k", APISecret: "s"},
		},
	}
	tradeRepo := &handlerTradeRepoStub{}
	h := newTestHandler(signalRepo, accountRepo, tradeRepo)

	w := httptest.NewRecorder()
	body := strings.NewReader(`{"account_id":"acct-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/signals/sig-1/copy", body)
	req.Header.Set("Content-Type", "application/json")
	router := gin.New()
	router.POST("/api/signals/:id/copy", h.CopySignal)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if len(tradeRepo.inserted) != 1 {
		t.Fatalf("expected 1 persisted trade, got %d", len(tradeRepo.inserted))
	}

	var resp struct {
		Trade domain.CopiedTrade `json:"trade"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if resp.Trade.Status != domain.TradeOpen || resp.Trade.LotSize != 0.7 {
		t.Fatalf("unexpected trade payload: %+v", resp.Trade)
	}
}

func TestCopySignalMissingAccountID(t *testing.T) {
	h := newTestHandler(&handlerSignalRepoStub{}, &handlerAccountRepoStub{}, &handlerTradeRepoStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signals/sig-1/copy", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router := gin.New()
	router.POST("/api/signals/:id/copy", h.CopySignal)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCopySignalInactiveSignalIsUnprocessable(t *testing.T) {
	signalRepo := &handlerSignalRepoStub{
		signals: map[string]*domain.Signal{
			"sig-1": {
				ID:           "sig-1",
				CurrencyPair: "EUR/USD",
				SignalType:   domain.SignalBuy,
				EntryPrice:   1.085,
				Status:       domain.SignalClosed,
			},
		},
	}
	accountRepo := &handlerAccountRepoStub{
		accounts: map[string]*domain.TradingAccount{
			"acct-1": {ID: "acct-1", Balance: 50000, Currency: "USD", APIKey: "k", APISecret: "s"},
		},
	}
	h := newTestHandler(signalRepo, accountRepo, &handlerTradeRepoStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signals/sig-1/copy", strings.NewReader(`{"account_id":"acct-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router := gin.New()
	router.POST("/api/signals/:id/copy", h.CopySignal)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCopySignalUnknownSignalIsNotFound(t *testing.T) {
	h := newTestHandler(&handlerSignalRepoStub{}, &handlerAccountRepoStub{}, &handlerTradeRepoStub{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/signals/missing/copy", strings.NewReader(`{"account_id":"acct-1"}`))
	req.Header.Set("Content-Type", "application/json")
	router := gin.New()
	router.POST("/api/signals/:id/copy", h.CopySignal)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

type handlerSignalRepoStub struct {
	signals     map[string]*domain.Signal
	resp        []domain.Signal
	lastFilter  domain.SignalFilter
	incremented []string
	upserted    []domain.Signal
}

func (s *handlerSignalRepoStub) GetSignal(ctx context.Context, id string) (*domain.Signal, error) {
	return s.signals[id], nil
}

func (s *handlerSignalRepoStub) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	s.lastFilter = filter
	return append([]domain.Signal(nil), s.resp...), nil
}

func (s *handlerSignalRepoStub) UpsertSignals(ctx context.Context, signals []domain.Signal) error {
	s.upserted = append(s.upserted, signals...)
	return nil
}

func (s *handlerSignalRepoStub) IncrementCopyCount(ctx context.Context, id string) error {
	s.incremented = append(s.incremented, id)
	return nil
}

type handlerAccountRepoStub struct {
	accounts map[string]*domain.TradingAccount
}

func (s *handlerAccountRepoStub) GetAccount(ctx context.Context, id string) (*domain.TradingAccount, error) {
	return s.accounts[id], nil
}

func (s *handlerAccountRepoStub) AdjustBalance(ctx context.Context, id string, delta float64) error {
	return nil
}

type handlerTradeRepoStub struct {
	trades     map[string]*domain.CopiedTrade
	inserted   []domain.CopiedTrade
	closed     []domain.CopiedTrade
	lastFilter domain.TradeFilter
}

func (s *handlerTradeRepoStub) CloseTrade(ctx context.Context, t *domain.CopiedTrade) error {
	s.closed = append(s.closed, *t)
	return nil
}

func (s *handlerTradeRepoStub) InsertTrade(ctx context.Context, t *domain.CopiedTrade) error {
	s.inserted = append(s.inserted, *t)
	return nil
}

func (s *handlerTradeRepoStub) GetTrade(ctx context.Context, id string) (*domain.CopiedTrade, error) {
	return s.trades[id], nil
}

func (s *handlerTradeRepoStub) ListTrades(ctx context.Context, filter domain.TradeFilter) ([]domain.CopiedTrade, error) {
	s.lastFilter = filter
	var out []domain.CopiedTrade
	for _, t := range s.trades {
		out = append(out, *t)
	}
	return out, nil
}
