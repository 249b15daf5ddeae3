package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/engine"
	"github.com/efreitasn/papertrade/internal/service"
	"github.com/go-chi/chi/v5"
)

// TradingHandler handles HTTP requests for orders, estimates, the
// portfolio and trade history.
type TradingHandler struct {
	tradingSvc *service.TradingService
}

// NewTradingHandler creates a new TradingHandler.
func NewTradingHandler(tradingSvc *service.TradingService) *TradingHandler {
	return &TradingHandler{tradingSvc: tradingSvc}
}

// orderRequest is the JSON request body for POST /orders/buy and
// POST /orders/sell. Orders always execute at the oracle's price.
type orderRequest struct {
	Symbol   string      `json:"symbol"`
	Quantity json.Number `json:"quantity"`
}

type tradeResponse struct {
	TradeID    string `json:"trade_id"`
	Side       string `json:"side"`
	Symbol     string `json:"symbol"`
	Quantity   int64  `json:"quantity"`
	Price      string `json:"price"`
	Total      string `json:"total"`
	ExecutedAt string `json:"executed_at"`
}

type executionResponse struct {
	Trade   tradeResponse   `json:"trade"`
	Account accountResponse `json:"account"`
}

type estimateResponse struct {
	Symbol   string `json:"symbol"`
	Side     string `json:"side"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
	Total    string `json:"total"`
	QuotedAt string `json:"quoted_at"`
}

type portfolioRowResponse struct {
	Symbol         string `json:"symbol"`
	Quantity       int64  `json:"quantity"`
	AverageCost    string `json:"average_cost"`
	Price          string `json:"price"`
	PercentChange  string `json:"percent_change"`
	MarketValue    string `json:"market_value"`
	CostBasis      string `json:"cost_basis"`
	UnrealizedGain string `json:"unrealized_gain"`
}

type portfolioResponse struct {
	Username    string                 `json:"username"`
	Balance     string                 `json:"balance"`
	Positions   []portfolioRowResponse `json:"positions"`
	MarketValue string                 `json:"market_value"`
	TotalValue  string                 `json:"total_value"`
	ValuedAt    string                 `json:"valued_at"`
}

type tradeListResponse struct {
	Trades []tradeResponse `json:"trades"`
	Total  int             `json:"total"`
	Page   int             `json:"page"`
	Limit  int             `json:"limit"`
}

// Buy handles POST /orders/buy.
func (h *TradingHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		mapError(w, err)
		return
	}

	exec, err := h.tradingSvc.Buy(r.Context(), sessionFrom(r.Context()), engine.BuyRequest{
		Symbol:   req.Symbol,
		Quantity: qty,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildExecutionResponse(exec))
}

// Sell handles POST /orders/sell.
func (h *TradingHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		mapError(w, err)
		return
	}

	exec, err := h.tradingSvc.Sell(r.Context(), sessionFrom(r.Context()), engine.SellRequest{
		Symbol:   req.Symbol,
		Quantity: qty,
	})
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, buildExecutionResponse(exec))
}

// Estimate handles GET /stocks/{symbol}/estimate.
func (h *TradingHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	side := domain.TradeSide(r.URL.Query().Get("side"))
	qty, err := parseQuantity(json.Number(r.URL.Query().Get("quantity")))
	if err != nil {
		mapError(w, err)
		return
	}

	est, err := h.tradingSvc.Estimate(r.Context(), sessionFrom(r.Context()), side, chi.URLParam(r, "symbol"), qty)
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, estimateResponse{
		Symbol:   est.Symbol,
		Side:     string(est.Side),
		Quantity: est.Quantity,
		Price:    money(est.Price),
		Total:    money(est.Total),
		QuotedAt: formatTime(est.QuotedAt),
	})
}

// Portfolio handles GET /portfolio.
func (h *TradingHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	view, err := h.tradingSvc.Portfolio(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		mapError(w, err)
		return
	}

	rows := make([]portfolioRowResponse, len(view.Rows))
	for i, row := range view.Rows {
		rows[i] = portfolioRowResponse{
			Symbol:         row.Symbol,
			Quantity:       row.Quantity,
			AverageCost:    money(row.AverageCost),
			Price:          money(row.Price),
			PercentChange:  row.PercentChange.StringFixed(2),
			MarketValue:    money(row.MarketValue),
			CostBasis:      money(row.CostBasis),
			UnrealizedGain: money(row.UnrealizedGain),
		}
	}
	WriteJSON(w, http.StatusOK, portfolioResponse{
		Username:    view.Username,
		Balance:     money(view.Balance),
		Positions:   rows,
		MarketValue: money(view.MarketValue),
		TotalValue:  money(view.TotalValue),
		ValuedAt:    formatTime(view.ValuedAt),
	})
}

// ListTrades handles GET /trades.
func (h *TradingHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		var err error
		page, err = strconv.Atoi(p)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "page must be a valid integer")
			return
		}
	}

	limit := 20
	if l := r.URL.Query().Get("limit"); l != "" {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "validation_error", "limit must be a valid integer")
			return
		}
	}

	trades, total, err := h.tradingSvc.ListTrades(sessionFrom(r.Context()), page, limit)
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]tradeResponse, len(trades))
	for i, t := range trades {
		resp[i] = buildTradeResponse(t)
	}
	WriteJSON(w, http.StatusOK, tradeListResponse{
		Trades: resp,
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}

func buildExecutionResponse(exec *engine.Execution) executionResponse {
	return executionResponse{
		Trade:   buildTradeResponse(exec.Trade),
		Account: buildAccountResponse(exec.Account),
	}
}

func buildTradeResponse(t *domain.Trade) tradeResponse {
	return tradeResponse{
		TradeID:    t.TradeID,
		Side:       string(t.Side),
		Symbol:     t.Symbol,
		Quantity:   t.Quantity,
		Price:      money(t.Price),
		Total:      money(t.Total),
		ExecutedAt: formatTime(t.ExecutedAt),
	}
}
