package handler

import (
	"net/http"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/service"
	"github.com/go-chi/chi/v5"
)

// MarketHandler handles HTTP requests for prices and recommendations.
type MarketHandler struct {
	marketSvc *service.MarketService
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(marketSvc *service.MarketService) *MarketHandler {
	return &MarketHandler{marketSvc: marketSvc}
}

type quoteResponse struct {
	Symbol        string `json:"symbol"`
	Price         string `json:"price"`
	PercentChange string `json:"percent_change"`
	QuotedAt      string `json:"quoted_at"`
}

type pricesResponse struct {
	Prices []quoteResponse `json:"prices"`
}

type recommendationResponse struct {
	Sector  string        `json:"sector"`
	Symbol  string        `json:"symbol"`
	Quote   quoteResponse `json:"quote"`
	Summary string        `json:"summary"`
}

type recommendationsResponse struct {
	Recommendations []recommendationResponse `json:"recommendations"`
}

// LivePrices handles GET /prices.
func (h *MarketHandler) LivePrices(w http.ResponseWriter, r *http.Request) {
	quotes, err := h.marketSvc.LivePrices(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		mapError(w, err)
		return
	}

	prices := make([]quoteResponse, len(quotes))
	for i, q := range quotes {
		prices[i] = buildQuoteResponse(q)
	}
	WriteJSON(w, http.StatusOK, pricesResponse{Prices: prices})
}

// Quote handles GET /stocks/{symbol}/quote.
func (h *MarketHandler) Quote(w http.ResponseWriter, r *http.Request) {
	q, err := h.marketSvc.Quote(r.Context(), sessionFrom(r.Context()), chi.URLParam(r, "symbol"))
	if err != nil {
		mapError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, buildQuoteResponse(q))
}

// Recommendations handles GET /recommendations.
func (h *MarketHandler) Recommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.marketSvc.Recommendations(r.Context(), sessionFrom(r.Context()))
	if err != nil {
		mapError(w, err)
		return
	}

	resp := make([]recommendationResponse, len(recs))
	for i, rec := range recs {
		resp[i] = recommendationResponse{
			Sector:  rec.Sector,
			Symbol:  rec.Symbol,
			Quote:   buildQuoteResponse(rec.Quote),
			Summary: rec.Summary,
		}
	}
	WriteJSON(w, http.StatusOK, recommendationsResponse{Recommendations: resp})
}

func buildQuoteResponse(q domain.PriceQuote) quoteResponse {
	return quoteResponse{
		Symbol:        q.Symbol,
		Price:         money(q.Price),
		PercentChange: q.PercentChange.StringFixed(2),
		QuotedAt:      formatTime(q.QuotedAt),
	}
}
