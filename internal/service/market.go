package service

import (
	"context"
	"fmt"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/efreitasn/papertrade/internal/engine"
	"github.com/efreitasn/papertrade/internal/session"
)

// Recommendation is a suggested symbol for one sector.
type Recommendation struct {
	Sector  string
	Symbol  string
	Quote   domain.PriceQuote
	Summary string
}

// MarketService serves simulated quotes and recommendations.
type MarketService struct {
	oracle  *engine.Oracle
	popular []string
	sectors []domain.Sector
}

// NewMarketService creates a new MarketService quoting the popular symbol
// list and recommending from the built-in sectors.
func NewMarketService(oracle *engine.Oracle) *MarketService {
	return &MarketService{
		oracle:  oracle,
		popular: domain.PopularSymbols,
		sectors: domain.RecommendationSectors,
	}
}

// LivePrices quotes the popular symbols concurrently. Quotes are returned
// in list order and remembered in the session.
func (s *MarketService) LivePrices(ctx context.Context, sess *session.Session) ([]domain.PriceQuote, error) {
	quotes, err := s.oracle.QuoteMany(ctx, s.popular)
	if err != nil {
		return nil, fmt.Errorf("quote popular symbols: %w", err)
	}
	for _, q := range quotes {
		sess.Remember(q)
	}
	return quotes, nil
}

// Quote fetches a fresh quote for a single symbol. The symbol is trimmed
// and upper-cased first.
func (s *MarketService) Quote(ctx context.Context, sess *session.Session, symbol string) (domain.PriceQuote, error) {
	symbol, err := domain.ValidateSymbol(symbol)
	if err != nil {
		return domain.PriceQuote{}, err
	}
	q, err := s.oracle.Quote(ctx, symbol)
	if err != nil {
		return domain.PriceQuote{}, fmt.Errorf("quote %s: %w", symbol, err)
	}
	sess.Remember(q)
	return q, nil
}

// Recommendations picks one random symbol per sector, in sector order, and
// quotes the picks.
func (s *MarketService) Recommendations(ctx context.Context, sess *session.Session) ([]Recommendation, error) {
	picks := make([]string, len(s.sectors))
	for i, sector := range s.sectors {
		picks[i] = sector.Symbols[s.oracle.Pick(len(sector.Symbols))]
	}

	quotes, err := s.oracle.QuoteMany(ctx, picks)
	if err != nil {
		return nil, fmt.Errorf("quote recommendations: %w", err)
	}

	recs := make([]Recommendation, len(s.sectors))
	for i, sector := range s.sectors {
		sess.Remember(quotes[i])
		recs[i] = Recommendation{
			Sector:  sector.Name,
			Symbol:  picks[i],
			Quote:   quotes[i],
			Summary: fmt.Sprintf("This %s stock shows strong potential based on recent market trends.", sector.Name),
		}
	}
	return recs, nil
}
