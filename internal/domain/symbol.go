package domain

import "strings"

// NormalizeSymbol trims surrounding whitespace and upper-cases a ticker
// the way users type it into a search box.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol returns the normalized symbol, or ErrInvalidSymbol when
// nothing is left after normalization.
func ValidateSymbol(symbol string) (string, error) {
	s := NormalizeSymbol(symbol)
	if s == "" {
		return "", ErrInvalidSymbol
	}
	return s, nil
}

// PopularSymbols is the watch list shown as live prices.
var PopularSymbols = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "JPM"}

// Sector groups the symbols recommendations are drawn from.
type Sector struct {
	Name    string
	Symbols []string
}

// RecommendationSectors lists the sectors in presentation order.
var RecommendationSectors = []Sector{
	{Name: "Technology", Symbols: []string{"AAPL", "MSFT", "GOOGL", "META", "NVDA"}},
	{Name: "E-Commerce", Symbols: []string{"AMZN", "SHOP", "ETSY", "BABA"}},
	{Name: "Electric Vehicles", Symbols: []string{"TSLA", "NIO", "RIVN", "LCID"}},
	{Name: "Financial", Symbols: []string{"JPM", "BAC", "GS", "V", "MA"}},
	{Name: "Healthcare", Symbols: []string{"JNJ", "PFE", "MRNA", "UNH"}},
}
