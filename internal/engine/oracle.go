package engine

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
	"unicode/utf16"

	"github.com/efreitasn/papertrade/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// Source is the randomness the oracle draws from.
type Source interface {
	Float64() float64 // uniform in [0, 1)
	IntN(n int) int   // uniform in [0, n)
}

// globalSource draws from the process-wide generator.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }
func (globalSource) IntN(n int) int   { return rand.IntN(n) }

// lockedSource serialises access to a seeded generator so one Oracle can
// serve concurrent quotes.
type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (s *lockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *lockedSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.IntN(n)
}

// NewSeededSource returns a reproducible Source.
func NewSeededSource(seed uint64) Source {
	return &lockedSource{r: rand.New(rand.NewPCG(seed, seed))}
}

const (
	jitterSpan  = 10.0 // jitter is uniform in [-5, +5)
	percentSpan = 6.0  // percent change is uniform in [-3, +3]
)

var minimumPrice = decimal.New(1, -domain.CurrencyPlaces)

// BasePrice is the deterministic part of a symbol's price: the sum of its
// UTF-16 code units mod 1000, plus 50. Characters outside the BMP count
// as their two surrogate halves.
func BasePrice(symbol string) int64 {
	var sum int64
	for _, u := range utf16.Encode([]rune(symbol)) {
		sum += int64(u)
	}
	return sum%1000 + 50
}

// Oracle produces synthetic quotes. Each call draws fresh jitter, so two
// quotes for the same symbol normally differ.
type Oracle struct {
	src     Source
	latency time.Duration
	now     func() time.Time
}

// NewOracle creates an Oracle. A nil src uses the process-wide generator.
// latency is waited out before every quote to mimic a remote feed.
func NewOracle(src Source, latency time.Duration) *Oracle {
	if src == nil {
		src = globalSource{}
	}
	return &Oracle{
		src:     src,
		latency: latency,
		now:     time.Now,
	}
}

// Quote returns a fresh quote for symbol. The only error is ctx ending
// while the simulated latency is pending.
func (o *Oracle) Quote(ctx context.Context, symbol string) (domain.PriceQuote, error) {
	if err := o.wait(ctx); err != nil {
		return domain.PriceQuote{}, err
	}

	jitter := (o.src.Float64() - 0.5) * jitterSpan
	price := domain.RoundCurrency(decimal.NewFromFloat(float64(BasePrice(symbol)) + jitter))
	if price.LessThan(minimumPrice) {
		price = minimumPrice
	}

	change := o.src.Float64()*percentSpan - percentSpan/2

	return domain.PriceQuote{
		Symbol:        symbol,
		Price:         price,
		PercentChange: domain.RoundCurrency(decimal.NewFromFloat(change)),
		QuotedAt:      o.now(),
	}, nil
}

// QuoteMany fetches quotes concurrently and returns them in the order of
// symbols.
func (o *Oracle) QuoteMany(ctx context.Context, symbols []string) ([]domain.PriceQuote, error) {
	quotes := make([]domain.PriceQuote, len(symbols))

	g, ctx := errgroup.WithContext(ctx)
	for i, symbol := range symbols {
		g.Go(func() error {
			q, err := o.Quote(ctx, symbol)
			if err != nil {
				return err
			}
			quotes[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

// Pick returns a uniform index in [0, n) from the oracle's source.
func (o *Oracle) Pick(n int) int {
	return o.src.IntN(n)
}

func (o *Oracle) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if o.latency <= 0 {
		return nil
	}

	timer := time.NewTimer(o.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
