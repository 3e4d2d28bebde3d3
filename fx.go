package folio

import (
	"fmt"
	"slices"
	"sync"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// FXRate is the factor converting an amount in a source currency into a target
// currency: amount_in_target = amount_in_source * Factor.
type FXRate struct {
	Factor       decimal.Decimal
	Conversions  int         // number of quoted pairs chained
	Dates        []date.Date // quote date used for each pair
	Asynchronous bool        // pairs resolved to different quote dates
}

type fxKey struct {
	source, target string
	on             date.Date
}

// FXCache memoizes rates per (source, target, date).
type FXCache struct {
	mu    sync.Mutex
	rates map[fxKey]FXRate
}

func (c *FXCache) get(k fxKey) (FXRate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.rates[k]
	return r, ok
}

func (c *FXCache) put(k fxKey, r FXRate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rates == nil {
		c.rates = make(map[fxKey]FXRate)
	}
	c.rates[k] = r
}

// Invalidate drops every cached rate.
func (c *FXCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates = nil
}

// Len returns the number of cached rates.
func (c *FXCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.rates)
}

// FXRateResolver derives conversion rates between any two currencies linked by
// a chain of quoted pairs.
type FXRateResolver struct {
	book  *Book
	cache FXCache

	mu    sync.Mutex
	graph map[string][]string // currency -> sorted neighbours, nil until first use
}

// NewFXRateResolver creates a resolver over the FX quotes of b.
func NewFXRateResolver(b *Book) *FXRateResolver {
	return &FXRateResolver{book: b}
}

// Invalidate drops cached rates and the currency graph.
func (r *FXRateResolver) Invalidate() {
	r.cache.Invalidate()
	r.mu.Lock()
	r.graph = nil
	r.mu.Unlock()
}

// Cache exposes the rate cache.
func (r *FXRateResolver) Cache() *FXCache { return &r.cache }

// currencyGraph connects currencies of every pair that has at least one quote.
func (r *FXRateResolver) currencyGraph() map[string][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.graph != nil {
		return r.graph
	}
	g := make(map[string][]string)
	for _, p := range r.book.Pairs() {
		if r.book.FXQuotes(p).Len() == 0 {
			continue
		}
		g[p.Base()] = append(g[p.Base()], p.Quote())
		g[p.Quote()] = append(g[p.Quote()], p.Base())
	}
	for c := range g {
		slices.Sort(g[c])
		g[c] = slices.Compact(g[c])
	}
	r.graph = g
	return g
}

// route returns the shortest chain of currencies from source to target.
func (r *FXRateResolver) route(source, target string) ([]string, error) {
	graph := r.currencyGraph()
	prev := map[string]string{source: ""}
	queue := []string{source}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == target {
			path := []string{target}
			for p := prev[target]; p != ""; p = prev[p] {
				path = append(path, p)
			}
			slices.Reverse(path)
			return path, nil
		}
		for _, n := range graph[c] {
			if _, seen := prev[n]; !seen {
				prev[n] = c
				queue = append(queue, n)
			}
		}
	}
	return nil, fmt.Errorf("%w: %w from %s to %s", ErrFXUnavailable, ErrNoFXRoute, source, target)
}

// quote returns the quote of pair as of on, or the first one after on.
func (r *FXRateResolver) quote(pair CurrencyPair, on date.Date) (date.Date, decimal.Decimal, error) {
	h := r.book.FXQuotes(pair)
	if h == nil {
		return date.Date{}, decimal.Zero, fmt.Errorf("%w: %w for %s before %s", ErrFXUnavailable, ErrNoFXRate, pair, on)
	}
	if day, q, ok := h.AsOf(on); ok {
		return day, q, nil
	}
	if day, q, ok := h.OnOrAfter(on); ok {
		return day, q, nil
	}
	return date.Date{}, decimal.Zero, fmt.Errorf("%w: %w for %s before %s", ErrFXUnavailable, ErrNoFXRate, pair, on)
}

// Rate returns the factor converting source amounts into target amounts on a day.
//
// Each pair on the route uses its latest quote on or before the day, falling
// back on its earliest later quote. Failures wrap ErrFXUnavailable.
func (r *FXRateResolver) Rate(source, target string, on date.Date) (FXRate, error) {
	if source == target {
		return FXRate{Factor: decimal.NewFromInt(1)}, nil
	}
	key := fxKey{source, target, on}
	if rate, ok := r.cache.get(key); ok {
		return rate, nil
	}

	path, err := r.route(source, target)
	if err != nil {
		return FXRate{}, err
	}
	chain := decimal.NewFromInt(1)
	rate := FXRate{Conversions: len(path) - 1}
	for i := 1; i < len(path); i++ {
		from, to := path[i-1], path[i]
		pair, forward := CurrencyPair(from+to), true
		if r.book.FXQuotes(pair).Len() == 0 {
			pair, forward = CurrencyPair(to+from), false
		}
		day, q, err := r.quote(pair, on)
		if err != nil {
			return FXRate{}, err
		}
		if forward {
			chain = chain.Mul(q)
		} else {
			chain = chain.DivRound(q, 16)
		}
		if len(rate.Dates) > 0 && rate.Dates[0] != day {
			rate.Asynchronous = true
		}
		rate.Dates = append(rate.Dates, day)
	}
	rate.Factor = round6(decimal.NewFromInt(1).DivRound(chain, 16))

	r.cache.put(key, rate)
	return rate, nil
}

// Convert converts amount from source to target currency at the rate of the day.
func (r *FXRateResolver) Convert(amount decimal.Decimal, source, target string, on date.Date) (decimal.Decimal, error) {
	rate, err := r.Rate(source, target, on)
	if err != nil {
		return decimal.Zero, err
	}
	return amount.Mul(rate.Factor), nil
}

// factor is Rate reduced to its factor.
func (r *FXRateResolver) factor(source, target string, on date.Date) (decimal.Decimal, error) {
	rate, err := r.Rate(source, target, on)
	return rate.Factor, err
}
