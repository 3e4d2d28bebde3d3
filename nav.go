package folio

import (
	"fmt"
	"log"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// Breakdown is a dimension along which a NAV is split.
type Breakdown string

const (
	ByAssetType  Breakdown = "Asset type"
	ByCurrency   Breakdown = "Currency"
	ByAssetClass Breakdown = "Asset class"
	ByAccount    Breakdown = "Account"
)

// AllBreakdowns lists every breakdown dimension.
var AllBreakdowns = []Breakdown{ByAssetType, ByCurrency, ByAssetClass, ByAccount}

// CashCategory is the category of cash balances in the asset type and asset
// class breakdowns.
const CashCategory = "Cash"

// ParseBreakdown accepts a breakdown name, case insensitive. "broker" is an
// alias of the account breakdown.
func ParseBreakdown(s string) (Breakdown, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	if norm == "broker" {
		return ByAccount, nil
	}
	for _, b := range AllBreakdowns {
		if strings.ToLower(string(b)) == norm || strings.ReplaceAll(strings.ToLower(string(b)), " ", "-") == norm {
			return b, nil
		}
	}
	return "", fmt.Errorf("unknown breakdown %q", s)
}

// NAV is the net asset value of a scope, optionally split by categories.
type NAV struct {
	Total      Money
	Breakdowns map[Breakdown]map[string]Money
}

func (n NAV) clone() NAV {
	c := NAV{Total: n.Total, Breakdowns: make(map[Breakdown]map[string]Money, len(n.Breakdowns))}
	for b, cats := range n.Breakdowns {
		c.Breakdowns[b] = maps.Clone(cats)
	}
	return c
}

// Categories returns the categories of a breakdown sorted by decreasing value.
func (n NAV) Categories(b Breakdown) []string {
	cats := slices.Sorted(maps.Keys(n.Breakdowns[b]))
	slices.SortStableFunc(cats, func(x, y string) int {
		return n.Breakdowns[b][y].Amount().Cmp(n.Breakdowns[b][x].Amount())
	})
	return cats
}

type navKey struct {
	accounts   string
	on         date.Date
	currency   string
	breakdowns string
}

func (k navKey) String() string {
	return fmt.Sprintf("%q|%s|%s|%s", k.accounts, k.on, k.currency, k.breakdowns)
}

// NAVCache memoizes NAV results. Concurrent requests for the same key are
// computed once.
type NAVCache struct {
	mu     sync.Mutex
	navs   map[navKey]NAV
	flight singleflight.Group
}

// NewNAVCache creates an empty cache.
func NewNAVCache() *NAVCache { return &NAVCache{navs: make(map[navKey]NAV)} }

// Invalidate drops every cached NAV.
func (c *NAVCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navs = make(map[navKey]NAV)
}

// Len returns the number of cached NAVs.
func (c *NAVCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.navs)
}

func (c *NAVCache) do(k navKey, compute func() (NAV, error)) (NAV, error) {
	c.mu.Lock()
	nav, ok := c.navs[k]
	c.mu.Unlock()
	if ok {
		return nav.clone(), nil
	}
	v, err, _ := c.flight.Do(k.String(), func() (any, error) {
		nav, err := compute()
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.navs[k] = nav
		c.mu.Unlock()
		return nav, nil
	})
	if err != nil {
		return NAV{}, err
	}
	return v.(NAV).clone(), nil
}

// NAVAt returns the value of the positions and cash of the accounts of scope at
// the end of on, in currency, with the requested breakdowns.
//
// Securities are valued at their latest quote, else their latest trade price,
// else their buy-in price. Securities with none of these are left out.
// Categories with a zero value are dropped.
func (a *Analyzer) NAVAt(on date.Date, scope Scope, currency string, breakdowns ...Breakdown) (NAV, error) {
	dims := slices.Clone(breakdowns)
	slices.Sort(dims)
	dims = slices.Compact(dims)
	var names []string
	for _, d := range dims {
		names = append(names, string(d))
	}
	k := navKey{accounts: scope.key(), on: on, currency: currency, breakdowns: strings.Join(names, ",")}
	return a.nav.do(k, func() (NAV, error) { return a.computeNAV(on, scope, currency, dims) })
}

type navAccumulator struct {
	total   decimal.Decimal
	buckets map[Breakdown]map[string]decimal.Decimal
}

func (n *navAccumulator) add(v decimal.Decimal, cats map[Breakdown]string) {
	n.total = n.total.Add(v)
	for b, bucket := range n.buckets {
		bucket[cats[b]] = bucket[cats[b]].Add(v)
	}
}

func (a *Analyzer) computeNAV(on date.Date, scope Scope, currency string, dims []Breakdown) (NAV, error) {
	acc := navAccumulator{buckets: make(map[Breakdown]map[string]decimal.Decimal)}
	for _, d := range dims {
		acc.buckets[d] = make(map[string]decimal.Decimal)
	}

	for _, id := range a.book.HeldSecurities(scope, on) {
		sec, _ := a.book.Security(id)
		positions := a.positionsByAccount(id, on, scope)
		if len(positions) == 0 {
			continue
		}
		px, ok := a.localPrice(id, on)
		if !ok {
			var err error
			if px, ok, err = a.BuyInPrice(id, on, sec.Currency, scope, nil); err != nil {
				return NAV{}, err
			}
		}
		if !ok {
			log.Printf("%s cannot be priced on %s, left out of the NAV", id, on)
			continue
		}
		f, err := a.fx.factor(sec.Currency, currency, on)
		if err != nil {
			return NAV{}, err
		}
		for _, account := range slices.Sorted(maps.Keys(positions)) {
			acct, _ := a.book.Account(account)
			acc.add(positions[account].Mul(px).Mul(f), map[Breakdown]string{
				ByAssetType:  string(sec.Type),
				ByCurrency:   sec.Currency,
				ByAssetClass: string(sec.Exposure),
				ByAccount:    acct.Name,
			})
		}
	}

	for _, account := range scope.Accounts() {
		acct, _ := a.book.Account(account)
		balances := a.CashBalance(account, on)
		for _, cur := range slices.Sorted(maps.Keys(balances)) {
			f, err := a.fx.factor(cur, currency, on)
			if err != nil {
				return NAV{}, err
			}
			acc.add(balances[cur].Mul(f), map[Breakdown]string{
				ByAssetType:  CashCategory,
				ByCurrency:   cur,
				ByAssetClass: CashCategory,
				ByAccount:    acct.Name,
			})
		}
	}

	nav := NAV{Total: M(round2(acc.total), currency), Breakdowns: make(map[Breakdown]map[string]Money)}
	for b, bucket := range acc.buckets {
		nav.Breakdowns[b] = make(map[string]Money)
		for cat, v := range bucket {
			if v = round2(v); !v.IsZero() {
				nav.Breakdowns[b][cat] = M(v, currency)
			}
		}
	}
	return nav, nil
}

// positionsByAccount returns the nonzero positions in security per account of scope.
func (a *Analyzer) positionsByAccount(security string, on date.Date, scope Scope) map[string]decimal.Decimal {
	pos := make(map[string]decimal.Decimal)
	for tx := range a.book.Trades(security, InScope(scope), Until(on)) {
		pos[tx.Account] = pos[tx.Account].Add(tx.quantity())
	}
	maps.DeleteFunc(pos, func(_ string, q decimal.Decimal) bool { return q.IsZero() })
	return pos
}

// CashBalance returns the cash of an account per currency at the end of on, rounded
// to the cent. Trades, cash flows, commissions and conversions all move cash.
func (a *Analyzer) CashBalance(account string, on date.Date) map[string]decimal.Decimal {
	balance := make(map[string]decimal.Decimal)
	one := NewScope(account, account)
	for tx := range a.book.Transactions(InScope(one), Until(on)) {
		balance[tx.Currency] = balance[tx.Currency].Add(tx.CashImpact())
	}
	for tx := range a.book.FXTransactions(one, on) {
		balance[tx.From] = balance[tx.From].Add(tx.impact(tx.From))
		balance[tx.To] = balance[tx.To].Add(tx.impact(tx.To))
	}
	for cur, v := range balance {
		balance[cur] = round2(v)
	}
	return balance
}

// PortfolioCash returns the cash of the accounts of scope at the end of on, in currency.
func (a *Analyzer) PortfolioCash(scope Scope, on date.Date, currency string) (Money, error) {
	total := decimal.Zero
	for _, account := range scope.Accounts() {
		for cur, v := range a.CashBalance(account, on) {
			f, err := a.fx.factor(cur, currency, on)
			if err != nil {
				return Money{}, err
			}
			total = total.Add(v.Mul(f))
		}
	}
	return M(round2(total), currency), nil
}
