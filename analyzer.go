package folio

import (
	"github.com/shopspring/decimal"
)

// Options tunes the analytics. Zero fields take the default value.
type Options struct {
	// MaxIRR is the ceiling above which a money weighted return is reported as
	// not relevant. Default 2 (200%).
	MaxIRR decimal.Decimal
	// FXNoise is the magnitude under which the fx residual of a performance
	// record is zeroed. Default 0.01.
	FXNoise decimal.Decimal
	// FXCheckTolerance is the difference between the fx residual and the
	// bottom-up fx effect above which a diagnostic is reported. Default 1.
	FXCheckTolerance decimal.Decimal
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		MaxIRR:           decimal.NewFromInt(2),
		FXNoise:          decimal.RequireFromString("0.01"),
		FXCheckTolerance: decimal.NewFromInt(1),
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxIRR.IsZero() {
		o.MaxIRR = def.MaxIRR
	}
	if o.FXNoise.IsZero() {
		o.FXNoise = def.FXNoise
	}
	if o.FXCheckTolerance.IsZero() {
		o.FXCheckTolerance = def.FXCheckTolerance
	}
	return o
}

// Analyzer computes analytics over a Book.
//
// It owns the FX and NAV caches. They are keyed on immutable values and are only
// correct as long as the Book does not change: call Invalidate after any write.
// An Analyzer is safe for concurrent use.
type Analyzer struct {
	book *Book
	opts Options
	fx   *FXRateResolver
	nav  *NAVCache
}

// NewAnalyzer creates an Analyzer reading b.
func NewAnalyzer(b *Book, opts Options) *Analyzer {
	return &Analyzer{
		book: b,
		opts: opts.withDefaults(),
		fx:   NewFXRateResolver(b),
		nav:  NewNAVCache(),
	}
}

// Book returns the book being analyzed.
func (a *Analyzer) Book() *Book { return a.book }

// Options returns the effective options.
func (a *Analyzer) Options() Options { return a.opts }

// FX returns the rate resolver.
func (a *Analyzer) FX() *FXRateResolver { return a.fx }

// Invalidate drops every cached value.
func (a *Analyzer) Invalidate() {
	a.fx.Invalidate()
	a.nav.Invalidate()
}
