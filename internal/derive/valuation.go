package derive

import (
	"context"
	"errors"

	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
)

// Valuation resolves the aggregates services need when recording capital
// history entries: stock value, pending provider payable and the current
// exchange rate, all read from the document store.
type Valuation struct {
	store       store.Store
	defaultRate float64
}

// NewValuation builds a Valuation.
func NewValuation(st store.Store, defaultRate float64) *Valuation {
	return &Valuation{store: st, defaultRate: defaultRate}
}

// StockValueUSD values the account's stock at cost.
func (v *Valuation) StockValueUSD(ctx context.Context, account string) (float64, error) {
	docs, err := v.store.List(ctx, account, store.CollStock)
	if err != nil {
		return 0, err
	}
	items, err := stock.Decode(docs)
	if err != nil {
		return 0, err
	}
	return stock.ValueAtCost(items), nil
}

// ProviderPendingUSD sums the outstanding pending provider debts.
func (v *Valuation) ProviderPendingUSD(ctx context.Context, account string) (float64, error) {
	docs, err := v.store.List(ctx, account, store.CollDebts)
	if err != nil {
		return 0, err
	}
	list, err := debts.Decode(docs)
	if err != nil {
		return 0, err
	}
	return debts.PendingTotal(list), nil
}

// ExchangeRate reads the profile's exchange rate, falling back to the
// configured default when no profile document exists.
func (v *Valuation) ExchangeRate(ctx context.Context, account string) (float64, error) {
	doc, err := v.store.Get(ctx, account, store.CollProfile, store.SingletonDocID)
	if err != nil {
		if errors.Is(err, store.ErrDocNotFound) {
			return profile.Defaults(v.defaultRate).ExchangeRate, nil
		}
		return 0, err
	}
	p, err := profile.DecodeOver(doc, profile.Defaults(v.defaultRate))
	if err != nil {
		return 0, err
	}
	return p.ExchangeRate, nil
}
