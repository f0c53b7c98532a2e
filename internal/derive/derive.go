// Package derive holds the pure calculators recomputed on every state
// change: capital totals, debt aggregates and profit figures. Nothing here
// caches or mutates; missing numerics default to zero and collections to
// empty, so the calculators tolerate any interleaving of partial state.
package derive

import (
	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/sales"
	"github.com/iflow-pos/iflow/internal/stock"
)

// CapitalTotal computes total capital in USD from raw state contents.
func CapitalTotal(sum capital.Summary, items []stock.Item, debtList []debts.Debt, exchangeRate float64) float64 {
	return capital.Total(sum, stock.ValueAtCost(items), debts.PendingTotal(debtList), exchangeRate)
}

// OutstandingBalance returns the unpaid client balance of a sale.
func OutstandingBalance(s sales.Sale) float64 {
	return s.Outstanding()
}

// IsSettled reports whether a sale is fully paid within tolerance.
func IsSettled(s sales.Sale) bool {
	return s.Settled()
}

// NetProfit returns the sale margin after commission.
func NetProfit(s sales.Sale) float64 {
	return s.NetProfit()
}

// ClientReceivable sums outstanding balances across unsettled sales.
func ClientReceivable(list []sales.Sale) float64 {
	var total float64
	for _, s := range list {
		if bal := s.Outstanding(); bal > capital.Tolerance {
			total += bal
		}
	}
	return total
}
