package sales

import (
	"time"

	"github.com/iflow-pos/iflow/internal/capital"
)

// LineItem is a stock-item snapshot captured at checkout plus the agreed
// sale price. The snapshot survives later stock edits and deletions.
type LineItem struct {
	StockID      string            `json:"stockId"`
	Category     string            `json:"category"`
	Serial       string            `json:"serial,omitempty"`
	Attributes   map[string]string `json:"attributes,omitempty"`
	Quantity     int               `json:"quantity"`
	CostUSD      float64           `json:"costUSD"`
	SalePriceUSD float64           `json:"salePriceUSD"`
}

// TradeIn is a used item accepted as partial payment at an agreed USD value.
type TradeIn struct {
	Category    string            `json:"category"`
	Description string            `json:"description,omitempty"`
	Serial      string            `json:"serial,omitempty"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	ValueUSD    float64           `json:"valueUSD"`
}

// Settlement is a payment recorded against the outstanding sale balance.
type Settlement struct {
	ID        string    `json:"id"`
	AmountUSD float64   `json:"amountUSD"`
	Wallet    string    `json:"wallet"`
	Date      time.Time `json:"date"`
}

// Sale is one checkout. Immutable once written except for appended
// settlements. Payment amounts are USD equivalents keyed by wallet; the
// debt wallet key marks the part left outstanding at checkout.
type Sale struct {
	ID            string             `json:"id"`
	ClientID      string             `json:"clientId,omitempty"`
	Date          time.Time          `json:"date"`
	Items         []LineItem         `json:"items"`
	Payments      map[string]float64 `json:"payments"`
	TradeIn       *TradeIn           `json:"tradeIn,omitempty"`
	CommissionUSD float64            `json:"commissionUSD,omitempty"`
	Salesperson   string             `json:"salesperson,omitempty"`
	Settlements   []Settlement       `json:"settlements,omitempty"`
	TotalUSD      float64            `json:"totalUSD"`
}

// Outstanding computes the unpaid client balance: total minus non-debt
// wallet payments, trade-in credit and recorded settlements.
func (s Sale) Outstanding() float64 {
	balance := s.TotalUSD
	for wallet, amount := range s.Payments {
		if wallet == capital.WalletDebt {
			continue
		}
		balance -= amount
	}
	if s.TradeIn != nil {
		balance -= s.TradeIn.ValueUSD
	}
	for _, st := range s.Settlements {
		balance -= st.AmountUSD
	}
	return balance
}

// Settled reports whether the outstanding balance is zero within tolerance.
func (s Sale) Settled() bool {
	return s.Outstanding() <= capital.Tolerance
}

// NetProfit sums the per-item margin minus the salesperson commission.
func (s Sale) NetProfit() float64 {
	var profit float64
	for _, it := range s.Items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		profit += float64(qty) * (it.SalePriceUSD - it.CostUSD)
	}
	return profit - s.CommissionUSD
}
