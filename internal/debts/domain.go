package debts

import "time"

// Status enumerates provider debt states.
type Status string

const (
	StatusPending Status = "pending"
	StatusSettled Status = "settled"
)

// Payment is one settlement recorded against a debt.
type Payment struct {
	ID        string    `json:"id"`
	AmountUSD float64   `json:"amountUSD"`
	Wallet    string    `json:"wallet"`
	Date      time.Time `json:"date"`
}

// Debt is money the business owes a provider.
type Debt struct {
	ID          string    `json:"id"`
	Debtor      string    `json:"debtor"`
	Description string    `json:"description,omitempty"`
	AmountUSD   float64   `json:"amountUSD"`
	Status      Status    `json:"status"`
	Payments    []Payment `json:"payments,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Outstanding returns the unpaid remainder of the debt.
func (d Debt) Outstanding() float64 {
	remaining := d.AmountUSD
	for _, p := range d.Payments {
		remaining -= p.AmountUSD
	}
	return remaining
}

// PendingTotal sums the outstanding amounts of pending debts. Settled debts
// are excluded from the liability side.
func PendingTotal(list []Debt) float64 {
	var total float64
	for _, d := range list {
		if d.Status != StatusPending {
			continue
		}
		total += d.Outstanding()
	}
	return total
}
