package stock

import "time"

// Status enumerates stock item availability.
type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
)

// Item is one stock entry. Attributes carry the category-defined fields
// (brand, model, storage and so on) as free-form values.
type Item struct {
	ID             string            `json:"id"`
	Category       string            `json:"category"`
	Serial         string            `json:"serial,omitempty"`
	Quantity       int               `json:"quantity"`
	CostUSD        float64           `json:"costUSD"`
	SuggestedPrice float64           `json:"suggestedPrice,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
	ProviderID     string            `json:"providerId,omitempty"`
	Status         Status            `json:"status"`
	CreatedAt      time.Time         `json:"createdAt"`
}

// ValueAtCost sums quantity times cost over the available stock.
func ValueAtCost(items []Item) float64 {
	var total float64
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		total += float64(it.Quantity) * it.CostUSD
	}
	return total
}
