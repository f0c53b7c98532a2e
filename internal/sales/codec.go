package sales

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/iflow-pos/iflow/internal/store"
)

// Decode maps raw documents to sales ordered by date, defaults filled in.
func Decode(docs []store.Document) ([]Sale, error) {
	out := make([]Sale, 0, len(docs))
	for _, doc := range docs {
		var s Sale
		if err := json.Unmarshal(doc.Data, &s); err != nil {
			return nil, fmt.Errorf("sales: decode %s: %w", doc.ID, err)
		}
		if s.ID == "" {
			s.ID = doc.ID
		}
		if s.Payments == nil {
			s.Payments = map[string]float64{}
		}
		if s.Items == nil {
			s.Items = []LineItem{}
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
