package debts

import (
	"encoding/json"
	"fmt"

	"github.com/iflow-pos/iflow/internal/store"
)

// Decode maps raw documents to debts with defaults filled in.
func Decode(docs []store.Document) ([]Debt, error) {
	out := make([]Debt, 0, len(docs))
	for _, doc := range docs {
		var d Debt
		if err := json.Unmarshal(doc.Data, &d); err != nil {
			return nil, fmt.Errorf("debts: decode %s: %w", doc.ID, err)
		}
		if d.ID == "" {
			d.ID = doc.ID
		}
		if d.Status == "" {
			d.Status = StatusPending
		}
		out = append(out, d)
	}
	return out, nil
}
