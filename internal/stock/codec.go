package stock

import (
	"encoding/json"
	"fmt"

	"github.com/iflow-pos/iflow/internal/store"
)

// Decode maps raw documents to stock items with defaults filled in.
func Decode(docs []store.Document) ([]Item, error) {
	items := make([]Item, 0, len(docs))
	for _, doc := range docs {
		var it Item
		if err := json.Unmarshal(doc.Data, &it); err != nil {
			return nil, fmt.Errorf("stock: decode %s: %w", doc.ID, err)
		}
		if it.ID == "" {
			it.ID = doc.ID
		}
		if it.Status == "" {
			it.Status = StatusAvailable
		}
		if it.Attributes == nil {
			it.Attributes = map[string]string{}
		}
		items = append(items, it)
	}
	return items, nil
}
