package clients

import (
	"encoding/json"
	"fmt"

	"github.com/iflow-pos/iflow/internal/store"
)

// Decode maps raw documents to clients.
func Decode(docs []store.Document) ([]Client, error) {
	out := make([]Client, 0, len(docs))
	for _, doc := range docs {
		var c Client
		if err := json.Unmarshal(doc.Data, &c); err != nil {
			return nil, fmt.Errorf("clients: decode %s: %w", doc.ID, err)
		}
		if c.ID == "" {
			c.ID = doc.ID
		}
		out = append(out, c)
	}
	return out, nil
}
