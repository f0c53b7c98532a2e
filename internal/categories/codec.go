package categories

import (
	"encoding/json"
	"fmt"

	"github.com/iflow-pos/iflow/internal/store"
)

// Decode maps raw documents to categories, filling defaults so downstream
// consumers never see nil attribute slices.
func Decode(docs []store.Document) ([]Category, error) {
	cats := make([]Category, 0, len(docs))
	for _, doc := range docs {
		var cat Category
		if err := json.Unmarshal(doc.Data, &cat); err != nil {
			return nil, fmt.Errorf("categories: decode %s: %w", doc.ID, err)
		}
		if cat.ID == "" {
			cat.ID = doc.ID
		}
		if cat.Attributes == nil {
			cat.Attributes = []Attribute{}
		}
		cats = append(cats, cat)
	}
	return cats, nil
}
