package capital

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/iflow-pos/iflow/internal/store"
)

// DecodeSummary unmarshals the capital document. Missing fields default to
// zero; an absent document is a zero summary.
func DecodeSummary(doc store.Document) (Summary, error) {
	var s Summary
	if len(doc.Data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(doc.Data, &s); err != nil {
		return Summary{}, fmt.Errorf("capital: decode summary: %w", err)
	}
	return s, nil
}

// DecodeHistory maps raw documents to history entries ordered by timestamp.
func DecodeHistory(docs []store.Document) ([]HistoryEntry, error) {
	entries := make([]HistoryEntry, 0, len(docs))
	for _, doc := range docs {
		var e HistoryEntry
		if err := json.Unmarshal(doc.Data, &e); err != nil {
			return nil, fmt.Errorf("capital: decode history %s: %w", doc.ID, err)
		}
		if e.ID == "" {
			e.ID = doc.ID
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
	return entries, nil
}
