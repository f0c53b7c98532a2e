package profile

import (
	"encoding/json"
	"fmt"

	"github.com/iflow-pos/iflow/internal/store"
)

// DecodeOver unmarshals the profile document over the supplied defaults, so
// fields absent from the stored document keep their default values.
func DecodeOver(doc store.Document, defaults Profile) (Profile, error) {
	p := defaults
	if len(doc.Data) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(doc.Data, &p); err != nil {
		return defaults, fmt.Errorf("profile: decode: %w", err)
	}
	if p.ExchangeRate <= 0 {
		p.ExchangeRate = defaults.ExchangeRate
	}
	if p.SubscriptionStatus == "" {
		p.SubscriptionStatus = defaults.SubscriptionStatus
	}
	return p, nil
}
