package livesync

import (
	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/categories"
	"github.com/iflow-pos/iflow/internal/clients"
	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/sales"
	"github.com/iflow-pos/iflow/internal/state"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
)

// collection binds a store collection to its snapshot normalizer. The
// normalizer maps raw documents into the container's shape; empty builds
// the default used when a subscription errors, so downstream consumers
// never see missing fields.
type collection struct {
	key       string
	normalize func(docs []store.Document, defaultRate float64) (state.Partial, error)
	empty     func(defaultRate float64) state.Partial
}

func collections() []collection {
	return []collection{
		{
			key: store.CollProfile,
			normalize: func(docs []store.Document, rate float64) (state.Partial, error) {
				defaults := profile.Defaults(rate)
				if len(docs) == 0 {
					return state.Partial{Profile: &defaults}, nil
				}
				p, err := profile.DecodeOver(singleton(docs), defaults)
				if err != nil {
					return state.Partial{}, err
				}
				return state.Partial{Profile: &p}, nil
			},
			empty: func(rate float64) state.Partial {
				defaults := profile.Defaults(rate)
				return state.Partial{Profile: &defaults}
			},
		},
		{
			key: store.CollCapital,
			normalize: func(docs []store.Document, _ float64) (state.Partial, error) {
				var sum capital.Summary
				if len(docs) > 0 {
					var err error
					if sum, err = capital.DecodeSummary(singleton(docs)); err != nil {
						return state.Partial{}, err
					}
				}
				return state.Partial{Capital: &sum}, nil
			},
			empty: func(_ float64) state.Partial {
				return state.Partial{Capital: &capital.Summary{}}
			},
		},
		{
			key: store.CollStock,
			normalize: func(docs []store.Document, _ float64) (state.Partial, error) {
				items, err := stock.Decode(docs)
				if err != nil {
					return state.Partial{}, err
				}
				return state.Partial{Stock: &items}, nil
			},
			empty: func(_ float64) state.Partial {
				items := []stock.Item{}
				return state.Partial{Stock: &items}
			},
		},
		{
			key: store.CollSales,
			normalize: func(docs []store.Document, _ float64) (state.Partial, error) {
				list, err := sales.Decode(docs)
				if err != nil {
					return state.Partial{}, err
				}
				return state.Partial{Sales: &list}, nil
			},
			empty: func(_ float64) state.Partial {
				list := []sales.Sale{}
				return state.Partial{Sales: &list}
			},
		},
		{
			key: store.CollClients,
			normalize: func(docs []store.Document, _ float64) (state.Partial, error) {
				list, err := clients.Decode(docs)
				if err != nil {
					return state.Partial{}, err
				}
				return state.Partial{Clients: &list}, nil
			},
			empty: func(_ float64) state.Partial {
				list := []clients.Client{}
				return state.Partial{Clients: &list}
			},
		},
		{
			key: store.CollCategories,
			normalize: func(docs []store.Document, _ float64) (state.Partial, error) {
				cats, err := categories.Decode(docs)
				if err != nil {
					return state.Partial{}, err
				}
				return state.Partial{Categories: &cats}, nil
			},
			empty: func(_ float64) state.Partial {
				cats := []categories.Category{}
				return state.Partial{Categories: &cats}
			},
		},
		{
			key: store.CollDebts,
			normalize: func(docs []store.Document, _ float64) (state.Partial, error) {
				list, err := debts.Decode(docs)
				if err != nil {
					return state.Partial{}, err
				}
				return state.Partial{Debts: &list}, nil
			},
			empty: func(_ float64) state.Partial {
				list := []debts.Debt{}
				return state.Partial{Debts: &list}
			},
		},
		{
			key: store.CollCapitalHistory,
			normalize: func(docs []store.Document, _ float64) (state.Partial, error) {
				entries, err := capital.DecodeHistory(docs)
				if err != nil {
					return state.Partial{}, err
				}
				return state.Partial{CapitalHistory: &entries}, nil
			},
			empty: func(_ float64) state.Partial {
				entries := []capital.HistoryEntry{}
				return state.Partial{CapitalHistory: &entries}
			},
		},
	}
}

// singleton picks the main document out of a single-document collection,
// tolerating strays by preferring the canonical id.
func singleton(docs []store.Document) store.Document {
	for _, doc := range docs {
		if doc.ID == store.SingletonDocID {
			return doc
		}
	}
	return docs[0]
}
