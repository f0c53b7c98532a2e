package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iflow-pos/iflow/internal/capital"
	jobmetrics "github.com/iflow-pos/iflow/internal/jobs"
	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
)

type memStore struct {
	accounts []string
	docs     map[string]map[string]map[string]json.RawMessage
}

func newMemStore(accounts ...string) *memStore {
	return &memStore{
		accounts: accounts,
		docs:     make(map[string]map[string]map[string]json.RawMessage),
	}
}

func (m *memStore) put(t *testing.T, account, collection, docID string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	if m.docs[account] == nil {
		m.docs[account] = make(map[string]map[string]json.RawMessage)
	}
	if m.docs[account][collection] == nil {
		m.docs[account][collection] = make(map[string]json.RawMessage)
	}
	m.docs[account][collection][docID] = data
}

func (m *memStore) ListAccounts(ctx context.Context) ([]string, error) {
	return m.accounts, nil
}

func (m *memStore) Get(ctx context.Context, account, collection, docID string) (store.Document, error) {
	data, ok := m.docs[account][collection][docID]
	if !ok {
		return store.Document{}, store.ErrDocNotFound
	}
	return store.Document{ID: docID, Data: data}, nil
}

func (m *memStore) List(ctx context.Context, account, collection string) ([]store.Document, error) {
	var out []store.Document
	for id, data := range m.docs[account][collection] {
		out = append(out, store.Document{ID: id, Data: data})
	}
	return out, nil
}

func (m *memStore) BatchWrite(ctx context.Context, account string, ops []store.Op) error {
	for _, op := range ops {
		if m.docs[account] == nil {
			m.docs[account] = make(map[string]map[string]json.RawMessage)
		}
		if m.docs[account][op.Collection] == nil {
			m.docs[account][op.Collection] = make(map[string]json.RawMessage)
		}
		switch op.Kind {
		case store.OpSet:
			m.docs[account][op.Collection][op.DocID] = op.Data
		case store.OpDelete:
			delete(m.docs[account][op.Collection], op.DocID)
		}
	}
	return nil
}

func testRunner(ms *memStore) *Runner {
	return NewRunner(RunnerConfig{
		Store:       ms,
		Logger:      slog.Default(),
		Metrics:     jobmetrics.NewMetrics(prometheus.NewRegistry()),
		DefaultRate: 1000,
	})
}

func (m *memStore) profile(t *testing.T, account string) profile.Profile {
	t.Helper()
	var p profile.Profile
	require.NoError(t, json.Unmarshal(m.docs[account][store.CollProfile][store.SingletonDocID], &p))
	return p
}

func TestSubscriptionSweepExpiresLapsedAccounts(t *testing.T) {
	ms := newMemStore("lapsed", "current", "fresh")
	ms.put(t, "lapsed", store.CollProfile, store.SingletonDocID, profile.Profile{
		BusinessName:       "Lapsed",
		ExchangeRate:       1000,
		SubscriptionStatus: profile.SubscriptionActive,
		PaidThrough:        time.Now().Add(-24 * time.Hour),
	})
	ms.put(t, "current", store.CollProfile, store.SingletonDocID, profile.Profile{
		BusinessName:       "Current",
		ExchangeRate:       1000,
		SubscriptionStatus: profile.SubscriptionActive,
		PaidThrough:        time.Now().Add(24 * time.Hour),
	})

	task, err := NewSubscriptionSweepTask(time.Now())
	require.NoError(t, err)
	require.NoError(t, testRunner(ms).HandleSubscriptionSweep(context.Background(), task))

	require.Equal(t, profile.SubscriptionExpired, ms.profile(t, "lapsed").SubscriptionStatus)
	require.Equal(t, profile.SubscriptionActive, ms.profile(t, "current").SubscriptionStatus)
	// Accounts without a profile document are skipped.
	require.Empty(t, ms.docs["fresh"])
}

func TestSubscriptionSweepIgnoresZeroPaidThrough(t *testing.T) {
	ms := newMemStore("pending")
	ms.put(t, "pending", store.CollProfile, store.SingletonDocID, profile.Profile{
		ExchangeRate:       1000,
		SubscriptionStatus: profile.SubscriptionPendingPayment,
	})

	task, err := NewSubscriptionSweepTask(time.Now())
	require.NoError(t, err)
	require.NoError(t, testRunner(ms).HandleSubscriptionSweep(context.Background(), task))

	require.Equal(t, profile.SubscriptionPendingPayment, ms.profile(t, "pending").SubscriptionStatus)
}

func TestCapitalSnapshotAppendsHistory(t *testing.T) {
	ms := newMemStore("acc-1")
	ms.put(t, "acc-1", store.CollProfile, store.SingletonDocID, profile.Profile{ExchangeRate: 1000})
	ms.put(t, "acc-1", store.CollCapital, store.SingletonDocID, capital.Summary{ARS: 100000, USD: 10})
	ms.put(t, "acc-1", store.CollStock, "item-1", stock.Item{ID: "item-1", Quantity: 2, CostUSD: 25})

	task, err := NewCapitalSnapshotTask(time.Now())
	require.NoError(t, err)
	require.NoError(t, testRunner(ms).HandleCapitalSnapshot(context.Background(), task))

	history := ms.docs["acc-1"][store.CollCapitalHistory]
	require.Len(t, history, 1)
	for _, raw := range history {
		var entry capital.HistoryEntry
		require.NoError(t, json.Unmarshal(raw, &entry))
		require.Equal(t, "nightly snapshot", entry.Reason)
		// (100000/1000) + 10 + 2*25
		require.InDelta(t, 160.0, entry.TotalUSD, capital.Tolerance)
	}
}
