package sales

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
)

type memStore struct {
	docs    map[string]map[string]json.RawMessage
	batches [][]store.Op
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string]json.RawMessage)}
}

func (m *memStore) put(t *testing.T, collection, docID string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[string]json.RawMessage)
	}
	m.docs[collection][docID] = data
}

func (m *memStore) Get(ctx context.Context, account, collection, docID string) (store.Document, error) {
	data, ok := m.docs[collection][docID]
	if !ok {
		return store.Document{}, store.ErrDocNotFound
	}
	return store.Document{ID: docID, Data: data}, nil
}

func (m *memStore) List(ctx context.Context, account, collection string) ([]store.Document, error) {
	var out []store.Document
	for id, data := range m.docs[collection] {
		out = append(out, store.Document{ID: id, Data: data})
	}
	return out, nil
}

func (m *memStore) BatchWrite(ctx context.Context, account string, ops []store.Op) error {
	m.batches = append(m.batches, ops)
	for _, op := range ops {
		if m.docs[op.Collection] == nil {
			m.docs[op.Collection] = make(map[string]json.RawMessage)
		}
		switch op.Kind {
		case store.OpSet:
			m.docs[op.Collection][op.DocID] = op.Data
		case store.OpDelete:
			delete(m.docs[op.Collection], op.DocID)
		}
	}
	return nil
}

type fixedRate float64

func (r fixedRate) ExchangeRate(ctx context.Context, account string) (float64, error) {
	return float64(r), nil
}

func authedCtx() context.Context {
	return shared.ContextWithIdentity(context.Background(), shared.Identity{ID: "acc-1", Email: "a@b.c"})
}

func (m *memStore) summary(t *testing.T) capital.Summary {
	t.Helper()
	data, ok := m.docs[store.CollCapital][store.SingletonDocID]
	if !ok {
		return capital.Summary{}
	}
	var sum capital.Summary
	require.NoError(t, json.Unmarshal(data, &sum))
	return sum
}

func TestCheckoutDecrementsStockAndCreditsWallet(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 2, CostUSD: 300})
	svc := NewService(ms, fixedRate(1000))

	sale, err := svc.Checkout(authedCtx(), CheckoutInput{
		Items:    []CheckoutItem{{StockID: "item-1", Quantity: 1, SalePriceUSD: 400}},
		Payments: map[string]float64{capital.WalletUSD: 400},
	})
	require.NoError(t, err)
	require.InDelta(t, 400.0, sale.TotalUSD, capital.Tolerance)
	require.True(t, sale.Settled())

	var remaining stock.Item
	require.NoError(t, json.Unmarshal(ms.docs[store.CollStock]["item-1"], &remaining))
	require.Equal(t, 1, remaining.Quantity)

	sum := ms.summary(t)
	require.InDelta(t, 400.0, sum.USD, capital.Tolerance)
	require.InDelta(t, 0.0, sum.ClientDebt, capital.Tolerance)

	// Stock decrement, sale, capital summary and history land in one batch.
	require.Len(t, ms.batches, 1)
	require.Len(t, ms.docs[store.CollCapitalHistory], 1)
}

func TestCheckoutPesoPaymentConvertsAtRate(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 50})
	svc := NewService(ms, fixedRate(1000))

	_, err := svc.Checkout(authedCtx(), CheckoutInput{
		Items:    []CheckoutItem{{StockID: "item-1", SalePriceUSD: 100}},
		Payments: map[string]float64{capital.WalletARS: 100},
	})
	require.NoError(t, err)
	require.InDelta(t, 100000.0, ms.summary(t).ARS, capital.Tolerance)
}

func TestCheckoutLastUnitRemovesItem(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 50})
	svc := NewService(ms, fixedRate(1000))

	_, err := svc.Checkout(authedCtx(), CheckoutInput{
		Items:    []CheckoutItem{{StockID: "item-1", SalePriceUSD: 80}},
		Payments: map[string]float64{capital.WalletUSD: 80},
	})
	require.NoError(t, err)
	_, ok := ms.docs[store.CollStock]["item-1"]
	require.False(t, ok)
}

func TestCheckoutInsufficientStockWritesNothing(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 50})
	svc := NewService(ms, fixedRate(1000))

	_, err := svc.Checkout(authedCtx(), CheckoutInput{
		Items:    []CheckoutItem{{StockID: "item-1", Quantity: 3, SalePriceUSD: 80}},
		Payments: map[string]float64{capital.WalletUSD: 240},
	})
	require.ErrorIs(t, err, stock.ErrInsufficientStock)
	require.Empty(t, ms.batches)
}

func TestCheckoutOverpaidRejected(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 50})
	svc := NewService(ms, fixedRate(1000))

	_, err := svc.Checkout(authedCtx(), CheckoutInput{
		Items:    []CheckoutItem{{StockID: "item-1", SalePriceUSD: 100}},
		Payments: map[string]float64{capital.WalletUSD: 150},
	})
	require.ErrorIs(t, err, ErrOverpaid)
}

func TestCheckoutUnpaidRequiresClient(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 50})
	svc := NewService(ms, fixedRate(1000))

	_, err := svc.Checkout(authedCtx(), CheckoutInput{
		Items:    []CheckoutItem{{StockID: "item-1", SalePriceUSD: 100}},
		Payments: map[string]float64{capital.WalletUSD: 40},
	})
	require.Error(t, err)
}

func TestCheckoutPartialPaymentRaisesClientDebt(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 200})
	svc := NewService(ms, fixedRate(1000))

	sale, err := svc.Checkout(authedCtx(), CheckoutInput{
		ClientID: "client-1",
		Items:    []CheckoutItem{{StockID: "item-1", SalePriceUSD: 500}},
		Payments: map[string]float64{capital.WalletUSD: 300},
	})
	require.NoError(t, err)
	require.InDelta(t, 200.0, sale.Outstanding(), capital.Tolerance)
	require.False(t, sale.Settled())
	require.InDelta(t, 200.0, ms.summary(t).ClientDebt, capital.Tolerance)
}

func TestSettleClearsOutstandingWithinTolerance(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 200})
	svc := NewService(ms, fixedRate(1000))

	sale, err := svc.Checkout(authedCtx(), CheckoutInput{
		ClientID: "client-1",
		Items:    []CheckoutItem{{StockID: "item-1", SalePriceUSD: 500}},
		Payments: map[string]float64{capital.WalletUSD: 300},
	})
	require.NoError(t, err)

	settled, err := svc.Settle(authedCtx(), SettleInput{
		SaleID:    sale.ID,
		AmountUSD: 200,
		Wallet:    capital.WalletUSD,
	})
	require.NoError(t, err)
	require.True(t, settled.Settled())

	sum := ms.summary(t)
	require.InDelta(t, 500.0, sum.USD, capital.Tolerance)
	require.InDelta(t, 0.0, sum.ClientDebt, capital.Tolerance)
}

func TestSettleOverSettlementRejected(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 200})
	svc := NewService(ms, fixedRate(1000))

	sale, err := svc.Checkout(authedCtx(), CheckoutInput{
		ClientID: "client-1",
		Items:    []CheckoutItem{{StockID: "item-1", SalePriceUSD: 500}},
		Payments: map[string]float64{capital.WalletUSD: 300},
	})
	require.NoError(t, err)

	_, err = svc.Settle(authedCtx(), SettleInput{
		SaleID:    sale.ID,
		AmountUSD: 250,
		Wallet:    capital.WalletUSD,
	})
	require.ErrorIs(t, err, ErrOverSettlement)
}

func TestCheckoutTradeInEntersStockAtCreditedValue(t *testing.T) {
	ms := newMemStore()
	ms.put(t, store.CollStock, "item-1", stock.Item{ID: "item-1", Category: "Celulares", Quantity: 1, CostUSD: 300})
	svc := NewService(ms, fixedRate(1000))

	sale, err := svc.Checkout(authedCtx(), CheckoutInput{
		Items:    []CheckoutItem{{StockID: "item-1", SalePriceUSD: 500}},
		Payments: map[string]float64{capital.WalletUSD: 350},
		TradeIn:  &TradeIn{Category: "Celulares", Serial: "XY-1", ValueUSD: 150},
	})
	require.NoError(t, err)
	require.True(t, sale.Settled())

	items, err := stock.Decode(mustList(t, ms, store.CollStock))
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "XY-1", items[0].Serial)
	require.InDelta(t, 150.0, items[0].CostUSD, capital.Tolerance)
}

func mustList(t *testing.T, ms *memStore, collection string) []store.Document {
	t.Helper()
	docs, err := ms.List(context.Background(), "acc-1", collection)
	require.NoError(t, err)
	return docs
}

func TestCheckoutRequiresIdentity(t *testing.T) {
	svc := NewService(newMemStore(), fixedRate(1000))
	_, err := svc.Checkout(context.Background(), CheckoutInput{
		Items: []CheckoutItem{{StockID: "x", SalePriceUSD: 1}},
	})
	require.ErrorIs(t, err, shared.ErrNoIdentity)
}
