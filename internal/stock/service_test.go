package stock

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/store"
)

type memStore struct {
	docs map[string]map[string]json.RawMessage
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string]map[string]json.RawMessage)}
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

func authedCtx() context.Context {
	return shared.ContextWithIdentity(context.Background(), shared.Identity{ID: "acc-1", Email: "a@b.c"})
}

func TestAddDefaultsStatusAndAttributes(t *testing.T) {
	svc := NewService(newMemStore())
	item, err := svc.Add(authedCtx(), AddInput{Category: "Celulares", Quantity: 2, CostUSD: 100})
	require.NoError(t, err)
	require.NotEmpty(t, item.ID)
	require.Equal(t, StatusAvailable, item.Status)
	require.NotNil(t, item.Attributes)
}

func TestAddValidation(t *testing.T) {
	svc := NewService(newMemStore())
	_, err := svc.Add(authedCtx(), AddInput{Quantity: 1})
	require.Error(t, err)
	_, err = svc.Add(authedCtx(), AddInput{Category: "x", Quantity: 0})
	require.Error(t, err)
	_, err = svc.Add(authedCtx(), AddInput{Category: "x", Quantity: 1, CostUSD: -5})
	require.Error(t, err)
}

func TestUpdatePreservesCreatedAt(t *testing.T) {
	ms := newMemStore()
	svc := NewService(ms)
	item, err := svc.Add(authedCtx(), AddInput{Category: "Celulares", Quantity: 1, CostUSD: 100})
	require.NoError(t, err)

	item.CostUSD = 120
	updated, err := svc.Update(authedCtx(), Item{ID: item.ID, Category: item.Category, Quantity: 1, CostUSD: 120})
	require.NoError(t, err)
	require.Equal(t, item.CreatedAt.Unix(), updated.CreatedAt.Unix())
	require.Equal(t, StatusAvailable, updated.Status)
}

func TestDeleteRemovesItem(t *testing.T) {
	ms := newMemStore()
	svc := NewService(ms)
	item, err := svc.Add(authedCtx(), AddInput{Category: "Celulares", Quantity: 1, CostUSD: 100})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(authedCtx(), item.ID))
	items, err := svc.List(authedCtx())
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestDecrementOpReducesQuantity(t *testing.T) {
	op, updated, err := DecrementOp(Item{ID: "a", Quantity: 3, CostUSD: 10}, 2)
	require.NoError(t, err)
	require.Equal(t, store.OpSet, op.Kind)
	require.Equal(t, 1, updated.Quantity)
}

func TestDecrementOpLastUnitDeletes(t *testing.T) {
	op, updated, err := DecrementOp(Item{ID: "a", Quantity: 2}, 2)
	require.NoError(t, err)
	require.Equal(t, store.OpDelete, op.Kind)
	require.Equal(t, 0, updated.Quantity)
}

func TestDecrementOpNeverGoesNegative(t *testing.T) {
	_, _, err := DecrementOp(Item{ID: "a", Quantity: 1}, 2)
	require.ErrorIs(t, err, ErrInsufficientStock)
	_, _, err = DecrementOp(Item{ID: "a", Quantity: 1}, 0)
	require.Error(t, err)
}

func TestValueAtCost(t *testing.T) {
	items := []Item{
		{Quantity: 2, CostUSD: 30},
		{Quantity: 1, CostUSD: 15},
		{Quantity: 0, CostUSD: 99},
	}
	require.InDelta(t, 75.0, ValueAtCost(items), 0.001)
}

func TestValuationSumsAtCost(t *testing.T) {
	svc := NewService(newMemStore())

	_, err := svc.Add(authedCtx(), AddInput{Category: "Celulares", Quantity: 2, CostUSD: 30})
	require.NoError(t, err)
	_, err = svc.Add(authedCtx(), AddInput{Category: "Accesorios", Quantity: 1, CostUSD: 15})
	require.NoError(t, err)

	value, err := svc.Valuation(authedCtx())
	require.NoError(t, err)
	require.InDelta(t, 75.0, value, 0.001)
}
