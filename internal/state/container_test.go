package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/stock"
)

func TestInitialShape(t *testing.T) {
	c := NewContainer()
	snap := c.Read()
	require.True(t, snap.IsDataLoading)
	require.NotNil(t, snap.Stock)
	require.Empty(t, snap.Stock)
	require.NotNil(t, snap.Categories)
	require.Empty(t, snap.CapitalHistory)
}

func TestMergeNotifiesInOrder(t *testing.T) {
	c := NewContainer()
	var seen []float64
	c.Subscribe(func(s AppState) {
		seen = append(seen, s.Capital.USD)
	})

	c.Merge(Partial{Capital: &capital.Summary{USD: 10}})
	c.Merge(Partial{Capital: &capital.Summary{USD: 20}})

	require.Equal(t, []float64{10, 20}, seen)
	require.Equal(t, 20.0, c.Read().Capital.USD)
}

func TestMergeLeavesUnsetFieldsUntouched(t *testing.T) {
	c := NewContainer()
	items := []stock.Item{{ID: "a", Quantity: 1}}
	c.Merge(Partial{Stock: &items})
	c.Merge(Partial{Capital: &capital.Summary{ARS: 5}})

	snap := c.Read()
	require.Len(t, snap.Stock, 1)
	require.Equal(t, 5.0, snap.Capital.ARS)
	require.True(t, snap.IsDataLoading)
}

func TestReentrantMergeIsBatched(t *testing.T) {
	c := NewContainer()
	var notifications []float64
	first := true
	c.Subscribe(func(s AppState) {
		notifications = append(notifications, s.Capital.USD)
		if first {
			first = false
			c.Merge(Partial{Capital: &capital.Summary{USD: 99}})
		}
	})

	c.Merge(Partial{Capital: &capital.Summary{USD: 1}})

	// The inner merge lands in a second pass, never recursively.
	require.Equal(t, []float64{1, 99}, notifications)
	require.Equal(t, 99.0, c.Read().Capital.USD)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	c := NewContainer()
	calls := 0
	h := c.Subscribe(func(AppState) { calls++ })
	c.Merge(Partial{IsDataLoading: Bool(false)})
	c.Unsubscribe(h)
	c.Merge(Partial{IsDataLoading: Bool(true)})
	require.Equal(t, 1, calls)
}

func TestResetRestoresInitialShape(t *testing.T) {
	c := NewContainer()
	items := []stock.Item{{ID: "a"}}
	c.Merge(Partial{Stock: &items, IsDataLoading: Bool(false)})

	var last AppState
	c.Subscribe(func(s AppState) { last = s })
	c.Reset()

	require.True(t, last.IsDataLoading)
	require.Empty(t, last.Stock)
	require.Equal(t, Initial(), c.Read())
}
