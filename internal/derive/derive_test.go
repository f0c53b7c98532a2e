package derive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/sales"
	"github.com/iflow-pos/iflow/internal/stock"
)

func TestCapitalTotalMixedWallets(t *testing.T) {
	sum := capital.Summary{ARS: 100000, MP: 0, USD: 10, USDT: 0}
	total := CapitalTotal(sum, nil, nil, 1000)
	require.InDelta(t, 110.00, total, capital.Tolerance)
}

func TestCapitalTotalIncludesStockAndDebts(t *testing.T) {
	sum := capital.Summary{USD: 100, ClientDebt: 50}
	items := []stock.Item{
		{Quantity: 2, CostUSD: 30},
		{Quantity: 1, CostUSD: 10},
	}
	debtList := []debts.Debt{
		{AmountUSD: 40, Status: debts.StatusPending},
		{AmountUSD: 99, Status: debts.StatusSettled},
	}
	// 100 + 50 + (2*30+10) - 40
	total := CapitalTotal(sum, items, debtList, 1000)
	require.InDelta(t, 180.00, total, capital.Tolerance)
}

func TestCapitalTotalZeroRateSkipsPesos(t *testing.T) {
	sum := capital.Summary{ARS: 123456, USD: 5}
	require.InDelta(t, 5.0, CapitalTotal(sum, nil, nil, 0), capital.Tolerance)
}

func TestOutstandingBalance(t *testing.T) {
	sale := sales.Sale{
		TotalUSD: 500,
		Payments: map[string]float64{"usd": 300},
	}
	require.InDelta(t, 200.0, OutstandingBalance(sale), capital.Tolerance)
	require.False(t, IsSettled(sale))

	sale.Settlements = append(sale.Settlements, sales.Settlement{AmountUSD: 200, Wallet: "ars"})
	require.InDelta(t, 0.0, OutstandingBalance(sale), capital.Tolerance)
	require.True(t, IsSettled(sale))
}

func TestNetProfitAfterCommission(t *testing.T) {
	sale := sales.Sale{
		Items: []sales.LineItem{
			{Quantity: 2, CostUSD: 100, SalePriceUSD: 150},
			{Quantity: 0, CostUSD: 10, SalePriceUSD: 25},
		},
		CommissionUSD: 15,
	}
	// 2*(150-100) + 1*(25-10) - 15; zero quantity counts as one unit.
	require.InDelta(t, 100.0, NetProfit(sale), capital.Tolerance)
}

func TestClientReceivableSkipsSettledSales(t *testing.T) {
	list := []sales.Sale{
		{TotalUSD: 100, Payments: map[string]float64{"usd": 100}},
		{TotalUSD: 200, Payments: map[string]float64{"usd": 50}},
		{TotalUSD: 80},
	}
	require.InDelta(t, 230.0, ClientReceivable(list), capital.Tolerance)
}
