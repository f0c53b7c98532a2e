package capital

// Total computes the account's total capital in USD: peso wallets converted
// at the exchange rate, dollar wallets as-is, plus stock valued at cost and
// the client receivable, minus the pending provider payable. Field order is
// irrelevant; every input defaults to zero.
func Total(sum Summary, stockValueUSD, providerPendingUSD, exchangeRate float64) float64 {
	total := sum.USD + sum.USDT
	if exchangeRate > 0 {
		total += (sum.ARS + sum.MP) / exchangeRate
	}
	total += stockValueUSD
	total += sum.ClientDebt
	total -= providerPendingUSD
	return total
}
