package capital

import "time"

// Tolerance treats near-zero balances as settled, guarding against binary
// floating-point rounding.
const Tolerance = 0.01

// Wallet names the capital buckets. Payments recorded against WalletDebt
// stay outstanding instead of entering a bucket.
const (
	WalletARS  = "ars"
	WalletMP   = "mp"
	WalletUSD  = "usd"
	WalletUSDT = "usdt"
	WalletDebt = "debt"
)

// Wallets lists the real capital buckets in display order.
var Wallets = []string{WalletARS, WalletMP, WalletUSD, WalletUSDT}

// IsWallet reports whether name is a real capital bucket.
func IsWallet(name string) bool {
	for _, w := range Wallets {
		if w == name {
			return true
		}
	}
	return false
}

// Summary is the singleton per-account capital document: the four wallet
// balances plus the receivable/payable aggregates. ARS and MP are held in
// pesos, USD and USDT in dollars.
type Summary struct {
	ARS          float64 `json:"ars"`
	MP           float64 `json:"mp"`
	USD          float64 `json:"usd"`
	USDT         float64 `json:"usdt"`
	ClientDebt   float64 `json:"clientDebt"`
	ProviderDebt float64 `json:"providerDebt"`
}

// Get returns the balance of the named wallet.
func (s Summary) Get(wallet string) float64 {
	switch wallet {
	case WalletARS:
		return s.ARS
	case WalletMP:
		return s.MP
	case WalletUSD:
		return s.USD
	case WalletUSDT:
		return s.USDT
	}
	return 0
}

// Add returns a copy with amount added to the named wallet.
func (s Summary) Add(wallet string, amount float64) Summary {
	switch wallet {
	case WalletARS:
		s.ARS += amount
	case WalletMP:
		s.MP += amount
	case WalletUSD:
		s.USD += amount
	case WalletUSDT:
		s.USDT += amount
	}
	return s
}

// HistoryEntry is one append-only audit record: every business write to the
// capital summary produces exactly one entry with the resulting total.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason"`
	TotalUSD  float64   `json:"totalUSD"`
}
