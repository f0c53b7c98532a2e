package sales

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
)

var (
	// ErrOverSettlement indicates a payment exceeding the outstanding balance.
	ErrOverSettlement = errors.New("sales: settlement exceeds outstanding balance")
	// ErrOverpaid indicates checkout payments above the sale total.
	ErrOverpaid = errors.New("sales: payments exceed sale total")
)

// StorePort abstracts document store usage for the service.
type StorePort interface {
	Get(ctx context.Context, account, collection, docID string) (store.Document, error)
	List(ctx context.Context, account, collection string) ([]store.Document, error)
	BatchWrite(ctx context.Context, account string, ops []store.Op) error
}

// RateProvider resolves the account's current exchange rate.
type RateProvider interface {
	ExchangeRate(ctx context.Context, account string) (float64, error)
}

// Service handles checkout and debt settlement.
type Service struct {
	store StorePort
	rates RateProvider
}

// NewService builds Service.
func NewService(st StorePort, rates RateProvider) *Service {
	return &Service{store: st, rates: rates}
}

// List returns the account's sales ordered by date.
func (s *Service) List(ctx context.Context) ([]Sale, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, id.ID, store.CollSales)
	if err != nil {
		return nil, err
	}
	return Decode(docs)
}

// CheckoutItem selects stock and the agreed price for one line.
type CheckoutItem struct {
	StockID      string
	Quantity     int
	SalePriceUSD float64
}

// CheckoutInput carries everything recorded at checkout. Payment amounts
// are USD equivalents keyed by wallet.
type CheckoutInput struct {
	ClientID      string
	Items         []CheckoutItem
	Payments      map[string]float64
	TradeIn       *TradeIn
	CommissionUSD float64
	Salesperson   string
}

// Checkout performs the sale atomically: stock decrements, the sale
// document, wallet credits, the client receivable and the paired capital
// history entry all land in one batched write.
func (s *Service) Checkout(ctx context.Context, input CheckoutInput) (Sale, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Sale{}, err
	}
	if len(input.Items) == 0 {
		return Sale{}, errors.New("sales: at least one item required")
	}
	for wallet := range input.Payments {
		if wallet != capital.WalletDebt && !capital.IsWallet(wallet) {
			return Sale{}, fmt.Errorf("sales: unknown wallet %q", wallet)
		}
	}

	stockDocs, err := s.store.List(ctx, id.ID, store.CollStock)
	if err != nil {
		return Sale{}, err
	}
	items, err := stock.Decode(stockDocs)
	if err != nil {
		return Sale{}, err
	}
	byID := make(map[string]stock.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	sale := Sale{
		ID:            uuid.NewString(),
		ClientID:      input.ClientID,
		Date:          time.Now(),
		Payments:      input.Payments,
		TradeIn:       input.TradeIn,
		CommissionUSD: input.CommissionUSD,
		Salesperson:   input.Salesperson,
	}
	if sale.Payments == nil {
		sale.Payments = map[string]float64{}
	}

	var ops []store.Op
	remaining := make(map[string]stock.Item, len(byID))
	for k, v := range byID {
		remaining[k] = v
	}
	for _, line := range input.Items {
		item, ok := byID[line.StockID]
		if !ok {
			return Sale{}, fmt.Errorf("sales: stock item %s: %w", line.StockID, shared.ErrNotFound)
		}
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		op, updated, err := stock.DecrementOp(remaining[item.ID], qty)
		if err != nil {
			return Sale{}, err
		}
		remaining[item.ID] = updated
		ops = append(ops, op)
		sale.Items = append(sale.Items, LineItem{
			StockID:      item.ID,
			Category:     item.Category,
			Serial:       item.Serial,
			Attributes:   item.Attributes,
			Quantity:     qty,
			CostUSD:      item.CostUSD,
			SalePriceUSD: line.SalePriceUSD,
		})
		sale.TotalUSD += float64(qty) * line.SalePriceUSD
	}

	outstanding := sale.Outstanding()
	if outstanding < -capital.Tolerance {
		return Sale{}, ErrOverpaid
	}
	if outstanding > capital.Tolerance && sale.ClientID == "" {
		return Sale{}, errors.New("sales: unpaid balance requires a client")
	}

	// Trade-in enters stock at its credited value.
	if input.TradeIn != nil && input.TradeIn.ValueUSD > 0 {
		tradeID := uuid.NewString()
		tradeItem := stock.Item{
			ID:         tradeID,
			Category:   input.TradeIn.Category,
			Serial:     input.TradeIn.Serial,
			Quantity:   1,
			CostUSD:    input.TradeIn.ValueUSD,
			Attributes: input.TradeIn.Attributes,
			Status:     stock.StatusAvailable,
			CreatedAt:  sale.Date,
		}
		if tradeItem.Category == "" {
			tradeItem.Category = "trade-in"
		}
		op, err := store.SetOp(store.CollStock, tradeID, tradeItem)
		if err != nil {
			return Sale{}, err
		}
		ops = append(ops, op)
		remaining[tradeID] = tradeItem
	}

	saleOp, err := store.SetOp(store.CollSales, sale.ID, sale)
	if err != nil {
		return Sale{}, err
	}
	ops = append(ops, saleOp)

	rate, err := s.rates.ExchangeRate(ctx, id.ID)
	if err != nil {
		return Sale{}, err
	}
	sum, err := s.summary(ctx, id.ID)
	if err != nil {
		return Sale{}, err
	}
	for wallet, amount := range sale.Payments {
		if wallet == capital.WalletDebt {
			continue
		}
		sum = sum.Add(wallet, walletAmount(wallet, amount, rate))
	}
	if outstanding > capital.Tolerance {
		sum.ClientDebt += outstanding
	}

	capOps, err := s.capitalOps(ctx, id.ID, sum, remaining, fmt.Sprintf("sale %s", sale.ID), rate)
	if err != nil {
		return Sale{}, err
	}
	ops = append(ops, capOps...)

	if err := s.store.BatchWrite(ctx, id.ID, ops); err != nil {
		return Sale{}, err
	}
	return sale, nil
}

// SettleInput records a payment against a sale's outstanding balance.
type SettleInput struct {
	SaleID    string
	AmountUSD float64
	Wallet    string
}

// Settle appends a settlement to the sale, credits the wallet and lowers
// the client receivable. The payment may not exceed the outstanding balance.
func (s *Service) Settle(ctx context.Context, input SettleInput) (Sale, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Sale{}, err
	}
	if input.AmountUSD <= 0 {
		return Sale{}, errors.New("sales: amount must be positive")
	}
	if !capital.IsWallet(input.Wallet) {
		return Sale{}, fmt.Errorf("sales: unknown wallet %q", input.Wallet)
	}

	doc, err := s.store.Get(ctx, id.ID, store.CollSales, input.SaleID)
	if err != nil {
		if errors.Is(err, store.ErrDocNotFound) {
			return Sale{}, shared.ErrNotFound
		}
		return Sale{}, err
	}
	decoded, err := Decode([]store.Document{doc})
	if err != nil {
		return Sale{}, err
	}
	sale := decoded[0]

	if input.AmountUSD > sale.Outstanding()+capital.Tolerance {
		return Sale{}, ErrOverSettlement
	}
	sale.Settlements = append(sale.Settlements, Settlement{
		ID:        uuid.NewString(),
		AmountUSD: input.AmountUSD,
		Wallet:    input.Wallet,
		Date:      time.Now(),
	})

	rate, err := s.rates.ExchangeRate(ctx, id.ID)
	if err != nil {
		return Sale{}, err
	}
	sum, err := s.summary(ctx, id.ID)
	if err != nil {
		return Sale{}, err
	}
	sum = sum.Add(input.Wallet, walletAmount(input.Wallet, input.AmountUSD, rate))
	sum.ClientDebt -= input.AmountUSD
	if sum.ClientDebt < 0 && sum.ClientDebt > -capital.Tolerance {
		sum.ClientDebt = 0
	}

	saleOp, err := store.SetOp(store.CollSales, sale.ID, sale)
	if err != nil {
		return Sale{}, err
	}
	stockDocs, err := s.store.List(ctx, id.ID, store.CollStock)
	if err != nil {
		return Sale{}, err
	}
	items, err := stock.Decode(stockDocs)
	if err != nil {
		return Sale{}, err
	}
	byID := make(map[string]stock.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	capOps, err := s.capitalOps(ctx, id.ID, sum, byID, fmt.Sprintf("settlement on sale %s", sale.ID), rate)
	if err != nil {
		return Sale{}, err
	}

	ops := append([]store.Op{saleOp}, capOps...)
	if err := s.store.BatchWrite(ctx, id.ID, ops); err != nil {
		return Sale{}, err
	}
	return sale, nil
}

func (s *Service) summary(ctx context.Context, account string) (capital.Summary, error) {
	doc, err := s.store.Get(ctx, account, store.CollCapital, store.SingletonDocID)
	if err != nil {
		if errors.Is(err, store.ErrDocNotFound) {
			return capital.Summary{}, nil
		}
		return capital.Summary{}, err
	}
	return capital.DecodeSummary(doc)
}

func (s *Service) capitalOps(ctx context.Context, account string, sum capital.Summary, stockByID map[string]stock.Item, reason string, rate float64) ([]store.Op, error) {
	items := make([]stock.Item, 0, len(stockByID))
	for _, it := range stockByID {
		items = append(items, it)
	}
	debtDocs, err := s.store.List(ctx, account, store.CollDebts)
	if err != nil {
		return nil, err
	}
	debtList, err := debts.Decode(debtDocs)
	if err != nil {
		return nil, err
	}
	total := capital.Total(sum, stock.ValueAtCost(items), debts.PendingTotal(debtList), rate)
	return capital.WriteOps(sum, reason, total, time.Now())
}

// walletAmount converts a USD equivalent into the wallet's own currency.
func walletAmount(wallet string, usd, rate float64) float64 {
	if wallet == capital.WalletARS || wallet == capital.WalletMP {
		return usd * rate
	}
	return usd
}
