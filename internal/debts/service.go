package debts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
)

// ErrOverSettlement indicates a payment exceeding the outstanding balance.
var ErrOverSettlement = errors.New("debts: payment exceeds outstanding balance")

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

// Service handles provider debts and their settlements.
type Service struct {
	store StorePort
	rates RateProvider
}

// NewService builds Service.
func NewService(st StorePort, rates RateProvider) *Service {
	return &Service{store: st, rates: rates}
}

// List returns the account's provider debts.
func (s *Service) List(ctx context.Context) ([]Debt, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, id.ID, store.CollDebts)
	if err != nil {
		return nil, err
	}
	return Decode(docs)
}

// CreateInput carries a new provider debt.
type CreateInput struct {
	Debtor      string
	Description string
	AmountUSD   float64
}

// Create records a new pending debt and raises the provider payable, with
// the paired capital history entry in the same atomic write.
func (s *Service) Create(ctx context.Context, input CreateInput) (Debt, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Debt{}, err
	}
	if input.Debtor == "" {
		return Debt{}, errors.New("debts: debtor required")
	}
	if input.AmountUSD <= 0 {
		return Debt{}, errors.New("debts: amount must be positive")
	}
	debt := Debt{
		ID:          uuid.NewString(),
		Debtor:      input.Debtor,
		Description: input.Description,
		AmountUSD:   input.AmountUSD,
		Status:      StatusPending,
		CreatedAt:   time.Now(),
	}
	debtOp, err := store.SetOp(store.CollDebts, debt.ID, debt)
	if err != nil {
		return Debt{}, err
	}

	sum, list, err := s.context(ctx, id.ID)
	if err != nil {
		return Debt{}, err
	}
	sum.ProviderDebt += input.AmountUSD
	list = append(list, debt)

	capOps, err := s.capitalOps(ctx, id.ID, sum, list,
		fmt.Sprintf("provider debt to %s", input.Debtor))
	if err != nil {
		return Debt{}, err
	}
	if err := s.store.BatchWrite(ctx, id.ID, append([]store.Op{debtOp}, capOps...)); err != nil {
		return Debt{}, err
	}
	return debt, nil
}

// SettleInput records a payment against a pending debt.
type SettleInput struct {
	DebtID    string
	AmountUSD float64
	Wallet    string
}

// Settle pays part or all of a debt from the given wallet. The payment may
// not exceed the outstanding balance; a near-zero remainder settles the debt.
func (s *Service) Settle(ctx context.Context, input SettleInput) (Debt, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Debt{}, err
	}
	if input.AmountUSD <= 0 {
		return Debt{}, errors.New("debts: amount must be positive")
	}
	if !capital.IsWallet(input.Wallet) {
		return Debt{}, fmt.Errorf("debts: unknown wallet %q", input.Wallet)
	}

	sum, list, err := s.context(ctx, id.ID)
	if err != nil {
		return Debt{}, err
	}
	idx := -1
	for i, d := range list {
		if d.ID == input.DebtID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Debt{}, shared.ErrNotFound
	}
	debt := list[idx]
	if input.AmountUSD > debt.Outstanding()+capital.Tolerance {
		return Debt{}, ErrOverSettlement
	}

	debt.Payments = append(debt.Payments, Payment{
		ID:        uuid.NewString(),
		AmountUSD: input.AmountUSD,
		Wallet:    input.Wallet,
		Date:      time.Now(),
	})
	if debt.Outstanding() <= capital.Tolerance {
		debt.Status = StatusSettled
	}
	list[idx] = debt

	rate, err := s.rates.ExchangeRate(ctx, id.ID)
	if err != nil {
		return Debt{}, err
	}
	// Paying in pesos debits the peso wallet at the current rate.
	walletAmount := input.AmountUSD
	if input.Wallet == capital.WalletARS || input.Wallet == capital.WalletMP {
		walletAmount = input.AmountUSD * rate
	}
	sum = sum.Add(input.Wallet, -walletAmount)
	sum.ProviderDebt -= input.AmountUSD
	if sum.ProviderDebt < 0 && sum.ProviderDebt > -capital.Tolerance {
		sum.ProviderDebt = 0
	}

	debtOp, err := store.SetOp(store.CollDebts, debt.ID, debt)
	if err != nil {
		return Debt{}, err
	}
	capOps, err := s.capitalOps(ctx, id.ID, sum, list,
		fmt.Sprintf("debt settlement to %s", debt.Debtor))
	if err != nil {
		return Debt{}, err
	}
	if err := s.store.BatchWrite(ctx, id.ID, append([]store.Op{debtOp}, capOps...)); err != nil {
		return Debt{}, err
	}
	return debt, nil
}

func (s *Service) context(ctx context.Context, account string) (capital.Summary, []Debt, error) {
	var sum capital.Summary
	doc, err := s.store.Get(ctx, account, store.CollCapital, store.SingletonDocID)
	if err != nil && !errors.Is(err, store.ErrDocNotFound) {
		return capital.Summary{}, nil, err
	}
	if err == nil {
		if sum, err = capital.DecodeSummary(doc); err != nil {
			return capital.Summary{}, nil, err
		}
	}
	docs, err := s.store.List(ctx, account, store.CollDebts)
	if err != nil {
		return capital.Summary{}, nil, err
	}
	list, err := Decode(docs)
	if err != nil {
		return capital.Summary{}, nil, err
	}
	return sum, list, nil
}

func (s *Service) capitalOps(ctx context.Context, account string, sum capital.Summary, list []Debt, reason string) ([]store.Op, error) {
	stockDocs, err := s.store.List(ctx, account, store.CollStock)
	if err != nil {
		return nil, err
	}
	items, err := stock.Decode(stockDocs)
	if err != nil {
		return nil, err
	}
	rate, err := s.rates.ExchangeRate(ctx, account)
	if err != nil {
		return nil, err
	}
	total := capital.Total(sum, stock.ValueAtCost(items), PendingTotal(list), rate)
	return capital.WriteOps(sum, reason, total, time.Now())
}
