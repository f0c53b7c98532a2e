package capital

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/store"
)

// StorePort abstracts document store usage for the service.
type StorePort interface {
	Get(ctx context.Context, account, collection, docID string) (store.Document, error)
	List(ctx context.Context, account, collection string) ([]store.Document, error)
	BatchWrite(ctx context.Context, account string, ops []store.Op) error
}

// Valuer supplies the stock and provider-debt aggregates needed to record
// the resulting total on every capital write.
type Valuer interface {
	StockValueUSD(ctx context.Context, account string) (float64, error)
	ProviderPendingUSD(ctx context.Context, account string) (float64, error)
	ExchangeRate(ctx context.Context, account string) (float64, error)
}

// Service handles capital summary mutations and history queries.
type Service struct {
	store  StorePort
	valuer Valuer
}

// NewService builds Service.
func NewService(st StorePort, valuer Valuer) *Service {
	return &Service{store: st, valuer: valuer}
}

// Summary returns the current capital summary, zero-valued when absent.
func (s *Service) Summary(ctx context.Context) (Summary, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Summary{}, err
	}
	return s.summary(ctx, id.ID)
}

func (s *Service) summary(ctx context.Context, account string) (Summary, error) {
	doc, err := s.store.Get(ctx, account, store.CollCapital, store.SingletonDocID)
	if err != nil {
		if errors.Is(err, store.ErrDocNotFound) {
			return Summary{}, nil
		}
		return Summary{}, err
	}
	return DecodeSummary(doc)
}

// AdjustInput is a manual wallet adjustment.
type AdjustInput struct {
	Wallet string
	Amount float64
	Reason string
}

// Adjust applies a manual adjustment to one wallet, recording the paired
// history entry in the same atomic write.
func (s *Service) Adjust(ctx context.Context, input AdjustInput) (Summary, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Summary{}, err
	}
	if !IsWallet(input.Wallet) {
		return Summary{}, fmt.Errorf("capital: unknown wallet %q", input.Wallet)
	}
	if input.Reason == "" {
		input.Reason = "manual adjustment"
	}
	sum, err := s.summary(ctx, id.ID)
	if err != nil {
		return Summary{}, err
	}
	sum = sum.Add(input.Wallet, input.Amount)

	totalUSD, err := s.totalUSD(ctx, id.ID, sum)
	if err != nil {
		return Summary{}, err
	}
	ops, err := WriteOps(sum, input.Reason, totalUSD, time.Now())
	if err != nil {
		return Summary{}, err
	}
	if err := s.store.BatchWrite(ctx, id.ID, ops); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

// HistoryFilter bounds a history query. Zero values leave the window open.
type HistoryFilter struct {
	From time.Time
	To   time.Time
}

func (f HistoryFilter) contains(t time.Time) bool {
	if !f.From.IsZero() && t.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.After(f.To) {
		return false
	}
	return true
}

// History returns capital history entries within the filter, oldest first.
func (s *Service) History(ctx context.Context, filter HistoryFilter) ([]HistoryEntry, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, id.ID, store.CollCapitalHistory)
	if err != nil {
		return nil, err
	}
	entries, err := DecodeHistory(docs)
	if err != nil {
		return nil, err
	}
	filtered := entries[:0]
	for _, e := range entries {
		if filter.contains(e.Timestamp) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

func (s *Service) totalUSD(ctx context.Context, account string, sum Summary) (float64, error) {
	stockUSD, err := s.valuer.StockValueUSD(ctx, account)
	if err != nil {
		return 0, err
	}
	providerUSD, err := s.valuer.ProviderPendingUSD(ctx, account)
	if err != nil {
		return 0, err
	}
	rate, err := s.valuer.ExchangeRate(ctx, account)
	if err != nil {
		return 0, err
	}
	return Total(sum, stockUSD, providerUSD, rate), nil
}

// WriteOps builds the atomic op pair for a capital mutation: the updated
// summary document plus its append-only history entry. Callers must never
// write the summary without the paired entry.
func WriteOps(sum Summary, reason string, totalUSD float64, now time.Time) ([]store.Op, error) {
	sumOp, err := store.SetOp(store.CollCapital, store.SingletonDocID, sum)
	if err != nil {
		return nil, err
	}
	entry := HistoryEntry{
		ID:        uuid.NewString(),
		Timestamp: now,
		Reason:    reason,
		TotalUSD:  totalUSD,
	}
	histOp, err := store.SetOp(store.CollCapitalHistory, entry.ID, entry)
	if err != nil {
		return nil, err
	}
	return []store.Op{sumOp, histOp}, nil
}
