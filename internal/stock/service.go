package stock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/store"
)

// ErrInsufficientStock indicates a decrement exceeding the item quantity.
var ErrInsufficientStock = errors.New("stock: insufficient quantity")

// StorePort abstracts document store usage for the service.
type StorePort interface {
	Get(ctx context.Context, account, collection, docID string) (store.Document, error)
	List(ctx context.Context, account, collection string) ([]store.Document, error)
	BatchWrite(ctx context.Context, account string, ops []store.Op) error
}

// Service handles stock entries, edits and sale decrements.
type Service struct {
	store StorePort
}

// NewService builds Service.
func NewService(st StorePort) *Service {
	return &Service{store: st}
}

// List returns every stock item for the account.
func (s *Service) List(ctx context.Context) ([]Item, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, id.ID, store.CollStock)
	if err != nil {
		return nil, err
	}
	return Decode(docs)
}

// Valuation returns the account's stock valued at cost in USD.
func (s *Service) Valuation(ctx context.Context) (float64, error) {
	items, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	return ValueAtCost(items), nil
}

// AddInput carries a new stock entry.
type AddInput struct {
	Category       string
	Serial         string
	Quantity       int
	CostUSD        float64
	SuggestedPrice float64
	Attributes     map[string]string
	ProviderID     string
}

// Add creates a stock item.
func (s *Service) Add(ctx context.Context, input AddInput) (Item, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Item{}, err
	}
	if input.Category == "" {
		return Item{}, errors.New("stock: category required")
	}
	if input.Quantity <= 0 {
		return Item{}, errors.New("stock: quantity must be positive")
	}
	if input.CostUSD < 0 {
		return Item{}, errors.New("stock: cost must not be negative")
	}
	item := Item{
		ID:             uuid.NewString(),
		Category:       input.Category,
		Serial:         input.Serial,
		Quantity:       input.Quantity,
		CostUSD:        input.CostUSD,
		SuggestedPrice: input.SuggestedPrice,
		Attributes:     input.Attributes,
		ProviderID:     input.ProviderID,
		Status:         StatusAvailable,
		CreatedAt:      time.Now(),
	}
	if item.Attributes == nil {
		item.Attributes = map[string]string{}
	}
	op, err := store.SetOp(store.CollStock, item.ID, item)
	if err != nil {
		return Item{}, err
	}
	if err := s.store.BatchWrite(ctx, id.ID, []store.Op{op}); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Update replaces the editable fields of an existing item.
func (s *Service) Update(ctx context.Context, item Item) (Item, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Item{}, err
	}
	if item.ID == "" {
		return Item{}, errors.New("stock: id required")
	}
	if item.Quantity < 0 {
		return Item{}, errors.New("stock: quantity must not be negative")
	}
	current, err := s.get(ctx, id.ID, item.ID)
	if err != nil {
		return Item{}, err
	}
	item.CreatedAt = current.CreatedAt
	if item.Status == "" {
		item.Status = current.Status
	}
	op, err := store.SetOp(store.CollStock, item.ID, item)
	if err != nil {
		return Item{}, err
	}
	if err := s.store.BatchWrite(ctx, id.ID, []store.Op{op}); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Delete removes a stock item.
func (s *Service) Delete(ctx context.Context, itemID string) error {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return err
	}
	if itemID == "" {
		return errors.New("stock: id required")
	}
	return s.store.BatchWrite(ctx, id.ID, []store.Op{store.DeleteOp(store.CollStock, itemID)})
}

func (s *Service) get(ctx context.Context, account, itemID string) (Item, error) {
	doc, err := s.store.Get(ctx, account, store.CollStock, itemID)
	if err != nil {
		return Item{}, err
	}
	items, err := Decode([]store.Document{doc})
	if err != nil {
		return Item{}, err
	}
	return items[0], nil
}

// DecrementOp builds the store operation selling qty units of the item:
// the quantity never goes negative, and selling the last unit removes the
// item from available stock.
func DecrementOp(item Item, qty int) (store.Op, Item, error) {
	if qty <= 0 {
		return store.Op{}, Item{}, errors.New("stock: decrement quantity must be positive")
	}
	if qty > item.Quantity {
		return store.Op{}, Item{}, fmt.Errorf("%w: %s has %d, requested %d", ErrInsufficientStock, item.ID, item.Quantity, qty)
	}
	item.Quantity -= qty
	if item.Quantity == 0 {
		return store.DeleteOp(store.CollStock, item.ID), item, nil
	}
	op, err := store.SetOp(store.CollStock, item.ID, item)
	if err != nil {
		return store.Op{}, Item{}, err
	}
	return op, item, nil
}
