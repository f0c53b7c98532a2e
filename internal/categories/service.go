package categories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/store"
)

// StorePort abstracts document store usage for the service.
type StorePort interface {
	List(ctx context.Context, account, collection string) ([]store.Document, error)
	BatchWrite(ctx context.Context, account string, ops []store.Op) error
}

// Service handles category management.
type Service struct {
	store StorePort
}

// NewService builds Service.
func NewService(st StorePort) *Service {
	return &Service{store: st}
}

// List returns the account's categories.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, id.ID, store.CollCategories)
	if err != nil {
		return nil, err
	}
	return Decode(docs)
}

// Save creates or updates a category definition.
func (s *Service) Save(ctx context.Context, cat Category) (Category, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Category{}, err
	}
	if cat.Name == "" {
		return Category{}, errors.New("categories: name required")
	}
	for _, attr := range cat.Attributes {
		switch attr.Type {
		case TypeText, TypeNumber, TypeSelect:
		default:
			return Category{}, fmt.Errorf("categories: unknown attribute type %q", attr.Type)
		}
	}
	if cat.ID == "" {
		cat.ID = uuid.NewString()
	}
	op, err := store.SetOp(store.CollCategories, cat.ID, cat)
	if err != nil {
		return Category{}, err
	}
	if err := s.store.BatchWrite(ctx, id.ID, []store.Op{op}); err != nil {
		return Category{}, err
	}
	return cat, nil
}

// Delete removes a category definition.
func (s *Service) Delete(ctx context.Context, catID string) error {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return err
	}
	if catID == "" {
		return errors.New("categories: id required")
	}
	return s.store.BatchWrite(ctx, id.ID, []store.Op{store.DeleteOp(store.CollCategories, catID)})
}

// SeedOps builds the batched write that installs the default category set.
func SeedOps() ([]store.Op, error) {
	defaults := DefaultSet()
	ops := make([]store.Op, 0, len(defaults))
	for _, cat := range defaults {
		op, err := store.SetOp(store.CollCategories, cat.ID, cat)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}
