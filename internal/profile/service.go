package profile

import (
	"context"
	"errors"
	"time"

	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/store"
)

// StorePort abstracts document store usage for the service.
type StorePort interface {
	Get(ctx context.Context, account, collection, docID string) (store.Document, error)
	BatchWrite(ctx context.Context, account string, ops []store.Op) error
}

// Service handles profile reads and updates.
type Service struct {
	store       StorePort
	defaultRate float64
}

// NewService builds Service.
func NewService(st StorePort, defaultRate float64) *Service {
	return &Service{store: st, defaultRate: defaultRate}
}

// Get returns the account profile merged over defaults.
func (s *Service) Get(ctx context.Context) (Profile, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Profile{}, err
	}
	doc, err := s.store.Get(ctx, id.ID, store.CollProfile, store.SingletonDocID)
	if err != nil {
		if errors.Is(err, store.ErrDocNotFound) {
			return Defaults(s.defaultRate), nil
		}
		return Profile{}, err
	}
	return DecodeOver(doc, Defaults(s.defaultRate))
}

// UpdateInput carries user-editable profile fields.
type UpdateInput struct {
	BusinessName string
	ExchangeRate float64
}

// Update persists user edits to the profile.
func (s *Service) Update(ctx context.Context, input UpdateInput) (Profile, error) {
	if input.ExchangeRate <= 0 {
		return Profile{}, errors.New("profile: exchange rate must be positive")
	}
	current, err := s.Get(ctx)
	if err != nil {
		return Profile{}, err
	}
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Profile{}, err
	}
	current.BusinessName = input.BusinessName
	current.ExchangeRate = input.ExchangeRate
	op, err := store.SetOp(store.CollProfile, store.SingletonDocID, current)
	if err != nil {
		return Profile{}, err
	}
	if err := s.store.BatchWrite(ctx, id.ID, []store.Op{op}); err != nil {
		return Profile{}, err
	}
	return current, nil
}

// CreateDefault seeds the profile document at registration time.
func (s *Service) CreateDefault(ctx context.Context, account shared.Identity, businessName string) error {
	p := Defaults(s.defaultRate)
	p.BusinessName = businessName
	p.Email = account.Email
	p.CreatedAt = time.Now()
	op, err := store.SetOp(store.CollProfile, store.SingletonDocID, p)
	if err != nil {
		return err
	}
	return s.store.BatchWrite(ctx, account.ID, []store.Op{op})
}
