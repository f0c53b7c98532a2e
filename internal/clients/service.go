package clients

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/iflow-pos/iflow/internal/shared"
	"github.com/iflow-pos/iflow/internal/store"
)

// StorePort abstracts document store usage for the service.
type StorePort interface {
	List(ctx context.Context, account, collection string) ([]store.Document, error)
	BatchWrite(ctx context.Context, account string, ops []store.Op) error
}

// Service handles client records.
type Service struct {
	store StorePort
}

// NewService builds Service.
func NewService(st StorePort) *Service {
	return &Service{store: st}
}

// List returns the account's clients.
func (s *Service) List(ctx context.Context) ([]Client, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, id.ID, store.CollClients)
	if err != nil {
		return nil, err
	}
	return Decode(docs)
}

// Save creates or updates a client.
func (s *Service) Save(ctx context.Context, c Client) (Client, error) {
	id, err := shared.RequireIdentity(ctx)
	if err != nil {
		return Client{}, err
	}
	if c.Name == "" {
		return Client{}, errors.New("clients: name required")
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
		c.CreatedAt = time.Now()
	}
	op, err := store.SetOp(store.CollClients, c.ID, c)
	if err != nil {
		return Client{}, err
	}
	if err := s.store.BatchWrite(ctx, id.ID, []store.Op{op}); err != nil {
		return Client{}, err
	}
	return c, nil
}
