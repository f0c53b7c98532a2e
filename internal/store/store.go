// Package store implements the persistent document store backing iFlow:
// per-account collections of JSON documents with atomic batched writes and
// live collection subscriptions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Logical collection keys.
const (
	CollProfile        = "profile"
	CollCapital        = "capital"
	CollStock          = "stock"
	CollSales          = "sales"
	CollClients        = "clients"
	CollCategories     = "categories"
	CollDebts          = "debts"
	CollCapitalHistory = "capitalHistory"
)

// SingletonDocID is the document id used by single-document collections
// (profile, capital).
const SingletonDocID = "main"

// ErrDocNotFound indicates a missing document.
var ErrDocNotFound = errors.New("store: document not found")

// Document is one raw document in a collection.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Snapshot is a point-in-time readout of one collection delivered to a
// live subscription. Err is set on collection-level subscription failures;
// the snapshot then carries no documents.
type Snapshot struct {
	Collection string
	Docs       []Document
	Err        error
}

// OpKind discriminates batched write operations.
type OpKind int

const (
	// OpSet creates or replaces a document.
	OpSet OpKind = iota
	// OpDelete removes a document.
	OpDelete
)

// Op is a single operation inside an atomic batched write.
type Op struct {
	Kind       OpKind
	Collection string
	DocID      string
	Data       json.RawMessage
}

// SetOp builds an OpSet from any JSON-marshalable value.
func SetOp(collection, docID string, v any) (Op, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Op{}, fmt.Errorf("store: marshal %s/%s: %w", collection, docID, err)
	}
	return Op{Kind: OpSet, Collection: collection, DocID: docID, Data: data}, nil
}

// DeleteOp builds an OpDelete.
func DeleteOp(collection, docID string) Op {
	return Op{Kind: OpDelete, Collection: collection, DocID: docID}
}

// Store is the persistent store contract: per-document reads, collection
// listings, atomic multi-document batched writes and live subscriptions.
type Store interface {
	Get(ctx context.Context, account, collection, docID string) (Document, error)
	List(ctx context.Context, account, collection string) ([]Document, error)
	// BatchWrite applies all operations atomically. On success every
	// touched collection emits one change notification to subscribers.
	BatchWrite(ctx context.Context, account string, ops []Op) error
	// Subscribe delivers an initial snapshot followed by one snapshot per
	// change until ctx is cancelled. Snapshots for one subscription are
	// delivered in order; across collections no ordering is guaranteed.
	Subscribe(ctx context.Context, account, collection string) (<-chan Snapshot, error)
}
