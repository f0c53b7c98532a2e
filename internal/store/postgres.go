package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/iflow-pos/iflow/internal/platform/db"
)

// PG is the PostgreSQL-backed Store. Documents live in a single jsonb table
// keyed by (account, collection, doc id); change notifications fan out over
// Redis pub/sub so live subscriptions survive across processes.
type PG struct {
	pool   *pgxpool.Pool
	rdb    *redis.Client
	logger *slog.Logger
}

// NewPG constructs the PostgreSQL store.
func NewPG(pool *pgxpool.Pool, rdb *redis.Client, logger *slog.Logger) *PG {
	return &PG{pool: pool, rdb: rdb, logger: logger}
}

func changeChannel(account, collection string) string {
	return fmt.Sprintf("iflow:changes:%s:%s", account, collection)
}

// Get fetches a single document.
func (s *PG) Get(ctx context.Context, account, collection, docID string) (Document, error) {
	var doc Document
	doc.ID = docID
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE account_id = $1 AND collection = $2 AND doc_id = $3`,
		account, collection, docID).Scan(&doc.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrDocNotFound
		}
		return Document{}, fmt.Errorf("store: get %s/%s: %w", collection, docID, err)
	}
	return doc, nil
}

// List returns every document of one collection for the account.
func (s *PG) List(ctx context.Context, account, collection string) ([]Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT doc_id, data FROM documents WHERE account_id = $1 AND collection = $2 ORDER BY created_at, doc_id`,
		account, collection)
	if err != nil {
		return nil, fmt.Errorf("store: list %s: %w", collection, err)
	}
	defer rows.Close()
	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

// BatchWrite applies all operations in one repeatable-read transaction and
// publishes a change notification per touched collection afterwards.
func (s *PG) BatchWrite(ctx context.Context, account string, ops []Op) error {
	if len(ops) == 0 {
		return nil
	}
	err := db.WithTx(ctx, s.pool, func(tx pgx.Tx) error {
		for _, op := range ops {
			switch op.Kind {
			case OpSet:
				if _, err := tx.Exec(ctx,
					`INSERT INTO documents (account_id, collection, doc_id, data)
					 VALUES ($1, $2, $3, $4)
					 ON CONFLICT (account_id, collection, doc_id)
					 DO UPDATE SET data = EXCLUDED.data, updated_at = now()`,
					account, op.Collection, op.DocID, op.Data); err != nil {
					return fmt.Errorf("store: set %s/%s: %w", op.Collection, op.DocID, err)
				}
			case OpDelete:
				if _, err := tx.Exec(ctx,
					`DELETE FROM documents WHERE account_id = $1 AND collection = $2 AND doc_id = $3`,
					account, op.Collection, op.DocID); err != nil {
					return fmt.Errorf("store: delete %s/%s: %w", op.Collection, op.DocID, err)
				}
			default:
				return fmt.Errorf("store: unknown op kind %d", op.Kind)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, collection := range touchedCollections(ops) {
		if err := s.rdb.Publish(ctx, changeChannel(account, collection), "").Err(); err != nil {
			// The write itself committed; subscribers resync on the next
			// notification for the collection.
			s.logger.Warn("publish change notification",
				slog.String("collection", collection), slog.Any("error", err))
		}
	}
	return nil
}

// ListAccounts returns every account id holding documents. Used by
// background jobs that sweep all accounts.
func (s *PG) ListAccounts(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT account_id FROM documents ORDER BY account_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list accounts: %w", err)
	}
	defer rows.Close()
	var accounts []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		accounts = append(accounts, id)
	}
	return accounts, rows.Err()
}

// Subscribe emits the current collection contents, then re-reads and emits
// on every change notification until ctx is cancelled.
func (s *PG) Subscribe(ctx context.Context, account, collection string) (<-chan Snapshot, error) {
	pubsub := s.rdb.Subscribe(ctx, changeChannel(account, collection))
	// Force the subscription to be established before the initial read so
	// no change between the two is lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("store: subscribe %s: %w", collection, err)
	}

	out := make(chan Snapshot)
	go func() {
		defer close(out)
		defer func() { _ = pubsub.Close() }()

		emit := func() bool {
			docs, err := s.List(ctx, account, collection)
			snap := Snapshot{Collection: collection, Docs: docs, Err: err}
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					return
				}
				if !emit() {
					return
				}
			}
		}
	}()
	return out, nil
}

func touchedCollections(ops []Op) []string {
	seen := make(map[string]struct{}, len(ops))
	var out []string
	for _, op := range ops {
		if _, ok := seen[op.Collection]; ok {
			continue
		}
		seen[op.Collection] = struct{}{}
		out = append(out, op.Collection)
	}
	return out
}
