package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/iflow-pos/iflow/internal/store"

	jobmetrics "github.com/iflow-pos/iflow/internal/jobs"
)

// AccountStore is the document store surface the jobs need. Unlike the
// request path, jobs iterate every account.
type AccountStore interface {
	ListAccounts(ctx context.Context) ([]string, error)
	Get(ctx context.Context, account, collection, docID string) (store.Document, error)
	List(ctx context.Context, account, collection string) ([]store.Document, error)
	BatchWrite(ctx context.Context, account string, ops []store.Op) error
}

// Runner executes the background workloads against the document store.
type Runner struct {
	store       AccountStore
	logger      *slog.Logger
	metrics     *jobmetrics.Metrics
	defaultRate float64
}

// RunnerConfig collects Runner dependencies.
type RunnerConfig struct {
	Store       AccountStore
	Logger      *slog.Logger
	Metrics     *jobmetrics.Metrics
	DefaultRate float64
}

// NewRunner constructs a Runner instance.
func NewRunner(cfg RunnerConfig) *Runner {
	return &Runner{
		store:       cfg.Store,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		defaultRate: cfg.DefaultRate,
	}
}

// forEachAccount applies fn per account, logging per-account failures and
// continuing; only the account listing itself aborts the run.
func (r *Runner) forEachAccount(ctx context.Context, job string, fn func(ctx context.Context, account string) error) error {
	accounts, err := r.store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(ctx, account); err != nil {
			r.logger.Warn("job account failed",
				slog.String("job", job),
				slog.String("account", account),
				slog.Any("error", err))
		}
	}
	return nil
}

func timestampNow() time.Time {
	return time.Now().UTC()
}
