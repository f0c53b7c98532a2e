package jobs

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/iflow-pos/iflow/internal/capital"
	"github.com/iflow-pos/iflow/internal/debts"
	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/stock"
	"github.com/iflow-pos/iflow/internal/store"
)

// HandleCapitalSnapshot appends a capital history entry per account so the
// history holds at least one total per day even on days without movements.
func (r *Runner) HandleCapitalSnapshot(ctx context.Context, t *asynq.Task) error {
	var payload SnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := r.metrics.Track("capital_snapshot")

	err := r.forEachAccount(ctx, "capital_snapshot", func(ctx context.Context, account string) error {
		sum, err := r.summary(ctx, account)
		if err != nil {
			return err
		}
		stockDocs, err := r.store.List(ctx, account, store.CollStock)
		if err != nil {
			return err
		}
		items, err := stock.Decode(stockDocs)
		if err != nil {
			return err
		}
		debtDocs, err := r.store.List(ctx, account, store.CollDebts)
		if err != nil {
			return err
		}
		debtList, err := debts.Decode(debtDocs)
		if err != nil {
			return err
		}
		rate, err := r.exchangeRate(ctx, account)
		if err != nil {
			return err
		}
		total := capital.Total(sum, stock.ValueAtCost(items), debts.PendingTotal(debtList), rate)
		ops, err := capital.WriteOps(sum, "nightly snapshot", total, timestampNow())
		if err != nil {
			return err
		}
		return r.store.BatchWrite(ctx, account, ops)
	})
	return tracker.End(err)
}

func (r *Runner) summary(ctx context.Context, account string) (capital.Summary, error) {
	doc, err := r.store.Get(ctx, account, store.CollCapital, store.SingletonDocID)
	if err != nil {
		if errors.Is(err, store.ErrDocNotFound) {
			return capital.Summary{}, nil
		}
		return capital.Summary{}, err
	}
	return capital.DecodeSummary(doc)
}

func (r *Runner) exchangeRate(ctx context.Context, account string) (float64, error) {
	doc, err := r.store.Get(ctx, account, store.CollProfile, store.SingletonDocID)
	if err != nil {
		if errors.Is(err, store.ErrDocNotFound) {
			return r.defaultRate, nil
		}
		return 0, err
	}
	p, err := profile.DecodeOver(doc, profile.Defaults(r.defaultRate))
	if err != nil {
		return 0, err
	}
	return p.ExchangeRate, nil
}
