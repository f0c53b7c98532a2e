package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/iflow-pos/iflow/internal/profile"
	"github.com/iflow-pos/iflow/internal/store"
)

// HandleSubscriptionSweep expires every profile whose paid period lapsed.
func (r *Runner) HandleSubscriptionSweep(ctx context.Context, t *asynq.Task) error {
	var payload SweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	tracker := r.metrics.Track("subscription_sweep")
	now := timestampNow()

	err := r.forEachAccount(ctx, "subscription_sweep", func(ctx context.Context, account string) error {
		doc, err := r.store.Get(ctx, account, store.CollProfile, store.SingletonDocID)
		if err != nil {
			if errors.Is(err, store.ErrDocNotFound) {
				return nil
			}
			return err
		}
		p, err := profile.DecodeOver(doc, profile.Defaults(r.defaultRate))
		if err != nil {
			return err
		}
		if p.SubscriptionStatus == profile.SubscriptionExpired {
			return nil
		}
		if p.PaidThrough.IsZero() || p.PaidThrough.After(now) {
			return nil
		}
		p.SubscriptionStatus = profile.SubscriptionExpired
		op, err := store.SetOp(store.CollProfile, store.SingletonDocID, p)
		if err != nil {
			return err
		}
		if err := r.store.BatchWrite(ctx, account, []store.Op{op}); err != nil {
			return err
		}
		r.logger.Info("subscription expired",
			slog.String("account", account),
			slog.Time("paid_through", p.PaidThrough))
		return nil
	})
	return tracker.End(err)
}
