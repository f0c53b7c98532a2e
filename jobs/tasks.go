// Package jobs hosts the background workloads run by the worker binary:
// the subscription sweep and the nightly capital snapshot.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskSubscriptionSweep expires accounts whose paid period lapsed.
	TaskSubscriptionSweep = "subscription:sweep"
	// TaskCapitalSnapshot appends a nightly capital history entry per account.
	TaskCapitalSnapshot = "capital:snapshot"
)

// SweepPayload carries scheduling metadata for the subscription sweep.
type SweepPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewSubscriptionSweepTask constructs an Asynq task for the sweep.
func NewSubscriptionSweepTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SweepPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSubscriptionSweep, body, asynq.Queue(QueueDefault)), nil
}

// SnapshotPayload carries scheduling metadata for the capital snapshot.
type SnapshotPayload struct {
	ScheduledFor time.Time `json:"scheduled_for"`
}

// NewCapitalSnapshotTask constructs an Asynq task for the snapshot.
func NewCapitalSnapshotTask(at time.Time) (*asynq.Task, error) {
	body, err := json.Marshal(SnapshotPayload{ScheduledFor: at})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCapitalSnapshot, body, asynq.Queue(QueueDefault)), nil
}
