package jobs

import (
	"context"
	"time"

	"github.com/emrgen/headline/internal/store"
	"github.com/sirupsen/logrus"
)

var _ CronJob = (*RefSweeper)(nil)

// RefSweeper removes refs whose origin or end headline is gone.
type RefSweeper struct {
	store    store.HeadlineRefStore
	schedule string
	timeout  time.Duration
}

func NewRefSweeper(schedule string, store store.HeadlineRefStore) *RefSweeper {
	return &RefSweeper{
		store:    store,
		schedule: schedule,
		timeout:  time.Minute,
	}
}

func (r *RefSweeper) Name() string {
	return "ref_sweeper"
}

func (r *RefSweeper) Schedule() string {
	return r.schedule
}

func (r *RefSweeper) Run() {
	if _, err := r.Sweep(context.Background()); err != nil {
		logrus.Errorf("error sweeping dangling refs: %v", err)
	}
}

// Sweep deletes the dangling refs and returns how many were removed.
func (r *RefSweeper) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return r.store.DeleteDanglingRefs(ctx)
}
