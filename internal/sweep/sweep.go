// Package sweep reconciles the stored is_active flag with each link's
// schedule window. It is level-triggered: every run re-derives the two
// transition sets from (scheduled_at, expires_at, now), so a missed or
// late run self-heals on the next one and re-running immediately is a
// no-op.
package sweep

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tazhibayda/linkbio/internal/log"
	"github.com/tazhibayda/linkbio/internal/metrics"
)

// LinkFlipper is the slice of the store the sweep needs. The sweep is
// the only writer of the derived flag besides explicit owner edits.
type LinkFlipper interface {
	ActivateDueLinks(ctx context.Context, now time.Time) (int64, error)
	DeactivateExpiredLinks(ctx context.Context, now time.Time) (int64, error)
	CountDueLinks(ctx context.Context, now time.Time) (activate, deactivate int64, err error)
}

type Result struct {
	Activated   int64     `json:"activated"`
	Deactivated int64     `json:"deactivated"`
	Timestamp   time.Time `json:"timestamp"`
}

type Sweeper struct {
	Store LinkFlipper
	Now   func() time.Time
}

func New(store LinkFlipper) *Sweeper {
	return &Sweeper{Store: store, Now: time.Now}
}

// Run executes both bulk flips. The two sides are independent: a
// failure in one is logged and reported as zero, and the other still
// proceeds. Run never returns an error — the invoker retries on its
// next scheduled tick.
func (s *Sweeper) Run(ctx context.Context) Result {
	now := s.Now().UTC()
	res := Result{Timestamp: now}

	if n, err := s.Store.ActivateDueLinks(ctx, now); err != nil {
		metrics.SweepFailures.WithLabelValues("activated").Inc()
		log.WithDD(ctx, log.L).Error("sweep: activate failed", zap.Error(err))
	} else {
		res.Activated = n
		metrics.SweepTransitions.WithLabelValues("activated").Add(float64(n))
	}

	if n, err := s.Store.DeactivateExpiredLinks(ctx, now); err != nil {
		metrics.SweepFailures.WithLabelValues("deactivated").Inc()
		log.WithDD(ctx, log.L).Error("sweep: deactivate failed", zap.Error(err))
	} else {
		res.Deactivated = n
		metrics.SweepTransitions.WithLabelValues("deactivated").Add(float64(n))
	}

	if res.Activated > 0 || res.Deactivated > 0 {
		log.WithDD(ctx, log.L).Info("sweep: reconciled",
			zap.Int64("activated", res.Activated),
			zap.Int64("deactivated", res.Deactivated))
	}
	return res
}

// Preview reports both set sizes without mutating, for the read-only
// probe endpoint.
func (s *Sweeper) Preview(ctx context.Context) (activate, deactivate int64, err error) {
	return s.Store.CountDueLinks(ctx, s.Now().UTC())
}
