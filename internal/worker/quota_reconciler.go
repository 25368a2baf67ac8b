package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/trialbridge/lead-api/internal/repository"
	"github.com/trialbridge/lead-api/pkg/metrics"
)

const defaultReconcileInterval = 10 * time.Minute

// QuotaReconciler periodically recomputes partner lead counters from the
// leads table, repairing any drift from failed or partial writes.
type QuotaReconciler struct {
	partnerRepo repository.PartnerRepository
	interval    time.Duration
	metrics     *metrics.Metrics
}

func NewQuotaReconciler(partnerRepo repository.PartnerRepository, interval time.Duration, m *metrics.Metrics) *QuotaReconciler {
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	return &QuotaReconciler{
		partnerRepo: partnerRepo,
		interval:    interval,
		metrics:     m,
	}
}

// Start runs the reconcile loop until ctx is cancelled.
func (r *QuotaReconciler) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reconcile(ctx)
		}
	}
}

func (r *QuotaReconciler) reconcile(ctx context.Context) {
	adjusted, err := r.partnerRepo.RecountLeads(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Quota reconciliation failed")
		return
	}

	if adjusted > 0 {
		if r.metrics != nil {
			r.metrics.QuotaRepairs.Add(float64(adjusted))
		}
		log.Warn().Int64("partners_adjusted", adjusted).Msg("Repaired lead counter drift")
	} else {
		log.Debug().Msg("Lead counters consistent")
	}
}
