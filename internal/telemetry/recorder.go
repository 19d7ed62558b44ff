// Package telemetry exposes Prometheus instruments for the agreement,
// gold standard and validation workflows.
package telemetry

import (
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "agreement_lab"

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	agreementDuration prometheus.Histogram
	agreementKappa    prometheus.Histogram
	validations       *prometheus.CounterVec
	validationUndos   *prometheus.CounterVec
	versionOps        *prometheus.CounterVec
	derivedItems      *prometheus.CounterVec
	correctedKappa    *prometheus.GaugeVec
}

// NewRecorder registers every instrument on reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		agreementDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agreement_compute_duration_seconds",
			Help:      "Time spent computing agreement metrics for one label pair set.",
			Buckets:   prometheus.DefBuckets,
		}),
		agreementKappa: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "agreement_kappa",
			Help:      "Distribution of computed Cohen's kappa values.",
			Buckets:   []float64{-0.5, 0, 0.2, 0.4, 0.6, 0.8, 1},
		}),
		validations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validations_total",
			Help:      "Disagreements resolved, by decision.",
		}, []string{"decision"}),
		validationUndos: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_rollbacks_total",
			Help:      "Resolved disagreements returned to pending, by decision.",
		}, []string{"decision"}),
		versionOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gold_standard_version_operations_total",
			Help:      "Gold standard label version changes, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		derivedItems: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "derived_items_total",
			Help:      "Items processed while deriving gold standards, by outcome.",
		}, []string{"outcome"}),
		correctedKappa: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_kappa",
			Help:      "Latest raw and corrected kappa per gold standard.",
		}, []string{"gold_standard_id", "kind"}),
	}
}

func (r *Recorder) AgreementComputed(d time.Duration, kappa float64) {
	if r == nil {
		return
	}
	r.agreementDuration.Observe(d.Seconds())
	r.agreementKappa.Observe(kappa)
}

func (r *Recorder) ValidationRecorded(decision domain.Decision) {
	if r == nil {
		return
	}
	r.validations.WithLabelValues(string(decision)).Inc()
}

func (r *Recorder) ValidationRolledBack(decision domain.Decision) {
	if r == nil {
		return
	}
	r.validationUndos.WithLabelValues(string(decision)).Inc()
}

func (r *Recorder) VersionCorrected() {
	if r == nil {
		return
	}
	r.versionOps.WithLabelValues("correct", "applied").Inc()
}

func (r *Recorder) VersionRolledBack(applied bool) {
	if r == nil {
		return
	}
	outcome := "applied"
	if !applied {
		outcome = "noop"
	}
	r.versionOps.WithLabelValues("rollback", outcome).Inc()
}

func (r *Recorder) Derived(copied, toReview int) {
	if r == nil {
		return
	}
	r.derivedItems.WithLabelValues("copied").Add(float64(copied))
	r.derivedItems.WithLabelValues("to_review").Add(float64(toReview))
}

func (r *Recorder) RunKappa(goldStandardID string, raw, corrected float64) {
	if r == nil {
		return
	}
	r.correctedKappa.WithLabelValues(goldStandardID, "raw").Set(raw)
	r.correctedKappa.WithLabelValues(goldStandardID, "corrected").Set(corrected)
}
