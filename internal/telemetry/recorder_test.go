package telemetry

import (
	"testing"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ValidationRecorded(domain.DecisionAutomatedCorrect)
	r.ValidationRecorded(domain.DecisionAutomatedCorrect)
	r.ValidationRecorded(domain.DecisionAmbiguous)
	r.ValidationRolledBack(domain.DecisionAutomatedCorrect)
	r.VersionCorrected()
	r.VersionRolledBack(false)
	r.Derived(82, 18)
	r.RunKappa("gs", 0.4, 0.6)
	r.AgreementComputed(5*time.Millisecond, 0.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.validations.WithLabelValues("automated_correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.validations.WithLabelValues("ambiguous")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.validationUndos.WithLabelValues("automated_correct")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.versionOps.WithLabelValues("correct", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.versionOps.WithLabelValues("rollback", "noop")))
	assert.Equal(t, 82.0, testutil.ToFloat64(r.derivedItems.WithLabelValues("copied")))
	assert.Equal(t, 18.0, testutil.ToFloat64(r.derivedItems.WithLabelValues("to_review")))
	assert.Equal(t, 0.6, testutil.ToFloat64(r.correctedKappa.WithLabelValues("gs", "corrected")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.agreementKappa))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ValidationRecorded(domain.DecisionManualCorrect)
		r.ValidationRolledBack(domain.DecisionManualCorrect)
		r.VersionCorrected()
		r.VersionRolledBack(true)
		r.Derived(1, 1)
		r.RunKappa("gs", 0, 0)
		r.AgreementComputed(time.Second, 1)
	})
}
