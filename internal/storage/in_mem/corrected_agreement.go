package in_mem

import (
	"context"

	"github.com/DjordjeVuckovic/agreement-lab/internal/agreement"
	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
)

// CorrectedAgreement applies the same rule as calculate_corrected_kappa in the
// PostgreSQL schema: automated-correct items count as agreements, ambiguous
// items leave the corrected sample, everything else is kept as annotated.
func (s *Store) CorrectedAgreement(ctx context.Context, runID uuid.UUID) (*domain.CorrectedAgreement, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	if _, ok := s.runs[runID]; !ok {
		return nil, apperr.NewNotFound("run", runID)
	}

	decisions := make(map[int64]domain.Decision)
	for _, v := range s.validations {
		if v.RunID == runID {
			decisions[v.ItemID] = v.Decision
		}
	}

	annotations := s.annotations[runID]
	res := &domain.CorrectedAgreement{RunID: runID}

	var rawManual, rawAutomated, corManual, corAutomated []string
	for _, a := range annotations {
		rawManual = append(rawManual, a.ManualLabel)
		rawAutomated = append(rawAutomated, a.AutomatedLabel)

		decision, ok := decisions[a.ItemID]
		if !ok && a.IsDisagreement() {
			res.Pending++
		}

		manual := a.ManualLabel
		switch decision {
		case domain.DecisionAutomatedCorrect:
			res.AutomatedCorrect++
			manual = a.AutomatedLabel
		case domain.DecisionManualCorrect:
			res.ManualCorrect++
		case domain.DecisionAmbiguous:
			res.Ambiguous++
			continue
		}
		corManual = append(corManual, manual)
		corAutomated = append(corAutomated, a.AutomatedLabel)
	}

	res.KappaRaw = kappaOrZero(rawAutomated, rawManual)
	res.KappaCorrected = kappaOrZero(corAutomated, corManual)

	return res, nil
}

func kappaOrZero(predicted, actual []string) float64 {
	k, err := agreement.Kappa(predicted, actual)
	if err != nil {
		return 0
	}
	return k
}
