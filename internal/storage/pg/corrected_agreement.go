package pg

import (
	"context"

	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
)

// CorrectedAgreement delegates to calculate_corrected_kappa so that rows
// written earlier in the same transaction are taken into account.
func (s *Store) CorrectedAgreement(ctx context.Context, runID uuid.UUID) (*domain.CorrectedAgreement, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	res := &domain.CorrectedAgreement{RunID: runID}
	err := s.q(ctx).QueryRow(ctx, `
        SELECT kappa_raw, kappa_corrected, cas_a_count, cas_b_count, cas_c_count, pending_count
        FROM calculate_corrected_kappa($1)`, runID).Scan(
		&res.KappaRaw,
		&res.KappaCorrected,
		&res.AutomatedCorrect,
		&res.ManualCorrect,
		&res.Ambiguous,
		&res.Pending,
	)
	if err != nil {
		return nil, mapErr("calculate corrected kappa", err, nil, nil)
	}
	return res, nil
}
