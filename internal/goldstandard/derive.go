package goldstandard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
)

type DeriveRequest struct {
	SourceGoldStandardID string              `json:"source_gold_standard_id" validate:"required"`
	Target               domain.GoldStandard `json:"target"`
	// PredictedLabels holds the automated label per item id.
	PredictedLabels map[int64]string `json:"predicted_labels"`
}

type DeriveFromRunRequest struct {
	RunID uuid.UUID `json:"run_id" validate:"required"`
	// SourceGoldStandardID defaults to the gold standard the run was scored against.
	SourceGoldStandardID string              `json:"source_gold_standard_id,omitempty"`
	Target               domain.GoldStandard `json:"target"`
}

// Derive creates the target gold standard and copies every label of the
// source on which the predicted label agrees as version 1. Items without
// agreement are listed for manual review. Creation and copies are atomic.
func (s *Service) Derive(ctx context.Context, req DeriveRequest) (*domain.DerivationResult, error) {
	if err := domain.Validate(req); err != nil {
		return nil, apperr.NewValidationWrap("invalid derive request", err)
	}
	if req.Target.ID == req.SourceGoldStandardID {
		return nil, apperr.NewValidation("target gold standard must differ from the source")
	}

	if _, err := s.store.GetGoldStandard(ctx, req.SourceGoldStandardID); err != nil {
		return nil, err
	}
	source, err := s.store.CurrentVersions(ctx, req.SourceGoldStandardID)
	if err != nil {
		return nil, err
	}

	res := &domain.DerivationResult{ToReview: make([]domain.ReviewItem, 0)}
	audit := domain.Audit{
		ValidatedBy: domain.SystemValidator,
		Notes:       fmt.Sprintf("copied from %s", req.SourceGoldStandardID),
		At:          s.now(),
	}
	copies := make([]domain.PairVersion, 0, len(source))
	for _, v := range source {
		predicted, ok := req.PredictedLabels[v.ItemID]
		if ok && predicted == v.Label {
			copies = append(copies, domain.InitialVersion(v.ItemID, req.Target.ID, v.Label, audit))
			continue
		}
		res.ToReview = append(res.ToReview, domain.ReviewItem{
			ItemID:         v.ItemID,
			SourceLabel:    v.Label,
			PredictedLabel: predicted,
		})
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.store.CreateGoldStandard(ctx, req.Target)
		if err != nil {
			return err
		}
		res.GoldStandard = *created
		return s.store.InsertInitialVersions(ctx, copies)
	})
	if err != nil {
		return nil, fmt.Errorf("derive %s from %s: %w", req.Target.ID, req.SourceGoldStandardID, err)
	}

	res.CopiedCount = len(copies)
	res.ToReviewCount = len(res.ToReview)
	res.EstimatedTimeMinutes = s.estimateMinutes(res.ToReviewCount)

	s.metrics.Derived(res.CopiedCount, res.ToReviewCount)
	slog.Info("Gold standard derived",
		"source", req.SourceGoldStandardID,
		"target", req.Target.ID,
		"copied", res.CopiedCount,
		"to_review", res.ToReviewCount,
		"estimated_minutes", res.EstimatedTimeMinutes,
	)
	return res, nil
}

// DeriveFromRun derives using the automated labels of a test run as predictions.
func (s *Service) DeriveFromRun(ctx context.Context, req DeriveFromRunRequest) (*domain.DerivationResult, error) {
	if err := domain.Validate(req); err != nil {
		return nil, apperr.NewValidationWrap("invalid derive request", err)
	}

	run, err := s.store.GetRun(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	annotations, err := s.store.RunAnnotations(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	predicted := make(map[int64]string, len(annotations))
	for _, a := range annotations {
		predicted[a.ItemID] = a.AutomatedLabel
	}

	source := req.SourceGoldStandardID
	if source == "" {
		source = run.GoldStandardID
	}
	return s.Derive(ctx, DeriveRequest{
		SourceGoldStandardID: source,
		Target:               req.Target,
		PredictedLabels:      predicted,
	})
}
