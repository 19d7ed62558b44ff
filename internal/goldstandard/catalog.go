package goldstandard

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
)

func (s *Service) Create(ctx context.Context, gs domain.GoldStandard) (*domain.GoldStandard, error) {
	if err := domain.Validate(gs); err != nil {
		return nil, apperr.NewValidationWrap("invalid gold standard", err)
	}
	created, err := s.store.CreateGoldStandard(ctx, gs)
	if err != nil {
		return nil, err
	}
	slog.Info("Gold standard created", "gold_standard_id", created.ID, "variable", created.Variable)
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.GoldStandard, error) {
	return s.store.GetGoldStandard(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.GoldStandard, error) {
	return s.store.ListGoldStandards(ctx)
}

// UpdateMetadata changes descriptive fields only. Variable and modality are
// fixed once labels exist.
func (s *Service) UpdateMetadata(ctx context.Context, id string, meta domain.GoldStandardMetadata) (*domain.GoldStandard, error) {
	if meta.Name != nil && *meta.Name == "" {
		return nil, apperr.NewValidation("name must not be empty")
	}
	return s.store.UpdateGoldStandardMetadata(ctx, id, meta)
}

// Annotate stores the first label of an item.
func (s *Service) Annotate(ctx context.Context, itemID int64, goldStandardID, label string, audit domain.Audit) (*domain.PairVersion, error) {
	if label == "" {
		return nil, apperr.NewValidation("label is required")
	}
	if _, err := s.store.GetGoldStandard(ctx, goldStandardID); err != nil {
		return nil, err
	}

	v := domain.InitialVersion(itemID, goldStandardID, label, s.fillAudit(audit))
	if err := s.store.InsertInitialVersions(ctx, []domain.PairVersion{v}); err != nil {
		return nil, fmt.Errorf("annotate item %d in %s: %w", itemID, goldStandardID, err)
	}
	return &v, nil
}

// History lists every version of an item, newest first.
func (s *Service) History(ctx context.Context, itemID int64, goldStandardID string) ([]domain.PairVersion, error) {
	if _, err := s.store.GetGoldStandard(ctx, goldStandardID); err != nil {
		return nil, err
	}
	return s.store.VersionHistory(ctx, itemID, goldStandardID)
}

func (s *Service) Stats(ctx context.Context, goldStandardID string) (*domain.GoldStandardStats, error) {
	if _, err := s.store.GetGoldStandard(ctx, goldStandardID); err != nil {
		return nil, err
	}
	current, err := s.store.CurrentVersions(ctx, goldStandardID)
	if err != nil {
		return nil, err
	}

	stats := &domain.GoldStandardStats{
		GoldStandardID: goldStandardID,
		TotalItems:     len(current),
		ByLabel:        make(map[string]int),
	}
	var confSum float64
	var confN int
	for _, v := range current {
		stats.ByLabel[v.Label]++
		if v.Version > 1 {
			stats.Corrected++
		}
		if v.Confidence != nil {
			confSum += *v.Confidence
			confN++
		}
		if stats.LastUpdated == nil || v.ValidatedAt.After(*stats.LastUpdated) {
			at := v.ValidatedAt
			stats.LastUpdated = &at
		}
	}
	if confN > 0 {
		mean := confSum / float64(confN)
		stats.MeanConfidence = &mean
	}
	return stats, nil
}
