// Package goldstandard manages versioned reference labels: corrections,
// single-step rollback, derivation of new standards and completeness audits.
package goldstandard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage"
	"github.com/DjordjeVuckovic/agreement-lab/internal/telemetry"
	"github.com/DjordjeVuckovic/agreement-lab/pkg/utils"
	"golang.org/x/sync/errgroup"
)

const DefaultReviewMinutesPerItem = 1.5

type Store interface {
	storage.Transactor
	storage.GoldStandardRepository
	storage.VersionRepository
	storage.ItemSource
	storage.RunRepository
}

type Config struct {
	// ReviewMinutesPerItem feeds the derivation time estimate.
	ReviewMinutesPerItem float64
	// Validator is recorded when a caller does not name who made a change.
	Validator string
}

type Service struct {
	store   Store
	cfg     Config
	metrics *telemetry.Recorder
	now     func() time.Time
}

func NewService(store Store, cfg Config, metrics *telemetry.Recorder) *Service {
	if cfg.ReviewMinutesPerItem <= 0 {
		cfg.ReviewMinutesPerItem = DefaultReviewMinutesPerItem
	}
	if cfg.Validator == "" {
		cfg.Validator = "analyst"
	}
	return &Service{
		store:   store,
		cfg:     cfg,
		metrics: metrics,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Current returns nil when the item has no label under the gold standard.
func (s *Service) Current(ctx context.Context, itemID int64, goldStandardID string) (*domain.PairVersion, error) {
	if _, err := s.store.GetGoldStandard(ctx, goldStandardID); err != nil {
		return nil, err
	}
	return s.store.CurrentVersion(ctx, itemID, goldStandardID)
}

// Correct supersedes the current label of an item with a new version.
func (s *Service) Correct(ctx context.Context, itemID int64, goldStandardID, label string, audit domain.Audit) (*domain.PairVersion, error) {
	v, err := s.ApplyCorrection(ctx, itemID, goldStandardID, label, audit)
	if err != nil {
		return nil, err
	}
	s.CorrectionCommitted(v)
	return v, nil
}

// ApplyCorrection writes the new version without recording it. Callers running
// it inside a wider transaction call CorrectionCommitted once that commits.
func (s *Service) ApplyCorrection(ctx context.Context, itemID int64, goldStandardID, label string, audit domain.Audit) (*domain.PairVersion, error) {
	if label == "" {
		return nil, apperr.NewValidation("label is required")
	}
	audit = s.fillAudit(audit)

	v, err := s.store.CorrectVersion(ctx, itemID, goldStandardID, label, audit)
	if err != nil {
		return nil, fmt.Errorf("correct item %d in %s: %w", itemID, goldStandardID, err)
	}
	return v, nil
}

func (s *Service) CorrectionCommitted(v *domain.PairVersion) {
	s.metrics.VersionCorrected()
	slog.Info("Gold standard label corrected",
		"item_id", v.ItemID,
		"gold_standard_id", v.GoldStandardID,
		"version", v.Version,
		"label", v.Label,
	)
}

// Rollback restores the previous version of an item. At version 1 it is a
// no-op reported through RollbackOutcome.RolledBack.
func (s *Service) Rollback(ctx context.Context, itemID int64, goldStandardID string) (*domain.RollbackOutcome, error) {
	out, err := s.ApplyRollback(ctx, itemID, goldStandardID)
	if err != nil {
		return nil, err
	}
	s.RollbackCommitted(itemID, goldStandardID, out)
	return out, nil
}

// ApplyRollback is Rollback without metrics or logging, see ApplyCorrection.
func (s *Service) ApplyRollback(ctx context.Context, itemID int64, goldStandardID string) (*domain.RollbackOutcome, error) {
	out, err := s.store.RollbackVersion(ctx, itemID, goldStandardID)
	if err != nil {
		return nil, fmt.Errorf("rollback item %d in %s: %w", itemID, goldStandardID, err)
	}
	return out, nil
}

func (s *Service) RollbackCommitted(itemID int64, goldStandardID string, out *domain.RollbackOutcome) {
	s.metrics.VersionRolledBack(out.RolledBack)
	if !out.RolledBack {
		slog.Warn("Nothing to roll back, item is at its first version",
			"item_id", itemID,
			"gold_standard_id", goldStandardID,
		)
		return
	}

	slog.Info("Gold standard label rolled back",
		"item_id", itemID,
		"gold_standard_id", goldStandardID,
		"removed_version", out.Removed.Version,
		"current_version", out.Current.Version,
	)
}

// Completeness reports how many known items carry a current label.
func (s *Service) Completeness(ctx context.Context, goldStandardID string) (*domain.Completeness, error) {
	if _, err := s.store.GetGoldStandard(ctx, goldStandardID); err != nil {
		return nil, err
	}

	var itemIDs []int64
	var current []domain.PairVersion
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		itemIDs, err = s.store.ItemIDs(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		current, err = s.store.CurrentVersions(gctx, goldStandardID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	labelled := make(map[int64]struct{}, len(current))
	for _, v := range current {
		labelled[v.ItemID] = struct{}{}
	}

	res := &domain.Completeness{
		GoldStandardID: goldStandardID,
		TotalItems:     len(itemIDs),
		MissingItemIDs: make([]int64, 0),
	}
	for _, id := range itemIDs {
		if _, ok := labelled[id]; ok {
			res.AnnotatedItems++
			continue
		}
		res.MissingItemIDs = append(res.MissingItemIDs, id)
	}
	if res.TotalItems > 0 {
		res.Percentage = utils.RoundDecimal(float64(res.AnnotatedItems)/float64(res.TotalItems)*100, 2)
	}
	res.IsComplete = res.TotalItems > 0 && len(res.MissingItemIDs) == 0

	return res, nil
}

func (s *Service) fillAudit(audit domain.Audit) domain.Audit {
	if audit.ValidatedBy == "" {
		audit.ValidatedBy = s.cfg.Validator
	}
	if audit.At.IsZero() {
		audit.At = s.now()
	}
	return audit
}

func (s *Service) estimateMinutes(toReview int) int {
	return int(math.Ceil(float64(toReview) * s.cfg.ReviewMinutesPerItem))
}
