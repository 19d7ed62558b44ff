// Package validation implements the arbitration workflow for disagreements
// between manual and automated labels of a test run.
package validation

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage"
	"github.com/DjordjeVuckovic/agreement-lab/internal/telemetry"
	"github.com/DjordjeVuckovic/agreement-lab/pkg/pagination"
	"github.com/DjordjeVuckovic/agreement-lab/pkg/utils"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	msgNoDisagreements = "run has no disagreements"
	msgAllResolved     = "all disagreements are resolved"
)

type Store interface {
	storage.Transactor
	storage.ItemSource
	storage.RunRepository
	storage.ValidationRepository
	storage.CorrectedAgreementSource
}

// VersionStore applies gold standard corrections on behalf of the workflow.
// Apply* run inside the workflow transaction, *Committed after it commits.
type VersionStore interface {
	ApplyCorrection(ctx context.Context, itemID int64, goldStandardID, label string, audit domain.Audit) (*domain.PairVersion, error)
	ApplyRollback(ctx context.Context, itemID int64, goldStandardID string) (*domain.RollbackOutcome, error)
	CorrectionCommitted(v *domain.PairVersion)
	RollbackCommitted(itemID int64, goldStandardID string, out *domain.RollbackOutcome)
}

type Config struct {
	// Validator is recorded when the input does not name who arbitrated.
	Validator string
}

type Service struct {
	store    Store
	versions VersionStore
	cfg      Config
	metrics  *telemetry.Recorder
	now      func() time.Time
}

func NewService(store Store, versions VersionStore, cfg Config, metrics *telemetry.Recorder) *Service {
	if cfg.Validator == "" {
		cfg.Validator = "analyst"
	}
	return &Service{
		store:    store,
		versions: versions,
		cfg:      cfg,
		metrics:  metrics,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListPending returns the disagreements of a run that have no decision yet.
func (s *Service) ListPending(ctx context.Context, runID uuid.UUID) (*domain.PendingList, error) {
	var annotations []domain.RunAnnotation
	var validated []int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		annotations, err = s.store.RunAnnotations(gctx, runID)
		return err
	})
	g.Go(func() error {
		var err error
		validated, err = s.store.ValidatedItemIDs(gctx, runID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &domain.PendingList{RunID: runID, Items: make([]domain.PendingDisagreement, 0)}
	var disagreements int
	for _, a := range annotations {
		if !a.IsDisagreement() {
			continue
		}
		disagreements++
		if _, done := slices.BinarySearch(validated, a.ItemID); done {
			continue
		}
		res.Items = append(res.Items, domain.PendingDisagreement{RunAnnotation: a})
	}

	switch {
	case disagreements == 0:
		res.Message = msgNoDisagreements
	case len(res.Items) == 0:
		res.Message = msgAllResolved
	}
	return res, nil
}

// Validate records the decision for one disagreement. For an automated-correct
// decision the gold standard label is corrected in the same transaction. The
// corrected agreement is recomputed and written onto the run. Both labels come
// from the run; labels sent by the caller must match them.
func (s *Service) Validate(ctx context.Context, in domain.ValidationInput) (*domain.ValidationOutcome, error) {
	if in.ValidatedBy == "" {
		in.ValidatedBy = s.cfg.Validator
	}
	if err := domain.Validate(in); err != nil {
		return nil, apperr.NewValidationWrap("invalid validation input", err)
	}

	var out domain.ValidationOutcome
	var run *domain.Run
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		run, err = s.store.GetRun(ctx, in.RunID)
		if err != nil {
			return err
		}
		annotation, err := s.disagreement(ctx, in.RunID, in.ItemID)
		if err != nil {
			return err
		}
		rec, err := newRecord(in, run, annotation, s.now())
		if err != nil {
			return err
		}

		saved, err := s.store.InsertValidation(ctx, rec)
		if err != nil {
			return err
		}
		out.Validation = *saved

		if saved.Decision == domain.DecisionAutomatedCorrect {
			v, err := s.versions.ApplyCorrection(ctx, saved.ItemID, run.GoldStandardID, saved.CorrectedLabel, domain.Audit{
				ValidatedBy: saved.ValidatedBy,
				Notes:       saved.Comment,
				Confidence:  saved.AutomatedConfidence,
				At:          saved.ValidatedAt,
			})
			if err != nil {
				return err
			}
			out.Correction = v
		}

		agreement, err := s.refreshRun(ctx, run)
		if err != nil {
			return err
		}
		out.Agreement = *agreement
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("validate item %d of run %s: %w", in.ItemID, in.RunID, err)
	}

	if out.Correction != nil {
		s.versions.CorrectionCommitted(out.Correction)
	}
	s.metrics.ValidationRecorded(out.Validation.Decision)
	s.metrics.RunKappa(run.GoldStandardID, out.Agreement.KappaRaw, out.Agreement.KappaCorrected)
	slog.Info("Disagreement resolved",
		"run_id", in.RunID,
		"item_id", in.ItemID,
		"decision", out.Validation.Decision,
		"case", out.Validation.Decision.Case(),
		"kappa_corrected", out.Agreement.KappaCorrected,
	)
	return &out, nil
}

// Rollback returns a resolved disagreement to pending. An automated-correct
// decision also rolls the gold standard label back one version.
func (s *Service) Rollback(ctx context.Context, validationID uuid.UUID) (*domain.ValidationRollback, error) {
	var out domain.ValidationRollback
	var run *domain.Run
	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		v, err := s.store.GetValidation(ctx, validationID)
		if err != nil {
			return err
		}
		out.Validation = *v

		if v.Decision == domain.DecisionAutomatedCorrect {
			rb, err := s.versions.ApplyRollback(ctx, v.ItemID, v.GoldStandardID)
			if err != nil {
				return err
			}
			out.Version = rb
		}

		if err := s.store.DeleteValidation(ctx, validationID); err != nil {
			return err
		}

		run, err = s.store.GetRun(ctx, v.RunID)
		if err != nil {
			return err
		}
		agreement, err := s.refreshRun(ctx, run)
		if err != nil {
			return err
		}
		out.Agreement = *agreement
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rollback validation %s: %w", validationID, err)
	}

	if out.Version != nil {
		s.versions.RollbackCommitted(out.Validation.ItemID, out.Validation.GoldStandardID, out.Version)
	}
	s.metrics.ValidationRolledBack(out.Validation.Decision)
	s.metrics.RunKappa(run.GoldStandardID, out.Agreement.KappaRaw, out.Agreement.KappaCorrected)
	slog.Info("Disagreement returned to pending",
		"run_id", out.Validation.RunID,
		"item_id", out.Validation.ItemID,
		"decision", out.Validation.Decision,
	)
	return &out, nil
}

func (s *Service) CorrectedKappa(ctx context.Context, runID uuid.UUID) (*domain.CorrectedAgreement, error) {
	return s.store.CorrectedAgreement(ctx, runID)
}

// List pages through the decisions of a run, oldest first.
func (s *Service) List(ctx context.Context, runID uuid.UUID, page pagination.OffsetRequest) (*pagination.OffsetResult[domain.DisagreementValidation], error) {
	page.Normalize()
	if _, err := s.store.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	items, total, err := s.store.ListValidations(ctx, runID, page.Offset(), page.Size)
	if err != nil {
		return nil, err
	}
	return pagination.NewOffsetResult(items, total, page), nil
}

func (s *Service) Stats(ctx context.Context, runID uuid.UUID) (*domain.ValidationStats, error) {
	var agreement *domain.CorrectedAgreement
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agreement, err = s.store.CorrectedAgreement(gctx, runID)
		return err
	})
	g.Go(func() error {
		var err error
		_, total, err = s.store.ListValidations(gctx, runID, 0, 1)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &domain.ValidationStats{
		RunID:              runID,
		TotalDisagreements: agreement.Validated() + agreement.Pending,
		TotalValidated:     int(total),
		Pending:            agreement.Pending,
		AutomatedCorrect:   agreement.AutomatedCorrect,
		ManualCorrect:      agreement.ManualCorrect,
		Ambiguous:          agreement.Ambiguous,
		KappaRaw:           agreement.KappaRaw,
		KappaCorrected:     agreement.KappaCorrected,
		KappaImprovement:   utils.RoundDecimal(agreement.KappaCorrected-agreement.KappaRaw, 4),
	}
	// shares are of every disagreement, pending ones included
	if stats.TotalDisagreements > 0 {
		stats.AutomatedPct = percentage(agreement.AutomatedCorrect, stats.TotalDisagreements)
		stats.ManualPct = percentage(agreement.ManualCorrect, stats.TotalDisagreements)
		stats.AmbiguousPct = percentage(agreement.Ambiguous, stats.TotalDisagreements)
	}
	return stats, nil
}

// disagreement finds the annotation an input refers to. Items on which both
// labels agree cannot be arbitrated.
func (s *Service) disagreement(ctx context.Context, runID uuid.UUID, itemID int64) (*domain.RunAnnotation, error) {
	annotations, err := s.store.RunAnnotations(ctx, runID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(annotations, func(a domain.RunAnnotation) bool {
		return a.ItemID == itemID
	})
	if i < 0 {
		return nil, apperr.NewNotFound("run item", fmt.Sprintf("%s/%d", runID, itemID))
	}
	if !annotations[i].IsDisagreement() {
		return nil, apperr.NewValidation(fmt.Sprintf("item %d of run %s is not a disagreement", itemID, runID))
	}
	return &annotations[i], nil
}

func (s *Service) refreshRun(ctx context.Context, run *domain.Run) (*domain.CorrectedAgreement, error) {
	agreement, err := s.store.CorrectedAgreement(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateRunAgreement(ctx, run.ID, agreement.RunUpdate()); err != nil {
		return nil, err
	}
	return agreement, nil
}

func newRecord(in domain.ValidationInput, run *domain.Run, a *domain.RunAnnotation, at time.Time) (domain.DisagreementValidation, error) {
	if err := matchesRun("manual_label", in.ManualLabel, a.ManualLabel, a.ItemID); err != nil {
		return domain.DisagreementValidation{}, err
	}
	if err := matchesRun("automated_label", in.AutomatedLabel, a.AutomatedLabel, a.ItemID); err != nil {
		return domain.DisagreementValidation{}, err
	}

	rec := domain.DisagreementValidation{
		RunID:               in.RunID,
		ItemID:              in.ItemID,
		GoldStandardID:      run.GoldStandardID,
		ManualLabel:         a.ManualLabel,
		AutomatedLabel:      a.AutomatedLabel,
		AutomatedConfidence: in.AutomatedConfidence,
		AutomatedRationale:  in.AutomatedRationale,
		Decision:            in.Decision,
		Comment:             in.Comment,
		Verbatim:            in.Verbatim,
		ContextBefore:       in.ContextBefore,
		ContextAfter:        in.ContextAfter,
		ValidatedBy:         in.ValidatedBy,
		ValidatedAt:         at,
	}
	if in.Decision == domain.DecisionAutomatedCorrect {
		rec.CorrectedLabel = in.CorrectedLabel
		if rec.CorrectedLabel == "" {
			rec.CorrectedLabel = a.AutomatedLabel
		}
	}
	if rec.AutomatedConfidence == nil {
		rec.AutomatedConfidence = a.AutomatedConfidence
	}
	if rec.AutomatedRationale == "" {
		rec.AutomatedRationale = a.AutomatedRationale
	}
	if rec.Verbatim == "" {
		rec.Verbatim = a.Verbatim
	}
	if rec.ContextBefore == "" {
		rec.ContextBefore = a.ContextBefore
	}
	if rec.ContextAfter == "" {
		rec.ContextAfter = a.ContextAfter
	}
	return rec, nil
}

// matchesRun rejects a caller label that contradicts the one stored on the run.
// An empty label is taken from the run.
func matchesRun(field, given, stored string, itemID int64) error {
	if given == "" || given == stored {
		return nil
	}
	return apperr.NewValidation(fmt.Sprintf("%s %q does not match %q recorded for item %d", field, given, stored, itemID))
}

func percentage(n, total int) float64 {
	return utils.RoundDecimal(float64(n)/float64(total)*100, 2)
}
