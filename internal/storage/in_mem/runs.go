package in_mem

import (
	"context"
	"slices"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
)

func (s *Store) ItemIDs(ctx context.Context) ([]int64, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	ids := make([]int64, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// RunAnnotations fills verbatim and context from the item when the annotation
// does not carry them.
func (s *Store) RunAnnotations(ctx context.Context, runID uuid.UUID) ([]domain.RunAnnotation, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, apperr.NewNotFound("run", runID)
	}

	out := slices.Clone(s.annotations[runID])
	for i := range out {
		item, ok := s.items[out[i].ItemID]
		if !ok {
			continue
		}
		if out[i].CallID == "" {
			out[i].CallID = item.CallID
		}
		if out[i].Verbatim == "" {
			out[i].Verbatim = item.Verbatim(run.Variable)
		}
		if out[i].ContextBefore == "" {
			out[i].ContextBefore = item.ContextBefore
		}
		if out[i].ContextAfter == "" {
			out[i].ContextAfter = item.ContextAfter
		}
	}
	return out, nil
}

func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*domain.Run, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	run, ok := s.runs[runID]
	if !ok {
		return nil, apperr.NewNotFound("run", runID)
	}
	return &run, nil
}

func (s *Store) UpdateRunAgreement(ctx context.Context, runID uuid.UUID, update domain.RunAgreementUpdate) error {
	unlock := s.lock(ctx)
	defer unlock()

	run, ok := s.runs[runID]
	if !ok {
		return apperr.NewNotFound("run", runID)
	}
	kappa := update.KappaCorrected
	run.KappaCorrected = &kappa
	run.ValidatedDisagreements = update.ValidatedDisagreements
	run.UnjustifiedDisagreements = update.UnjustifiedDisagreements
	s.runs[runID] = run

	return nil
}
