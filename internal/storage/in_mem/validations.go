package in_mem

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
)

func (s *Store) InsertValidation(ctx context.Context, v domain.DisagreementValidation) (*domain.DisagreementValidation, error) {
	unlock := s.lock(ctx)
	defer unlock()

	for _, existing := range s.validations {
		if existing.RunID == v.RunID && existing.ItemID == v.ItemID {
			return nil, apperr.NewAlreadyResolved(fmt.Sprintf("item %d of run %s is already validated", v.ItemID, v.RunID))
		}
	}

	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.ValidatedAt.IsZero() {
		v.ValidatedAt = s.now()
	}
	s.validations[v.ID] = v

	return &v, nil
}

func (s *Store) GetValidation(ctx context.Context, id uuid.UUID) (*domain.DisagreementValidation, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	v, ok := s.validations[id]
	if !ok {
		return nil, apperr.NewNotFound("validation", id)
	}
	return &v, nil
}

func (s *Store) DeleteValidation(ctx context.Context, id uuid.UUID) error {
	unlock := s.lock(ctx)
	defer unlock()

	if _, ok := s.validations[id]; !ok {
		return apperr.NewNotFound("validation", id)
	}
	delete(s.validations, id)
	return nil
}

func (s *Store) ListValidations(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.DisagreementValidation, int64, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	all := s.runValidations(runID)
	total := int64(len(all))

	if offset >= len(all) {
		return []domain.DisagreementValidation{}, total, nil
	}
	end := len(all)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return all[offset:end], total, nil
}

func (s *Store) ValidatedItemIDs(ctx context.Context, runID uuid.UUID) ([]int64, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	ids := make([]int64, 0)
	for _, v := range s.runValidations(runID) {
		ids = append(ids, v.ItemID)
	}
	slices.Sort(ids)
	return ids, nil
}

// oldest first
func (s *Store) runValidations(runID uuid.UUID) []domain.DisagreementValidation {
	out := make([]domain.DisagreementValidation, 0)
	for _, v := range s.validations {
		if v.RunID == runID {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, func(a, b domain.DisagreementValidation) int {
		if c := a.ValidatedAt.Compare(b.ValidatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	return out
}
