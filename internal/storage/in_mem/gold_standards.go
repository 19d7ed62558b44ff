package in_mem

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
)

func (s *Store) CreateGoldStandard(ctx context.Context, gs domain.GoldStandard) (*domain.GoldStandard, error) {
	unlock := s.lock(ctx)
	defer unlock()

	if _, ok := s.goldStandards[gs.ID]; ok {
		return nil, apperr.NewConflict(fmt.Sprintf("gold standard %s already exists", gs.ID))
	}
	if gs.CreatedAt.IsZero() {
		gs.CreatedAt = s.now()
	}
	s.goldStandards[gs.ID] = gs

	return &gs, nil
}

func (s *Store) GetGoldStandard(ctx context.Context, id string) (*domain.GoldStandard, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	gs, ok := s.goldStandards[id]
	if !ok {
		return nil, apperr.NewNotFound("gold standard", id)
	}
	return &gs, nil
}

func (s *Store) ListGoldStandards(ctx context.Context) ([]domain.GoldStandard, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	out := make([]domain.GoldStandard, 0, len(s.goldStandards))
	for _, gs := range s.goldStandards {
		out = append(out, gs)
	}
	slices.SortFunc(out, func(a, b domain.GoldStandard) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) UpdateGoldStandardMetadata(ctx context.Context, id string, meta domain.GoldStandardMetadata) (*domain.GoldStandard, error) {
	unlock := s.lock(ctx)
	defer unlock()

	gs, ok := s.goldStandards[id]
	if !ok {
		return nil, apperr.NewNotFound("gold standard", id)
	}
	meta.Apply(&gs)
	s.goldStandards[id] = gs

	return &gs, nil
}
