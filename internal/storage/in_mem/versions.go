package in_mem

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
)

func (s *Store) CurrentVersion(ctx context.Context, itemID int64, goldStandardID string) (*domain.PairVersion, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	cur, _ := current(s.versions[versionKey{itemID, goldStandardID}])
	return cur, nil
}

func (s *Store) CurrentVersions(ctx context.Context, goldStandardID string) ([]domain.PairVersion, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	out := make([]domain.PairVersion, 0)
	for k, versions := range s.versions {
		if k.goldStandardID != goldStandardID {
			continue
		}
		if cur, _ := current(versions); cur != nil {
			out = append(out, *cur)
		}
	}
	slices.SortFunc(out, func(a, b domain.PairVersion) int {
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	return out, nil
}

func (s *Store) VersionHistory(ctx context.Context, itemID int64, goldStandardID string) ([]domain.PairVersion, error) {
	unlock := s.rlock(ctx)
	defer unlock()

	versions := slices.Clone(s.versions[versionKey{itemID, goldStandardID}])
	slices.Reverse(versions)
	return versions, nil
}

func (s *Store) InsertInitialVersions(ctx context.Context, versions []domain.PairVersion) error {
	unlock := s.lock(ctx)
	defer unlock()

	seen := make(map[versionKey]struct{}, len(versions))
	for _, v := range versions {
		k := versionKey{v.ItemID, v.GoldStandardID}
		_, dup := seen[k]
		if cur, _ := current(s.versions[k]); cur != nil || dup {
			return apperr.NewConflict(fmt.Sprintf("item %d already has a label in gold standard %s", v.ItemID, v.GoldStandardID))
		}
		seen[k] = struct{}{}
	}
	for _, v := range versions {
		k := versionKey{v.ItemID, v.GoldStandardID}
		v.Version = 1
		v.IsCurrent = true
		s.versions[k] = append(s.versions[k], v)
	}
	return nil
}

func (s *Store) CorrectVersion(ctx context.Context, itemID int64, goldStandardID, label string, audit domain.Audit) (*domain.PairVersion, error) {
	unlock := s.lock(ctx)
	defer unlock()

	k := versionKey{itemID, goldStandardID}
	versions := s.versions[k]
	cur, idx := current(versions)
	if cur == nil {
		return nil, apperr.NewNotFound("gold standard version", fmt.Sprintf("%d/%s", itemID, goldStandardID))
	}

	if audit.At.IsZero() {
		audit.At = s.now()
	}
	next := cur.NextVersion(label, audit)
	versions[idx].IsCurrent = false
	s.versions[k] = append(versions, next)

	return &next, nil
}

func (s *Store) RollbackVersion(ctx context.Context, itemID int64, goldStandardID string) (*domain.RollbackOutcome, error) {
	unlock := s.lock(ctx)
	defer unlock()

	k := versionKey{itemID, goldStandardID}
	versions := s.versions[k]
	cur, idx := current(versions)
	if cur == nil {
		return nil, apperr.NewNotFound("gold standard version", fmt.Sprintf("%d/%s", itemID, goldStandardID))
	}
	if cur.Version <= 1 {
		return &domain.RollbackOutcome{RolledBack: false, Current: cur}, nil
	}

	prev := slices.IndexFunc(versions, func(v domain.PairVersion) bool {
		return v.Version == cur.Version-1
	})
	if prev < 0 {
		return nil, apperr.NewNotFound("gold standard version", fmt.Sprintf("%d/%s v%d", itemID, goldStandardID, cur.Version-1))
	}

	removed := *cur
	versions[prev].IsCurrent = true
	restored := versions[prev]
	s.versions[k] = slices.Delete(versions, idx, idx+1)

	return &domain.RollbackOutcome{RolledBack: true, Removed: &removed, Current: &restored}, nil
}

func current(versions []domain.PairVersion) (*domain.PairVersion, int) {
	for i := len(versions) - 1; i >= 0; i-- {
		if versions[i].IsCurrent {
			v := versions[i]
			return &v, i
		}
	}
	return nil, -1
}
