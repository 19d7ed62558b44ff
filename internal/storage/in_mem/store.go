package in_mem

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/agreement"
	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
)

type versionKey struct {
	itemID         int64
	goldStandardID string
}

type txKey struct{}

// Store keeps every table in memory behind a single lock. A transaction holds
// the write lock for its whole duration and restores a snapshot on error.
type Store struct {
	storageLock sync.RWMutex

	goldStandards map[string]domain.GoldStandard
	versions      map[versionKey][]domain.PairVersion
	items         map[int64]domain.Item
	runs          map[uuid.UUID]domain.Run
	annotations   map[uuid.UUID][]domain.RunAnnotation
	validations   map[uuid.UUID]domain.DisagreementValidation

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		goldStandards: make(map[string]domain.GoldStandard),
		versions:      make(map[versionKey][]domain.PairVersion),
		items:         make(map[int64]domain.Item),
		runs:          make(map[uuid.UUID]domain.Run),
		annotations:   make(map[uuid.UUID][]domain.RunAnnotation),
		validations:   make(map[uuid.UUID]domain.DisagreementValidation),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	snap := s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) Healthy(ctx context.Context) bool {
	return true
}

func (s *Store) Close() {}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

func (s *Store) lock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.storageLock.Lock()
	return s.storageLock.Unlock
}

func (s *Store) rlock(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.storageLock.RLock()
	return s.storageLock.RUnlock
}

type snapshot struct {
	goldStandards map[string]domain.GoldStandard
	versions      map[versionKey][]domain.PairVersion
	runs          map[uuid.UUID]domain.Run
	validations   map[uuid.UUID]domain.DisagreementValidation
}

// items and annotations are never written inside a transaction
func (s *Store) snapshot() snapshot {
	versions := make(map[versionKey][]domain.PairVersion, len(s.versions))
	for k, v := range s.versions {
		versions[k] = slices.Clone(v)
	}
	runs := make(map[uuid.UUID]domain.Run, len(s.runs))
	for k, v := range s.runs {
		runs[k] = v
	}
	validations := make(map[uuid.UUID]domain.DisagreementValidation, len(s.validations))
	for k, v := range s.validations {
		validations[k] = v
	}
	goldStandards := make(map[string]domain.GoldStandard, len(s.goldStandards))
	for k, v := range s.goldStandards {
		goldStandards[k] = v
	}

	return snapshot{
		goldStandards: goldStandards,
		versions:      versions,
		runs:          runs,
		validations:   validations,
	}
}

func (s *Store) restore(snap snapshot) {
	s.goldStandards = snap.goldStandards
	s.versions = snap.versions
	s.runs = snap.runs
	s.validations = snap.validations
}

// PutItems registers annotated items, replacing existing ones with the same id.
func (s *Store) PutItems(items ...domain.Item) {
	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	for _, it := range items {
		s.items[it.ID] = it
	}
}

func (s *Store) SaveItems(ctx context.Context, items ...domain.Item) error {
	s.PutItems(items...)
	return nil
}

func (s *Store) SaveRun(ctx context.Context, run domain.Run, annotations []domain.RunAnnotation) (*domain.Run, error) {
	s.storageLock.RLock()
	_, exists := s.runs[run.ID]
	s.storageLock.RUnlock()
	if exists && run.ID != uuid.Nil {
		return nil, apperr.NewConflict(fmt.Sprintf("run %s already exists", run.ID))
	}
	saved := s.PutRun(run, annotations)
	return &saved, nil
}

// PutRun registers a run with its annotations. The raw kappa is computed from
// the annotations when it is not set.
func (s *Store) PutRun(run domain.Run, annotations []domain.RunAnnotation) domain.Run {
	s.storageLock.Lock()
	defer s.storageLock.Unlock()

	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	stored := make([]domain.RunAnnotation, len(annotations))
	manual := make([]string, len(annotations))
	automated := make([]string, len(annotations))
	for i, a := range annotations {
		a.RunID = run.ID
		stored[i] = a
		manual[i] = a.ManualLabel
		automated[i] = a.AutomatedLabel
	}
	slices.SortFunc(stored, func(a, b domain.RunAnnotation) int {
		return cmp.Compare(a.ItemID, b.ItemID)
	})

	if run.Kappa == 0 && len(annotations) > 0 {
		if k, err := agreement.Kappa(automated, manual); err == nil {
			run.Kappa = k
		}
	}

	s.runs[run.ID] = run
	s.annotations[run.ID] = stored
	slog.Debug("Registered run", "run_id", run.ID, "annotations", len(stored))

	return run
}
