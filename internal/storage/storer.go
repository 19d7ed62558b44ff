package storage

import (
	"context"

	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
)

// Transactor runs fn inside a single store transaction. Repository calls made
// with the context passed to fn join that transaction; any error rolls it back.
// Nested calls reuse the outer transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type GoldStandardRepository interface {
	CreateGoldStandard(ctx context.Context, gs domain.GoldStandard) (*domain.GoldStandard, error)
	GetGoldStandard(ctx context.Context, id string) (*domain.GoldStandard, error)
	ListGoldStandards(ctx context.Context) ([]domain.GoldStandard, error)
	UpdateGoldStandardMetadata(ctx context.Context, id string, meta domain.GoldStandardMetadata) (*domain.GoldStandard, error)
}

// VersionRepository owns the versioned labels. CorrectVersion and
// RollbackVersion are atomic per (item, gold standard) key.
type VersionRepository interface {
	// CurrentVersion returns nil, nil when the item has no label yet.
	CurrentVersion(ctx context.Context, itemID int64, goldStandardID string) (*domain.PairVersion, error)
	CurrentVersions(ctx context.Context, goldStandardID string) ([]domain.PairVersion, error)
	VersionHistory(ctx context.Context, itemID int64, goldStandardID string) ([]domain.PairVersion, error)
	// InsertInitialVersions stores version 1 labels. Fails with a conflict if
	// any item already has a current version.
	InsertInitialVersions(ctx context.Context, versions []domain.PairVersion) error
	CorrectVersion(ctx context.Context, itemID int64, goldStandardID, label string, audit domain.Audit) (*domain.PairVersion, error)
	RollbackVersion(ctx context.Context, itemID int64, goldStandardID string) (*domain.RollbackOutcome, error)
}

// ItemSource exposes the annotated items and run annotations produced by the
// ingestion pipeline. Read-only.
type ItemSource interface {
	ItemIDs(ctx context.Context) ([]int64, error)
	RunAnnotations(ctx context.Context, runID uuid.UUID) ([]domain.RunAnnotation, error)
}

// Ingestor loads items and runs produced outside this service, typically from
// a seed file.
type Ingestor interface {
	SaveItems(ctx context.Context, items ...domain.Item) error
	SaveRun(ctx context.Context, run domain.Run, annotations []domain.RunAnnotation) (*domain.Run, error)
}

type RunRepository interface {
	GetRun(ctx context.Context, runID uuid.UUID) (*domain.Run, error)
	UpdateRunAgreement(ctx context.Context, runID uuid.UUID, update domain.RunAgreementUpdate) error
}

type ValidationRepository interface {
	// InsertValidation fails with apperr.ErrAlreadyResolved when the (run, item)
	// pair already has a record.
	InsertValidation(ctx context.Context, v domain.DisagreementValidation) (*domain.DisagreementValidation, error)
	GetValidation(ctx context.Context, id uuid.UUID) (*domain.DisagreementValidation, error)
	DeleteValidation(ctx context.Context, id uuid.UUID) error
	ListValidations(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.DisagreementValidation, int64, error)
	ValidatedItemIDs(ctx context.Context, runID uuid.UUID) ([]int64, error)
}

// CorrectedAgreementSource recomputes kappa for a run with arbitrated
// disagreements applied.
type CorrectedAgreementSource interface {
	CorrectedAgreement(ctx context.Context, runID uuid.UUID) (*domain.CorrectedAgreement, error)
}

// Backend is a complete store implementation.
type Backend interface {
	Transactor
	GoldStandardRepository
	VersionRepository
	ItemSource
	Ingestor
	RunRepository
	ValidationRepository
	CorrectedAgreementSource

	Healthy(ctx context.Context) bool
	Close()
}

type Type string

const (
	PG    Type = "pg"
	InMem Type = "in_mem"
)

type StorerError string

const (
	ErrUnsupportedStorer StorerError = "unsupported storer type: %s"
)

func (e StorerError) Error() string {
	return string(e)
}
