package in_mem

import (
	"context"
	"errors"
	"testing"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedVersion(t *testing.T, s *Store, itemID int64, gsID, label string) {
	t.Helper()
	err := s.InsertInitialVersions(context.Background(), []domain.PairVersion{
		domain.InitialVersion(itemID, gsID, label, domain.Audit{ValidatedBy: "analyst"}),
	})
	require.NoError(t, err)
}

func assertSingleCurrent(t *testing.T, s *Store, itemID int64, gsID string) {
	t.Helper()
	history, err := s.VersionHistory(context.Background(), itemID, gsID)
	require.NoError(t, err)

	var current int
	for _, v := range history {
		if v.IsCurrent {
			current++
		}
	}
	assert.Equal(t, 1, current, "exactly one current version expected")
}

func TestStore_CorrectAndRollback(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedVersion(t, s, 1, "gs", "REFLET")

	v2, err := s.CorrectVersion(ctx, 1, "gs", "ENGAGEMENT", domain.Audit{ValidatedBy: "analyst", Notes: "fix"})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.True(t, v2.IsCurrent)
	assertSingleCurrent(t, s, 1, "gs")

	v3, err := s.CorrectVersion(ctx, 1, "gs", "EXPLICATION", domain.Audit{ValidatedBy: "analyst"})
	require.NoError(t, err)
	assert.Equal(t, 3, v3.Version)
	assertSingleCurrent(t, s, 1, "gs")

	out, err := s.RollbackVersion(ctx, 1, "gs")
	require.NoError(t, err)
	assert.True(t, out.RolledBack)
	assert.Equal(t, 3, out.Removed.Version)
	assert.Equal(t, "ENGAGEMENT", out.Current.Label)
	assertSingleCurrent(t, s, 1, "gs")

	cur, err := s.CurrentVersion(ctx, 1, "gs")
	require.NoError(t, err)
	assert.Equal(t, 2, cur.Version)
	assert.Equal(t, "ENGAGEMENT", cur.Label)

	history, err := s.VersionHistory(ctx, 1, "gs")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, 2, history[0].Version)
}

func TestStore_RollbackAtFirstVersionIsNoop(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedVersion(t, s, 1, "gs", "REFLET")

	out, err := s.RollbackVersion(ctx, 1, "gs")
	require.NoError(t, err)
	assert.False(t, out.RolledBack)
	assert.Equal(t, 1, out.Current.Version)

	cur, err := s.CurrentVersion(ctx, 1, "gs")
	require.NoError(t, err)
	assert.Equal(t, "REFLET", cur.Label)
}

func TestStore_CorrectWithoutCurrent(t *testing.T) {
	s := NewStore()

	_, err := s.CorrectVersion(context.Background(), 9, "gs", "X", domain.Audit{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = s.RollbackVersion(context.Background(), 9, "gs")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	cur, err := s.CurrentVersion(context.Background(), 9, "gs")
	require.NoError(t, err)
	assert.Nil(t, cur)
}

func TestStore_InsertInitialVersionsConflict(t *testing.T) {
	s := NewStore()
	seedVersion(t, s, 1, "gs", "A")

	err := s.InsertInitialVersions(context.Background(), []domain.PairVersion{
		domain.InitialVersion(2, "gs", "B", domain.Audit{}),
		domain.InitialVersion(1, "gs", "C", domain.Audit{}),
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	cur, err := s.CurrentVersion(context.Background(), 2, "gs")
	require.NoError(t, err)
	assert.Nil(t, cur, "batch must be all or nothing")
}

func TestStore_WithinTxRestoresOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	seedVersion(t, s, 1, "gs", "A")
	run := s.PutRun(domain.Run{GoldStandardID: "gs"}, []domain.RunAnnotation{{ItemID: 1, ManualLabel: "A", AutomatedLabel: "B"}})

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.InsertValidation(ctx, domain.DisagreementValidation{RunID: run.ID, ItemID: 1, Decision: domain.DecisionAutomatedCorrect}); err != nil {
			return err
		}
		if _, err := s.CorrectVersion(ctx, 1, "gs", "B", domain.Audit{}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	cur, err := s.CurrentVersion(ctx, 1, "gs")
	require.NoError(t, err)
	assert.Equal(t, 1, cur.Version)
	assert.Equal(t, "A", cur.Label)

	ids, err := s.ValidatedItemIDs(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_InsertValidationTwice(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	runID := uuid.New()

	_, err := s.InsertValidation(ctx, domain.DisagreementValidation{RunID: runID, ItemID: 4, Decision: domain.DecisionAmbiguous})
	require.NoError(t, err)
	_, err = s.InsertValidation(ctx, domain.DisagreementValidation{RunID: runID, ItemID: 4, Decision: domain.DecisionManualCorrect})
	assert.ErrorIs(t, err, apperr.ErrAlreadyResolved)

	list, total, err := s.ListValidations(ctx, runID, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, domain.DecisionAmbiguous, list[0].Decision)
}

func TestStore_CorrectedAgreement(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	run := s.PutRun(domain.Run{GoldStandardID: "gs"}, []domain.RunAnnotation{
		{ItemID: 1, ManualLabel: "A", AutomatedLabel: "A"},
		{ItemID: 2, ManualLabel: "B", AutomatedLabel: "B"},
		{ItemID: 3, ManualLabel: "A", AutomatedLabel: "B"},
		{ItemID: 4, ManualLabel: "B", AutomatedLabel: "A"},
		{ItemID: 5, ManualLabel: "A", AutomatedLabel: "B"},
		{ItemID: 6, ManualLabel: "B", AutomatedLabel: "A"},
	})

	before, err := s.CorrectedAgreement(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, before.Pending)
	assert.InDelta(t, before.KappaRaw, before.KappaCorrected, 1e-9)
	assert.InDelta(t, run.Kappa, before.KappaRaw, 1e-9)

	for itemID, d := range map[int64]domain.Decision{
		3: domain.DecisionAutomatedCorrect,
		4: domain.DecisionAutomatedCorrect,
		5: domain.DecisionManualCorrect,
		6: domain.DecisionAmbiguous,
	} {
		_, err := s.InsertValidation(ctx, domain.DisagreementValidation{RunID: run.ID, ItemID: itemID, Decision: d})
		require.NoError(t, err)
	}

	after, err := s.CorrectedAgreement(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, after.AutomatedCorrect)
	assert.Equal(t, 1, after.ManualCorrect)
	assert.Equal(t, 1, after.Ambiguous)
	assert.Equal(t, 0, after.Pending)
	assert.InDelta(t, before.KappaRaw, after.KappaRaw, 1e-9)
	assert.Greater(t, after.KappaCorrected, after.KappaRaw)

	_, err = s.CorrectedAgreement(ctx, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestStore_UpdateRunAgreement(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	run := s.PutRun(domain.Run{GoldStandardID: "gs"}, nil)

	err := s.UpdateRunAgreement(ctx, run.ID, domain.RunAgreementUpdate{KappaCorrected: 0.7, ValidatedDisagreements: 3, UnjustifiedDisagreements: 1})
	require.NoError(t, err)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got.KappaCorrected)
	assert.InDelta(t, 0.7, *got.KappaCorrected, 1e-9)
	assert.Equal(t, 3, got.ValidatedDisagreements)
	assert.Equal(t, 1, got.UnjustifiedDisagreements)

	assert.ErrorIs(t, s.UpdateRunAgreement(ctx, uuid.New(), domain.RunAgreementUpdate{}), apperr.ErrNotFound)
}

func TestStore_SaveRunDuplicate(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.SaveItems(ctx, domain.Item{ID: 1, CallID: "c1"}))

	run, err := s.SaveRun(ctx, domain.Run{GoldStandardID: "gs"}, []domain.RunAnnotation{
		{ItemID: 1, ManualLabel: "A", AutomatedLabel: "A"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, run.ID)

	_, err = s.SaveRun(ctx, domain.Run{ID: run.ID, GoldStandardID: "gs"}, nil)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}
