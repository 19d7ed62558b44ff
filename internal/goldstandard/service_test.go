package goldstandard

import (
	"context"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/DjordjeVuckovic/agreement-lab/internal/storage/in_mem"
	"github.com/DjordjeVuckovic/agreement-lab/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *in_mem.Store) {
	t.Helper()
	store := in_mem.NewStore()
	svc := NewService(store, Config{}, telemetry.NewRecorder(prometheus.NewRegistry()))
	return svc, store
}

func createGoldStandard(t *testing.T, svc *Service, id string) {
	t.Helper()
	_, err := svc.Create(context.Background(), domain.GoldStandard{
		ID:       id,
		Name:     "strategies " + id,
		Variable: domain.VariableX,
		Modality: domain.ModalityAudioText,
	})
	require.NoError(t, err)
}

func TestService_CorrectRollbackRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createGoldStandard(t, svc, "gs")

	_, err := svc.Annotate(ctx, 7, "gs", "REFLET", domain.Audit{})
	require.NoError(t, err)

	before, err := svc.Current(ctx, 7, "gs")
	require.NoError(t, err)

	corrected, err := svc.Correct(ctx, 7, "gs", "X", domain.Audit{Notes: "recheck"})
	require.NoError(t, err)
	assert.Equal(t, before.Version+1, corrected.Version)
	assert.Equal(t, "analyst", corrected.ValidatedBy)

	out, err := svc.Rollback(ctx, 7, "gs")
	require.NoError(t, err)
	assert.True(t, out.RolledBack)

	after, err := svc.Current(ctx, 7, "gs")
	require.NoError(t, err)
	assert.Equal(t, before.Label, after.Label)
	assert.Equal(t, before.Version, after.Version)

	// a second rollback without a correction in between does nothing
	out, err = svc.Rollback(ctx, 7, "gs")
	require.NoError(t, err)
	assert.False(t, out.RolledBack)
	assert.Equal(t, 1, out.Current.Version)
}

func TestService_VersionInvariantAcrossSequence(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createGoldStandard(t, svc, "gs")
	_, err := svc.Annotate(ctx, 1, "gs", "L0", domain.Audit{})
	require.NoError(t, err)

	ops := []string{"c", "c", "r", "c", "r", "r", "r", "c", "c", "c", "r"}
	for i, op := range ops {
		switch op {
		case "c":
			_, err = svc.Correct(ctx, 1, "gs", fmt.Sprintf("L%d", i+1), domain.Audit{})
		case "r":
			_, err = svc.Rollback(ctx, 1, "gs")
		}
		require.NoError(t, err)

		history, err := svc.History(ctx, 1, "gs")
		require.NoError(t, err)
		var current int
		for _, v := range history {
			if v.IsCurrent {
				current++
			}
		}
		require.Equal(t, 1, current, "after op %d", i)
		for j := 1; j < len(history); j++ {
			assert.Greater(t, history[j-1].Version, history[j].Version)
		}
	}
}

func TestService_CorrectErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createGoldStandard(t, svc, "gs")

	_, err := svc.Correct(ctx, 1, "gs", "", domain.Audit{})
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Correct(ctx, 1, "gs", "A", domain.Audit{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Rollback(ctx, 1, "gs")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	cur, err := svc.Current(ctx, 1, "gs")
	require.NoError(t, err)
	assert.Nil(t, cur)

	_, err = svc.Current(ctx, 1, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_Derive(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	createGoldStandard(t, svc, "source")

	predicted := make(map[int64]string, 100)
	for id := int64(1); id <= 100; id++ {
		store.PutItems(domain.Item{ID: id, CallID: "c"})
		_, err := svc.Annotate(ctx, id, "source", "A", domain.Audit{})
		require.NoError(t, err)
		if id <= 82 {
			predicted[id] = "A"
		} else {
			predicted[id] = "B"
		}
	}

	res, err := svc.Derive(ctx, DeriveRequest{
		SourceGoldStandardID: "source",
		Target:               domain.GoldStandard{ID: "target", Name: "derived", Variable: domain.VariableX, Modality: domain.ModalityTextOnly},
		PredictedLabels:      predicted,
	})
	require.NoError(t, err)
	assert.Equal(t, 82, res.CopiedCount)
	assert.Equal(t, 18, res.ToReviewCount)
	assert.Equal(t, 27, res.EstimatedTimeMinutes)
	assert.Len(t, res.ToReview, 18)
	assert.Equal(t, "B", res.ToReview[0].PredictedLabel)

	v, err := svc.Current(ctx, 1, "target")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, domain.SystemValidator, v.ValidatedBy)
	assert.Equal(t, 1, v.Version)

	c, err := svc.Completeness(ctx, "target")
	require.NoError(t, err)
	assert.Equal(t, 100, c.TotalItems)
	assert.Equal(t, 82, c.AnnotatedItems)
	assert.Len(t, c.MissingItemIDs, 18)
	assert.Equal(t, int64(83), c.MissingItemIDs[0])
	assert.InDelta(t, 82.0, c.Percentage, 1e-9)
	assert.False(t, c.IsComplete)
}

func TestService_DeriveFailsAtomically(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	createGoldStandard(t, svc, "source")
	createGoldStandard(t, svc, "taken")

	_, err := svc.Derive(ctx, DeriveRequest{
		SourceGoldStandardID: "source",
		Target:               domain.GoldStandard{ID: "taken", Name: "dup", Variable: domain.VariableX, Modality: domain.ModalityAudio},
	})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = svc.Derive(ctx, DeriveRequest{
		SourceGoldStandardID: "source",
		Target:               domain.GoldStandard{ID: "bad", Name: "bad", Variable: "Z", Modality: domain.ModalityAudio},
	})
	var ve *apperr.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Derive(ctx, DeriveRequest{
		SourceGoldStandardID: "missing",
		Target:               domain.GoldStandard{ID: "new", Name: "new", Variable: domain.VariableX, Modality: domain.ModalityAudio},
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Get(ctx, "new")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestService_DeriveFromRun(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	createGoldStandard(t, svc, "source")
	for id := int64(1); id <= 3; id++ {
		_, err := svc.Annotate(ctx, id, "source", "A", domain.Audit{})
		require.NoError(t, err)
	}
	run := store.PutRun(domain.Run{GoldStandardID: "source", Variable: domain.VariableX}, []domain.RunAnnotation{
		{ItemID: 1, ManualLabel: "A", AutomatedLabel: "A"},
		{ItemID: 2, ManualLabel: "A", AutomatedLabel: "B"},
		{ItemID: 3, ManualLabel: "A", AutomatedLabel: "A"},
	})

	res, err := svc.DeriveFromRun(ctx, DeriveFromRunRequest{
		RunID:  run.ID,
		Target: domain.GoldStandard{ID: "v2", Name: "v2", Variable: domain.VariableX, Modality: domain.ModalityAudio},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.CopiedCount)
	assert.Equal(t, 1, res.ToReviewCount)
	assert.Equal(t, 2, res.EstimatedTimeMinutes)
}

func TestService_CompletenessEmpty(t *testing.T) {
	svc, _ := newTestService(t)
	createGoldStandard(t, svc, "gs")

	c, err := svc.Completeness(context.Background(), "gs")
	require.NoError(t, err)
	assert.Equal(t, 0, c.TotalItems)
	assert.Zero(t, c.Percentage)
	assert.False(t, c.IsComplete)
	assert.NotNil(t, c.MissingItemIDs)
}

func TestService_CompletenessRounding(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	createGoldStandard(t, svc, "gs")
	store.PutItems(domain.Item{ID: 1}, domain.Item{ID: 2}, domain.Item{ID: 3})
	_, err := svc.Annotate(ctx, 2, "gs", "A", domain.Audit{})
	require.NoError(t, err)

	c, err := svc.Completeness(ctx, "gs")
	require.NoError(t, err)
	assert.Equal(t, 33.33, c.Percentage)
	assert.Equal(t, []int64{1, 3}, c.MissingItemIDs)
}

func TestService_CatalogAndStats(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Create(ctx, domain.GoldStandard{ID: "gs", Variable: domain.VariableY, Modality: domain.ModalityAudio})
	var ve *apperr.ValidationError
	require.ErrorAs(t, err, &ve, "name is required")

	createGoldStandard(t, svc, "gs")
	_, err = svc.Create(ctx, domain.GoldStandard{ID: "gs", Name: "again", Variable: domain.VariableY, Modality: domain.ModalityAudio})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	notes := "double-blind"
	gs, err := svc.UpdateMetadata(ctx, "gs", domain.GoldStandardMetadata{MethodologyNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "double-blind", gs.MethodologyNotes)

	empty := ""
	_, err = svc.UpdateMetadata(ctx, "gs", domain.GoldStandardMetadata{Name: &empty})
	assert.ErrorAs(t, err, &ve)

	conf := 0.5
	_, err = svc.Annotate(ctx, 1, "gs", "A", domain.Audit{Confidence: &conf})
	require.NoError(t, err)
	_, err = svc.Annotate(ctx, 2, "gs", "B", domain.Audit{})
	require.NoError(t, err)
	_, err = svc.Annotate(ctx, 2, "gs", "B", domain.Audit{})
	assert.ErrorIs(t, err, apperr.ErrConflict)
	_, err = svc.Correct(ctx, 2, "gs", "A", domain.Audit{})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, "gs")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalItems)
	assert.Equal(t, map[string]int{"A": 2}, stats.ByLabel)
	assert.Equal(t, 1, stats.Corrected)
	require.NotNil(t, stats.MeanConfidence)
	assert.InDelta(t, 0.5, *stats.MeanConfidence, 1e-9)
	assert.NotNil(t, stats.LastUpdated)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
