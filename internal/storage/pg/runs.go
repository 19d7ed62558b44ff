package pg

import (
	"context"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/agreement"
	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

func (s *Store) ItemIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT item_id FROM annotated_items ORDER BY item_id`)
	if err != nil {
		return nil, mapErr("list item ids", err, nil, nil)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, mapErr("list item ids", err, nil, nil)
	}
	return ids, nil
}

// SaveItems upserts annotated items.
func (s *Store) SaveItems(ctx context.Context, items ...domain.Item) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`
            INSERT INTO annotated_items (item_id, call_id, strategy_label, reaction_label, advisor_verbatim, client_verbatim, context_before, context_after)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
            ON CONFLICT (item_id) DO UPDATE
            SET call_id          = EXCLUDED.call_id,
                strategy_label   = EXCLUDED.strategy_label,
                reaction_label   = EXCLUDED.reaction_label,
                advisor_verbatim = EXCLUDED.advisor_verbatim,
                client_verbatim  = EXCLUDED.client_verbatim,
                context_before   = EXCLUDED.context_before,
                context_after    = EXCLUDED.context_after`,
			it.ID,
			it.CallID,
			it.StrategyLabel,
			it.ReactionLabel,
			it.AdvisorVerbatim,
			it.ClientVerbatim,
			it.ContextBefore,
			it.ContextAfter,
		)
	}

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		return s.q(ctx).SendBatch(ctx, batch).Close()
	})
	return mapErr("save items", err, nil, nil)
}

// SaveRun stores a run with its annotations. The raw kappa is computed from
// the annotations when it is not set.
func (s *Store) SaveRun(ctx context.Context, run domain.Run, annotations []domain.RunAnnotation) (*domain.Run, error) {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	manual := make([]string, len(annotations))
	automated := make([]string, len(annotations))
	rows := make([][]any, len(annotations))
	for i, a := range annotations {
		manual[i] = a.ManualLabel
		automated[i] = a.AutomatedLabel
		rows[i] = []any{run.ID, a.ItemID, a.ManualLabel, a.AutomatedLabel, a.AutomatedConfidence, a.AutomatedRationale}
	}
	if run.Kappa == 0 && len(annotations) > 0 {
		if k, err := agreement.Kappa(automated, manual); err == nil {
			run.Kappa = k
		}
	}

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.q(ctx).Exec(ctx, `
            INSERT INTO test_runs (run_id, gold_standard_id, variable, kappa, created_at)
            VALUES ($1, $2, $3, $4, $5)`,
			run.ID, run.GoldStandardID, string(run.Variable), run.Kappa, run.CreatedAt,
		); err != nil {
			return err
		}
		_, err := s.q(ctx).CopyFrom(
			ctx,
			pgx.Identifier{"run_annotations"},
			[]string{"run_id", "item_id", "manual_label", "automated_label", "automated_confidence", "automated_rationale"},
			pgx.CopyFromRows(rows),
		)
		return err
	})
	if err != nil {
		return nil, mapErr("save run", err, nil, nil)
	}
	return &run, nil
}

func (s *Store) RunAnnotations(ctx context.Context, runID uuid.UUID) ([]domain.RunAnnotation, error) {
	if _, err := s.GetRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.q(ctx).Query(ctx, `
        SELECT a.run_id,
               a.item_id,
               i.call_id,
               a.manual_label,
               a.automated_label,
               a.automated_confidence,
               a.automated_rationale,
               CASE WHEN r.variable = 'X' THEN i.advisor_verbatim ELSE i.client_verbatim END,
               i.context_before,
               i.context_after
        FROM run_annotations a
        JOIN test_runs r ON r.run_id = a.run_id
        JOIN annotated_items i ON i.item_id = a.item_id
        WHERE a.run_id = $1
        ORDER BY a.item_id`, runID)
	if err != nil {
		return nil, mapErr("list run annotations", err, nil, nil)
	}
	defer rows.Close()

	out := make([]domain.RunAnnotation, 0)
	for rows.Next() {
		var a domain.RunAnnotation
		if err := rows.Scan(
			&a.RunID,
			&a.ItemID,
			&a.CallID,
			&a.ManualLabel,
			&a.AutomatedLabel,
			&a.AutomatedConfidence,
			&a.AutomatedRationale,
			&a.Verbatim,
			&a.ContextBefore,
			&a.ContextAfter,
		); err != nil {
			return nil, mapErr("scan run annotation", err, nil, nil)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list run annotations", err, nil, nil)
	}
	return out, nil
}

func (s *Store) GetRun(ctx context.Context, runID uuid.UUID) (*domain.Run, error) {
	var run domain.Run
	var variable string
	err := s.q(ctx).QueryRow(ctx, `
        SELECT run_id, gold_standard_id, variable, kappa, kappa_corrected,
               validated_disagreements, unjustified_disagreements, created_at
        FROM test_runs
        WHERE run_id = $1`, runID).Scan(
		&run.ID,
		&run.GoldStandardID,
		&variable,
		&run.Kappa,
		&run.KappaCorrected,
		&run.ValidatedDisagreements,
		&run.UnjustifiedDisagreements,
		&run.CreatedAt,
	)
	if err != nil {
		return nil, mapErr("get run", err, apperr.NewNotFound("run", runID), nil)
	}
	run.Variable = domain.Variable(variable)
	return &run, nil
}

func (s *Store) UpdateRunAgreement(ctx context.Context, runID uuid.UUID, update domain.RunAgreementUpdate) error {
	tag, err := s.q(ctx).Exec(ctx, `
        UPDATE test_runs
        SET kappa_corrected           = $2,
            validated_disagreements   = $3,
            unjustified_disagreements = $4
        WHERE run_id = $1`,
		runID, update.KappaCorrected, update.ValidatedDisagreements, update.UnjustifiedDisagreements,
	)
	if err != nil {
		return mapErr("update run agreement", err, nil, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NewNotFound("run", runID)
	}
	return nil
}
