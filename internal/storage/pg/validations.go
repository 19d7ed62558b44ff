package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const validationColumns = `validation_id, run_id, item_id, gold_standard_id, manual_label, automated_label,
               automated_confidence, automated_rationale, decision, corrected_label, comment,
               verbatim, context_before, context_after, validated_by, validated_at`

func (s *Store) InsertValidation(ctx context.Context, v domain.DisagreementValidation) (*domain.DisagreementValidation, error) {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.ValidatedAt.IsZero() {
		v.ValidatedAt = time.Now().UTC()
	}

	row := s.q(ctx).QueryRow(ctx, `
        INSERT INTO disagreement_validations (`+validationColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING `+validationColumns,
		v.ID,
		v.RunID,
		v.ItemID,
		v.GoldStandardID,
		v.ManualLabel,
		v.AutomatedLabel,
		v.AutomatedConfidence,
		v.AutomatedRationale,
		string(v.Decision),
		v.CorrectedLabel,
		v.Comment,
		v.Verbatim,
		v.ContextBefore,
		v.ContextAfter,
		v.ValidatedBy,
		v.ValidatedAt,
	)
	saved, err := scanValidation(row)
	if err != nil {
		return nil, mapErr("insert validation", err, nil,
			apperr.NewAlreadyResolved(fmt.Sprintf("item %d of run %s is already validated", v.ItemID, v.RunID)))
	}
	return saved, nil
}

func (s *Store) GetValidation(ctx context.Context, id uuid.UUID) (*domain.DisagreementValidation, error) {
	row := s.q(ctx).QueryRow(ctx, `SELECT `+validationColumns+` FROM disagreement_validations WHERE validation_id = $1`, id)
	v, err := scanValidation(row)
	if err != nil {
		return nil, mapErr("get validation", err, apperr.NewNotFound("validation", id), nil)
	}
	return v, nil
}

func (s *Store) DeleteValidation(ctx context.Context, id uuid.UUID) error {
	tag, err := s.q(ctx).Exec(ctx, `DELETE FROM disagreement_validations WHERE validation_id = $1`, id)
	if err != nil {
		return mapErr("delete validation", err, nil, nil)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NewNotFound("validation", id)
	}
	return nil
}

func (s *Store) ListValidations(ctx context.Context, runID uuid.UUID, offset, limit int) ([]domain.DisagreementValidation, int64, error) {
	var total int64
	if err := s.q(ctx).QueryRow(ctx,
		`SELECT count(*) FROM disagreement_validations WHERE run_id = $1`, runID,
	).Scan(&total); err != nil {
		return nil, 0, mapErr("count validations", err, nil, nil)
	}

	// LIMIT NULL means no limit
	var lim *int
	if limit > 0 {
		lim = &limit
	}
	rows, err := s.q(ctx).Query(ctx, `
        SELECT `+validationColumns+`
        FROM disagreement_validations
        WHERE run_id = $1
        ORDER BY validated_at, item_id
        OFFSET $2 LIMIT $3`, runID, offset, lim)
	if err != nil {
		return nil, 0, mapErr("list validations", err, nil, nil)
	}
	defer rows.Close()

	out := make([]domain.DisagreementValidation, 0)
	for rows.Next() {
		v, err := scanValidation(rows)
		if err != nil {
			return nil, 0, mapErr("scan validation", err, nil, nil)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapErr("list validations", err, nil, nil)
	}
	return out, total, nil
}

func (s *Store) ValidatedItemIDs(ctx context.Context, runID uuid.UUID) ([]int64, error) {
	rows, err := s.q(ctx).Query(ctx,
		`SELECT item_id FROM disagreement_validations WHERE run_id = $1 ORDER BY item_id`, runID)
	if err != nil {
		return nil, mapErr("list validated items", err, nil, nil)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, mapErr("list validated items", err, nil, nil)
	}
	return ids, nil
}

func scanValidation(row pgx.Row) (*domain.DisagreementValidation, error) {
	var v domain.DisagreementValidation
	var decision string
	if err := row.Scan(
		&v.ID,
		&v.RunID,
		&v.ItemID,
		&v.GoldStandardID,
		&v.ManualLabel,
		&v.AutomatedLabel,
		&v.AutomatedConfidence,
		&v.AutomatedRationale,
		&decision,
		&v.CorrectedLabel,
		&v.Comment,
		&v.Verbatim,
		&v.ContextBefore,
		&v.ContextAfter,
		&v.ValidatedBy,
		&v.ValidatedAt,
	); err != nil {
		return nil, err
	}
	v.Decision = domain.Decision(decision)
	return &v, nil
}
