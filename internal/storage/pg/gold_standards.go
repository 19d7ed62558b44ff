package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/jackc/pgx/v5"
)

const goldStandardColumns = `gold_standard_id, name, description, variable, modality, annotator_name, methodology_notes, created_at`

func (s *Store) CreateGoldStandard(ctx context.Context, gs domain.GoldStandard) (*domain.GoldStandard, error) {
	if gs.CreatedAt.IsZero() {
		gs.CreatedAt = time.Now().UTC()
	}

	cmd := `
        INSERT INTO gold_standards (` + goldStandardColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING ` + goldStandardColumns

	row := s.q(ctx).QueryRow(
		ctx,
		cmd,
		gs.ID,
		gs.Name,
		gs.Description,
		string(gs.Variable),
		string(gs.Modality),
		gs.AnnotatorName,
		gs.MethodologyNotes,
		gs.CreatedAt,
	)
	created, err := scanGoldStandard(row)
	if err != nil {
		return nil, mapErr("insert gold standard", err, nil,
			apperr.NewConflict(fmt.Sprintf("gold standard %s already exists", gs.ID)))
	}
	return created, nil
}

func (s *Store) GetGoldStandard(ctx context.Context, id string) (*domain.GoldStandard, error) {
	row := s.q(ctx).QueryRow(ctx, `SELECT `+goldStandardColumns+` FROM gold_standards WHERE gold_standard_id = $1`, id)
	gs, err := scanGoldStandard(row)
	if err != nil {
		return nil, mapErr("get gold standard", err, apperr.NewNotFound("gold standard", id), nil)
	}
	return gs, nil
}

func (s *Store) ListGoldStandards(ctx context.Context) ([]domain.GoldStandard, error) {
	rows, err := s.q(ctx).Query(ctx, `SELECT `+goldStandardColumns+` FROM gold_standards ORDER BY created_at, gold_standard_id`)
	if err != nil {
		return nil, mapErr("list gold standards", err, nil, nil)
	}
	defer rows.Close()

	out := make([]domain.GoldStandard, 0)
	for rows.Next() {
		gs, err := scanGoldStandard(rows)
		if err != nil {
			return nil, mapErr("scan gold standard", err, nil, nil)
		}
		out = append(out, *gs)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list gold standards", err, nil, nil)
	}
	return out, nil
}

func (s *Store) UpdateGoldStandardMetadata(ctx context.Context, id string, meta domain.GoldStandardMetadata) (*domain.GoldStandard, error) {
	cmd := `
        UPDATE gold_standards
        SET name              = COALESCE($2, name),
            description       = COALESCE($3, description),
            methodology_notes = COALESCE($4, methodology_notes)
        WHERE gold_standard_id = $1
        RETURNING ` + goldStandardColumns

	row := s.q(ctx).QueryRow(ctx, cmd, id, meta.Name, meta.Description, meta.MethodologyNotes)
	gs, err := scanGoldStandard(row)
	if err != nil {
		return nil, mapErr("update gold standard", err, apperr.NewNotFound("gold standard", id), nil)
	}
	return gs, nil
}

func scanGoldStandard(row pgx.Row) (*domain.GoldStandard, error) {
	var gs domain.GoldStandard
	var variable, modality string
	if err := row.Scan(
		&gs.ID,
		&gs.Name,
		&gs.Description,
		&variable,
		&modality,
		&gs.AnnotatorName,
		&gs.MethodologyNotes,
		&gs.CreatedAt,
	); err != nil {
		return nil, err
	}
	gs.Variable = domain.Variable(variable)
	gs.Modality = domain.Modality(modality)
	return &gs, nil
}
