package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DjordjeVuckovic/agreement-lab/internal/apperr"
	"github.com/DjordjeVuckovic/agreement-lab/internal/domain"
	"github.com/jackc/pgx/v5"
)

const versionColumns = `version_id, item_id, gold_standard_id, label, version, is_current, validated_at, validated_by, validation_notes, confidence`

func (s *Store) CurrentVersion(ctx context.Context, itemID int64, goldStandardID string) (*domain.PairVersion, error) {
	v, err := s.current(ctx, itemID, goldStandardID)
	if err != nil {
		return nil, mapErr("get current version", err, nil, nil)
	}
	return v, nil
}

func (s *Store) CurrentVersions(ctx context.Context, goldStandardID string) ([]domain.PairVersion, error) {
	rows, err := s.q(ctx).Query(ctx, `
        SELECT `+versionColumns+`
        FROM pair_gold_standard_versions
        WHERE gold_standard_id = $1 AND is_current
        ORDER BY item_id`, goldStandardID)
	if err != nil {
		return nil, mapErr("list current versions", err, nil, nil)
	}
	return collectVersions(rows, "list current versions")
}

func (s *Store) VersionHistory(ctx context.Context, itemID int64, goldStandardID string) ([]domain.PairVersion, error) {
	rows, err := s.q(ctx).Query(ctx, `
        SELECT `+versionColumns+`
        FROM pair_gold_standard_versions
        WHERE item_id = $1 AND gold_standard_id = $2
        ORDER BY version DESC`, itemID, goldStandardID)
	if err != nil {
		return nil, mapErr("version history", err, nil, nil)
	}
	return collectVersions(rows, "version history")
}

func (s *Store) InsertInitialVersions(ctx context.Context, versions []domain.PairVersion) error {
	if len(versions) == 0 {
		return nil
	}

	now := time.Now().UTC()
	rows := make([][]any, len(versions))
	for i, v := range versions {
		if v.ValidatedAt.IsZero() {
			v.ValidatedAt = now
		}
		rows[i] = []any{
			v.ID,
			v.ItemID,
			v.GoldStandardID,
			v.Label,
			1,
			true,
			v.ValidatedAt,
			v.ValidatedBy,
			v.ValidationNotes,
			v.Confidence,
		}
	}

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		_, err := s.q(ctx).CopyFrom(
			ctx,
			pgx.Identifier{"pair_gold_standard_versions"},
			[]string{"version_id", "item_id", "gold_standard_id", "label", "version", "is_current", "validated_at", "validated_by", "validation_notes", "confidence"},
			pgx.CopyFromRows(rows),
		)
		return err
	})
	return mapErr("insert initial versions", err, nil,
		apperr.NewConflict(fmt.Sprintf("gold standard %s already has labels for some of the %d items", versions[0].GoldStandardID, len(versions))))
}

func (s *Store) CorrectVersion(ctx context.Context, itemID int64, goldStandardID, label string, audit domain.Audit) (*domain.PairVersion, error) {
	if audit.At.IsZero() {
		audit.At = time.Now().UTC()
	}

	var next domain.PairVersion
	err := s.withKeyLock(ctx, itemID, goldStandardID, func(ctx context.Context) error {
		cur, err := s.current(ctx, itemID, goldStandardID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NewNotFound("gold standard version", fmt.Sprintf("%d/%s", itemID, goldStandardID))
		}

		if _, err := s.q(ctx).Exec(ctx,
			`UPDATE pair_gold_standard_versions SET is_current = FALSE WHERE version_id = $1`, cur.ID,
		); err != nil {
			return err
		}

		next = cur.NextVersion(label, audit)
		_, err = s.q(ctx).Exec(ctx, `
            INSERT INTO pair_gold_standard_versions (`+versionColumns+`)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			next.ID,
			next.ItemID,
			next.GoldStandardID,
			next.Label,
			next.Version,
			next.IsCurrent,
			next.ValidatedAt,
			next.ValidatedBy,
			next.ValidationNotes,
			next.Confidence,
		)
		return err
	})
	if err != nil {
		return nil, mapErr("correct version", err, nil, nil)
	}
	return &next, nil
}

func (s *Store) RollbackVersion(ctx context.Context, itemID int64, goldStandardID string) (*domain.RollbackOutcome, error) {
	var out domain.RollbackOutcome
	err := s.withKeyLock(ctx, itemID, goldStandardID, func(ctx context.Context) error {
		cur, err := s.current(ctx, itemID, goldStandardID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NewNotFound("gold standard version", fmt.Sprintf("%d/%s", itemID, goldStandardID))
		}
		if cur.Version <= 1 {
			out = domain.RollbackOutcome{RolledBack: false, Current: cur}
			return nil
		}

		if _, err := s.q(ctx).Exec(ctx,
			`DELETE FROM pair_gold_standard_versions WHERE version_id = $1`, cur.ID,
		); err != nil {
			return err
		}

		row := s.q(ctx).QueryRow(ctx, `
            UPDATE pair_gold_standard_versions
            SET is_current = TRUE
            WHERE item_id = $1 AND gold_standard_id = $2 AND version = $3
            RETURNING `+versionColumns, itemID, goldStandardID, cur.Version-1)
		prev, err := scanVersion(row)
		if err != nil {
			return mapErr("restore previous version", err,
				apperr.NewNotFound("gold standard version", fmt.Sprintf("%d/%s v%d", itemID, goldStandardID, cur.Version-1)), nil)
		}

		out = domain.RollbackOutcome{RolledBack: true, Removed: cur, Current: prev}
		return nil
	})
	if err != nil {
		return nil, mapErr("rollback version", err, nil, nil)
	}
	return &out, nil
}

// current returns nil, nil when the key has no current version.
func (s *Store) current(ctx context.Context, itemID int64, goldStandardID string) (*domain.PairVersion, error) {
	row := s.q(ctx).QueryRow(ctx, `
        SELECT `+versionColumns+`
        FROM pair_gold_standard_versions
        WHERE item_id = $1 AND gold_standard_id = $2 AND is_current`, itemID, goldStandardID)
	v, err := scanVersion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func collectVersions(rows pgx.Rows, op string) ([]domain.PairVersion, error) {
	defer rows.Close()

	out := make([]domain.PairVersion, 0)
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, mapErr(op, err, nil, nil)
		}
		out = append(out, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(op, err, nil, nil)
	}
	return out, nil
}

func scanVersion(row pgx.Row) (*domain.PairVersion, error) {
	var v domain.PairVersion
	if err := row.Scan(
		&v.ID,
		&v.ItemID,
		&v.GoldStandardID,
		&v.Label,
		&v.Version,
		&v.IsCurrent,
		&v.ValidatedAt,
		&v.ValidatedBy,
		&v.ValidationNotes,
		&v.Confidence,
	); err != nil {
		return nil, err
	}
	return &v, nil
}
