package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

// SubmissionRepository resuelve las postulaciones de un formulario.
type SubmissionRepository interface {
	FindByForm(ctx context.Context, formID string) ([]domain.Submission, error)
	FindByID(ctx context.Context, id string) (domain.Submission, error)
}

type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

func (r *PgSubmissionRepository) FindByForm(ctx context.Context, formID string) ([]domain.Submission, error) {
	const query = `
		SELECT s.id, s.form_id, f.entity_kind, s.data, s.status, s.created_at
		FROM submissions s
		JOIN forms f ON f.id = s.form_id
		WHERE s.form_id = $1 AND s.status <> 'archived'
		ORDER BY s.created_at, s.id
	`
	rows, err := r.pool.Query(ctx, query, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []domain.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *PgSubmissionRepository) FindByID(ctx context.Context, id string) (domain.Submission, error) {
	const query = `
		SELECT s.id, s.form_id, f.entity_kind, s.data, s.status, s.created_at
		FROM submissions s
		JOIN forms f ON f.id = s.form_id
		WHERE s.id = $1
	`
	s, err := scanSubmission(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Submission{}, fmt.Errorf("submission %s: %w", id, domain.ErrNotFound)
	}
	return s, err
}

func scanSubmission(row pgx.Row) (domain.Submission, error) {
	var (
		s    domain.Submission
		kind string
		data []byte
	)
	if err := row.Scan(&s.ID, &s.FormID, &kind, &data, &s.Status, &s.CreatedAt); err != nil {
		return domain.Submission{}, err
	}
	s.EntityKind = domain.EntityKind(kind)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.Data); err != nil {
			return domain.Submission{}, fmt.Errorf("decode submission %s data: %w", s.ID, err)
		}
	}
	return s, nil
}
