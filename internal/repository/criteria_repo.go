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

// CriteriaRepository lee la configuracion de matching de un pipeline. Los
// criterios se guardan siempre orientados founder -> inversor.
type CriteriaRepository interface {
	Get(ctx context.Context, pipelineID string) (domain.MatchCriteriaSet, error)
}

type PgCriteriaRepository struct {
	pool *pgxpool.Pool
}

func NewPgCriteriaRepository(pool *pgxpool.Pool) *PgCriteriaRepository {
	return &PgCriteriaRepository{pool: pool}
}

func (r *PgCriteriaRepository) Get(ctx context.Context, pipelineID string) (domain.MatchCriteriaSet, error) {
	const query = `
		SELECT pipeline_id, subject_form_id, opposite_form_id, criteria
		FROM pipeline_match_criteria
		WHERE pipeline_id = $1
	`
	var (
		set      domain.MatchCriteriaSet
		criteria []byte
	)
	err := r.pool.QueryRow(ctx, query, pipelineID).Scan(
		&set.PipelineID,
		&set.SubjectFormID,
		&set.OppositeFormID,
		&criteria,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.MatchCriteriaSet{}, fmt.Errorf("criteria for pipeline %s: %w", pipelineID, domain.ErrNotFound)
	}
	if err != nil {
		return domain.MatchCriteriaSet{}, err
	}
	if len(criteria) > 0 {
		if err := json.Unmarshal(criteria, &set.Criteria); err != nil {
			return domain.MatchCriteriaSet{}, fmt.Errorf("decode criteria for pipeline %s: %w", pipelineID, err)
		}
	}
	return set, nil
}
