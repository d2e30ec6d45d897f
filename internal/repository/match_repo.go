package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

// MatchRepository persiste un resultado por par (subject, opposite).
type MatchRepository interface {
	Upsert(ctx context.Context, result domain.MatchResult) error
	ListBySubject(ctx context.Context, subjectSubmissionID string) ([]domain.MatchResult, error)
}

type PgMatchRepository struct {
	pool *pgxpool.Pool
}

func NewPgMatchRepository(pool *pgxpool.Pool) *PgMatchRepository {
	return &PgMatchRepository{pool: pool}
}

func (r *PgMatchRepository) Upsert(ctx context.Context, result domain.MatchResult) error {
	const query = `
		INSERT INTO match_results (
			id, pipeline_id, subject_submission_id, opposite_submission_id,
			field_score, personality_score, total_score, per_field_scores,
			trait_distance, category_score, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (subject_submission_id, opposite_submission_id)
		DO UPDATE SET
			pipeline_id = EXCLUDED.pipeline_id,
			field_score = EXCLUDED.field_score,
			personality_score = EXCLUDED.personality_score,
			total_score = EXCLUDED.total_score,
			per_field_scores = EXCLUDED.per_field_scores,
			trait_distance = EXCLUDED.trait_distance,
			category_score = EXCLUDED.category_score,
			updated_at = EXCLUDED.updated_at
	`
	perField, err := json.Marshal(result.PerFieldScores)
	if err != nil {
		return fmt.Errorf("encode per field scores: %w", err)
	}

	var personality interface{}
	if result.PersonalityScore != nil {
		personality = *result.PersonalityScore
	}

	_, err = r.pool.Exec(ctx, query,
		result.ID,
		result.PipelineID,
		result.SubjectSubmissionID,
		result.OppositeSubmissionID,
		result.FieldScore,
		personality,
		result.TotalScore,
		perField,
		result.TraitDistance,
		result.CategoryScore,
		result.CreatedAt,
		result.UpdatedAt,
	)
	return err
}

func (r *PgMatchRepository) ListBySubject(ctx context.Context, subjectSubmissionID string) ([]domain.MatchResult, error) {
	const query = `
		SELECT id, pipeline_id, subject_submission_id, opposite_submission_id,
			field_score, personality_score, total_score, per_field_scores,
			trait_distance, category_score, created_at, updated_at
		FROM match_results
		WHERE subject_submission_id = $1
		ORDER BY total_score DESC, opposite_submission_id
	`
	rows, err := r.pool.Query(ctx, query, subjectSubmissionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.MatchResult
	for rows.Next() {
		var (
			m           domain.MatchResult
			personality *float64
			perField    []byte
		)
		if err := rows.Scan(
			&m.ID,
			&m.PipelineID,
			&m.SubjectSubmissionID,
			&m.OppositeSubmissionID,
			&m.FieldScore,
			&personality,
			&m.TotalScore,
			&perField,
			&m.TraitDistance,
			&m.CategoryScore,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.PersonalityScore = personality
		if len(perField) > 0 {
			if err := json.Unmarshal(perField, &m.PerFieldScores); err != nil {
				return nil, fmt.Errorf("decode per field scores of %s: %w", m.ID, err)
			}
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
