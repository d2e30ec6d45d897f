package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Einzelgaanger/dealfuze-prototype-sub001/internal/domain"
)

// PersonalityRepository expone los perfiles que produce el clasificador
// externo. Un perfil ausente se reporta con domain.ErrNotFound.
type PersonalityRepository interface {
	FindBySubmission(ctx context.Context, submissionID string) (domain.PersonalityProfile, error)
	// FindBySubmissions omite del mapa las postulaciones sin perfil.
	FindBySubmissions(ctx context.Context, submissionIDs []string) (map[string]domain.PersonalityProfile, error)
}

type PgPersonalityRepository struct {
	pool *pgxpool.Pool
}

func NewPgPersonalityRepository(pool *pgxpool.Pool) *PgPersonalityRepository {
	return &PgPersonalityRepository{pool: pool}
}

const personalityColumns = `
	submission_id, entity_kind, risk_tolerance, category_focus, experience_level,
	languages, countries, education, interests, network_size, follower_count,
	type_tag, updated_at`

func (r *PgPersonalityRepository) FindBySubmission(ctx context.Context, submissionID string) (domain.PersonalityProfile, error) {
	query := `SELECT ` + personalityColumns + ` FROM personality_profiles WHERE submission_id = $1`
	p, err := scanPersonality(r.pool.QueryRow(ctx, query, submissionID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.PersonalityProfile{}, fmt.Errorf("personality profile %s: %w", submissionID, domain.ErrNotFound)
	}
	return p, err
}

func (r *PgPersonalityRepository) FindBySubmissions(ctx context.Context, submissionIDs []string) (map[string]domain.PersonalityProfile, error) {
	out := make(map[string]domain.PersonalityProfile, len(submissionIDs))
	if len(submissionIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + personalityColumns + ` FROM personality_profiles WHERE submission_id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, submissionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPersonality(rows)
		if err != nil {
			return nil, err
		}
		out[p.SubmissionID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanPersonality(row pgx.Row) (domain.PersonalityProfile, error) {
	var (
		p       domain.PersonalityProfile
		kind    string
		typeTag *string
	)
	err := row.Scan(
		&p.SubmissionID,
		&kind,
		&p.RiskTolerance,
		&p.CategoryFocus,
		&p.ExperienceLevel,
		&p.Languages,
		&p.Countries,
		&p.Education,
		&p.Interests,
		&p.NetworkSize,
		&p.FollowerCount,
		&typeTag,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.PersonalityProfile{}, err
	}
	p.EntityKind = domain.EntityKind(kind)
	if typeTag != nil {
		p.TypeTag = domain.PersonalityType(*typeTag)
	}
	return p, nil
}
