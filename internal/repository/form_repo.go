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

type FormRepository interface {
	FindByID(ctx context.Context, id string) (domain.Form, error)
}

type PgFormRepository struct {
	pool *pgxpool.Pool
}

func NewPgFormRepository(pool *pgxpool.Pool) *PgFormRepository {
	return &PgFormRepository{pool: pool}
}

func (r *PgFormRepository) FindByID(ctx context.Context, id string) (domain.Form, error) {
	const query = `
		SELECT id, pipeline_id, entity_kind, name, fields
		FROM forms
		WHERE id = $1
	`
	var (
		f      domain.Form
		kind   string
		fields []byte
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(&f.ID, &f.PipelineID, &kind, &f.Name, &fields)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Form{}, fmt.Errorf("form %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return domain.Form{}, err
	}
	f.EntityKind = domain.EntityKind(kind)
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &f.Fields); err != nil {
			return domain.Form{}, fmt.Errorf("decode form %s fields: %w", id, err)
		}
	}
	return f, nil
}
