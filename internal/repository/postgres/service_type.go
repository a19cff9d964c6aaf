package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

const serviceTypeColumns = `id, name, description, default_duration, base_price, is_active, created_at`

type serviceTypeRepository struct {
	BaseRepository
}

func NewServiceTypeRepository(db *sqlx.DB) repository.ServiceTypeRepository {
	return &serviceTypeRepository{NewBaseRepository(db)}
}

func (r *serviceTypeRepository) ListActive(ctx context.Context) ([]*model.ServiceType, error) {
	types := []*model.ServiceType{}
	query := `SELECT ` + serviceTypeColumns + ` FROM service_types WHERE is_active ORDER BY name`
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &types, query); err != nil {
		return nil, fmt.Errorf("failed to list service types: %w", err)
	}
	return types, nil
}

func (r *serviceTypeRepository) Get(ctx context.Context, id uuid.UUID) (*model.ServiceType, error) {
	var st model.ServiceType
	query := `SELECT ` + serviceTypeColumns + ` FROM service_types WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &st, query, id); err != nil {
		return nil, notFound("service type", err)
	}
	return &st, nil
}

func (r *serviceTypeRepository) UpsertByName(ctx context.Context, st *model.ServiceType) error {
	query := `
		INSERT INTO service_types (` + serviceTypeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (name) DO UPDATE
		SET description = EXCLUDED.description,
			default_duration = EXCLUDED.default_duration,
			base_price = EXCLUDED.base_price,
			is_active = EXCLUDED.is_active
		RETURNING id
	`
	err := sqlx.GetContext(ctx, r.conn(ctx), &st.ID, query,
		st.ID, st.Name, st.Description, st.DefaultDuration, st.BasePrice, st.IsActive, st.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert service type: %w", err)
	}
	return nil
}
