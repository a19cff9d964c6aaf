package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

const packageColumns = `id, name, description, price, duration_days, service_frequency,
	service_items, package_level, is_system_default, target_users, staff_level,
	hospital_level, service_time, report_frequency, service_content,
	monitoring_items, additional_services, gifts_included, is_active,
	created_at, updated_at`

type servicePackageRepository struct {
	BaseRepository
}

func NewServicePackageRepository(db *sqlx.DB) repository.ServicePackageRepository {
	return &servicePackageRepository{NewBaseRepository(db)}
}

func (r *servicePackageRepository) Create(ctx context.Context, pkg *model.ServicePackage) error {
	query := `INSERT INTO service_packages (` + packageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err := r.conn(ctx).ExecContext(ctx, query, packageValues(pkg)...)
	if err != nil {
		return fmt.Errorf("failed to create service package: %w", err)
	}
	return nil
}

func (r *servicePackageRepository) Update(ctx context.Context, pkg *model.ServicePackage) error {
	query := `
		UPDATE service_packages
		SET name = $2, description = $3, price = $4, duration_days = $5,
			service_frequency = $6, service_items = $7, package_level = $8,
			is_system_default = $9, target_users = $10, staff_level = $11,
			hospital_level = $12, service_time = $13, report_frequency = $14,
			service_content = $15, monitoring_items = $16, additional_services = $17,
			gifts_included = $18, is_active = $19, updated_at = $20
		WHERE id = $1
	`
	vals := packageValues(pkg)
	vals = append(vals[:19], pkg.UpdatedAt)
	res, err := r.conn(ctx).ExecContext(ctx, query, vals...)
	if err != nil {
		return fmt.Errorf("failed to update service package: %w", err)
	}
	return expectRows(res, "service package")
}

// UpsertByLevel keeps one system default package per level.
func (r *servicePackageRepository) UpsertByLevel(ctx context.Context, pkg *model.ServicePackage) error {
	if pkg.PackageLevel == nil {
		return fmt.Errorf("package level is required")
	}
	var existing uuid.UUID
	err := sqlx.GetContext(ctx, r.conn(ctx), &existing,
		`SELECT id FROM service_packages WHERE package_level = $1 AND is_system_default LIMIT 1`,
		*pkg.PackageLevel)
	if errors.Is(err, sql.ErrNoRows) {
		return r.Create(ctx, pkg)
	}
	if err != nil {
		return fmt.Errorf("failed to look up package level: %w", err)
	}
	pkg.ID = existing
	return r.Update(ctx, pkg)
}

func (r *servicePackageRepository) Get(ctx context.Context, id uuid.UUID) (*model.ServicePackage, error) {
	var pkg model.ServicePackage
	query := `SELECT ` + packageColumns + ` FROM service_packages WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &pkg, query, id); err != nil {
		return nil, notFound("service package", err)
	}
	return &pkg, nil
}

func (r *servicePackageRepository) GetByName(ctx context.Context, name string) (*model.ServicePackage, error) {
	var pkg model.ServicePackage
	query := `SELECT ` + packageColumns + ` FROM service_packages WHERE name = $1 ORDER BY created_at LIMIT 1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &pkg, query, name); err != nil {
		return nil, notFound("service package", err)
	}
	return &pkg, nil
}

func (r *servicePackageRepository) List(ctx context.Context, activeOnly bool) ([]*model.ServicePackage, error) {
	query := `SELECT ` + packageColumns + ` FROM service_packages`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY package_level NULLS LAST, price, name`

	pkgs := []*model.ServicePackage{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &pkgs, query); err != nil {
		return nil, fmt.Errorf("failed to list service packages: %w", err)
	}
	return pkgs, nil
}

func (r *servicePackageRepository) ListSystemDefaults(ctx context.Context) ([]*model.ServicePackage, error) {
	query := `SELECT ` + packageColumns + ` FROM service_packages
		WHERE is_system_default AND is_active ORDER BY package_level`

	pkgs := []*model.ServicePackage{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &pkgs, query); err != nil {
		return nil, fmt.Errorf("failed to list default packages: %w", err)
	}
	return pkgs, nil
}

func packageValues(p *model.ServicePackage) []interface{} {
	return []interface{}{
		p.ID,
		p.Name,
		p.Description,
		p.Price,
		p.DurationDays,
		p.ServiceFrequency,
		p.ServiceItems,
		p.PackageLevel,
		p.IsSystemDefault,
		p.TargetUsers,
		p.StaffLevel,
		p.HospitalLevel,
		p.ServiceTime,
		p.ReportFrequency,
		p.ServiceContent,
		p.MonitoringItems,
		p.AdditionalServices,
		p.GiftsIncluded,
		p.IsActive,
		p.CreatedAt,
		p.UpdatedAt,
	}
}
