package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/homecare/visit-api/internal/model"
	"github.com/homecare/visit-api/internal/repository"
)

const familyColumns = `f.id, f.household_head, f.address, f.phone,
	f.emergency_contact, f.emergency_phone, f.created_at, f.updated_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching s as a literal substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

type familyRepository struct {
	BaseRepository
}

func NewFamilyRepository(db *sqlx.DB) repository.FamilyRepository {
	return &familyRepository{NewBaseRepository(db)}
}

func (r *familyRepository) Create(ctx context.Context, family *model.Family) error {
	query := `
		INSERT INTO families (
			id, household_head, address, phone,
			emergency_contact, emergency_phone, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		family.ID,
		family.HouseholdHead,
		family.Address,
		family.Phone,
		family.EmergencyContact,
		family.EmergencyPhone,
		family.CreatedAt,
		family.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create family: %w", err)
	}
	return nil
}

func (r *familyRepository) Get(ctx context.Context, id uuid.UUID, recorderID *uuid.UUID) (*model.Family, error) {
	var a args
	query := `SELECT ` + familyColumns + ` FROM families f WHERE f.id = ` + a.add(id)
	if recorderID != nil {
		query += ` AND ` + fmt.Sprintf(familyScope, a.add(*recorderID))
	}

	var family model.Family
	if err := sqlx.GetContext(ctx, r.conn(ctx), &family, query, a...); err != nil {
		return nil, notFound("family", err)
	}
	return &family, nil
}

func (r *familyRepository) List(ctx context.Context, filter model.FamilyFilter) ([]*model.Family, int, error) {
	var a args
	var where []string
	if filter.RecorderID != nil {
		where = append(where, fmt.Sprintf(familyScope, a.add(*filter.RecorderID)))
	}
	if filter.Search != "" {
		p := a.add(containsPattern(filter.Search))
		where = append(where, fmt.Sprintf(
			"(f.household_head LIKE %[1]s OR f.address LIKE %[1]s OR f.phone LIKE %[1]s)", p))
	}

	from := ` FROM families f`
	if len(where) > 0 {
		from += ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.conn(ctx), &total, `SELECT COUNT(*)`+from, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to count families: %w", err)
	}

	query := `SELECT ` + familyColumns + from + ` ORDER BY f.created_at DESC, f.id`
	query += ` LIMIT ` + a.add(filter.Limit) + ` OFFSET ` + a.add(filter.Offset)

	families := []*model.Family{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &families, query, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to list families: %w", err)
	}
	return families, total, nil
}

func (r *familyRepository) Update(ctx context.Context, family *model.Family) error {
	query := `
		UPDATE families
		SET household_head = $1, address = $2, phone = $3,
			emergency_contact = $4, emergency_phone = $5, updated_at = $6
		WHERE id = $7
	`
	res, err := r.conn(ctx).ExecContext(ctx, query,
		family.HouseholdHead,
		family.Address,
		family.Phone,
		family.EmergencyContact,
		family.EmergencyPhone,
		family.UpdatedAt,
		family.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return expectRows(res, "family")
}

func (r *familyRepository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.conn(ctx).ExecContext(ctx, `UPDATE families SET updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to touch family: %w", err)
	}
	return expectRows(res, "family")
}

// Delete cascades to members and everything hanging off them.
func (r *familyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.conn(ctx).ExecContext(ctx, `DELETE FROM families WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return expectRows(res, "family")
}

func (r *familyRepository) RandomID(ctx context.Context, recorderID *uuid.UUID) (uuid.UUID, error) {
	var a args
	query := `SELECT f.id FROM families f`
	if recorderID != nil {
		query += ` WHERE ` + fmt.Sprintf(familyScope, a.add(*recorderID))
	}
	query += ` ORDER BY random() LIMIT 1`

	var id uuid.UUID
	if err := sqlx.GetContext(ctx, r.conn(ctx), &id, query, a...); err != nil {
		return uuid.Nil, notFound("family", err)
	}
	return id, nil
}
