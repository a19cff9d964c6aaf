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

const userColumns = `id, username, phone, email, password_hash, role, name,
	avatar, status, last_login, created_at, updated_at`

type userRepository struct {
	BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{NewBaseRepository(db)}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, username, phone, email, password_hash, role, name,
			avatar, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Phone,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Name,
		user.Avatar,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &user, query, id); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, identifier string) (*model.User, error) {
	var user model.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 OR phone = $1 LIMIT 1`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &user, query, identifier); err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		`UPDATE users SET last_login = $1, updated_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return expectRows(res, "user")
}

func (r *userRepository) List(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error) {
	var a args
	var where []string
	if filter.Role != "" {
		where = append(where, "role = "+a.add(filter.Role))
	}
	if filter.Status != "" {
		where = append(where, "status = "+a.add(filter.Status))
	}
	if filter.Search != "" {
		p := a.add(containsPattern(filter.Search))
		where = append(where, fmt.Sprintf("(username LIKE %[1]s OR phone LIKE %[1]s OR name LIKE %[1]s)", p))
	}

	from := ` FROM users`
	if len(where) > 0 {
		from += ` WHERE ` + strings.Join(where, " AND ")
	}

	var total int
	if err := sqlx.GetContext(ctx, r.conn(ctx), &total, `SELECT COUNT(*)`+from, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + from + ` ORDER BY created_at DESC, id`
	query += ` LIMIT ` + a.add(filter.Limit) + ` OFFSET ` + a.add(filter.Offset)

	users := []*model.User{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &users, query, a...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, at time.Time) error {
	res, err := r.conn(ctx).ExecContext(ctx,
		`UPDATE users SET status = $1, updated_at = $2 WHERE id = $3`, status, at, id)
	if err != nil {
		return fmt.Errorf("failed to update user status: %w", err)
	}
	return expectRows(res, "user")
}

func (r *userRepository) CreateRecorder(ctx context.Context, recorder *model.Recorder) error {
	query := `
		INSERT INTO recorders (
			id, user_id, employee_id, qualification_cert, health_cert,
			cert_expiry_date, work_area, is_on_duty, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.conn(ctx).ExecContext(ctx, query,
		recorder.ID,
		recorder.UserID,
		recorder.EmployeeID,
		recorder.QualificationCert,
		recorder.HealthCert,
		recorder.CertExpiryDate,
		recorder.WorkArea,
		recorder.IsOnDuty,
		recorder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create recorder: %w", err)
	}
	return nil
}

func (r *userRepository) GetRecorderByUserID(ctx context.Context, userID uuid.UUID) (*model.Recorder, error) {
	var recorder model.Recorder
	query := `
		SELECT id, user_id, employee_id, qualification_cert, health_cert,
			cert_expiry_date, work_area, is_on_duty, created_at
		FROM recorders WHERE user_id = $1
	`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &recorder, query, userID); err != nil {
		return nil, notFound("recorder", err)
	}
	return &recorder, nil
}

func (r *userRepository) GetDoctorByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error) {
	var doctor model.Doctor
	query := `
		SELECT id, user_id, license_number, specialty, hospital, department,
			title, consultation_fee, is_available, created_at
		FROM doctors WHERE user_id = $1
	`
	if err := sqlx.GetContext(ctx, r.conn(ctx), &doctor, query, userID); err != nil {
		return nil, notFound("doctor", err)
	}
	return &doctor, nil
}

// ListExpiringCertificates returns active recorders whose certificate
// expires within [from, to].
func (r *userRepository) ListExpiringCertificates(ctx context.Context, from, to model.Date) ([]*model.ExpiringCertificate, error) {
	query := `
		SELECT rc.id AS recorder_id, rc.employee_id, u.name, u.phone, u.email,
			rc.cert_expiry_date
		FROM recorders rc JOIN users u ON u.id = rc.user_id
		WHERE u.status = $1 AND rc.cert_expiry_date BETWEEN $2 AND $3
		ORDER BY rc.cert_expiry_date, rc.employee_id
	`
	certs := []*model.ExpiringCertificate{}
	if err := sqlx.SelectContext(ctx, r.conn(ctx), &certs, query, model.UserStatusActive, from, to); err != nil {
		return nil, fmt.Errorf("failed to list expiring certificates: %w", err)
	}
	return certs, nil
}
