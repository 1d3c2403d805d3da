// Package postgres implements the storage interfaces backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/SevaSetu/scheme_portal/internal/app/domain/application"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/scheme"
	"github.com/SevaSetu/scheme_portal/internal/app/domain/user"
	"github.com/SevaSetu/scheme_portal/internal/app/storage"
)

const uniqueViolation = "23505"

// Store implements the storage interfaces using the provided database handle.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SchemeStore = (*Store)(nil)
var _ storage.ApplicationStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO portal_users (id, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, u.ID, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return user.User{}, storage.ErrDuplicateEmail
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM portal_users
		WHERE id = $1
	`, id))
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, role, created_at
		FROM portal_users
		WHERE email = $1
	`, email))
}

func (s *Store) scanUser(row *sql.Row) (user.User, error) {
	var (
		u    user.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, storage.ErrNotFound
		}
		return user.User{}, err
	}
	u.Role = user.Role(role)
	return u, nil
}

// --- SchemeStore ------------------------------------------------------------

func (s *Store) CreateScheme(ctx context.Context, sch scheme.Scheme) (scheme.Scheme, error) {
	if sch.ID == "" {
		sch.ID = uuid.NewString()
	}
	sch.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO portal_schemes (id, name, description, eligibility, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, sch.ID, sch.Name, sch.Description, sch.Eligibility, sch.CreatedAt)
	if err != nil {
		return scheme.Scheme{}, err
	}
	return sch, nil
}

func (s *Store) GetScheme(ctx context.Context, id string) (scheme.Scheme, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, eligibility, created_at
		FROM portal_schemes
		WHERE id = $1
	`, id)

	var sch scheme.Scheme
	if err := row.Scan(&sch.ID, &sch.Name, &sch.Description, &sch.Eligibility, &sch.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scheme.Scheme{}, storage.ErrNotFound
		}
		return scheme.Scheme{}, err
	}
	return sch, nil
}

func (s *Store) ListSchemes(ctx context.Context) ([]scheme.Scheme, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, eligibility, created_at
		FROM portal_schemes
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []scheme.Scheme
	for rows.Next() {
		var sch scheme.Scheme
		if err := rows.Scan(&sch.ID, &sch.Name, &sch.Description, &sch.Eligibility, &sch.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, sch)
	}
	return result, rows.Err()
}

func (s *Store) CountSchemes(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM portal_schemes`).Scan(&count)
	return count, err
}

// --- ApplicationStore -------------------------------------------------------

func (s *Store) CreateApplication(ctx context.Context, app application.Application) (application.Application, error) {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.Status = application.StatusPending
	app.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO portal_applications (id, user_id, scheme_id, form_data, status, admin_remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, app.ID, app.UserID, app.SchemeID, app.FormData, string(app.Status), app.AdminRemarks, app.CreatedAt)
	if err != nil {
		return application.Application{}, err
	}
	return app, nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (application.Application, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, scheme_id, form_data, status, admin_remarks, created_at, reviewed_at
		FROM portal_applications
		WHERE id = $1
	`, id)
	return scanApplication(row.Scan)
}

func (s *Store) ListApplications(ctx context.Context) ([]application.Application, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, scheme_id, form_data, status, admin_remarks, created_at, reviewed_at
		FROM portal_applications
		ORDER BY created_at
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []application.Application
	for rows.Next() {
		app, err := scanApplication(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}

func (s *Store) UpdateReview(ctx context.Context, id string, status application.Status, remarks string) (application.Application, error) {
	reviewedAt := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE portal_applications
		SET status = $2, admin_remarks = $3, reviewed_at = $4
		WHERE id = $1
	`, id, string(status), remarks, reviewedAt)
	if err != nil {
		return application.Application{}, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return application.Application{}, err
	}
	if rows == 0 {
		return application.Application{}, storage.ErrNotFound
	}
	return s.GetApplication(ctx, id)
}

func scanApplication(scan func(dest ...any) error) (application.Application, error) {
	var (
		app        application.Application
		status     string
		remarks    sql.NullString
		reviewedAt sql.NullTime
	)
	if err := scan(&app.ID, &app.UserID, &app.SchemeID, &app.FormData, &status, &remarks, &app.CreatedAt, &reviewedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return application.Application{}, storage.ErrNotFound
		}
		return application.Application{}, err
	}
	app.Status = application.Status(status)
	app.AdminRemarks = remarks.String
	if reviewedAt.Valid {
		app.ReviewedAt = reviewedAt.Time
	}
	return app, nil
}
