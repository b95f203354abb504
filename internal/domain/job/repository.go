package job

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines job storage operations
type Repository interface {
	Create(ctx context.Context, j *Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	ListOpen(ctx context.Context, limit, offset int) ([]*Job, int, error)
	ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]*Job, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	MarkPromoted(ctx context.Context, id uuid.UUID) error
}

const jobColumns = `id, employer_id, title, description, location, salary_min, salary_max,
	status, is_promoted, promoted_at, created_at, updated_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, j *Job) error {
	query := `
		INSERT INTO jobs (id, employer_id, title, description, location, salary_min, salary_max, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		j.ID, j.EmployerID, j.Title, j.Description, j.Location, j.SalaryMin, j.SalaryMax, j.Status,
	).Scan(&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE id = $1`, jobColumns)

	var j Job
	if err := r.db.GetContext(ctx, &j, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// ListOpen returns open jobs, promoted ones first
func (r *PostgresRepository) ListOpen(ctx context.Context, limit, offset int) ([]*Job, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE status = $1
		ORDER BY is_promoted DESC, created_at DESC
		LIMIT $2 OFFSET $3`, jobColumns)

	jobs := []*Job{}
	if err := r.db.SelectContext(ctx, &jobs, query, StatusOpen, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs WHERE status = $1`, StatusOpen); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}
	return jobs, total, nil
}

func (r *PostgresRepository) ListByEmployer(ctx context.Context, employerID uuid.UUID, limit, offset int) ([]*Job, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM jobs
		WHERE employer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, jobColumns)

	jobs := []*Job{}
	if err := r.db.SelectContext(ctx, &jobs, query, employerID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list employer jobs: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs WHERE employer_id = $1`, employerID); err != nil {
		return nil, 0, fmt.Errorf("count employer jobs: %w", err)
	}
	return jobs, total, nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if rows == 0 {
		return ErrJobNotFound
	}
	return nil
}

func (r *PostgresRepository) MarkPromoted(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE jobs SET is_promoted = TRUE, promoted_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark promoted: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark promoted: %w", err)
	}
	if rows == 0 {
		return ErrJobNotFound
	}
	return nil
}
