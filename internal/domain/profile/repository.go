package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines profile storage operations
type Repository interface {
	Upsert(ctx context.Context, p *Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error)
	HasUnlock(ctx context.Context, profileID, employerID uuid.UUID) (bool, error)
	CreateUnlock(ctx context.Context, u *Unlock) error
}

const profileColumns = `id, user_id, headline, summary, skills, experience_years,
	phone, resume_url, created_at, updated_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert creates the profile on first save, updates it afterwards.
// One profile per user, keyed by user_id.
func (r *PostgresRepository) Upsert(ctx context.Context, p *Profile) error {
	query := `
		INSERT INTO profiles (id, user_id, headline, summary, skills, experience_years, phone, resume_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			headline = EXCLUDED.headline,
			summary = EXCLUDED.summary,
			skills = EXCLUDED.skills,
			experience_years = EXCLUDED.experience_years,
			phone = EXCLUDED.phone,
			resume_url = EXCLUDED.resume_url,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.UserID, p.Headline, p.Summary, p.Skills, p.ExperienceYr, p.Phone, p.ResumeURL,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)
	return r.get(ctx, query, id)
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE user_id = $1`, profileColumns)
	return r.get(ctx, query, userID)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg uuid.UUID) (*Profile, error) {
	var p Profile
	if err := r.db.GetContext(ctx, &p, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) HasUnlock(ctx context.Context, profileID, employerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM resume_unlocks WHERE profile_id = $1 AND employer_id = $2)`,
		profileID, employerID)
	if err != nil {
		return false, fmt.Errorf("check unlock: %w", err)
	}
	return exists, nil
}

// CreateUnlock is a no-op when the row already exists; the UNIQUE
// (profile_id, employer_id) constraint absorbs retries.
func (r *PostgresRepository) CreateUnlock(ctx context.Context, u *Unlock) error {
	query := `
		INSERT INTO resume_unlocks (profile_id, employer_id, transaction_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id, employer_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, u.ProfileID, u.EmployerID, u.TransactionID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrProfileNotFound
		}
		return fmt.Errorf("create unlock: %w", err)
	}
	return nil
}
