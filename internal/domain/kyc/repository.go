package kyc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines verification storage operations
type Repository interface {
	Create(ctx context.Context, s *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*Submission, error)
	ListPending(ctx context.Context, limit, offset int) ([]*Submission, int, error)
	Review(ctx context.Context, s *Submission) error
}

const submissionColumns = `id, user_id, document_type, document_ref, status, note,
	reviewed_by, reviewed_at, created_at`

type PostgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, s *Submission) error {
	query := `
		INSERT INTO kyc_submissions (id, user_id, document_type, document_ref, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.UserID, s.DocumentType, s.DocumentRef, s.Status,
	).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM kyc_submissions WHERE id = $1`, submissionColumns)

	var s Submission
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get submission: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*Submission, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM kyc_submissions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, submissionColumns)

	var s Submission
	if err := r.db.GetContext(ctx, &s, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("get latest submission: %w", err)
	}
	return &s, nil
}

func (r *PostgresRepository) ListPending(ctx context.Context, limit, offset int) ([]*Submission, int, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM kyc_submissions
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3`, submissionColumns)

	subs := []*Submission{}
	if err := r.db.SelectContext(ctx, &subs, query, StatusPending, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list pending submissions: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM kyc_submissions WHERE status = $1`, StatusPending); err != nil {
		return nil, 0, fmt.Errorf("count pending submissions: %w", err)
	}
	return subs, total, nil
}

// Review flips a pending submission; the status guard in the WHERE
// clause makes concurrent reviews first-wins.
func (r *PostgresRepository) Review(ctx context.Context, s *Submission) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE kyc_submissions
		SET status = $1, note = $2, reviewed_by = $3, reviewed_at = NOW()
		WHERE id = $4 AND status = $5`,
		s.Status, s.Note, s.ReviewedBy, s.ID, StatusPending)
	if err != nil {
		return fmt.Errorf("review submission: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("review submission: %w", err)
	}
	if rows == 0 {
		return ErrAlreadyReviewed
	}
	return nil
}
