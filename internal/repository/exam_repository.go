package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizgate/quizgate-backend/internal/model"
)

// ExamRepository handles exam configuration data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

// GetByID retrieves an exam by its UUID.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, max_attempts, cooldown_seconds, last_modified
		 FROM exams WHERE id = $1`, id,
	).Scan(&e.ID, &e.Title, &e.MaxAttempts, &e.CooldownSeconds, &e.LastModified)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetMostRecent retrieves the exam with the greatest last_modified.
// Ties are broken by id so the result is stable.
func (r *ExamRepository) GetMostRecent(ctx context.Context) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, max_attempts, cooldown_seconds, last_modified
		 FROM exams
		 ORDER BY last_modified DESC, id DESC
		 LIMIT 1`,
	).Scan(&e.ID, &e.Title, &e.MaxAttempts, &e.CooldownSeconds, &e.LastModified)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO exams (id, title, max_attempts, cooldown_seconds, last_modified)
		 VALUES ($1, $2, $3, $4, $5)`,
		e.ID, e.Title, e.MaxAttempts, e.CooldownSeconds, e.LastModified)
	return err
}

// UpdatePurgingAttempts replaces the exam's configuration and deletes
// every attempt referencing it, in one transaction. The exam row is
// locked first so a concurrent start on the same exam serializes
// against the purge at the storage layer too. Returns pgx.ErrNoRows if
// the exam does not exist.
func (r *ExamRepository) UpdatePurgingAttempts(ctx context.Context, e *model.Exam) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing uuid.UUID
	if err := tx.QueryRow(ctx,
		`SELECT id FROM exams WHERE id = $1 FOR UPDATE`, e.ID,
	).Scan(&existing); err != nil {
		return 0, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM attempts WHERE exam_id = $1`, e.ID)
	if err != nil {
		return 0, fmt.Errorf("purge attempts: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE exams
		 SET title = $1, max_attempts = $2, cooldown_seconds = $3, last_modified = $4
		 WHERE id = $5`,
		e.Title, e.MaxAttempts, e.CooldownSeconds, e.LastModified, e.ID,
	); err != nil {
		return 0, fmt.Errorf("update exam: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return tag.RowsAffected(), nil
}

// List retrieves all exams, most recently modified first.
func (r *ExamRepository) List(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, max_attempts, cooldown_seconds, last_modified
		 FROM exams
		 ORDER BY last_modified DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.Title, &e.MaxAttempts, &e.CooldownSeconds, &e.LastModified); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
