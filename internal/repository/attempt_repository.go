package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/quizgate/quizgate-backend/internal/model"
)

// AttemptRepository handles attempt data access. student_id is stored
// as opaque text and never joined against the students table.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

// ListByExamAndStudent retrieves one student's attempts on one exam,
// ordered by sequence number.
func (r *AttemptRepository) ListByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID string) ([]model.Attempt, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, exam_id, student_id, sequence_number, status, started_at, finished_at
		 FROM attempts
		 WHERE exam_id = $1 AND student_id = $2
		 ORDER BY sequence_number ASC`, examID, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attempts []model.Attempt
	for rows.Next() {
		var a model.Attempt
		if err := rows.Scan(&a.ID, &a.ExamID, &a.StudentID, &a.SequenceNumber,
			&a.Status, &a.StartedAt, &a.FinishedAt); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// Create inserts a new attempt row.
func (r *AttemptRepository) Create(ctx context.Context, a *model.Attempt) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO attempts (id, exam_id, student_id, sequence_number, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.ExamID, a.StudentID, a.SequenceNumber, a.Status, a.StartedAt)
	return err
}

// Complete transitions the attempt to COMPLETED in a single conditional
// write. The WHERE clause folds in ownership and the IN_PROGRESS
// requirement, so a missing, foreign, or already-completed attempt all
// surface as pgx.ErrNoRows.
func (r *AttemptRepository) Complete(ctx context.Context, attemptID uuid.UUID, studentID string, finishedAt time.Time) (*model.Attempt, error) {
	a := &model.Attempt{}
	err := r.pool.QueryRow(ctx,
		`UPDATE attempts
		 SET status = $1, finished_at = $2
		 WHERE id = $3 AND student_id = $4 AND status = $5
		 RETURNING id, exam_id, student_id, sequence_number, status, started_at, finished_at`,
		model.AttemptStatusCompleted, finishedAt, attemptID, studentID, model.AttemptStatusInProgress,
	).Scan(&a.ID, &a.ExamID, &a.StudentID, &a.SequenceNumber, &a.Status, &a.StartedAt, &a.FinishedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListByStudent retrieves all of a student's attempts across exams,
// joined with the exam title, ordered by sequence number with
// insertion order as the tie-break.
func (r *AttemptRepository) ListByStudent(ctx context.Context, studentID string) ([]model.AttemptView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.exam_id, a.student_id, a.sequence_number, a.status,
		        a.started_at, a.finished_at, e.title
		 FROM attempts a
		 JOIN exams e ON a.exam_id = e.id
		 WHERE a.student_id = $1
		 ORDER BY a.sequence_number ASC, a.created_seq ASC`, studentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttemptViews(rows)
}

// ListAll retrieves every attempt with its exam title, for admin review.
func (r *AttemptRepository) ListAll(ctx context.Context) ([]model.AttemptView, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT a.id, a.exam_id, a.student_id, a.sequence_number, a.status,
		        a.started_at, a.finished_at, e.title
		 FROM attempts a
		 JOIN exams e ON a.exam_id = e.id
		 ORDER BY a.sequence_number ASC, a.created_seq ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttemptViews(rows)
}

type attemptRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAttemptViews(rows attemptRows) ([]model.AttemptView, error) {
	var views []model.AttemptView
	for rows.Next() {
		var v model.AttemptView
		if err := rows.Scan(&v.ID, &v.ExamID, &v.StudentID, &v.SequenceNumber,
			&v.Status, &v.StartedAt, &v.FinishedAt, &v.ExamTitle); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
