package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quizgate/quizgate-backend/internal/model"
)

// Clock supplies the current time to the engine. Injected so tests can
// substitute a fixed or stepped clock.
type Clock func() time.Time

// ExamStore is the persistence surface the engine needs for exam
// configuration. The pgx implementation lives in internal/repository;
// not-found is reported as pgx.ErrNoRows in either implementation.
type ExamStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error)
	// GetMostRecent returns the exam with the greatest last_modified,
	// ties broken by id for determinism.
	GetMostRecent(ctx context.Context) (*model.Exam, error)
	Create(ctx context.Context, e *model.Exam) error
	// UpdatePurgingAttempts atomically deletes every attempt for the
	// exam and overwrites its configuration. Returns the number of
	// purged attempts.
	UpdatePurgingAttempts(ctx context.Context, e *model.Exam) (int64, error)
	List(ctx context.Context) ([]model.Exam, error)
}

// AttemptStore is the persistence surface for attempt records.
type AttemptStore interface {
	ListByExamAndStudent(ctx context.Context, examID uuid.UUID, studentID string) ([]model.Attempt, error)
	Create(ctx context.Context, a *model.Attempt) error
	// Complete transitions IN_PROGRESS → COMPLETED for the attempt
	// owned by studentID in a single conditional write. An attempt that
	// is missing, owned by someone else, or already completed reports
	// pgx.ErrNoRows — the cases are deliberately indistinguishable.
	Complete(ctx context.Context, attemptID uuid.UUID, studentID string, finishedAt time.Time) (*model.Attempt, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.AttemptView, error)
	ListAll(ctx context.Context) ([]model.AttemptView, error)
}
