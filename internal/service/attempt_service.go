package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quizgate/quizgate-backend/internal/model"
	"github.com/rs/zerolog"
)

// AttemptService owns the attempt lifecycle: it is the only component
// that writes attempt records. Every start is serialized per exam id
// through ExamLocks, shared with ExamService so a config update cannot
// purge attempts mid-flight through a start that already passed its
// checks.
type AttemptService struct {
	attempts AttemptStore
	exams    ExamStore
	locks    *ExamLocks
	events   *AttemptEventPublisher
	log      zerolog.Logger
	now      Clock
}

// NewAttemptService creates a new AttemptService. events may be nil
// when no monitor stream is wired (tests, CLI tools).
func NewAttemptService(
	attempts AttemptStore,
	exams ExamStore,
	locks *ExamLocks,
	events *AttemptEventPublisher,
	log zerolog.Logger,
	now Clock,
) *AttemptService {
	return &AttemptService{
		attempts: attempts,
		exams:    exams,
		locks:    locks,
		events:   events,
		log:      log.With().Str("component", "attempt_service").Logger(),
		now:      now,
	}
}

// Start begins a new attempt for the student, or returns the attempt
// that is already open. examID is optional; when nil the most recently
// modified exam is used.
//
// Checks run in a fixed order under the per-exam lock: attempt limit,
// cooldown window, open attempt. Re-entry while an attempt is open
// never creates a second row and never errors (provided the limit and
// cooldown checks pass first).
func (s *AttemptService) Start(ctx context.Context, studentID string, examID *uuid.UUID) (*model.Attempt, error) {
	id, err := s.resolveExamID(ctx, examID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	// Re-read inside the lock: the config may have been replaced (and
	// the history purged) between resolution and acquisition.
	exam, err := s.exams.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get exam: %w", err)
	}

	attempts, err := s.attempts.ListByExamAndStudent(ctx, id, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	if len(attempts) >= exam.MaxAttempts {
		return nil, ErrMaxAttemptsExceeded
	}

	now := s.now()
	if elig := EvaluateEligibility(exam, attempts, now); elig.NextEligibleAt != nil {
		return nil, &CooldownError{NextEligibleAt: *elig.NextEligibleAt}
	}

	for i := range attempts {
		if attempts[i].Status == model.AttemptStatusInProgress {
			return &attempts[i], nil
		}
	}

	attempt := &model.Attempt{
		ID:             uuid.New(),
		ExamID:         id,
		StudentID:      studentID,
		SequenceNumber: len(attempts) + 1,
		Status:         model.AttemptStatusInProgress,
		StartedAt:      now,
	}

	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("create attempt: %w", err)
	}

	s.log.Info().
		Str("exam_id", id.String()).
		Str("student_id", studentID).
		Int("sequence_number", attempt.SequenceNumber).
		Msg("Attempt started")

	s.publish(ctx, AttemptEvent{
		Type:           EventAttemptStarted,
		ExamID:         attempt.ExamID,
		AttemptID:      &attempt.ID,
		StudentID:      attempt.StudentID,
		SequenceNumber: attempt.SequenceNumber,
		At:             now,
	})

	return attempt, nil
}

// Submit completes the student's open attempt. Attempts that do not
// exist, belong to another student, or are already completed all
// reject with ErrAttemptNotFound — the lookup is folded into one
// conditional write so completed state is never revealed.
func (s *AttemptService) Submit(ctx context.Context, attemptID uuid.UUID, studentID string) (*model.Attempt, error) {
	now := s.now()

	attempt, err := s.attempts.Complete(ctx, attemptID, studentID, now)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("complete attempt: %w", err)
	}

	s.log.Info().
		Str("attempt_id", attemptID.String()).
		Str("student_id", studentID).
		Msg("Attempt submitted")

	s.publish(ctx, AttemptEvent{
		Type:           EventAttemptSubmitted,
		ExamID:         attempt.ExamID,
		AttemptID:      &attempt.ID,
		StudentID:      attempt.StudentID,
		SequenceNumber: attempt.SequenceNumber,
		At:             now,
	})

	return attempt, nil
}

// ListAttempts returns the student's attempts joined with exam titles,
// ordered by sequence number.
func (s *AttemptService) ListAttempts(ctx context.Context, studentID string) ([]model.AttemptView, error) {
	views, err := s.attempts.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return views, nil
}

// ListAllAttempts returns every attempt in the system for admin review.
func (s *AttemptService) ListAllAttempts(ctx context.Context) ([]model.AttemptView, error) {
	views, err := s.attempts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all attempts: %w", err)
	}
	return views, nil
}

// resolveExamID maps an optional exam id to a concrete one, falling
// back to the most recently modified exam.
func (s *AttemptService) resolveExamID(ctx context.Context, examID *uuid.UUID) (uuid.UUID, error) {
	if examID != nil {
		return *examID, nil
	}

	exam, err := s.exams.GetMostRecent(ctx)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrNoExamAvailable
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve most recent exam: %w", err)
	}
	return exam.ID, nil
}

func (s *AttemptService) publish(ctx context.Context, ev AttemptEvent) {
	if s.events != nil {
		s.events.Publish(ctx, ev)
	}
}
