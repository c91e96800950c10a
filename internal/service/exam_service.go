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

// ExamService manages exam configuration. Replacing a configuration
// purges the exam's entire attempt history in the same transaction:
// remaining-attempt counts and cooldown anchors are only meaningful
// against the configuration they were created under, and clearing is
// the one policy that keeps eligibility well-defined after a change.
type ExamService struct {
	exams    ExamStore
	attempts AttemptStore
	locks    *ExamLocks
	events   *AttemptEventPublisher
	log      zerolog.Logger
	now      Clock
}

// NewExamService creates a new ExamService. events may be nil.
func NewExamService(
	exams ExamStore,
	attempts AttemptStore,
	locks *ExamLocks,
	events *AttemptEventPublisher,
	log zerolog.Logger,
	now Clock,
) *ExamService {
	return &ExamService{
		exams:    exams,
		attempts: attempts,
		locks:    locks,
		events:   events,
		log:      log.With().Str("component", "exam_service").Logger(),
		now:      now,
	}
}

// CreateOrUpdate creates a new exam when examID is nil, otherwise
// replaces the configuration of the existing exam and purges all of
// its attempts. Updates take the same per-exam lock as Start, so a
// racing start either completes before the purge or observes the new
// configuration with an empty history.
func (s *ExamService) CreateOrUpdate(ctx context.Context, req model.ExamConfigRequest, examID *uuid.UUID) (*model.Exam, error) {
	if examID == nil {
		exam := &model.Exam{
			ID:              uuid.New(),
			Title:           req.Title,
			MaxAttempts:     req.MaxAttempts,
			CooldownSeconds: req.CooldownSeconds,
			LastModified:    s.now(),
		}
		if err := s.exams.Create(ctx, exam); err != nil {
			return nil, fmt.Errorf("create exam: %w", err)
		}

		s.log.Info().
			Str("exam_id", exam.ID.String()).
			Str("title", exam.Title).
			Msg("Exam created")

		return exam, nil
	}

	unlock := s.locks.Lock(*examID)
	defer unlock()

	exam := &model.Exam{
		ID:              *examID,
		Title:           req.Title,
		MaxAttempts:     req.MaxAttempts,
		CooldownSeconds: req.CooldownSeconds,
		LastModified:    s.now(),
	}

	purged, err := s.exams.UpdatePurgingAttempts(ctx, exam)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update exam: %w", err)
	}

	s.log.Info().
		Str("exam_id", exam.ID.String()).
		Int64("purged_attempts", purged).
		Msg("Exam updated, attempt history purged")

	if purged > 0 && s.events != nil {
		s.events.Publish(ctx, AttemptEvent{
			Type:        EventAttemptsPurged,
			ExamID:      exam.ID,
			PurgedCount: purged,
			At:          exam.LastModified,
		})
	}

	return exam, nil
}

// ListExams returns all exams without student-specific eligibility.
// Remaining is 0 and NextEligibleAt nil, meaning "not applicable".
func (s *ExamService) ListExams(ctx context.Context) ([]model.ExamView, error) {
	exams, err := s.exams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	views := make([]model.ExamView, 0, len(exams))
	for _, e := range exams {
		views = append(views, model.ExamView{Exam: e})
	}
	return views, nil
}

// ListExamsFor returns all exams with the given student's eligibility
// attached: remaining attempts and, when a cooldown is running, the
// timestamp at which the student may start again.
func (s *ExamService) ListExamsFor(ctx context.Context, studentID string) ([]model.ExamView, error) {
	exams, err := s.exams.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}

	now := s.now()
	views := make([]model.ExamView, 0, len(exams))
	for i := range exams {
		attempts, err := s.attempts.ListByExamAndStudent(ctx, exams[i].ID, studentID)
		if err != nil {
			return nil, fmt.Errorf("list attempts for exam %s: %w", exams[i].ID, err)
		}

		elig := EvaluateEligibility(&exams[i], attempts, now)
		views = append(views, model.ExamView{
			Exam:           exams[i],
			Remaining:      elig.Remaining,
			NextEligibleAt: elig.NextEligibleAt,
		})
	}
	return views, nil
}
