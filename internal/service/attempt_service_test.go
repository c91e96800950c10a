package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizgate/quizgate-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAttemptService(store *fakeStore, clock *testClock) *AttemptService {
	return NewAttemptService(
		attemptStoreAdapter{store},
		store,
		NewExamLocks(),
		nil,
		zerolog.Nop(),
		clock.Now,
	)
}

func seedExam(store *fakeStore, maxAttempts, cooldownSeconds int, modified time.Time) model.Exam {
	exam := model.Exam{
		ID:              uuid.New(),
		Title:           "Algebra Final",
		MaxAttempts:     maxAttempts,
		CooldownSeconds: cooldownSeconds,
		LastModified:    modified,
	}
	store.addExam(exam)
	return exam
}

func TestStart_CreatesFirstAttempt(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 3, 0, clock.Now())
	svc := newAttemptService(store, clock)

	attempt, err := svc.Start(context.Background(), "student-1", &exam.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, attempt.SequenceNumber)
	assert.Equal(t, model.AttemptStatusInProgress, attempt.Status)
	assert.Equal(t, clock.Now(), attempt.StartedAt)
	assert.Nil(t, attempt.FinishedAt)
}

func TestStart_SequenceNumbersAreGapless(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 5, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		attempt, err := svc.Start(ctx, "student-1", &exam.ID)
		require.NoError(t, err)
		assert.Equal(t, want, attempt.SequenceNumber)

		_, err = svc.Submit(ctx, attempt.ID, "student-1")
		require.NoError(t, err)
		clock.Advance(time.Minute)
	}
}

func TestStart_IdempotentWhileOpen(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 3, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	first, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)

	second, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.SequenceNumber, second.SequenceNumber)

	history, err := store.ListByExamAndStudent(ctx, exam.ID, "student-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestStart_RejectsAtMaxAttempts(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 1, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	attempt, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, attempt.ID, "student-1")
	require.NoError(t, err)

	_, err = svc.Start(ctx, "student-1", &exam.ID)
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
}

func TestStart_LastSlotIsUsable(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 2, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	first, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, first.ID, "student-1")
	require.NoError(t, err)

	second, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SequenceNumber)
}

func TestStart_CooldownRejectsThenAllows(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 3, 3600, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	first, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, first.ID, "student-1")
	require.NoError(t, err)

	clock.Advance(30 * time.Minute)
	_, err = svc.Start(ctx, "student-1", &exam.ID)

	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Equal(t, first.StartedAt.Add(time.Hour), cooldown.NextEligibleAt)

	// Exactly at the boundary the window has elapsed.
	clock.Advance(30 * time.Minute)
	second, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.SequenceNumber)
}

func TestStart_LimitCheckedBeforeCooldown(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 1, 3600, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	first, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, first.ID, "student-1")
	require.NoError(t, err)

	// Both the limit and the cooldown would reject here; the limit wins.
	clock.Advance(10 * time.Minute)
	_, err = svc.Start(ctx, "student-1", &exam.ID)
	assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
}

func TestStart_UnknownExam(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	svc := newAttemptService(store, clock)

	missing := uuid.New()
	_, err := svc.Start(context.Background(), "student-1", &missing)
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestStart_NoExamAvailable(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	svc := newAttemptService(store, clock)

	_, err := svc.Start(context.Background(), "student-1", nil)
	assert.ErrorIs(t, err, ErrNoExamAvailable)
}

func TestStart_DefaultsToMostRecentExam(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	seedExam(store, 3, 0, clock.Now().Add(-time.Hour))
	newest := seedExam(store, 3, 0, clock.Now())
	svc := newAttemptService(store, clock)

	attempt, err := svc.Start(context.Background(), "student-1", nil)

	require.NoError(t, err)
	assert.Equal(t, newest.ID, attempt.ExamID)
}

func TestStart_StudentsAreIndependent(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 1, 3600, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	_, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)

	// Student A's open attempt and cooldown do not affect student B.
	attempt, err := svc.Start(ctx, "student-2", &exam.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.SequenceNumber)
}

func TestStart_ConcurrentStartsCreateOneAttempt(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 1, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	const goroutines = 16
	var wg sync.WaitGroup
	errs := make([]error, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Start(ctx, "student-1", &exam.ID)
		}(i)
	}
	wg.Wait()

	// One racer wins; the rest hit the limit. Never two rows.
	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, ErrMaxAttemptsExceeded)
		}
	}
	assert.Equal(t, 1, winners)

	history, err := store.ListByExamAndStudent(ctx, exam.ID, "student-1")
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestSubmit_CompletesOpenAttempt(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 3, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	attempt, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)

	clock.Advance(20 * time.Minute)
	done, err := svc.Submit(ctx, attempt.ID, "student-1")

	require.NoError(t, err)
	assert.Equal(t, model.AttemptStatusCompleted, done.Status)
	require.NotNil(t, done.FinishedAt)
	assert.Equal(t, clock.Now(), *done.FinishedAt)
	assert.Equal(t, attempt.StartedAt, done.StartedAt)
}

func TestSubmit_UnknownAttempt(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	svc := newAttemptService(store, clock)

	_, err := svc.Submit(context.Background(), uuid.New(), "student-1")
	assert.ErrorIs(t, err, ErrAttemptNotFound)
}

func TestSubmit_ForeignAttemptLooksMissing(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 3, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	attempt, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)

	_, err = svc.Submit(ctx, attempt.ID, "student-2")
	assert.ErrorIs(t, err, ErrAttemptNotFound)

	// The owner can still complete it afterwards.
	_, err = svc.Submit(ctx, attempt.ID, "student-1")
	assert.NoError(t, err)
}

func TestSubmit_ResubmitRejects(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 3, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	attempt, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, attempt.ID, "student-1")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, attempt.ID, "student-1")
	assert.True(t, errors.Is(err, ErrAttemptNotFound))
}

func TestListAttempts_JoinsExamTitle(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 3, 0, clock.Now())
	svc := newAttemptService(store, clock)
	ctx := context.Background()

	_, err := svc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)

	views, err := svc.ListAttempts(ctx, "student-1")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, exam.Title, views[0].ExamTitle)
}
