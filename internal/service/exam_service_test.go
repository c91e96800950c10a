package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizgate/quizgate-backend/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExamService(store *fakeStore, clock *testClock) *ExamService {
	return NewExamService(
		store,
		attemptStoreAdapter{store},
		NewExamLocks(),
		nil,
		zerolog.Nop(),
		clock.Now,
	)
}

func configRequest(title string, maxAttempts, cooldownSeconds int) model.ExamConfigRequest {
	return model.ExamConfigRequest{
		Title:           title,
		MaxAttempts:     maxAttempts,
		CooldownSeconds: cooldownSeconds,
	}
}

func TestCreateOrUpdate_CreatesExam(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	svc := newExamService(store, clock)

	exam, err := svc.CreateOrUpdate(context.Background(), configRequest("Midterm", 3, 600), nil)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, exam.ID)
	assert.Equal(t, "Midterm", exam.Title)
	assert.Equal(t, clock.Now(), exam.LastModified)

	stored, err := store.GetByID(context.Background(), exam.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.MaxAttempts)
}

func TestCreateOrUpdate_UnknownExam(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	svc := newExamService(store, clock)

	missing := uuid.New()
	_, err := svc.CreateOrUpdate(context.Background(), configRequest("Midterm", 3, 0), &missing)
	assert.ErrorIs(t, err, ErrExamNotFound)
}

func TestCreateOrUpdate_PurgesAttemptHistory(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 2, 0, clock.Now())
	attemptSvc := newAttemptService(store, clock)
	examSvc := newExamService(store, clock)
	ctx := context.Background()

	attempt, err := attemptSvc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	_, err = attemptSvc.Submit(ctx, attempt.ID, "student-1")
	require.NoError(t, err)

	clock.Advance(time.Minute)
	updated, err := examSvc.CreateOrUpdate(ctx, configRequest("Midterm v2", 1, 0), &exam.ID)

	require.NoError(t, err)
	assert.Equal(t, "Midterm v2", updated.Title)
	assert.Equal(t, 1, updated.MaxAttempts)

	history, err := store.ListByExamAndStudent(ctx, exam.ID, "student-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	// History is clean: the next start is sequence 1 under the new config.
	fresh, err := attemptSvc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.SequenceNumber)
}

func TestCreateOrUpdate_PurgeDoesNotTouchOtherExams(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	examA := seedExam(store, 3, 0, clock.Now())
	examB := seedExam(store, 3, 0, clock.Now())
	attemptSvc := newAttemptService(store, clock)
	examSvc := newExamService(store, clock)
	ctx := context.Background()

	_, err := attemptSvc.Start(ctx, "student-1", &examA.ID)
	require.NoError(t, err)
	_, err = attemptSvc.Start(ctx, "student-1", &examB.ID)
	require.NoError(t, err)

	_, err = examSvc.CreateOrUpdate(ctx, configRequest("Replaced", 3, 0), &examA.ID)
	require.NoError(t, err)

	survivors, err := store.ListByExamAndStudent(ctx, examB.ID, "student-1")
	require.NoError(t, err)
	assert.Len(t, survivors, 1)
}

func TestListExams_NoStudentFields(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	seedExam(store, 3, 3600, clock.Now())
	svc := newExamService(store, clock)

	views, err := svc.ListExams(context.Background())

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 0, views[0].Remaining)
	assert.Nil(t, views[0].NextEligibleAt)
}

func TestListExamsFor_AttachesEligibility(t *testing.T) {
	clock := newTestClock(fixedTime())
	store := newFakeStore()
	exam := seedExam(store, 3, 3600, clock.Now())
	attemptSvc := newAttemptService(store, clock)
	examSvc := newExamService(store, clock)
	ctx := context.Background()

	attempt, err := attemptSvc.Start(ctx, "student-1", &exam.ID)
	require.NoError(t, err)
	_, err = attemptSvc.Submit(ctx, attempt.ID, "student-1")
	require.NoError(t, err)

	clock.Advance(15 * time.Minute)
	views, err := examSvc.ListExamsFor(ctx, "student-1")

	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, 2, views[0].Remaining)
	require.NotNil(t, views[0].NextEligibleAt)
	assert.Equal(t, attempt.StartedAt.Add(time.Hour), *views[0].NextEligibleAt)

	// A student with no history sees the full allowance.
	other, err := examSvc.ListExamsFor(ctx, "student-2")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, 3, other[0].Remaining)
	assert.Nil(t, other[0].NextEligibleAt)
}
