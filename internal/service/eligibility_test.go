package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizgate/quizgate-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTime() time.Time {
	return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
}

func makeAttempt(seq int, status model.AttemptStatus, startedAt time.Time) model.Attempt {
	a := model.Attempt{
		ID:             uuid.New(),
		SequenceNumber: seq,
		Status:         status,
		StartedAt:      startedAt,
	}
	if status == model.AttemptStatusCompleted {
		finished := startedAt.Add(10 * time.Minute)
		a.FinishedAt = &finished
	}
	return a
}

func TestEvaluateEligibility_NoHistory(t *testing.T) {
	exam := &model.Exam{MaxAttempts: 3, CooldownSeconds: 3600}

	elig := EvaluateEligibility(exam, nil, fixedTime())

	assert.Equal(t, 3, elig.Remaining)
	assert.Nil(t, elig.NextEligibleAt)
}

func TestEvaluateEligibility_CooldownRunning(t *testing.T) {
	now := fixedTime()
	exam := &model.Exam{MaxAttempts: 3, CooldownSeconds: 3600}
	attempts := []model.Attempt{
		makeAttempt(1, model.AttemptStatusCompleted, now.Add(-30*time.Minute)),
	}

	elig := EvaluateEligibility(exam, attempts, now)

	assert.Equal(t, 2, elig.Remaining)
	require.NotNil(t, elig.NextEligibleAt)
	assert.Equal(t, now.Add(30*time.Minute), *elig.NextEligibleAt)
}

func TestEvaluateEligibility_CooldownElapsed(t *testing.T) {
	now := fixedTime()
	exam := &model.Exam{MaxAttempts: 3, CooldownSeconds: 3600}
	attempts := []model.Attempt{
		makeAttempt(1, model.AttemptStatusCompleted, now.Add(-2*time.Hour)),
	}

	elig := EvaluateEligibility(exam, attempts, now)

	assert.Equal(t, 2, elig.Remaining)
	assert.Nil(t, elig.NextEligibleAt)
}

func TestEvaluateEligibility_CooldownBoundaryIsEligible(t *testing.T) {
	// Exactly at startedAt+cooldown the window is over, not running.
	now := fixedTime()
	exam := &model.Exam{MaxAttempts: 3, CooldownSeconds: 3600}
	attempts := []model.Attempt{
		makeAttempt(1, model.AttemptStatusCompleted, now.Add(-time.Hour)),
	}

	elig := EvaluateEligibility(exam, attempts, now)

	assert.Nil(t, elig.NextEligibleAt)
}

func TestEvaluateEligibility_ZeroCooldown(t *testing.T) {
	now := fixedTime()
	exam := &model.Exam{MaxAttempts: 5, CooldownSeconds: 0}
	attempts := []model.Attempt{
		makeAttempt(1, model.AttemptStatusCompleted, now),
	}

	elig := EvaluateEligibility(exam, attempts, now)

	assert.Equal(t, 4, elig.Remaining)
	assert.Nil(t, elig.NextEligibleAt)
}

func TestEvaluateEligibility_RemainingNeverNegative(t *testing.T) {
	now := fixedTime()
	exam := &model.Exam{MaxAttempts: 1, CooldownSeconds: 0}
	attempts := []model.Attempt{
		makeAttempt(1, model.AttemptStatusCompleted, now.Add(-2*time.Hour)),
		makeAttempt(2, model.AttemptStatusCompleted, now.Add(-time.Hour)),
	}

	elig := EvaluateEligibility(exam, attempts, now)

	assert.Equal(t, 0, elig.Remaining)
}

func TestEvaluateEligibility_CooldownFromLatestAttempt(t *testing.T) {
	// The window is measured from the latest StartedAt, not the first.
	now := fixedTime()
	exam := &model.Exam{MaxAttempts: 5, CooldownSeconds: 3600}
	attempts := []model.Attempt{
		makeAttempt(2, model.AttemptStatusCompleted, now.Add(-20*time.Minute)),
		makeAttempt(1, model.AttemptStatusCompleted, now.Add(-3*time.Hour)),
	}

	elig := EvaluateEligibility(exam, attempts, now)

	require.NotNil(t, elig.NextEligibleAt)
	assert.Equal(t, now.Add(40*time.Minute), *elig.NextEligibleAt)
}

func TestLatestAttempt_TieBreaksOnSequence(t *testing.T) {
	startedAt := fixedTime()
	attempts := []model.Attempt{
		makeAttempt(3, model.AttemptStatusCompleted, startedAt),
		makeAttempt(1, model.AttemptStatusCompleted, startedAt),
		makeAttempt(2, model.AttemptStatusCompleted, startedAt),
	}

	latest := latestAttempt(attempts)

	assert.Equal(t, 3, latest.SequenceNumber)
}

func TestEvaluateEligibility_InProgressCountsTowardRemaining(t *testing.T) {
	now := fixedTime()
	exam := &model.Exam{MaxAttempts: 2, CooldownSeconds: 0}
	attempts := []model.Attempt{
		makeAttempt(1, model.AttemptStatusInProgress, now.Add(-5*time.Minute)),
	}

	elig := EvaluateEligibility(exam, attempts, now)

	assert.Equal(t, 1, elig.Remaining)
}
