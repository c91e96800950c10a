package service

import (
	"time"

	"github.com/quizgate/quizgate-backend/internal/model"
)

// Eligibility is the result of evaluating a student's attempt history
// against an exam's configuration. NextEligibleAt is nil when the
// student may start immediately (or when no cooldown applies).
type Eligibility struct {
	Remaining      int
	NextEligibleAt *time.Time
}

// EvaluateEligibility computes the remaining attempt count and the next
// eligible timestamp for one student on one exam. Pure function: no
// mutation, no I/O, always returns a value.
func EvaluateEligibility(exam *model.Exam, attempts []model.Attempt, now time.Time) Eligibility {
	remaining := exam.MaxAttempts - len(attempts)
	if remaining < 0 {
		remaining = 0
	}

	elig := Eligibility{Remaining: remaining}

	if len(attempts) == 0 || exam.CooldownSeconds == 0 {
		return elig
	}

	latest := latestAttempt(attempts)
	candidate := latest.StartedAt.Add(exam.Cooldown())
	if candidate.After(now) {
		elig.NextEligibleAt = &candidate
	}
	return elig
}

// latestAttempt returns the attempt with the maximum StartedAt.
// Attempts for one identity are created serially, so identical start
// times imply a caller or clock bug; ties go to the highest sequence
// number to keep the result deterministic.
func latestAttempt(attempts []model.Attempt) *model.Attempt {
	latest := &attempts[0]
	for i := 1; i < len(attempts); i++ {
		a := &attempts[i]
		if a.StartedAt.After(latest.StartedAt) ||
			(a.StartedAt.Equal(latest.StartedAt) && a.SequenceNumber > latest.SequenceNumber) {
			latest = a
		}
	}
	return latest
}
