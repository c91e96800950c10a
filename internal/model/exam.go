package model

import (
	"time"

	"github.com/google/uuid"
)

// Exam represents a configured assessment that students may attempt.
// MaxAttempts caps the number of attempts per student; CooldownSeconds
// is the minimum spacing between attempts (0 = none).
type Exam struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	MaxAttempts     int       `json:"max_attempts"`
	CooldownSeconds int       `json:"cooldown_seconds"`
	LastModified    time.Time `json:"last_modified"`
}

// Cooldown returns the cooldown window as a duration.
func (e *Exam) Cooldown() time.Duration {
	return time.Duration(e.CooldownSeconds) * time.Second
}

// ExamConfigRequest is the payload for creating or replacing an exam
// configuration. Updates overwrite the full configuration.
type ExamConfigRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=255"`
	MaxAttempts     int    `json:"max_attempts" binding:"required,min=1,max=100"`
	CooldownSeconds int    `json:"cooldown_seconds" binding:"min=0,max=2592000"`
}

// ExamView is an exam enriched with the calling student's eligibility.
// For admin listings Remaining is 0 and NextEligibleAt is nil, meaning
// "not applicable" rather than "no attempts left".
type ExamView struct {
	Exam
	Remaining      int        `json:"remaining"`
	NextEligibleAt *time.Time `json:"next_eligible_at,omitempty"`
}
