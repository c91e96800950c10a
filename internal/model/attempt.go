package model

import (
	"time"

	"github.com/google/uuid"
)

// AttemptStatus enumerates attempt states.
type AttemptStatus string

const (
	AttemptStatusInProgress AttemptStatus = "IN_PROGRESS"
	AttemptStatusCompleted  AttemptStatus = "COMPLETED"
)

// Attempt represents one timed try at an exam by a student.
//
// StudentID is an opaque identifier taken verbatim from the caller's
// token; it is never joined against the students table. SequenceNumber
// is 1-based and gapless within (exam_id, student_id). FinishedAt is
// set exactly when Status is COMPLETED.
type Attempt struct {
	ID             uuid.UUID     `json:"id"`
	ExamID         uuid.UUID     `json:"exam_id"`
	StudentID      string        `json:"student_id"`
	SequenceNumber int           `json:"sequence_number"`
	Status         AttemptStatus `json:"status"`
	StartedAt      time.Time     `json:"started_at"`
	FinishedAt     *time.Time    `json:"finished_at,omitempty"`
}

// AttemptView is an attempt joined with its exam title for display.
type AttemptView struct {
	Attempt
	ExamTitle string `json:"exam_title"`
}

// StartAttemptRequest is the payload for starting an attempt. ExamID is
// optional; when omitted the most recently modified exam is used.
type StartAttemptRequest struct {
	ExamID *uuid.UUID `json:"exam_id" binding:"omitempty"`
}
