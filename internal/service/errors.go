package service

import (
	"errors"
	"fmt"
	"time"
)

// Rejections are expected outcomes of the attempt engine's business
// rules. They are returned values callers branch on, never logged as
// failures. Anything else coming out of the engine is a storage fault
// and is wrapped with context instead.
var (
	ErrExamNotFound        = errors.New("exam not found")
	ErrNoExamAvailable     = errors.New("no exam available")
	ErrMaxAttemptsExceeded = errors.New("maximum attempts exceeded")
	ErrAttemptNotFound     = errors.New("attempt not found")
)

// CooldownError rejects a start that falls inside the cooldown window.
// It carries the timestamp at which the student becomes eligible again
// so the caller can display it.
type CooldownError struct {
	NextEligibleAt time.Time
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active until %s", e.NextEligibleAt.Format(time.RFC3339))
}
