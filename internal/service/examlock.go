package service

import (
	"sync"

	"github.com/google/uuid"
)

// ExamLocks serializes mutating operations per exam id. Start/submit
// racing with a config update on the same exam must not interleave;
// different exams never interact, so one mutex per exam id is enough.
// Entries are reference-counted and removed when the last holder
// releases, so the map does not grow with the number of exams ever
// touched.
type ExamLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*examLock
}

type examLock struct {
	mu   sync.Mutex
	refs int
}

// NewExamLocks creates an empty lock table.
func NewExamLocks() *ExamLocks {
	return &ExamLocks{locks: make(map[uuid.UUID]*examLock)}
}

// Lock acquires the mutex for the given exam id and returns the
// release function. Callers must release exactly once.
func (l *ExamLocks) Lock(examID uuid.UUID) func() {
	l.mu.Lock()
	e, ok := l.locks[examID]
	if !ok {
		e = &examLock{}
		l.locks[examID] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, examID)
		}
		l.mu.Unlock()
	}
}
