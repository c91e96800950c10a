package service

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestExamLocks_MutualExclusion(t *testing.T) {
	locks := NewExamLocks()
	examID := uuid.New()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(examID)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 64, counter)
}

func TestExamLocks_EntriesAreReclaimed(t *testing.T) {
	locks := NewExamLocks()
	examID := uuid.New()

	unlock := locks.Lock(examID)
	unlock()

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}

func TestExamLocks_DifferentExamsDoNotBlock(t *testing.T) {
	locks := NewExamLocks()

	unlockA := locks.Lock(uuid.New())
	defer unlockA()

	// Acquiring a different exam's lock must not deadlock while A is held.
	unlockB := locks.Lock(uuid.New())
	unlockB()
}
