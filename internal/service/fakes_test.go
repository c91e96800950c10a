package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quizgate/quizgate-backend/internal/model"
)

// fakeStore is an in-memory ExamStore + AttemptStore. It mirrors the
// pgx repositories' contract: not-found is pgx.ErrNoRows, Complete is
// one conditional transition, UpdatePurgingAttempts is atomic under
// the store mutex.
type fakeStore struct {
	mu       sync.Mutex
	exams    map[uuid.UUID]model.Exam
	attempts []model.Attempt
}

func newFakeStore() *fakeStore {
	return &fakeStore{exams: make(map[uuid.UUID]model.Exam)}
}

func (f *fakeStore) addExam(e model.Exam) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exams[e.ID] = e
}

func (f *fakeStore) GetByID(_ context.Context, id uuid.UUID) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exams[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &e, nil
}

func (f *fakeStore) GetMostRecent(_ context.Context) (*model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var best *model.Exam
	for id := range f.exams {
		e := f.exams[id]
		if best == nil ||
			e.LastModified.After(best.LastModified) ||
			(e.LastModified.Equal(best.LastModified) && e.ID.String() > best.ID.String()) {
			best = &e
		}
	}
	if best == nil {
		return nil, pgx.ErrNoRows
	}
	return best, nil
}

func (f *fakeStore) Create(_ context.Context, e *model.Exam) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exams[e.ID] = *e
	return nil
}

func (f *fakeStore) UpdatePurgingAttempts(_ context.Context, e *model.Exam) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.exams[e.ID]; !ok {
		return 0, pgx.ErrNoRows
	}

	var purged int64
	kept := f.attempts[:0]
	for _, a := range f.attempts {
		if a.ExamID == e.ID {
			purged++
			continue
		}
		kept = append(kept, a)
	}
	f.attempts = kept
	f.exams[e.ID] = *e
	return purged, nil
}

func (f *fakeStore) List(_ context.Context) ([]model.Exam, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Exam, 0, len(f.exams))
	for _, e := range f.exams {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeStore) ListByExamAndStudent(_ context.Context, examID uuid.UUID, studentID string) ([]model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Attempt
	for _, a := range f.attempts {
		if a.ExamID == examID && a.StudentID == studentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateAttempt(_ context.Context, a *model.Attempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts = append(f.attempts, *a)
	return nil
}

func (f *fakeStore) Complete(_ context.Context, attemptID uuid.UUID, studentID string, finishedAt time.Time) (*model.Attempt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.attempts {
		a := &f.attempts[i]
		if a.ID == attemptID && a.StudentID == studentID && a.Status == model.AttemptStatusInProgress {
			a.Status = model.AttemptStatusCompleted
			ts := finishedAt
			a.FinishedAt = &ts
			out := *a
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeStore) ListByStudent(_ context.Context, studentID string) ([]model.AttemptView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.AttemptView
	for _, a := range f.attempts {
		if a.StudentID == studentID {
			out = append(out, model.AttemptView{Attempt: a, ExamTitle: f.exams[a.ExamID].Title})
		}
	}
	return out, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]model.AttemptView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.AttemptView, 0, len(f.attempts))
	for _, a := range f.attempts {
		out = append(out, model.AttemptView{Attempt: a, ExamTitle: f.exams[a.ExamID].Title})
	}
	return out, nil
}

// attemptStoreAdapter renames CreateAttempt to Create so the fake can
// satisfy both store interfaces despite the method name collision.
type attemptStoreAdapter struct {
	*fakeStore
}

func (a attemptStoreAdapter) Create(ctx context.Context, at *model.Attempt) error {
	return a.fakeStore.CreateAttempt(ctx, at)
}

// testClock is a settable clock for driving cooldown windows.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
