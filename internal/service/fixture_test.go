package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/noah-isme/study-planner-api/internal/models"
	"github.com/noah-isme/study-planner-api/internal/repository"
	"github.com/noah-isme/study-planner-api/internal/store"
)

// fixedNow is a Friday.
var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type fixture struct {
	kv    *store.Store
	repo  *repository.PlannerRepository
	clock Clock
	now   *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := fixedNow
	kv := store.New(store.NewMemoryBackend(), store.NewMemoryFeed(16, nil), nil)
	f := &fixture{kv: kv, repo: repository.NewPlannerRepository(kv, nil, nil), now: &now}
	f.clock = Clock{Now: func() time.Time { return *f.now }, Location: time.UTC}
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func (f *fixture) seedTasks(t *testing.T, tasks ...models.Task) {
	t.Helper()
	if err := f.repo.Tasks.Write(context.Background(), tasks); err != nil {
		t.Fatal(err)
	}
}

func (f *fixture) seedExams(t *testing.T, exams ...models.Exam) {
	t.Helper()
	if err := f.repo.Exams.Write(context.Background(), exams); err != nil {
		t.Fatal(err)
	}
}

func strPtr(s string) *string { return &s }

type failingTasks struct{ tasks []models.Task }

func (f *failingTasks) Read(context.Context) []models.Task         { return f.tasks }
func (f *failingTasks) Write(context.Context, []models.Task) error { return errors.New("redis down") }
