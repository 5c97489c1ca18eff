package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/study-planner-api/internal/models"
	appErrors "github.com/noah-isme/study-planner-api/pkg/errors"
)

func newImportantDays(f *fixture) *ImportantDayService {
	return NewImportantDayService(f.repo.ImportantDays, f.repo.Tasks, f.repo.Exams, nil)
}

func TestImportantDayAutoRules(t *testing.T) {
	f := newFixture(t)
	svc := newImportantDays(f)
	ctx := context.Background()
	f.seedTasks(t,
		models.Task{ID: 1, Date: "2024-03-18", Priority: models.PriorityHigh},
		models.Task{ID: 2, Date: "2024-03-19", Priority: models.PriorityMedium},
	)
	f.seedExams(t, models.Exam{ID: 3, Date: "2024-03-20"})

	assert.True(t, svc.IsAutoImportant(ctx, "2024-03-18"))
	assert.False(t, svc.IsAutoImportant(ctx, "2024-03-19"))
	assert.True(t, svc.IsAutoImportant(ctx, "2024-03-20"))
	assert.False(t, svc.IsImportant(ctx, "2024-03-21"))

	// recomputed after the collections change
	f.seedTasks(t, models.Task{ID: 2, Date: "2024-03-19", Priority: models.PriorityHigh})
	assert.False(t, svc.IsAutoImportant(ctx, "2024-03-18"))
	assert.True(t, svc.IsAutoImportant(ctx, "2024-03-19"))
}

func TestImportantDayToggleManual(t *testing.T) {
	f := newFixture(t)
	svc := newImportantDays(f)
	ctx := context.Background()
	require.NoError(t, f.repo.ImportantDays.Write(ctx, []string{"2024-03-01"}))

	marked, err := svc.Toggle(ctx, "2024-03-21")
	require.NoError(t, err)
	assert.True(t, marked)
	assert.True(t, svc.IsImportant(ctx, "2024-03-21"))
	assert.Equal(t, []string{"2024-03-01", "2024-03-21"}, f.repo.ImportantDays.Read(ctx))

	marked, err = svc.Toggle(ctx, "2024-03-21")
	require.NoError(t, err)
	assert.False(t, marked)
	assert.Equal(t, []string{"2024-03-01"}, f.repo.ImportantDays.Read(ctx))
}

func TestImportantDayToggleRejectedWhenAutomatic(t *testing.T) {
	f := newFixture(t)
	svc := newImportantDays(f)
	f.seedExams(t, models.Exam{ID: 1, Date: "2024-03-20"})

	_, err := svc.Toggle(context.Background(), "2024-03-20")
	assert.Equal(t, appErrors.ErrAutoImportant.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.repo.ImportantDays.Read(context.Background()))

	_, err = svc.Toggle(context.Background(), "20-03-2024")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestImportantDayDetailsAndMonth(t *testing.T) {
	f := newFixture(t)
	svc := newImportantDays(f)
	ctx := context.Background()
	f.seedTasks(t,
		models.Task{ID: 1, Title: "Essay", Date: "2024-03-18", Priority: models.PriorityHigh},
		models.Task{ID: 2, Title: "Reading", Date: "2024-03-18", Priority: models.PriorityLow},
		models.Task{ID: 3, Title: "April", Date: "2024-04-02", Priority: models.PriorityHigh},
	)
	f.seedExams(t, models.Exam{ID: 4, Title: "Quiz", Date: "2024-03-05"})
	require.NoError(t, f.repo.ImportantDays.Write(ctx, []string{"2024-03-18", "2024-03-28", "2024-02-10"}))

	day, err := svc.Day(ctx, "2024-03-18")
	require.NoError(t, err)
	assert.Len(t, day.Tasks, 2)
	assert.Empty(t, day.Exams)
	assert.True(t, day.AutoImportant)
	assert.True(t, day.Manual)
	assert.True(t, day.Important)

	dates, err := svc.Month(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-05", "2024-03-18", "2024-03-28"}, dates)

	_, err = svc.Month(ctx, 2024, 13)
	assert.Error(t, err)
}
