package medication

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivabem/vivabem-server/internal/errors"
	"github.com/vivabem/vivabem-server/internal/store"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestService(t *testing.T) *Service {
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Dialector{Conn: conn}, &gorm.Config{})
	require.NoError(t, err)

	st, err := store.NewWithDB(db)
	require.NoError(t, err)

	return NewService(st, zap.NewNop())
}

func TestCreateMedicine_Validation(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	startDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input CreateInput
	}{
		{"missing name", CreateInput{StartTime: "08:00", IntervalHours: 8, DurationDays: 7, StartDate: startDate}},
		{"bad start time", CreateInput{Name: "Losartana", StartTime: "8am", IntervalHours: 8, DurationDays: 7, StartDate: startDate}},
		{"zero interval", CreateInput{Name: "Losartana", StartTime: "08:00", IntervalHours: 0, DurationDays: 7, StartDate: startDate}},
		{"negative interval", CreateInput{Name: "Losartana", StartTime: "08:00", IntervalHours: -6, DurationDays: 7, StartDate: startDate}},
		{"negative duration", CreateInput{Name: "Losartana", StartTime: "08:00", IntervalHours: 8, DurationDays: -1, StartDate: startDate}},
		{"missing start date", CreateInput{Name: "Losartana", StartTime: "08:00", IntervalHours: 8, DurationDays: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateMedicine(ctx, "usr_123", tt.input)
			require.Error(t, err)
			assert.Equal(t, errors.ErrInvalidSchedule.Code, errors.GetCode(err))
		})
	}
}

func TestTodayTasks_ExpandsInterval(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateMedicine(ctx, "usr_123", CreateInput{
		Name:          "Losartana",
		Dose:          "50mg",
		StartTime:     "08:00",
		IntervalHours: 6,
		DurationDays:  7,
		StartDate:     day,
	})
	require.NoError(t, err)

	tasks, err := svc.TodayTasks(ctx, "usr_123", day)
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, 8, tasks[0].ScheduledTime.Hour())
	assert.Equal(t, 14, tasks[1].ScheduledTime.Hour())
	assert.Equal(t, 20, tasks[2].ScheduledTime.Hour())
	for _, task := range tasks {
		assert.False(t, task.Taken)
	}
}

func TestTodayTasks_Idempotent(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateMedicine(ctx, "usr_123", CreateInput{
		Name:          "Metformina",
		StartTime:     "07:30",
		IntervalHours: 12,
		DurationDays:  30,
		StartDate:     day,
	})
	require.NoError(t, err)

	first, err := svc.TodayTasks(ctx, "usr_123", day)
	require.NoError(t, err)

	second, err := svc.TodayTasks(ctx, "usr_123", day)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestTodayTasks_ActiveWindow(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	startDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateMedicine(ctx, "usr_123", CreateInput{
		Name:          "Antibiótico",
		StartTime:     "10:00",
		IntervalHours: 24,
		DurationDays:  5,
		StartDate:     startDate,
	})
	require.NoError(t, err)

	tests := []struct {
		name  string
		day   time.Time
		count int
	}{
		{"day before window", startDate.AddDate(0, 0, -1), 0},
		{"first day", startDate, 1},
		{"last day", startDate.AddDate(0, 0, 4), 1},
		{"day after window", startDate.AddDate(0, 0, 5), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, err := svc.TodayTasks(ctx, "usr_123", tt.day)
			require.NoError(t, err)
			assert.Len(t, tasks, tt.count)
		})
	}
}

func TestCreateMedicine_ZeroDurationNeverActive(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	startDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	// A zero-day schedule is valid input; its window is simply empty
	med, err := svc.CreateMedicine(ctx, "usr_123", CreateInput{
		Name:          "Vitamina D",
		StartTime:     "08:00",
		IntervalHours: 24,
		DurationDays:  0,
		StartDate:     startDate,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, med.ID)

	for _, day := range []time.Time{startDate.AddDate(0, 0, -1), startDate, startDate.AddDate(0, 0, 1)} {
		tasks, err := svc.TodayTasks(ctx, "usr_123", day)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	}
}

func TestTodayTasks_StopsAtMidnight(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	// Late start leaves room for a single dose before midnight
	_, err := svc.CreateMedicine(ctx, "usr_123", CreateInput{
		Name:          "Sedativo",
		StartTime:     "23:00",
		IntervalHours: 2,
		DurationDays:  7,
		StartDate:     day,
	})
	require.NoError(t, err)

	tasks, err := svc.TodayTasks(ctx, "usr_123", day)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, 23, tasks[0].ScheduledTime.Hour())
}

func TestSetTaskTaken(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateMedicine(ctx, "usr_123", CreateInput{
		Name:          "Losartana",
		StartTime:     "08:00",
		IntervalHours: 24,
		DurationDays:  7,
		StartDate:     day,
	})
	require.NoError(t, err)

	tasks, err := svc.TodayTasks(ctx, "usr_123", day)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	updated, err := svc.SetTaskTaken(ctx, "usr_123", tasks[0].ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Taken)

	tasks, err = svc.TodayTasks(ctx, "usr_123", day)
	require.NoError(t, err)
	assert.True(t, tasks[0].Taken)
}

func TestSetTaskTaken_Unauthorized(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	_, err := svc.CreateMedicine(ctx, "usr_123", CreateInput{
		Name:          "Losartana",
		StartTime:     "08:00",
		IntervalHours: 24,
		DurationDays:  7,
		StartDate:     day,
	})
	require.NoError(t, err)

	tasks, err := svc.TodayTasks(ctx, "usr_123", day)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	_, err = svc.SetTaskTaken(ctx, "usr_intruder", tasks[0].ID, true)
	require.Error(t, err)
	assert.Equal(t, errors.ErrUnauthorized.Code, errors.GetCode(err))

	// The row is unchanged
	tasks, err = svc.TodayTasks(ctx, "usr_123", day)
	require.NoError(t, err)
	assert.False(t, tasks[0].Taken)
}

func TestSetTaskTaken_NotFound(t *testing.T) {
	svc := setupTestService(t)

	_, err := svc.SetTaskTaken(context.Background(), "usr_123", "mtask_missing", true)
	require.Error(t, err)
	assert.Equal(t, errors.ErrTaskNotFound.Code, errors.GetCode(err))
}

func TestDeleteMedicine_Ownership(t *testing.T) {
	svc := setupTestService(t)
	ctx := context.Background()

	med, err := svc.CreateMedicine(ctx, "usr_123", CreateInput{
		Name:          "Losartana",
		StartTime:     "08:00",
		IntervalHours: 24,
		DurationDays:  7,
		StartDate:     time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	err = svc.DeleteMedicine(ctx, "usr_intruder", med.ID)
	require.Error(t, err)
	assert.Equal(t, errors.ErrUnauthorized.Code, errors.GetCode(err))

	require.NoError(t, svc.DeleteMedicine(ctx, "usr_123", med.ID))

	meds, err := svc.ListMedicines(ctx, "usr_123")
	require.NoError(t, err)
	assert.Empty(t, meds)
}
