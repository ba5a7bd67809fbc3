// Package medication expands recurring medication schedules into dated
// occurrences and tracks their taken state.
package medication

import (
	"context"
	"fmt"
	"time"

	"github.com/vivabem/vivabem-server/internal/errors"
	"github.com/vivabem/vivabem-server/internal/metrics"
	"github.com/vivabem/vivabem-server/internal/store"
	"go.uber.org/zap"
)

// Service manages medication schedules and their daily occurrences
type Service struct {
	store  *store.Store
	logger *zap.Logger
}

// NewService creates a new medication service
func NewService(st *store.Store, logger *zap.Logger) *Service {
	return &Service{
		store:  st,
		logger: logger.Named("medication"),
	}
}

// CreateInput holds the fields for a new medication schedule
type CreateInput struct {
	Name          string    `json:"name"`
	Dose          string    `json:"dose"`
	StartTime     string    `json:"start_time"`
	IntervalHours int       `json:"interval_hours"`
	DurationDays  int       `json:"duration_days"`
	StartDate     time.Time `json:"start_date"`
}

// CreateMedicine validates and persists a new schedule for the actor
func (s *Service) CreateMedicine(ctx context.Context, actorID string, input CreateInput) (*store.Medicine, error) {
	if input.Name == "" {
		return nil, errors.Wrap(nil, errors.ErrInvalidSchedule.Code, "name is required")
	}
	if _, err := time.Parse("15:04", input.StartTime); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidSchedule.Code, fmt.Sprintf("start_time %q is not HH:MM", input.StartTime))
	}
	if input.IntervalHours < 1 {
		return nil, errors.Wrap(nil, errors.ErrInvalidSchedule.Code, "interval_hours must be at least 1")
	}
	if input.DurationDays < 0 {
		return nil, errors.Wrap(nil, errors.ErrInvalidSchedule.Code, "duration_days must not be negative")
	}
	if input.StartDate.IsZero() {
		return nil, errors.Wrap(nil, errors.ErrInvalidSchedule.Code, "start_date is required")
	}

	med := &store.Medicine{
		UserID:        actorID,
		Name:          input.Name,
		Dose:          input.Dose,
		StartTime:     input.StartTime,
		IntervalHours: input.IntervalHours,
		DurationDays:  input.DurationDays,
		StartDate:     truncateToDay(input.StartDate),
	}

	if err := s.store.CreateMedicine(med); err != nil {
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}

	s.logger.Info("Medicine created",
		zap.String("medicine_id", med.ID),
		zap.String("user_id", actorID),
		zap.Int("interval_hours", med.IntervalHours),
	)
	return med, nil
}

// ListMedicines returns all of the actor's schedules
func (s *Service) ListMedicines(ctx context.Context, actorID string) ([]store.Medicine, error) {
	return s.store.ListMedicines(actorID)
}

// DeleteMedicine removes a schedule owned by the actor
func (s *Service) DeleteMedicine(ctx context.Context, actorID, medicineID string) error {
	med, err := s.store.GetMedicine(medicineID)
	if err != nil {
		return fmt.Errorf("failed to load medicine: %w", err)
	}
	if med == nil {
		return errors.ErrNotFound
	}
	if med.UserID != actorID {
		return errors.ErrUnauthorized
	}
	return s.store.DeleteMedicine(medicineID)
}

// TodayTasks materializes and returns every occurrence the actor's schedules
// produce for the given day, ordered by time. Calling it again for the same
// day creates nothing new.
func (s *Service) TodayTasks(ctx context.Context, actorID string, day time.Time) ([]store.MedicationTask, error) {
	meds, err := s.store.ListMedicines(actorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}

	dayStart := truncateToDay(day)

	for _, med := range meds {
		if !scheduleActiveOn(&med, dayStart) {
			continue
		}

		for _, at := range occurrenceTimes(&med, dayStart) {
			_, created, err := s.store.FirstOrCreateTask(&store.MedicationTask{
				MedicineID:    med.ID,
				UserID:        med.UserID,
				ScheduledTime: at,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to materialize occurrence: %w", err)
			}
			if created {
				metrics.OccurrencesMaterialized.Inc()
			}
		}
	}

	tasks, err := s.store.GetTasksForDay(actorID, dayStart, endOfDay(dayStart))
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	s.logger.Debug("Expanded daily tasks",
		zap.String("user_id", actorID),
		zap.Time("day", dayStart),
		zap.Int("tasks", len(tasks)),
	)
	return tasks, nil
}

// SetTaskTaken flips an occurrence's taken flag. Only the owning user may
// change it; an unauthorized call leaves the row untouched.
func (s *Service) SetTaskTaken(ctx context.Context, actorID, taskID string, taken bool) (*store.MedicationTask, error) {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load task: %w", err)
	}
	if task == nil {
		return nil, errors.ErrTaskNotFound
	}
	if task.UserID != actorID {
		return nil, errors.ErrUnauthorized
	}

	if err := s.store.SetTaskTaken(taskID, taken); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	task.Taken = taken
	s.logger.Info("Task status updated",
		zap.String("task_id", taskID),
		zap.Bool("taken", taken),
	)
	return task, nil
}

// scheduleActiveOn reports whether day falls inside the schedule's window.
// The window is [start_date, start_date + duration_days - 1], inclusive.
func scheduleActiveOn(med *store.Medicine, day time.Time) bool {
	windowStart := truncateToDay(med.StartDate)
	windowEnd := windowStart.AddDate(0, 0, med.DurationDays-1)
	return !day.Before(windowStart) && !day.After(windowEnd)
}

// occurrenceTimes walks from day@start_time in interval_hours steps, stopping
// when the next candidate rolls past midnight.
func occurrenceTimes(med *store.Medicine, day time.Time) []time.Time {
	parsed, err := time.Parse("15:04", med.StartTime)
	if err != nil {
		return nil
	}

	var times []time.Time
	at := time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), 0, 0, day.Location())
	for at.Year() == day.Year() && at.YearDay() == day.YearDay() {
		times = append(times, at)
		at = at.Add(time.Duration(med.IntervalHours) * time.Hour)
	}
	return times
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(dayStart time.Time) time.Time {
	return dayStart.Add(24*time.Hour - time.Second)
}
