// Package report builds the daily wellness report: it aggregates one user's
// day, prompts the generative model, and decodes the reply.
package report

import (
	"context"
	"fmt"
	"time"

	"github.com/vivabem/vivabem-server/internal/errors"
	"github.com/vivabem/vivabem-server/internal/medication"
	"github.com/vivabem/vivabem-server/internal/store"
	"go.uber.org/zap"
)

// Bundle holds everything recorded for one user on one day. Empty sections
// are empty slices; sections whose query failed are listed in Failed.
type Bundle struct {
	User *store.User
	Day  time.Time

	Medicines    []store.Medicine
	Tasks        []store.MedicationTask
	Wellness     []store.WellnessEntry
	Nutrition    []store.NutritionalEntry
	Activities   []store.PhysicalActivity
	Walks        []store.WalkingSession
	Goal         *store.ExerciseGoal
	Appointments []store.Appointment
	Readings     []store.ReadingActivity
	Crosswords   []store.CrosswordActivity
	Movies       []store.MovieActivity

	Failed []string
}

// Aggregator collects a user's daily records
type Aggregator struct {
	store      *store.Store
	medication *medication.Service
	logger     *zap.Logger
}

// NewAggregator creates a new aggregator
func NewAggregator(st *store.Store, med *medication.Service, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:      st,
		medication: med,
		logger:     logger.Named("aggregator"),
	}
}

// Collect gathers every record category for the user and day. A failing
// section is recorded in Bundle.Failed and skipped; only a missing user or a
// failed task expansion aborts.
func (a *Aggregator) Collect(ctx context.Context, userID string, day time.Time) (*Bundle, error) {
	user, err := a.store.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, errors.ErrNotFound
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24*time.Hour - time.Second)

	bundle := &Bundle{User: user, Day: dayStart}

	// Expansion also materializes any occurrence missing for the day, so the
	// report sees the same task list the user does.
	bundle.Tasks, err = a.medication.TodayTasks(ctx, userID, dayStart)
	if err != nil {
		return nil, fmt.Errorf("failed to expand medication tasks: %w", err)
	}

	fail := func(section string, err error) {
		a.logger.Warn("Section query failed",
			zap.String("section", section),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		bundle.Failed = append(bundle.Failed, section)
	}

	if bundle.Medicines, err = a.store.ListMedicines(userID); err != nil {
		fail("medicines", err)
	}
	if bundle.Wellness, err = a.store.GetWellnessEntries(userID, dayStart, dayEnd); err != nil {
		fail("wellness", err)
	}
	if bundle.Nutrition, err = a.store.GetNutritionalEntries(userID, dayStart, dayEnd); err != nil {
		fail("nutrition", err)
	}
	if bundle.Activities, err = a.store.GetPhysicalActivities(userID, dayStart, dayEnd); err != nil {
		fail("activities", err)
	}
	if bundle.Walks, err = a.store.GetWalkingSessions(userID, dayStart, dayEnd); err != nil {
		fail("walks", err)
	}
	if bundle.Goal, err = a.store.GetExerciseGoal(userID, dayStart, dayEnd); err != nil {
		fail("exercise_goal", err)
	}
	if bundle.Appointments, err = a.store.GetAppointments(userID, dayStart, dayEnd); err != nil {
		fail("appointments", err)
	}
	if bundle.Readings, err = a.store.GetReadingActivities(userID, dayStart, dayEnd); err != nil {
		fail("readings", err)
	}
	if bundle.Crosswords, err = a.store.GetCrosswordActivities(userID, dayStart, dayEnd); err != nil {
		fail("crosswords", err)
	}
	if bundle.Movies, err = a.store.GetMovieActivities(userID, dayStart, dayEnd); err != nil {
		fail("movies", err)
	}

	return bundle, nil
}
