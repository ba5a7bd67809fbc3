package store

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an elderly user of the platform
type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `gorm:"index" json:"email"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Caregiver represents the person notified about a user's daily report
type Caregiver struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Consent stores a user's data-sharing decision. A missing row means
// sharing was never granted.
type Consent struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"uniqueIndex" json:"user_id"`
	Active      bool      `json:"active"`
	DataSharing bool      `json:"data_sharing"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Medicine represents a recurring medication schedule
type Medicine struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	UserID        string    `gorm:"index" json:"user_id"`
	Name          string    `json:"name"`
	Dose          string    `json:"dose"`
	StartTime     string    `json:"start_time"` // "HH:MM", first dose of the day
	IntervalHours int       `json:"interval_hours"`
	DurationDays  int       `json:"duration_days"`
	StartDate     time.Time `json:"start_date"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// MedicationTask is a single dated occurrence of a Medicine schedule.
// The composite unique index makes concurrent expansion converge on one row.
type MedicationTask struct {
	ID            string    `gorm:"primaryKey" json:"id"`
	MedicineID    string    `gorm:"uniqueIndex:idx_med_sched" json:"medicine_id"`
	UserID        string    `gorm:"index" json:"user_id"`
	ScheduledTime time.Time `gorm:"uniqueIndex:idx_med_sched" json:"scheduled_time"`
	Taken         bool      `json:"taken"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// WellnessEntry is a mood/journal record
type WellnessEntry struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index" json:"user_id"`
	Mood      string    `json:"mood"`
	Note      string    `gorm:"type:text" json:"note"`
	Period    string    `json:"period,omitempty"` // morning, afternoon, evening
	EntryDate time.Time `gorm:"index" json:"entry_date"`
	CreatedAt time.Time `json:"created_at"`
}

// NutritionalEntry is a logged meal
type NutritionalEntry struct {
	ID       string    `gorm:"primaryKey" json:"id"`
	UserID   string    `gorm:"index" json:"user_id"`
	FoodName string    `json:"food_name"`
	MealType string    `json:"meal_type"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fat      float64   `json:"fat"`
	Date     time.Time `gorm:"index" json:"date"`
	CreatedAt time.Time `json:"created_at"`
}

// PhysicalActivity is a logged exercise session
type PhysicalActivity struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"index" json:"user_id"`
	ActivityType    string    `json:"activity_type"`
	ActivityName    string    `json:"activity_name"`
	DurationMinutes int       `json:"duration_minutes"`
	CaloriesBurned  float64   `json:"calories_burned"`
	IntensityLevel  string    `json:"intensity_level,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Date            time.Time `gorm:"index" json:"date"`
	CreatedAt       time.Time `json:"created_at"`
}

// WalkingSession is a tracked walk
type WalkingSession struct {
	ID              string    `gorm:"primaryKey" json:"id"`
	UserID          string    `gorm:"index" json:"user_id"`
	StartTime       time.Time `gorm:"index" json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	DistanceKm      float64   `json:"distance_km"`
	Steps           int       `json:"steps"`
	CaloriesBurned  float64   `json:"calories_burned"`
	CreatedAt       time.Time `json:"created_at"`
}

// ExerciseGoal is the per-day activity target and progress
type ExerciseGoal struct {
	ID             string    `gorm:"primaryKey" json:"id"`
	UserID         string    `gorm:"index" json:"user_id"`
	Date           time.Time `gorm:"index" json:"date"`
	TargetSteps    int       `json:"target_steps"`
	TargetMinutes  int       `json:"target_minutes"`
	TargetCalories float64   `json:"target_calories"`
	CurrentSteps   int       `json:"current_steps"`
	CurrentMinutes int       `json:"current_minutes"`
	CurrentCalories float64  `json:"current_calories"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Appointment is a medical appointment
type Appointment struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index" json:"user_id"`
	Title       string    `json:"title"`
	Doctor      string    `json:"doctor,omitempty"`
	Location    string    `json:"location,omitempty"`
	Date        time.Time `gorm:"index" json:"date"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ReadingActivity tracks book reading progress
type ReadingActivity struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index" json:"user_id"`
	BookTitle   string    `json:"book_title"`
	Author      string    `json:"author,omitempty"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
	StartDate   time.Time `gorm:"index" json:"start_date"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CrosswordActivity tracks completed puzzles
type CrosswordActivity struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"index" json:"user_id"`
	PuzzleName       string    `json:"puzzle_name"`
	Difficulty       string    `json:"difficulty,omitempty"`
	TimeSpentMinutes int       `json:"time_spent_minutes"`
	Date             time.Time `gorm:"index" json:"date"`
	IsCompleted      bool      `json:"is_completed"`
	CreatedAt        time.Time `json:"created_at"`
}

// MovieActivity tracks watched movies
type MovieActivity struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"index" json:"user_id"`
	MovieTitle string    `json:"movie_title"`
	Genre      string    `json:"genre,omitempty"`
	Rating     int       `json:"rating"`
	WatchDate  time.Time `gorm:"index" json:"watch_date"`
	IsWatched  bool      `json:"is_watched"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateID("usr")
	}
	return nil
}

func (c *Caregiver) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateID("cg")
	}
	return nil
}

func (c *Consent) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateID("cons")
	}
	return nil
}

func (m *Medicine) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateID("med")
	}
	return nil
}

func (t *MedicationTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = generateID("mtask")
	}
	return nil
}

func (w *WellnessEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = generateID("well")
	}
	return nil
}

func (n *NutritionalEntry) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateID("nutr")
	}
	return nil
}

func (p *PhysicalActivity) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateID("act")
	}
	return nil
}

func (w *WalkingSession) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = generateID("walk")
	}
	return nil
}

func (g *ExerciseGoal) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = generateID("goal")
	}
	return nil
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = generateID("appt")
	}
	return nil
}

func (r *ReadingActivity) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateID("read")
	}
	return nil
}

func (c *CrosswordActivity) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateID("cross")
	}
	return nil
}

func (m *MovieActivity) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateID("movie")
	}
	return nil
}

// generateID creates a readable unique ID
func generateID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
