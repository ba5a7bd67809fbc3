package store

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/vivabem/vivabem-server/internal/config"
	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Store provides access to the SQLite database
type Store struct {
	db     *gorm.DB
	config *config.StorageConfig
}

// New creates a new Store instance
func New(cfg *config.Config) (*Store, error) {
	sqlitePath := cfg.Storage.SQLitePath
	if sqlitePath == "" {
		sqlitePath = filepath.Join(cfg.Storage.DataDir, "vivabem.db")
	}

	// Open SQLite with optimizations
	sqliteDB, err := sql.Open("sqlite", sqlitePath+"?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000&_cache_size=-64000")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	sqliteDB.SetMaxOpenConns(10)
	sqliteDB.SetMaxIdleConns(5)
	sqliteDB.SetConnMaxLifetime(time.Hour)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqliteDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	store := &Store{
		db:     db,
		config: &cfg.Storage,
	}

	if err := store.Migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

// NewWithDB wraps an existing gorm database, used by tests
func NewWithDB(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.Migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// Migrate runs schema auto-migration
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(
		&User{},
		&Caregiver{},
		&Consent{},
		&Medicine{},
		&MedicationTask{},
		&WellnessEntry{},
		&NutritionalEntry{},
		&PhysicalActivity{},
		&WalkingSession{},
		&ExerciseGoal{},
		&Appointment{},
		&ReadingActivity{},
		&CrosswordActivity{},
		&MovieActivity{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DB returns the GORM database instance
func (s *Store) DB() *gorm.DB {
	return s.db
}

// ==================== User Methods ====================

func (s *Store) CreateUser(user *User) error {
	return s.db.Create(user).Error
}

func (s *Store) GetUser(id string) (*User, error) {
	var user User
	err := s.db.Where("id = ?", id).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &user, err
}

func (s *Store) ListUsers() ([]User, error) {
	var users []User
	err := s.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

// ==================== Caregiver Methods ====================

func (s *Store) CreateCaregiver(cg *Caregiver) error {
	return s.db.Create(cg).Error
}

// GetCaregiver returns the user's caregiver, or nil when none is registered
func (s *Store) GetCaregiver(userID string) (*Caregiver, error) {
	var cg Caregiver
	err := s.db.Where("user_id = ?", userID).First(&cg).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &cg, err
}

// ==================== Consent Methods ====================

// GetConsent returns the user's consent row, or nil when none exists
func (s *Store) GetConsent(userID string) (*Consent, error) {
	var consent Consent
	err := s.db.Where("user_id = ?", userID).First(&consent).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &consent, err
}

// UpsertConsent creates or replaces the user's consent flags
func (s *Store) UpsertConsent(consent *Consent) error {
	consent.UpdatedAt = time.Now()
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"active", "data_sharing", "updated_at"}),
	}).Create(consent).Error
}

// ==================== Medicine Methods ====================

func (s *Store) CreateMedicine(med *Medicine) error {
	return s.db.Create(med).Error
}

func (s *Store) GetMedicine(id string) (*Medicine, error) {
	var med Medicine
	err := s.db.Where("id = ?", id).First(&med).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &med, err
}

func (s *Store) ListMedicines(userID string) ([]Medicine, error) {
	var meds []Medicine
	err := s.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&meds).Error
	return meds, err
}

func (s *Store) DeleteMedicine(id string) error {
	return s.db.Where("id = ?", id).Delete(&Medicine{}).Error
}

// ==================== MedicationTask Methods ====================

// FirstOrCreateTask materializes an occurrence. The insert is ignored when the
// (medicine_id, scheduled_time) row already exists; the winner is read back, so
// concurrent callers all see the same row. The bool reports whether this call
// inserted the row.
func (s *Store) FirstOrCreateTask(task *MedicationTask) (*MedicationTask, bool, error) {
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "medicine_id"}, {Name: "scheduled_time"}},
		DoNothing: true,
	}).Create(task)
	if res.Error != nil {
		return nil, false, res.Error
	}

	var existing MedicationTask
	err := s.db.Where("medicine_id = ? AND scheduled_time = ?", task.MedicineID, task.ScheduledTime).
		First(&existing).Error
	if err != nil {
		return nil, false, err
	}
	return &existing, res.RowsAffected > 0, nil
}

func (s *Store) GetTask(id string) (*MedicationTask, error) {
	var task MedicationTask
	err := s.db.Where("id = ?", id).First(&task).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &task, err
}

func (s *Store) GetTasksForDay(userID string, start, end time.Time) ([]MedicationTask, error) {
	var tasks []MedicationTask
	err := s.db.Where("user_id = ? AND scheduled_time >= ? AND scheduled_time <= ?", userID, start, end).
		Order("scheduled_time ASC").
		Find(&tasks).Error
	return tasks, err
}

func (s *Store) SetTaskTaken(id string, taken bool) error {
	return s.db.Model(&MedicationTask{}).Where("id = ?", id).Updates(map[string]interface{}{
		"taken":      taken,
		"updated_at": time.Now(),
	}).Error
}

// ==================== Daily Record Methods ====================

func (s *Store) GetWellnessEntries(userID string, start, end time.Time) ([]WellnessEntry, error) {
	var entries []WellnessEntry
	err := s.db.Where("user_id = ? AND entry_date >= ? AND entry_date <= ?", userID, start, end).
		Order("entry_date ASC").
		Find(&entries).Error
	return entries, err
}

func (s *Store) GetNutritionalEntries(userID string, start, end time.Time) ([]NutritionalEntry, error) {
	var entries []NutritionalEntry
	err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&entries).Error
	return entries, err
}

func (s *Store) GetPhysicalActivities(userID string, start, end time.Time) ([]PhysicalActivity, error) {
	var acts []PhysicalActivity
	err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&acts).Error
	return acts, err
}

func (s *Store) GetWalkingSessions(userID string, start, end time.Time) ([]WalkingSession, error) {
	var sessions []WalkingSession
	err := s.db.Where("user_id = ? AND start_time >= ? AND start_time <= ?", userID, start, end).
		Order("start_time ASC").
		Find(&sessions).Error
	return sessions, err
}

// GetExerciseGoal returns the day's goal, or nil when none was set
func (s *Store) GetExerciseGoal(userID string, start, end time.Time) (*ExerciseGoal, error) {
	var goal ExerciseGoal
	err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		First(&goal).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	return &goal, err
}

func (s *Store) GetAppointments(userID string, start, end time.Time) ([]Appointment, error) {
	var appts []Appointment
	err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&appts).Error
	return appts, err
}

func (s *Store) GetReadingActivities(userID string, start, end time.Time) ([]ReadingActivity, error) {
	var acts []ReadingActivity
	err := s.db.Where("user_id = ? AND start_date >= ? AND start_date <= ?", userID, start, end).
		Order("start_date ASC").
		Find(&acts).Error
	return acts, err
}

func (s *Store) GetCrosswordActivities(userID string, start, end time.Time) ([]CrosswordActivity, error) {
	var acts []CrosswordActivity
	err := s.db.Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("date ASC").
		Find(&acts).Error
	return acts, err
}

func (s *Store) GetMovieActivities(userID string, start, end time.Time) ([]MovieActivity, error) {
	var acts []MovieActivity
	err := s.db.Where("user_id = ? AND watch_date >= ? AND watch_date <= ?", userID, start, end).
		Order("watch_date ASC").
		Find(&acts).Error
	return acts, err
}
