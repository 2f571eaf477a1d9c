package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Schedule represents the schedules table (singleton per run)
type Schedule struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	StartDay  string `gorm:"not null" json:"start_day"`
	NumOfDays int    `gorm:"not null" json:"num_of_days"`
}

// Person represents the people table. The derived columns are written once
// per run by the aggregation pass, never by the coverage resolver.
type Person struct {
	ID                string  `gorm:"primaryKey" json:"id"`
	ActivityRate      float64 `gorm:"not null" json:"activity_rate"`
	WorkTargetMinutes float64 `json:"work_target_minutes"`
	NightCount        int     `gorm:"default:0" json:"night_count"`
	WeekendCount      int     `gorm:"default:0" json:"weekend_count"`
	TargetHours       float64 `gorm:"default:0" json:"target_hours"`
	HolidayHours      float64 `gorm:"default:0" json:"holiday_hours"`
	EffectiveHours    float64 `gorm:"default:0" json:"effective_hours"`
	DebtHours         float64 `gorm:"default:0" json:"debt_hours"`
}

// Shift represents the shifts table. Duration is in minutes. AsciiDisplay
// is assigned by the report renderer after ingestion.
type Shift struct {
	ID           string  `gorm:"primaryKey" json:"id"`
	DisplayName  string  `json:"display_name"`
	AsciiDisplay string  `gorm:"default:''" json:"ascii_display"`
	Duration     float64 `gorm:"not null" json:"duration"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
}

// ShiftLabel tags a shift ("night", "off", "holiday")
type ShiftLabel struct {
	ShiftID string `gorm:"index;not null" json:"shift_id"`
	Label   string `gorm:"not null" json:"label"`
}

// Task represents one person working one shift on one day
type Task struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PersonID string `gorm:"index;not null" json:"person_id"`
	ShiftID  string `gorm:"index;not null" json:"shift_id"`
	Day      int    `gorm:"not null" json:"day"`
}

// TaskLabel tags a task ("weekend")
type TaskLabel struct {
	TaskID uint   `gorm:"index;not null" json:"task_id"`
	Label  string `gorm:"not null" json:"label"`
}

// Coverage represents one coverage requirement row. Several rows may exist
// for the same (shift, day); their minimums sum.
type Coverage struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	MinValue int    `gorm:"not null" json:"min_value"`
	MaxValue int    `json:"max_value"`
	ShiftID  string `gorm:"index:idx_coverage_shift_day;not null" json:"shift_id"`
	Day      int    `gorm:"index:idx_coverage_shift_day;not null" json:"day"`
}

// CoveragePerson links a coverage row to an eligible person
type CoveragePerson struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	CoverageID uint   `gorm:"index;not null" json:"coverage_id"`
	PersonID   string `gorm:"not null" json:"person_id"`
}

// Preallocation binds or blocks a person for a shift on a day
type Preallocation struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ShiftID  string `json:"shift_id"`
	PersonID string `gorm:"index:idx_prealloc_person_day;not null" json:"person_id"`
	Type     int    `gorm:"not null" json:"type"`
	Day      int    `gorm:"index:idx_prealloc_person_day;not null" json:"day"`
}

// Exclusion unconditionally removes a person from a shift on a day
type Exclusion struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	ShiftID  string `gorm:"index;not null" json:"shift_id"`
	PersonID string `gorm:"not null" json:"person_id"`
	Day      int    `gorm:"not null" json:"day"`
}

// APIKey represents the api_keys table for the HTTP surface
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"key"`
	Name       string     `gorm:"not null" json:"name"`
	KeyPreview string     `json:"key_preview"`
	RateLimit  int        `gorm:"default:10000" json:"rate_limit"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
}

// AuditUsage represents the audit_usage table
type AuditUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalShifts  int    `gorm:"default:0" json:"total_shifts"`
	TotalPeople  int    `gorm:"default:0" json:"total_people"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func scheduleTables() []any {
	return []any{
		&Schedule{}, &Person{}, &Shift{}, &ShiftLabel{},
		&Task{}, &TaskLabel{}, &Coverage{}, &CoveragePerson{},
		&Preallocation{}, &Exclusion{},
	}
}

// OpenFile opens a fresh SQLite database at path for one audit run. Any
// existing file is removed first so the run starts from an empty store.
func OpenFile(path string) (*gorm.DB, error) {
	if err := os.Remove(path); err == nil {
		log.Printf("removed existing database file %s", path)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(scheduleTables()...); err != nil {
		return nil, err
	}
	return db, nil
}

// InitDB initializes the database connection for the HTTP server and
// migrates the schema
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "shift_audit.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	tables := append(scheduleTables(), &APIKey{}, &AuditUsage{}, &MasterUser{})
	db.AutoMigrate(tables...)

	return db
}
