package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/arnavshah/roster-api-go/pkg/config"
)

// Area represents the areas table
type Area struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Person represents the people table
type Person struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null;index" json:"name"`
	AreaID    string    `gorm:"size:36;index" json:"area_id"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkType represents the work_types table; the code is the identity
type WorkType struct {
	Code      string    `gorm:"primaryKey;size:16" json:"code"`
	Label     string    `gorm:"not null" json:"label"`
	Color     string    `gorm:"size:7;not null" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Assignment represents the assignments table
type Assignment struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	UserID       string    `gorm:"size:36;not null;index" json:"user_id"`
	User         *Person   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	AreaID       string    `gorm:"size:36;index" json:"area_id"`
	WorkTypeCode string    `gorm:"size:16;not null;index" json:"work_type_code"`
	StartDate    time.Time `gorm:"type:date;not null;index:idx_assignment_range" json:"start_date"`
	EndDate      time.Time `gorm:"type:date;not null;index:idx_assignment_range" json:"end_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// APIKey represents the api_keys table. Keys are verified by signature; the
// row only tracks last use and revocation.
type APIKey struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Key        string     `gorm:"unique;not null" json:"-"`
	KeyPreview string     `json:"key_preview"`
	Name       string     `gorm:"not null" json:"name"`
	CreatedAt  time.Time  `json:"created_at"`
	LastUsed   *time.Time `json:"last_used"`
	RevokedAt  *time.Time `json:"revoked_at"`
}

// MasterUser represents the master_users table
type MasterUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Area) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (p *Person) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (a *Assignment) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// InitDB opens Postgres when a DSN is configured and a SQLite file otherwise,
// then migrates the schema
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	gcfg := &gorm.Config{Logger: NewGormLogger()}
	if cfg.DSN != "" {
		gcfg.PrepareStmt = false
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  cfg.DSN,
			PreferSimpleProtocol: true,
		}), gcfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.Path), gcfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&Area{}, &Person{}, &WorkType{}, &Assignment{}, &APIKey{}, &MasterUser{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}
