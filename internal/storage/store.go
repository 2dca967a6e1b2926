// Package storage persists budget templates. Each budget is stored as
// one JSON document row in a sqlite database, keyed by its name. The
// document shape stays additive across versions; loading normalizes
// missing optional sections instead of failing.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	gorm_zerolog "github.com/wei840222/gorm-zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/budgetplanner/backend/internal/models"
)

// ErrNotFound is returned when no budget exists under the given name.
var ErrNotFound = errors.New("budget not found")

// StoredBudget is the database row wrapping one budget template
// document.
type StoredBudget struct {
	Name      string                `gorm:"primaryKey"`
	Version   string
	Document  models.BudgetTemplate `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is a handle to the budget database.
type Store struct {
	db *gorm.DB
}

// Connect opens (or creates) the sqlite database at the given path and
// migrates the schema.
func Connect(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("could not create data directory: %w", err)
		}
	}

	config := &gorm.Config{
		// Set generated timestamps in UTC
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
		Logger: gorm_zerolog.New(),
	}

	db, err := gorm.Open(sqlite.Open(path), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(StoredBudget{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save writes the template under its name, inserting or updating as
// needed.
func (s *Store) Save(template models.BudgetTemplate) error {
	row := StoredBudget{
		Name:     template.Name,
		Version:  template.Version,
		Document: template,
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"version", "document", "updated_at"}),
	}).Create(&row).Error
}

// Load reads the template stored under a name. The document is
// normalized so templates written by older versions come back with all
// optional sections present.
func (s *Store) Load(name string) (models.BudgetTemplate, error) {
	var row StoredBudget
	err := s.db.First(&row, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.BudgetTemplate{}, ErrNotFound
	}
	if err != nil {
		return models.BudgetTemplate{}, err
	}

	row.Document.Normalize()
	return row.Document, nil
}

// List returns the names of all stored budgets, sorted.
func (s *Store) List() ([]string, error) {
	names := make([]string, 0)
	err := s.db.Model(&StoredBudget{}).Order("name").Pluck("name", &names).Error
	return names, err
}

// Delete removes a stored budget. Deleting an unknown name returns
// ErrNotFound.
func (s *Store) Delete(name string) error {
	result := s.db.Delete(&StoredBudget{}, "name = ?", name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
