package tester

import (
	"fmt"
	"testing"

	"github.com/emrgen/headline/internal/model"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TestDB opens a private in-memory sqlite database with the schema migrated.
// The database is dropped when t finishes.
func TestDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// a single connection keeps the shared in-memory database free of lock errors
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err = model.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	return db
}

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// CreateHeadlines inserts n headlines titled "headline-<i>" in batches and
// returns them ordered by ID.
func CreateHeadlines(t testing.TB, db *gorm.DB, n int) []*model.Headline {
	t.Helper()

	headlines := make([]*model.Headline, 0, n)
	for i := range n {
		headlines = append(headlines, &model.Headline{Title: fmt.Sprintf("headline-%d", i+1)})
	}
	if err := db.CreateInBatches(headlines, 500).Error; err != nil {
		t.Fatalf("create headlines: %v", err)
	}

	return headlines
}
