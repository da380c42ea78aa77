package store

import (
	"errors"
	"os"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"primetime/models"
)

var errMissingTestDSN = errors.New("missing TEST_POSTGRES_DSN")

var (
	testDBOnce sync.Once
	testDB     *gorm.DB
	testDBErr  error
)

// testStore opens (once per test binary) a connection to the Postgres
// instance named by TEST_POSTGRES_DSN, runs the same migrations Open
// does, and hands back a Store wrapping a rolled-back transaction so
// tests never see each other's writes. Tests skip, rather than fail,
// when TEST_POSTGRES_DSN isn't set.
func testStore(t *testing.T) *Store {
	t.Helper()

	testDBOnce.Do(func() {
		dsn := os.Getenv("TEST_POSTGRES_DSN")
		if dsn == "" {
			testDBErr = errMissingTestDSN
			return
		}
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		if err != nil {
			testDBErr = err
			return
		}
		if err := db.AutoMigrate(
			&models.Article{},
			&models.Author{},
			&models.CitationSnapshot{},
			&models.YearlyCitation{},
			&models.ArticleVector{},
			&models.Cluster{},
			&models.Search{},
			&models.OpportunityScore{},
			&models.ScoreHistoryRow{},
		); err != nil {
			testDBErr = err
			return
		}
		testDB = db
	})

	if errors.Is(testDBErr, errMissingTestDSN) {
		t.Skip("set TEST_POSTGRES_DSN to run store integration tests")
	}
	if testDBErr != nil {
		t.Fatalf("failed to init test db: %v", testDBErr)
	}

	tx := testDB.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() { _ = tx.Rollback().Error })

	return &Store{db: tx, logger: zap.NewNop()}
}
