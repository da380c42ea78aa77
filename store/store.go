// Package store is the durable, transactional persistence layer for
// every entity in the data model: Articles, Authors, citation snapshots
// and series, article vectors, clusters, searches, and scores.
package store

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"primetime/models"
)

// Store wraps a *gorm.DB with the operations the Ingestor, Cluster
// Manager, Scorer, and Coordinator are built against.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
}

// Open connects to Postgres via dsn and runs AutoMigrate for every
// entity in the data model.
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
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
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// DB exposes the underlying *gorm.DB for callers (such as the scorer
// integration tests) that need raw access outside the Store's operations.
func (s *Store) DB() *gorm.DB { return s.db }
