package models

import "time"

// Search is identified by a monotonically increasing integer id. An
// Article belongs to a Search iff it was returned by (or already present
// and re-matched by) that search.
type Search struct {
	ID          uint   `gorm:"primaryKey"`
	Idea        string `gorm:"not null"`
	Keywords    string `gorm:"not null;default:''"`
	MaxResults  int    `gorm:"not null"`
	DateStart   *time.Time
	DateEnd     *time.Time
	CreatedAt   time.Time
	Articles    []Article `gorm:"many2many:search_articles;"`
}

func (Search) TableName() string { return "searches" }

// OpportunityScore is one-to-one with Search and absent until background
// scoring completes. Overall is a fixed convex combination of the three
// normalized sub-scores.
type OpportunityScore struct {
	SearchID   uint `gorm:"primaryKey"`
	Novelty    float64
	Velocity   float64
	Recency    float64
	Overall    float64
	ComputedAt time.Time
}

func (OpportunityScore) TableName() string { return "opportunity_scores" }

// ScoreHistoryRow carries the raw, pre-normalization sub-scores for one
// scoring pass, read by the Scorer to percentile-rank a new pass against
// the historical distribution. A Search re-scored multiple times (e.g.
// after new articles are ingested into it) appends a new row each time
// rather than overwriting its prior one, so the percentile history
// reflects every pass that ever ran, not just the latest.
type ScoreHistoryRow struct {
	ID          uint `gorm:"primaryKey"`
	SearchID    uint `gorm:"index;not null"`
	NoveltyRaw  float64
	VelocityRaw float64
	RecencyRaw  float64
	CreatedAt   time.Time
}

func (ScoreHistoryRow) TableName() string { return "score_history_rows" }
