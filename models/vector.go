package models

import "time"

// ArticleVector is the Embedder's output for one article: a fixed-
// dimensional real vector plus a nullable cluster label (NULL until the
// first clustering pass). -1 denotes
// noise / unclustered, never persisted as a Cluster row. Exactly one per
// article; recomputed only on explicit reindex.
type ArticleVector struct {
	ArticleID    uint `gorm:"primaryKey"`
	Embedding    Vector `gorm:"type:real[];not null"`
	ClusterLabel *int   `gorm:"index"`
	UpdatedAt    time.Time
}

func (ArticleVector) TableName() string { return "article_vectors" }

// Cluster is identified by an integer label >= 0. Its centroid is the
// arithmetic mean of member vectors; its velocity is the mean forward
// citation slope of members, recomputed on each reconciliation pass.
type Cluster struct {
	Label     int    `gorm:"primaryKey"`
	Centroid  Vector `gorm:"type:real[];not null"`
	Size      int    `gorm:"not null;default:0"`
	Velocity  float64
	UpdatedAt time.Time
}

func (Cluster) TableName() string { return "clusters" }
