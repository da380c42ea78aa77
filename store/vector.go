package store

import (
	"time"

	"gorm.io/gorm/clause"

	"primetime/apperr"
	"primetime/models"
)

// UpsertVector is idempotent on articleID: a second call for the same
// article replaces its embedding and cluster label.
func (s *Store) UpsertVector(articleID uint, embedding models.Vector, clusterLabel *int) error {
	vector := models.ArticleVector{
		ArticleID:    articleID,
		Embedding:    embedding,
		ClusterLabel: clusterLabel,
		UpdatedAt:    time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "article_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"embedding", "cluster_label", "updated_at"}),
	}).Create(&vector).Error
	if err != nil {
		return apperr.Persistence("upsert vector", err)
	}
	return nil
}

// AllVectors reads every article vector in the corpus, for a clustering
// pass.
func (s *Store) AllVectors() ([]models.ArticleVector, error) {
	var rows []models.ArticleVector
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, apperr.Persistence("list all vectors", err)
	}
	return rows, nil
}

// SetClusterLabel writes the cluster label produced by a clustering pass
// for one article's vector, without touching its embedding.
func (s *Store) SetClusterLabel(articleID uint, label *int) error {
	err := s.db.Model(&models.ArticleVector{}).
		Where("article_id = ?", articleID).
		Updates(map[string]any{"cluster_label": label, "updated_at": time.Now()}).Error
	if err != nil {
		return apperr.Persistence("set cluster label", err)
	}
	return nil
}

// VectorsOfSearch reads the vectors of every article linked to a search.
func (s *Store) VectorsOfSearch(searchID uint) ([]models.ArticleVector, error) {
	var rows []models.ArticleVector
	err := s.db.
		Joins("JOIN search_articles ON search_articles.article_id = article_vectors.article_id").
		Where("search_articles.search_id = ?", searchID).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Persistence("vectors of search", err)
	}
	return rows, nil
}
