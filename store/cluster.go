package store

import (
	"time"

	"gorm.io/gorm/clause"

	"primetime/apperr"
	"primetime/models"
)

// UpsertCluster writes one non-noise cluster's centroid, size, and
// velocity, as produced by one reconciliation pass.
func (s *Store) UpsertCluster(label int, centroid models.Vector, size int, velocity float64) error {
	cluster := models.Cluster{
		Label:     label,
		Centroid:  centroid,
		Size:      size,
		Velocity:  velocity,
		UpdatedAt: time.Now(),
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "label"}},
		DoUpdates: clause.AssignmentColumns([]string{"centroid", "size", "velocity", "updated_at"}),
	}).Create(&cluster).Error
	if err != nil {
		return apperr.Persistence("upsert cluster", err)
	}
	return nil
}

// DeleteClustersNotIn removes every Cluster row whose label is not among
// keepLabels, per the reconciliation pass's "clusters without members
// are deleted" rule.
func (s *Store) DeleteClustersNotIn(keepLabels []int) error {
	if len(keepLabels) == 0 {
		if err := s.db.Where("1 = 1").Delete(&models.Cluster{}).Error; err != nil {
			return apperr.Persistence("delete all clusters", err)
		}
		return nil
	}
	err := s.db.Where("label NOT IN ?", keepLabels).Delete(&models.Cluster{}).Error
	if err != nil {
		return apperr.Persistence("delete stale clusters", err)
	}
	return nil
}

// ListClusters reads every current cluster.
func (s *Store) ListClusters() ([]models.Cluster, error) {
	var clusters []models.Cluster
	if err := s.db.Find(&clusters).Error; err != nil {
		return nil, apperr.Persistence("list clusters", err)
	}
	return clusters, nil
}
