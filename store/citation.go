package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"primetime/apperr"
	"primetime/models"
)

// RecordCitationSnapshot replaces the prior snapshot for (articleID,
// source) with a newer observation.
func (s *Store) RecordCitationSnapshot(articleID uint, source models.CitationSource, count int, observedOn time.Time) error {
	snapshot := models.CitationSnapshot{
		ArticleID:  articleID,
		Source:     source,
		Count:      count,
		ObservedOn: observedOn,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "article_id"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{"count", "observed_on"}),
	}).Create(&snapshot).Error
	if err != nil {
		return apperr.Persistence("record citation snapshot", err)
	}
	return nil
}

// RecordYearlyCitations replaces the prior yearly series for articleID
// atomically: the old rows are deleted and the new ones inserted in the
// same transaction.
func (s *Store) RecordYearlyCitations(articleID uint, series []models.YearlyCitation) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", articleID).Delete(&models.YearlyCitation{}).Error; err != nil {
			return apperr.Persistence("clear yearly citations", err)
		}
		if len(series) == 0 {
			return nil
		}
		for i := range series {
			series[i].ArticleID = articleID
		}
		if err := tx.Create(&series).Error; err != nil {
			return apperr.Persistence("insert yearly citations", err)
		}
		return nil
	})
}

// YearlyCitations reads the full series for one article, ordered by
// year.
func (s *Store) YearlyCitations(articleID uint) ([]models.YearlyCitation, error) {
	var rows []models.YearlyCitation
	err := s.db.Where("article_id = ?", articleID).Order("year").Find(&rows).Error
	if err != nil {
		return nil, apperr.Persistence("yearly citations", err)
	}
	return rows, nil
}
