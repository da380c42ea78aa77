package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"primetime/apperr"
	"primetime/models"
)

// CreateSearch records a new search request.
func (s *Store) CreateSearch(idea, keywords string, maxResults int, dateStart, dateEnd *time.Time) (uint, error) {
	search := models.Search{
		Idea:       idea,
		Keywords:   keywords,
		MaxResults: maxResults,
		DateStart:  dateStart,
		DateEnd:    dateEnd,
	}
	if err := s.db.Create(&search).Error; err != nil {
		return 0, apperr.Persistence("create search", err)
	}
	return search.ID, nil
}

// LinkSearchArticles is idempotent: re-linking an already linked article
// is a no-op, never an error.
func (s *Store) LinkSearchArticles(searchID uint, articleIDs []uint) error {
	if len(articleIDs) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var search models.Search
		if err := tx.First(&search, searchID).Error; err != nil {
			return apperr.Persistence("lookup search", err)
		}
		for _, articleID := range articleIDs {
			article := models.Article{ID: articleID}
			if err := tx.Model(&search).Association("Articles").Append(&article); err != nil {
				return apperr.Persistence("link search article", err)
			}
		}
		return nil
	})
}

// PutScore overwrites the Search's opportunity score and appends the raw
// values to score history, in the same transaction.
func (s *Store) PutScore(searchID uint, novelty, velocity, recency, overall float64, raw RawScore) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		score := models.OpportunityScore{
			SearchID:   searchID,
			Novelty:    novelty,
			Velocity:   velocity,
			Recency:    recency,
			Overall:    overall,
			ComputedAt: time.Now(),
		}
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "search_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"novelty", "velocity", "recency", "overall", "computed_at"}),
		}).Create(&score).Error
		if err != nil {
			return apperr.Persistence("put score", err)
		}

		history := models.ScoreHistoryRow{
			SearchID:    searchID,
			NoveltyRaw:  raw.Novelty,
			VelocityRaw: raw.Velocity,
			RecencyRaw:  raw.Recency,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(&history).Error; err != nil {
			return apperr.Persistence("append score history", err)
		}
		return nil
	})
}

// RawScore carries the pre-normalization sub-scores appended to score
// history alongside a PutScore call.
type RawScore struct {
	Novelty  float64
	Velocity float64
	Recency  float64
}

// GetScore reads a Search's opportunity score, or nil if scoring hasn't
// completed yet.
func (s *Store) GetScore(searchID uint) (*models.OpportunityScore, error) {
	var score models.OpportunityScore
	err := s.db.Where("search_id = ?", searchID).First(&score).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("get score", err)
	}
	return &score, nil
}

// RawScoreHistory reads every historical raw sub-score triple, used by
// the Scorer to percentile-rank a new search.
func (s *Store) RawScoreHistory() ([]models.ScoreHistoryRow, error) {
	var rows []models.ScoreHistoryRow
	if err := s.db.Find(&rows).Error; err != nil {
		return nil, apperr.Persistence("raw score history", err)
	}
	return rows, nil
}

// ArticlesOfSearch reads the articles linked to a search.
func (s *Store) ArticlesOfSearch(searchID uint) ([]models.Article, error) {
	var search models.Search
	err := s.db.Preload("Articles").First(&search, searchID).Error
	if err != nil {
		return nil, apperr.Persistence("articles of search", err)
	}
	return search.Articles, nil
}

// ListSearches pages through all searches, most recent first.
func (s *Store) ListSearches(limit, offset int) ([]models.Search, error) {
	var searches []models.Search
	err := s.db.Order("created_at desc").Limit(limit).Offset(offset).Find(&searches).Error
	if err != nil {
		return nil, apperr.Persistence("list searches", err)
	}
	return searches, nil
}
