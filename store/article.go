package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"primetime/apperr"
	"primetime/models"
)

// ArticleFields is the set of incoming values for an upsert. Empty
// string/nil fields never clear an existing value; non-empty fields
// always overwrite.
type ArticleFields struct {
	PMID     string
	Title    string
	Abstract string
	Journal  string
	DOI      string
	PubDate  *time.Time
}

// UpsertArticle implements the Store contract: keyed by PMID, non-empty
// incoming fields overwrite, empty incoming fields never clear existing
// ones. Runs in a single transaction.
func (s *Store) UpsertArticle(fields ArticleFields) (articleID uint, wasCreated bool, err error) {
	if fields.PMID == "" {
		return 0, false, apperr.Permanent(fmt.Errorf("empty pmid"), "upsert_article requires a pmid")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Article
		lookupErr := tx.Where("pmid = ?", fields.PMID).First(&existing).Error

		switch {
		case lookupErr == gorm.ErrRecordNotFound:
			article := models.Article{
				PMID:     fields.PMID,
				Title:    fields.Title,
				Abstract: fields.Abstract,
				Journal:  fields.Journal,
				DOI:      fields.DOI,
				PubDate:  fields.PubDate,
			}
			if createErr := tx.Create(&article).Error; createErr != nil {
				return apperr.Persistence("create article", createErr)
			}
			articleID = article.ID
			wasCreated = true
			return nil

		case lookupErr != nil:
			return apperr.Persistence("lookup article", lookupErr)

		default:
			updates := map[string]any{}
			if fields.Title != "" {
				updates["title"] = fields.Title
			}
			if fields.Abstract != "" {
				updates["abstract"] = fields.Abstract
			}
			if fields.Journal != "" {
				updates["journal"] = fields.Journal
			}
			if fields.DOI != "" {
				updates["doi"] = fields.DOI
			}
			if fields.PubDate != nil {
				updates["pub_date"] = fields.PubDate
			}
			if len(updates) > 0 {
				if updateErr := tx.Model(&existing).Updates(updates).Error; updateErr != nil {
					return apperr.Persistence("update article", updateErr)
				}
			}
			articleID = existing.ID
			wasCreated = false
			return nil
		}
	})
	return articleID, wasCreated, err
}

// AttachAuthors ensures an Author row exists for each normalized name
// and links it to the article. Idempotent: re-attaching an already
// linked author is a no-op.
func (s *Store) AttachAuthors(articleID uint, normalizedNames []string) error {
	if len(normalizedNames) == 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var article models.Article
		if err := tx.First(&article, articleID).Error; err != nil {
			return apperr.Persistence("lookup article for authors", err)
		}

		for _, name := range normalizedNames {
			var author models.Author
			err := tx.Where("normalized_name = ?", name).First(&author).Error
			switch {
			case err == gorm.ErrRecordNotFound:
				author = models.Author{NormalizedName: name, DisplayName: name}
				if createErr := tx.Create(&author).Error; createErr != nil {
					return apperr.Persistence("create author", createErr)
				}
			case err != nil:
				return apperr.Persistence("lookup author", err)
			}

			if assocErr := tx.Model(&article).Association("Authors").Append(&author); assocErr != nil {
				return apperr.Persistence("attach author", assocErr)
			}
		}
		return nil
	})
}

// GetArticle reads one article by PMID.
func (s *Store) GetArticle(pmid string) (*models.Article, error) {
	var article models.Article
	err := s.db.Preload("Authors").Where("pmid = ?", pmid).First(&article).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Persistence("get article", err)
	}
	return &article, nil
}

// ListArticles pages through all articles, most recently created first.
func (s *Store) ListArticles(limit, offset int) ([]models.Article, error) {
	var articles []models.Article
	err := s.db.Order("created_at desc").Limit(limit).Offset(offset).Find(&articles).Error
	if err != nil {
		return nil, apperr.Persistence("list articles", err)
	}
	return articles, nil
}
