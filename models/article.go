package models

import "time"

// Article is an external corpus record, keyed by PMID. Never deleted by
// the core; later fetches only ever overwrite fields with non-empty values.
type Article struct {
	ID        uint    `gorm:"primaryKey"`
	PMID      string  `gorm:"uniqueIndex;not null;size:32"`
	Title     string  `gorm:"not null;default:''"`
	Abstract  string  `gorm:"default:''"`
	Journal   string  `gorm:"default:''"`
	DOI       string  `gorm:"index;default:''"`
	PubDate   *time.Time
	Authors   []Author `gorm:"many2many:article_authors;"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Article) TableName() string { return "articles" }

// Author is identified by a case-folded, whitespace-collapsed full name.
// Deduplicated across the corpus by that normalized name; homonym
// collisions are accepted rather than resolved.
type Author struct {
	ID             uint   `gorm:"primaryKey"`
	NormalizedName string `gorm:"uniqueIndex;not null;size:512"`
	DisplayName    string `gorm:"not null;default:''"`
	Articles       []Article `gorm:"many2many:article_authors;"`
}

func (Author) TableName() string { return "authors" }
