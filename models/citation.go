package models

import "time"

// CitationSource is a closed enumeration of citation-count providers.
type CitationSource string

const (
	SourceCrossref CitationSource = "crossref"
	SourceOpenAlex CitationSource = "openalex"
)

// CitationSnapshot holds the latest known total citation count for one
// (article, source) pair. A newer observation replaces the prior row for
// that pair rather than accumulating history.
type CitationSnapshot struct {
	ID         uint           `gorm:"primaryKey"`
	ArticleID  uint           `gorm:"not null;index:idx_citation_snapshot_unique,unique"`
	Source     CitationSource `gorm:"not null;size:16;index:idx_citation_snapshot_unique,unique"`
	Count      int            `gorm:"not null;default:0"`
	ObservedOn time.Time      `gorm:"not null"`
}

func (CitationSnapshot) TableName() string { return "citation_snapshots" }

// YearlyCitation is one (article, year) -> count row. Rows accumulate the
// citation trajectory of an article and are historical: never rewritten
// except by a full refetch of that article's series.
type YearlyCitation struct {
	ID        uint `gorm:"primaryKey"`
	ArticleID uint `gorm:"not null;index:idx_yearly_citation_unique,unique"`
	Year      int  `gorm:"not null;index:idx_yearly_citation_unique,unique"`
	Count     int  `gorm:"not null;default:0"`
}

func (YearlyCitation) TableName() string { return "yearly_citations" }
