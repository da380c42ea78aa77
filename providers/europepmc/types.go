package europepmc

import "time"

// searchResponse is the top-level shape of the Europe PMC REST response.
type searchResponse struct {
	ResultList struct {
		Result []article `json:"result"`
	} `json:"resultList"`
}

// article is one hit in the Europe PMC REST response.
type article struct {
	ID                   string `json:"id"`
	Source               string `json:"source"`
	PMID                 string `json:"pmid"`
	DOI                  string `json:"doi"`
	Title                string `json:"title"`
	AuthorString         string `json:"authorString"`
	JournalTitle         string `json:"journalTitle"`
	FirstPublicationDate string `json:"firstPublicationDate"`
	AbstractText         string `json:"abstractText"`
}

func parseEuroDate(dateStr string) *time.Time {
	layouts := []string{"2006-01-02", "2006-01", "2006"}
	for _, layout := range layouts {
		t, err := time.Parse(layout, dateStr)
		if err == nil {
			return &t
		}
	}
	return nil
}
