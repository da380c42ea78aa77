package pubmed

import "encoding/xml"

// esearchResponse is the JSON shape of ESearch's result, used to page
// through PMIDs for a query expression.
type esearchResponse struct {
	ESearchResult struct {
		Count   string   `json:"count"`
		RetMax  string   `json:"retmax"`
		RetStart string  `json:"retstart"`
		IDList  []string `json:"idlist"`
	} `json:"esearchresult"`
}

// pubmedArticleSet is the XML root EFetch returns for db=pubmed.
type pubmedArticleSet struct {
	XMLName  xml.Name        `xml:"PubmedArticleSet"`
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	MedlineCitation medlineCitation `xml:"MedlineCitation"`
}

type medlineCitation struct {
	PMID    string  `xml:"PMID"`
	Article article `xml:"Article"`
}

type article struct {
	ArticleTitle    string          `xml:"ArticleTitle"`
	Abstract        abstract        `xml:"Abstract"`
	Journal         journal         `xml:"Journal"`
	AuthorList      authorList      `xml:"AuthorList"`
	ELocationIDs    []eLocationID   `xml:"ELocationID"`
}

type abstract struct {
	Text []abstractText `xml:"AbstractText"`
}

type abstractText struct {
	Value string `xml:",chardata"`
}

type journal struct {
	Title       string      `xml:"Title"`
	JournalIssue journalIssue `xml:"JournalIssue"`
}

type journalIssue struct {
	PubDate pubDate `xml:"PubDate"`
}

type pubDate struct {
	Year      string `xml:"Year"`
	Month     string `xml:"Month"`
	Day       string `xml:"Day"`
	MedlineDate string `xml:"MedlineDate"`
}

type authorList struct {
	Authors []medlineAuthor `xml:"Author"`
}

type medlineAuthor struct {
	LastName string `xml:"LastName"`
	ForeName string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}

type eLocationID struct {
	EIdType string `xml:"EIdType,attr"`
	Value   string `xml:",chardata"`
}
