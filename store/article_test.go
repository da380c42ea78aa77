package store

import "testing"

func TestUpsertArticle_CreateThenUpdate(t *testing.T) {
	s := testStore(t)

	id, created, err := s.UpsertArticle(ArticleFields{PMID: "111", Title: "First Title", Journal: "Nature"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !created {
		t.Fatalf("expected wasCreated=true on first upsert")
	}

	id2, created2, err := s.UpsertArticle(ArticleFields{PMID: "111", Title: "Revised Title"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if created2 {
		t.Errorf("expected wasCreated=false on second upsert")
	}
	if id2 != id {
		t.Errorf("expected the same article id, got %d and %d", id, id2)
	}

	got, err := s.GetArticle("111")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Revised Title" {
		t.Errorf("title = %q, want Revised Title", got.Title)
	}
	if got.Journal != "Nature" {
		t.Errorf("empty incoming journal cleared the existing one: got %q, want Nature", got.Journal)
	}
}

func TestUpsertArticle_EmptyPMIDIsPermanentError(t *testing.T) {
	s := testStore(t)
	if _, _, err := s.UpsertArticle(ArticleFields{Title: "No PMID"}); err == nil {
		t.Errorf("expected an error for an empty pmid")
	}
}

func TestGetArticle_MissingReturnsNilNotError(t *testing.T) {
	s := testStore(t)
	got, err := s.GetArticle("does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for a missing article, got %+v", got)
	}
}

func TestAttachAuthors_IdempotentAndDeduplicatesByNormalizedName(t *testing.T) {
	s := testStore(t)
	id, _, err := s.UpsertArticle(ArticleFields{PMID: "222", Title: "A Paper"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}

	if err := s.AttachAuthors(id, []string{"jane doe", "john smith"}); err != nil {
		t.Fatalf("attach authors: %v", err)
	}
	if err := s.AttachAuthors(id, []string{"jane doe"}); err != nil {
		t.Fatalf("re-attach: %v", err)
	}

	got, err := s.GetArticle("222")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Authors) != 2 {
		t.Errorf("expected 2 authors after a duplicate re-attach, got %d", len(got.Authors))
	}
}

func TestListArticles_OrdersNewestFirst(t *testing.T) {
	s := testStore(t)
	if _, _, err := s.UpsertArticle(ArticleFields{PMID: "333", Title: "Older"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := s.UpsertArticle(ArticleFields{PMID: "444", Title: "Newer"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.ListArticles(10, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) < 2 {
		t.Fatalf("expected at least 2 articles, got %d", len(got))
	}
	if got[0].PMID != "444" {
		t.Errorf("expected the most recently created article first, got pmid %q", got[0].PMID)
	}
}
