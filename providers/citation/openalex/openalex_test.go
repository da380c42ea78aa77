package openalex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"primetime/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{OpenAlexBaseURL: server.URL, CitationTimeoutSeconds: 5}
	return NewClient(cfg, zap.NewNop())
}

func TestCurrentCount_NoIdentifiers(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("should not call upstream without a doi or pmid")
	})
	source, count, _, err := client.CurrentCount(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "openalex" || count != 0 {
		t.Errorf("got (%s, %d), want (openalex, 0)", source, count)
	}
}

func TestCurrentCount_Success(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"cited_by_count":17,"counts_by_year":[{"year":2024,"cited_by_count":5}]}`))
	})

	source, count, _, err := client.CurrentCount(context.Background(), "10.1234/abc", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "openalex" || count != 17 {
		t.Errorf("got (%s, %d), want (openalex, 17)", source, count)
	}
}

func TestYearlyCounts_Success(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"cited_by_count":17,"counts_by_year":[{"year":2023,"cited_by_count":3},{"year":2024,"cited_by_count":5}]}`))
	})

	counts, err := client.YearlyCounts(context.Background(), "10.1234/abc", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(counts) != 2 {
		t.Fatalf("expected 2 yearly counts, got %d", len(counts))
	}
	if counts[0].Year != 2023 || counts[0].Count != 3 {
		t.Errorf("unexpected first element: %+v", counts[0])
	}
}

func TestCurrentCount_NotFoundIsZeroNotError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	source, count, _, err := client.CurrentCount(context.Background(), "10.1234/missing", "")
	if err != nil {
		t.Fatalf("a 404 should not be surfaced as an error, got %v", err)
	}
	if source != "openalex" || count != 0 {
		t.Errorf("got (%s, %d), want (openalex, 0)", source, count)
	}
}

func TestFallsBackToPMIDWhenDOIMissing(t *testing.T) {
	var sawPMIDQuery bool
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/works/pmid:123456" {
			sawPMIDQuery = true
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"cited_by_count":1}`))
	})

	if _, _, _, err := client.CurrentCount(context.Background(), "", "123456"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sawPMIDQuery {
		t.Errorf("expected the request to be built from the pmid when doi is empty")
	}
}
