package crossref

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"primetime/apperr"
	"primetime/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := &config.Config{CrossrefBaseURL: server.URL, CrossrefUserAgent: "primetime-test", CitationTimeoutSeconds: 5}
	return NewClient(cfg, zap.NewNop()), server
}

func TestCurrentCount_EmptyDOI(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("should not call upstream for an empty DOI")
	})

	source, count, _, err := client.CurrentCount(context.Background(), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "crossref" || count != 0 {
		t.Errorf("got (%s, %d), want (crossref, 0)", source, count)
	}
}

func TestCurrentCount_Success(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":{"is-referenced-by-count":42}}`))
	})

	source, count, observedOn, err := client.CurrentCount(context.Background(), "10.1234/abc", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source != "crossref" || count != 42 {
		t.Errorf("got (%s, %d), want (crossref, 42)", source, count)
	}
	if observedOn.IsZero() {
		t.Errorf("expected a non-zero observedOn timestamp")
	}
}

func TestCurrentCount_NotFoundIsNotAnError(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	source, count, _, err := client.CurrentCount(context.Background(), "10.1234/missing", "")
	if err != nil {
		t.Fatalf("a 404 should not be surfaced as an error, got %v", err)
	}
	if source != "crossref" || count != 0 {
		t.Errorf("got (%s, %d), want (crossref, 0)", source, count)
	}
}

func TestCurrentCount_ServerErrorIsTransient(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, _, _, err := client.CurrentCount(context.Background(), "10.1234/abc", "")
	if err == nil || !apperr.IsTransient(err) {
		t.Errorf("a 5xx response should be a TransientError, got %v", err)
	}
}

func TestCurrentCount_ClientErrorIsPermanent(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	_, _, _, err := client.CurrentCount(context.Background(), "10.1234/abc", "")
	if err == nil || !apperr.IsPermanent(err) {
		t.Errorf("a 4xx (non-404) response should be a PermanentError, got %v", err)
	}
}

func TestYearlyCounts_AlwaysEmpty(t *testing.T) {
	client, _ := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("YearlyCounts should never call upstream")
	})

	counts, err := client.YearlyCounts(context.Background(), "10.1234/abc", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counts != nil {
		t.Errorf("expected nil series, got %v", counts)
	}
}
