package services

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"primetime/config"
	"primetime/store"
)

func testScorerStore(t *testing.T) (*store.Store, *config.Config) {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run scorer integration tests")
	}
	st, err := store.Open(dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() {
		st.DB().Exec("TRUNCATE articles, authors, citation_snapshots, yearly_citations, " +
			"article_vectors, clusters, searches, opportunity_scores, score_history_rows CASCADE")
	})

	cfg := &config.Config{
		RecencyTauYears:     5,
		ScoreWeightNovelty:  0.4,
		ScoreWeightVelocity: 0.4,
		ScoreWeightRecency:  0.2,
	}
	return st, cfg
}

// TestScore_SearchWithNoArticlesStillScores covers the seed scenario
// where a Search row is created but its bibliographic fetch failed
// before any article was linked: scoring must still complete rather
// than erroring forever. The raw sub-scores for an empty article set
// are novelty=1, velocity=0, recency=0 (the boundary values), but as
// the very first entry in an empty score history every raw value's
// percentile rank against itself is 1.0, so the *normalized* values
// actually persisted are all 1.0 and overall is 1.0 too.
func TestScore_SearchWithNoArticlesStillScores(t *testing.T) {
	st, cfg := testScorerStore(t)
	sc := NewScorer(st, cfg, zap.NewNop())

	searchID, err := st.CreateSearch("an idea with no results", "kw", 10, nil, nil)
	if err != nil {
		t.Fatalf("create search: %v", err)
	}

	if err := sc.Score(searchID); err != nil {
		t.Fatalf("Score() on an empty search: %v", err)
	}

	score, err := st.GetScore(searchID)
	if err != nil {
		t.Fatalf("get score: %v", err)
	}
	if score == nil {
		t.Fatalf("expected a score row to exist for an empty search")
	}
	if score.Novelty != 1 {
		t.Errorf("novelty = %v, want 1 (first-ever entry in its history)", score.Novelty)
	}
	if score.Velocity != 1 {
		t.Errorf("velocity = %v, want 1 (first-ever entry in its history)", score.Velocity)
	}
	if score.Recency != 1 {
		t.Errorf("recency = %v, want 1 (first-ever entry in its history)", score.Recency)
	}
	if score.Overall != 1 {
		t.Errorf("overall = %v, want 1 (0.4*1 + 0.4*1 + 0.2*1)", score.Overall)
	}

	history, err := st.RawScoreHistory()
	if err != nil {
		t.Fatalf("raw score history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected exactly one history row, got %d", len(history))
	}
	if history[0].NoveltyRaw != 1 {
		t.Errorf("raw novelty = %v, want 1 (empty set is maximally novel)", history[0].NoveltyRaw)
	}
	if history[0].VelocityRaw != 0 {
		t.Errorf("raw velocity = %v, want 0", history[0].VelocityRaw)
	}
	if history[0].RecencyRaw != 0 {
		t.Errorf("raw recency = %v, want 0", history[0].RecencyRaw)
	}
}

func TestScore_SearchWithArticlesProducesNonTrivialScore(t *testing.T) {
	st, cfg := testScorerStore(t)
	sc := NewScorer(st, cfg, zap.NewNop())

	id, _, err := st.UpsertArticle(store.ArticleFields{PMID: "sc1", Title: "A Paper"})
	if err != nil {
		t.Fatalf("create article: %v", err)
	}
	if err := st.UpsertVector(id, []float32{1, 0, 0}, nil); err != nil {
		t.Fatalf("upsert vector: %v", err)
	}

	searchID, err := st.CreateSearch("an idea", "kw", 10, nil, nil)
	if err != nil {
		t.Fatalf("create search: %v", err)
	}
	if err := st.LinkSearchArticles(searchID, []uint{id}); err != nil {
		t.Fatalf("link: %v", err)
	}

	if err := sc.Score(searchID); err != nil {
		t.Fatalf("Score(): %v", err)
	}

	score, err := st.GetScore(searchID)
	if err != nil {
		t.Fatalf("get score: %v", err)
	}
	if score == nil {
		t.Fatalf("expected a score row to exist")
	}
}

func TestScore_ReScoringAppendsHistoryAndOverwritesScore(t *testing.T) {
	st, cfg := testScorerStore(t)
	sc := NewScorer(st, cfg, zap.NewNop())

	searchID, err := st.CreateSearch("idea", "kw", 10, nil, nil)
	if err != nil {
		t.Fatalf("create search: %v", err)
	}

	if err := sc.Score(searchID); err != nil {
		t.Fatalf("first score: %v", err)
	}
	if err := sc.Score(searchID); err != nil {
		t.Fatalf("second score: %v", err)
	}

	history, err := st.RawScoreHistory()
	if err != nil {
		t.Fatalf("raw score history: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("expected scoring twice to append 2 history rows, got %d", len(history))
	}
}
