package services

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"primetime/apperr"
	"primetime/config"
	"primetime/models"
	"primetime/providers"
	"primetime/store"
)

var (
	articlesIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "articles_ingested_total",
		Help: "Articles successfully enriched and linked to a search.",
	})
	ingestFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_failures_total",
		Help: "Search ingestion attempts that returned an error (a Search row may already exist).",
	})
	scoringDurationSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "scoring_duration_seconds",
		Help: "Wall-clock time for one background scoring pass (cluster reconcile + score).",
	})
)

func init() {
	prometheus.MustRegister(articlesIngestedTotal, ingestFailuresTotal, scoringDurationSeconds)
}

// Coordinator is the public-facing entry point for the pipeline: it owns
// the single-writer guarantee for scoring and the happens-before edge
// between "ingest completed" and "scoring starts." Scoring tasks run on
// a bounded worker pool the Coordinator owns and drains on Shutdown.
type Coordinator struct {
	store          *store.Store
	ingestor       *Ingestor
	clusterManager *ClusterManager
	scorer         *Scorer
	logger         *zap.Logger

	searchLocks   map[uint]*sync.Mutex
	searchLocksMu sync.Mutex

	scoringQueue chan uint
	workers      sync.WaitGroup
	stopOnce     sync.Once
	stopped      chan struct{}
}

// NewCoordinator wires the pipeline stages together and starts the
// scoring worker pool.
func NewCoordinator(st *store.Store, ingestor *Ingestor, clusterManager *ClusterManager, scorer *Scorer, cfg *config.Config, logger *zap.Logger) *Coordinator {
	c := &Coordinator{
		store:          st,
		ingestor:       ingestor,
		clusterManager: clusterManager,
		scorer:         scorer,
		logger:         logger,
		searchLocks:    make(map[uint]*sync.Mutex),
		scoringQueue:   make(chan uint, cfg.ScoringQueueSize),
		stopped:        make(chan struct{}),
	}

	poolSize := cfg.ScoringWorkerPoolSize
	if poolSize < 1 {
		poolSize = 1
	}
	for i := 0; i < poolSize; i++ {
		c.workers.Add(1)
		go c.scoringWorker()
	}
	return c
}

// RunSearch performs ingestion synchronously, returning once the Search
// row and its articles are persisted, then enqueues scoring onto the
// worker pool without waiting for it.
func (c *Coordinator) RunSearch(ctx context.Context, idea, keywords string, maxResults int, dateRange *providers.DateRange) (uint, error) {
	result, err := c.ingestor.Ingest(ctx, idea, keywords, maxResults, dateRange)
	if err != nil {
		ingestFailuresTotal.Inc()
		return 0, err
	}
	articlesIngestedTotal.Add(float64(result.ArticlesIngested))

	select {
	case c.scoringQueue <- result.SearchID:
	case <-c.stopped:
		c.logger.Warn("coordinator is shutting down; skipping background scoring", zap.Uint("search_id", result.SearchID))
	}

	return result.SearchID, nil
}

// scoringWorker is one of the bounded pool's fixed goroutines. It runs
// until the scoring queue is closed by Shutdown, draining whatever was
// already enqueued.
func (c *Coordinator) scoringWorker() {
	defer c.workers.Done()
	for searchID := range c.scoringQueue {
		c.runScoring(searchID)
	}
}

// Shutdown stops accepting new scoring tasks and waits for the worker
// pool to drain its queue, bounded by ctx (callers typically derive ctx
// with a grace-period timeout from cfg.ScoringShutdownGraceSeconds).
func (c *Coordinator) Shutdown(ctx context.Context) error {
	c.stopOnce.Do(func() {
		close(c.stopped)
		close(c.scoringQueue)
	})

	done := make(chan struct{})
	go func() {
		c.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		c.logger.Warn("scoring worker pool did not drain within the shutdown grace period")
		return ctx.Err()
	}
}

// runScoring is the background task: cluster reconciliation, then
// scoring. At most one scoring task per search runs at any time.
func (c *Coordinator) runScoring(searchID uint) {
	lock := c.lockFor(searchID)
	lock.Lock()
	defer lock.Unlock()

	timer := prometheus.NewTimer(scoringDurationSeconds)
	defer timer.ObserveDuration()

	if err := c.clusterManager.Reconcile(); err != nil {
		c.logger.Warn("cluster reconciliation failed before scoring", zap.Uint("search_id", searchID), zap.Error(err))
	}

	if err := c.scorer.Score(searchID); err != nil {
		c.logger.Error("scoring failed", zap.Uint("search_id", searchID), zap.Error(err))
	}
}

func (c *Coordinator) lockFor(searchID uint) *sync.Mutex {
	c.searchLocksMu.Lock()
	defer c.searchLocksMu.Unlock()
	lock, ok := c.searchLocks[searchID]
	if !ok {
		lock = &sync.Mutex{}
		c.searchLocks[searchID] = lock
	}
	return lock
}

// GetScore returns the opportunity score for searchID, or
// apperr.ErrScoringIncomplete if scoring hasn't finished yet.
func (c *Coordinator) GetScore(searchID uint) (*models.OpportunityScore, error) {
	score, err := c.store.GetScore(searchID)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return nil, apperr.ErrScoringIncomplete
	}
	return score, nil
}

// ListArticles is a thin pass-through to the Store.
func (c *Coordinator) ListArticles(limit, offset int) ([]models.Article, error) {
	return c.store.ListArticles(limit, offset)
}

// ListSearches is a thin pass-through to the Store.
func (c *Coordinator) ListSearches(limit, offset int) ([]models.Search, error) {
	return c.store.ListSearches(limit, offset)
}

// GetArticle is a thin pass-through to the Store.
func (c *Coordinator) GetArticle(pmid string) (*models.Article, error) {
	return c.store.GetArticle(pmid)
}

// ArticlesOfSearch is a thin pass-through to the Store.
func (c *Coordinator) ArticlesOfSearch(searchID uint) ([]models.Article, error) {
	return c.store.ArticlesOfSearch(searchID)
}
