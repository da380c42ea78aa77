// Command primetime is the CLI harness for the search-ingest-score
// pipeline: it wires the real adapters from configuration, runs one
// search to completion, polls for its score, and keeps a cron-scheduled
// cluster reconciliation loop running in the background.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"primetime/apperr"
	"primetime/config"
	"primetime/providers"
	"primetime/providers/citation"
	"primetime/providers/citation/crossref"
	"primetime/providers/citation/openalex"
	"primetime/providers/embedder/ollama"
	"primetime/providers/europepmc"
	"primetime/providers/fulltext"
	"primetime/providers/mesh"
	"primetime/providers/pubmed"
	"primetime/services"
	"primetime/store"
)

func main() {
	idea := flag.String("idea", "", "free-text description of the research idea")
	keywords := flag.String("keywords", "", "semicolon-separated keyword list")
	maxResults := flag.Int("max-results", 25, "maximum articles to ingest for this search")
	flag.Parse()

	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("config load error", zap.Error(err))
	}

	st, err := store.Open(cfg.DSN(), logging)
	if err != nil {
		logging.Fatal("store open failed", zap.Error(err))
	}

	biblio := selectBibliographic(cfg, logging)
	vocabulary := mesh.NewExpander(cfg, logging)
	citationAdapter := citation.NewComposite(crossref.NewClient(cfg, logging), openalex.NewClient(cfg, logging))
	embedder := ollama.NewClient(
		ollama.WithBaseURL(cfg.EmbedderBaseURL),
		ollama.WithModel(cfg.EmbedderModel),
		ollama.WithDimensions(cfg.EmbeddingDim),
		ollama.WithTimeout(time.Duration(cfg.EmbedderTimeoutSeconds)*time.Second),
	)

	fulltextResolver := fulltext.NewResolver(cfg, logging)

	ingestor := services.NewIngestor(st, biblio, vocabulary, citationAdapter, embedder, cfg, logging)
	clusterManager := services.NewClusterManager(st, citationAdapter, cfg, logging)
	scorer := services.NewScorer(st, cfg, logging)
	coordinator := services.NewCoordinator(st, ingestor, clusterManager, scorer, cfg, logging)
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Duration(cfg.ScoringShutdownGraceSeconds)*time.Second)
		defer shutdownCancel()
		if err := coordinator.Shutdown(shutdownCtx); err != nil {
			logging.Warn("coordinator shutdown did not complete cleanly", zap.Error(err))
		}
	}()

	cronScheduler := cron.New()
	if _, err := cronScheduler.AddFunc(cfg.ClusterReconcileCron, func() {
		logging.Info("running scheduled cluster reconciliation")
		if err := clusterManager.Reconcile(); err != nil {
			logging.Error("scheduled reconciliation failed", zap.Error(err))
		}
	}); err != nil {
		logging.Fatal("invalid cluster reconcile schedule", zap.Error(err))
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	if strings.TrimSpace(*idea) == "" && strings.TrimSpace(*keywords) == "" {
		logging.Info("no -idea/-keywords given; running reconciliation loop only")
		select {}
	}

	runOneSearch(coordinator, fulltextResolver, logging, *idea, *keywords, *maxResults)
}

func selectBibliographic(cfg *config.Config, logging *zap.Logger) providers.Bibliographic {
	names := strings.Split(cfg.EnabledProviders, ",")
	for _, name := range names {
		switch strings.TrimSpace(name) {
		case "pubmed":
			return pubmed.NewFetcher(cfg, logging)
		case "europepmc":
			return europepmc.NewFetcher(cfg, logging)
		}
	}
	logging.Fatal("no valid bibliographic provider in ENABLED_PROVIDERS", zap.String("configured", cfg.EnabledProviders))
	return nil
}

func runOneSearch(coordinator *services.Coordinator, resolver *fulltext.Resolver, logging *zap.Logger, idea, keywords string, maxResults int) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	searchID, err := coordinator.RunSearch(ctx, idea, keywords, maxResults, nil)
	if err != nil {
		logging.Fatal("run_search failed", zap.Error(err))
	}
	fmt.Printf("search %d ingested; scoring in background\n", searchID)

	for i := 0; i < 30; i++ {
		score, err := coordinator.GetScore(searchID)
		if err == nil {
			fmt.Printf("overall score: %.3f (novelty=%.3f velocity=%.3f recency=%.3f)\n",
				score.Overall, score.Novelty, score.Velocity, score.Recency)
			printArticleLinks(coordinator, resolver, ctx, searchID)
			return
		}
		if !errors.Is(err, apperr.ErrScoringIncomplete) {
			logging.Error("get_score failed", zap.Error(err))
			return
		}
		time.Sleep(2 * time.Second)
	}
	fmt.Println("scoring did not complete within the polling window")
}

// printArticleLinks prints, for every article tied to searchID, its DOI
// and (best-effort) open-access PDF link.
func printArticleLinks(coordinator *services.Coordinator, resolver *fulltext.Resolver, ctx context.Context, searchID uint) {
	articles, err := coordinator.ArticlesOfSearch(searchID)
	if err != nil {
		return
	}
	for _, article := range articles {
		link := resolver.PDFLink(ctx, article.DOI)
		if link == "" {
			link = "(no open-access pdf found)"
		}
		fmt.Printf("  %-12s %s -- %s\n", article.PMID, article.Title, link)
	}
}
