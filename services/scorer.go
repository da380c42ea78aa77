package services

import (
	"time"

	"go.uber.org/zap"

	"primetime/config"
	"primetime/scoring"
	"primetime/store"
	"primetime/trajectory"
)

// Scorer produces, for one Search, three raw sub-scores and their
// normalized forms, then writes the result back through the Store.
// Idempotent: re-running for the same Search overwrites the score row
// and appends a new history row.
type Scorer struct {
	store  *store.Store
	cfg    *config.Config
	logger *zap.Logger
}

// NewScorer builds a Scorer.
func NewScorer(st *store.Store, cfg *config.Config, logger *zap.Logger) *Scorer {
	return &Scorer{store: st, cfg: cfg, logger: logger}
}

// Score computes and persists the opportunity score for searchID.
func (sc *Scorer) Score(searchID uint) error {
	articles, err := sc.store.ArticlesOfSearch(searchID)
	if err != nil {
		return err
	}

	inSet, err := sc.store.VectorsOfSearch(searchID)
	if err != nil {
		return err
	}
	allVectors, err := sc.store.AllVectors()
	if err != nil {
		return err
	}

	inSetIDs := make(map[uint]struct{}, len(inSet))
	inEmbeddings := make([][]float32, 0, len(inSet))
	for _, v := range inSet {
		inSetIDs[v.ArticleID] = struct{}{}
		inEmbeddings = append(inEmbeddings, v.Embedding)
	}
	var outsideEmbeddings [][]float32
	for _, v := range allVectors {
		if _, ok := inSetIDs[v.ArticleID]; ok {
			continue
		}
		outsideEmbeddings = append(outsideEmbeddings, v.Embedding)
	}

	slopes := make([]float64, 0, len(articles))
	pubDates := make([]*time.Time, 0, len(articles))
	for _, a := range articles {
		series, err := sc.store.YearlyCitations(a.ID)
		if err != nil {
			sc.logger.Warn("reading yearly citations failed", zap.Uint("article_id", a.ID), zap.Error(err))
		} else {
			points := make([]trajectory.Point, len(series))
			for i, s := range series {
				points[i] = trajectory.Point{Year: s.Year, Count: s.Count}
			}
			slopes = append(slopes, trajectory.ForwardSlope(points))
		}
		pubDates = append(pubDates, a.PubDate)
	}

	raw := scoring.Raw{
		Novelty:  scoring.NoveltyRaw(inEmbeddings, outsideEmbeddings),
		Velocity: scoring.VelocityRaw(slopes),
		Recency:  scoring.RecencyRaw(pubDates, sc.cfg.RecencyTauYears, time.Now()),
	}

	history, err := sc.store.RawScoreHistory()
	if err != nil {
		return err
	}
	noveltyHistory := make([]float64, 0, len(history)+1)
	velocityHistory := make([]float64, 0, len(history)+1)
	recencyHistory := make([]float64, 0, len(history)+1)
	for _, h := range history {
		noveltyHistory = append(noveltyHistory, h.NoveltyRaw)
		velocityHistory = append(velocityHistory, h.VelocityRaw)
		recencyHistory = append(recencyHistory, h.RecencyRaw)
	}
	noveltyHistory = append(noveltyHistory, raw.Novelty)
	velocityHistory = append(velocityHistory, raw.Velocity)
	recencyHistory = append(recencyHistory, raw.Recency)

	weights := scoring.Weights{
		Novelty:  sc.cfg.ScoreWeightNovelty,
		Velocity: sc.cfg.ScoreWeightVelocity,
		Recency:  sc.cfg.ScoreWeightRecency,
	}
	normalized := scoring.Normalize(raw, noveltyHistory, velocityHistory, recencyHistory, weights)

	return sc.store.PutScore(searchID, normalized.Novelty, normalized.Velocity, normalized.Recency, normalized.Overall, store.RawScore{
		Novelty:  raw.Novelty,
		Velocity: raw.Velocity,
		Recency:  raw.Recency,
	})
}
