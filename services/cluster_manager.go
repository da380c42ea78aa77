package services

import (
	"sync"

	"go.uber.org/zap"

	"primetime/clustering"
	"primetime/config"
	"primetime/models"
	"primetime/providers"
	"primetime/store"
	"primetime/trajectory"
)

// ClusterManager keeps a valid clustering of the full article-vector
// population, recomputed from scratch on each reconciliation pass.
type ClusterManager struct {
	store    *store.Store
	citation providers.Citation
	cfg      *config.Config
	logger   *zap.Logger

	lock sync.Mutex // the exclusive clustering lock (§5)
}

// NewClusterManager builds a Cluster Manager.
func NewClusterManager(st *store.Store, citation providers.Citation, cfg *config.Config, logger *zap.Logger) *ClusterManager {
	return &ClusterManager{store: st, citation: citation, cfg: cfg, logger: logger}
}

// Reconcile runs one full clustering pass. Concurrent ingests are
// permitted while this runs; their new vectors are picked up on the
// next pass.
func (cm *ClusterManager) Reconcile() error {
	cm.lock.Lock()
	defer cm.lock.Unlock()

	vectors, err := cm.store.AllVectors()
	if err != nil {
		return err
	}
	if len(vectors) == 0 {
		return cm.store.DeleteClustersNotIn(nil)
	}

	embeddings := make([][]float32, len(vectors))
	for i, v := range vectors {
		embeddings[i] = v.Embedding
	}

	labels := clustering.Run(embeddings, clustering.Params{
		MinClusterSize: cm.cfg.ClusterMinSize,
		Seed:           cm.cfg.ClusterRandomSeed,
	})

	membersByLabel := make(map[int][]int)
	for i, label := range labels {
		if label == -1 {
			continue
		}
		membersByLabel[label] = append(membersByLabel[label], i)
	}

	for i, v := range vectors {
		label := labels[i]
		if err := cm.store.SetClusterLabel(v.ArticleID, &label); err != nil {
			cm.logger.Warn("setting cluster label failed", zap.Uint("article_id", v.ArticleID), zap.Error(err))
		}
	}

	keepLabels := make([]int, 0, len(membersByLabel))
	for label, memberIdx := range membersByLabel {
		centroid := cm.centroidOf(vectors, memberIdx)
		velocity := cm.meanVelocity(vectors, memberIdx)
		if err := cm.store.UpsertCluster(label, centroid, len(memberIdx), velocity); err != nil {
			cm.logger.Warn("upserting cluster failed", zap.Int("label", label), zap.Error(err))
			continue
		}
		keepLabels = append(keepLabels, label)
	}

	return cm.store.DeleteClustersNotIn(keepLabels)
}

func (cm *ClusterManager) centroidOf(vectors []models.ArticleVector, memberIdx []int) models.Vector {
	if len(memberIdx) == 0 {
		return nil
	}
	dim := len(vectors[memberIdx[0]].Embedding)
	sum := make([]float64, dim)
	for _, idx := range memberIdx {
		for d, x := range vectors[idx].Embedding {
			sum[d] += float64(x)
		}
	}
	centroid := make(models.Vector, dim)
	for d := range sum {
		centroid[d] = float32(sum[d] / float64(len(memberIdx)))
	}
	return centroid
}

func (cm *ClusterManager) meanVelocity(vectors []models.ArticleVector, memberIdx []int) float64 {
	if len(memberIdx) == 0 {
		return 0
	}
	var total float64
	for _, idx := range memberIdx {
		series, err := cm.store.YearlyCitations(vectors[idx].ArticleID)
		if err != nil {
			continue
		}
		points := make([]trajectory.Point, len(series))
		for i, s := range series {
			points[i] = trajectory.Point{Year: s.Year, Count: s.Count}
		}
		total += trajectory.ForwardSlope(points)
	}
	return total / float64(len(memberIdx))
}
