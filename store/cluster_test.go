package store

import (
	"testing"

	"primetime/models"
)

func TestUpsertCluster_UpsertsByLabel(t *testing.T) {
	s := testStore(t)

	if err := s.UpsertCluster(1, models.Vector{1, 2, 3}, 4, 0.5); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.UpsertCluster(1, models.Vector{9, 9, 9}, 10, 2.5); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	clusters, err := s.ListClusters()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("expected exactly one cluster for label 1, got %d", len(clusters))
	}
	if clusters[0].Size != 10 || clusters[0].Velocity != 2.5 {
		t.Errorf("expected the second upsert's values to win, got %+v", clusters[0])
	}
}

func TestDeleteClustersNotIn_RemovesStaleLabels(t *testing.T) {
	s := testStore(t)

	if err := s.UpsertCluster(1, models.Vector{1}, 1, 0); err != nil {
		t.Fatalf("upsert 1: %v", err)
	}
	if err := s.UpsertCluster(2, models.Vector{2}, 1, 0); err != nil {
		t.Fatalf("upsert 2: %v", err)
	}

	if err := s.DeleteClustersNotIn([]int{1}); err != nil {
		t.Fatalf("delete not in: %v", err)
	}

	clusters, err := s.ListClusters()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(clusters) != 1 || clusters[0].Label != 1 {
		t.Errorf("expected only label 1 to remain, got %+v", clusters)
	}
}

func TestDeleteClustersNotIn_EmptyKeepListDeletesAll(t *testing.T) {
	s := testStore(t)
	if err := s.UpsertCluster(5, models.Vector{1}, 1, 0); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.DeleteClustersNotIn(nil); err != nil {
		t.Fatalf("delete all: %v", err)
	}
	clusters, err := s.ListClusters()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(clusters) != 0 {
		t.Errorf("expected no clusters to remain, got %d", len(clusters))
	}
}
