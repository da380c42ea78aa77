package clustering

import "testing"

func makeCluster(center []float32, n int, jitter float32) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		v := make([]float32, len(center))
		for d, c := range center {
			v[d] = c + jitter*float32(i%3-1)
		}
		out[i] = v
	}
	return out
}

func TestRun_SeparatesDistinctClusters(t *testing.T) {
	var vectors [][]float32
	vectors = append(vectors, makeCluster([]float32{0, 0, 0, 0}, 5, 0.01)...)
	vectors = append(vectors, makeCluster([]float32{50, 50, 50, 50}, 5, 0.01)...)

	labels := Run(vectors, Params{MinClusterSize: 2, Seed: 42})
	if len(labels) != len(vectors) {
		t.Fatalf("expected %d labels, got %d", len(vectors), len(labels))
	}

	firstGroup := labels[0]
	secondGroup := labels[5]
	if firstGroup == -1 || secondGroup == -1 {
		t.Fatalf("expected both dense groups to form clusters, got labels %v", labels)
	}
	if firstGroup == secondGroup {
		t.Fatalf("expected the two far-apart groups to land in different clusters, got %v", labels)
	}
	for i := 0; i < 5; i++ {
		if labels[i] != firstGroup {
			t.Errorf("label[%d] = %d, want %d (same cluster as the rest of the first group)", i, labels[i], firstGroup)
		}
	}
	for i := 5; i < 10; i++ {
		if labels[i] != secondGroup {
			t.Errorf("label[%d] = %d, want %d (same cluster as the rest of the second group)", i, labels[i], secondGroup)
		}
	}
}

func TestRun_Deterministic(t *testing.T) {
	var vectors [][]float32
	vectors = append(vectors, makeCluster([]float32{1, 2, 3}, 6, 0.2)...)
	vectors = append(vectors, makeCluster([]float32{-5, -5, -5}, 6, 0.2)...)

	params := Params{MinClusterSize: 3, Seed: 7}
	first := Run(vectors, params)
	second := Run(vectors, params)

	if len(first) != len(second) {
		t.Fatalf("length mismatch between runs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("label[%d] differs between identically-seeded runs: %d vs %d", i, first[i], second[i])
		}
	}
}

func TestRun_DifferentSeedsCanDiffer(t *testing.T) {
	vectors := makeCluster([]float32{0, 0, 0, 0, 0}, 8, 5)
	a := Run(vectors, Params{MinClusterSize: 2, Seed: 1})
	b := Run(vectors, Params{MinClusterSize: 2, Seed: 2})
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
}

func TestRun_EmptyInput(t *testing.T) {
	if labels := Run(nil, Params{}); labels != nil {
		t.Errorf("expected nil labels for empty input, got %v", labels)
	}
}

func TestRun_SingletonIsNoise(t *testing.T) {
	vectors := [][]float32{{1, 2, 3}}
	labels := Run(vectors, Params{MinClusterSize: 2, Seed: 1})
	if len(labels) != 1 {
		t.Fatalf("expected 1 label, got %d", len(labels))
	}
	if labels[0] != -1 {
		t.Errorf("a lone point with MinClusterSize=2 should be noise, got label %d", labels[0])
	}
}

func TestEstimateEps_TooFewPoints(t *testing.T) {
	if eps := estimateEps([][]float64{{0, 0}}, 2); eps != 0 {
		t.Errorf("expected eps=0 for a single point, got %f", eps)
	}
}
