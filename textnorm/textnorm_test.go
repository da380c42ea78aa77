package textnorm

import "testing"

func TestFold(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already normalized", "jane doe", "jane doe"},
		{"mixed case", "Jane Doe", "jane doe"},
		{"collapses internal whitespace", "Jane   Doe", "jane doe"},
		{"trims leading and trailing whitespace", "  Jane Doe  ", "jane doe"},
		{"collapses tabs and newlines", "Jane\t\nDoe", "jane doe"},
		{"empty string", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Fold(tc.input); got != tc.want {
				t.Errorf("Fold(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}

func TestFold_CaseInsensitiveEquivalence(t *testing.T) {
	if Fold("MARIE CURIE") != Fold("marie curie") {
		t.Errorf("Fold should case-fold to the same dedup key regardless of input casing")
	}
}

func TestSplitKeywords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single keyword", "oncology", []string{"oncology"}},
		{"semicolon separated", "oncology; genomics; crispr", []string{"oncology", "genomics", "crispr"}},
		{"drops empties", "oncology;;genomics;", []string{"oncology", "genomics"}},
		{"trims whitespace around terms", "  oncology ; genomics  ", []string{"oncology", "genomics"}},
		{"empty string", "", nil},
		{"does not deduplicate", "oncology;oncology", []string{"oncology", "oncology"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitKeywords(tc.input)
			if len(got) != len(tc.want) {
				t.Fatalf("SplitKeywords(%q) = %v, want %v", tc.input, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("SplitKeywords(%q)[%d] = %q, want %q", tc.input, i, got[i], tc.want[i])
				}
			}
		})
	}
}
