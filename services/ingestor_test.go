package services

import "testing"

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"simple list", "oncology;genomics", []string{"oncology", "genomics"}},
		{"dedup keeps first casing", "Oncology;oncology;ONCOLOGY", []string{"Oncology"}},
		{"drops empties and trims", " oncology ; ; genomics ", []string{"oncology", "genomics"}},
		{"empty input", "", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := normalizeKeywords(tc.raw)
			if len(got) != len(tc.want) {
				t.Fatalf("normalizeKeywords(%q) = %v, want %v", tc.raw, got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("normalizeKeywords(%q)[%d] = %q, want %q", tc.raw, i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestComposeQueryExpression_NoExpansions(t *testing.T) {
	got := composeQueryExpression([]string{"oncology", "genomics"}, []string{"oncology", "genomics"})
	want := `("oncology") AND ("genomics")`
	if got != want {
		t.Errorf("composeQueryExpression() = %q, want %q", got, want)
	}
}

func TestComposeQueryExpression_BroadcastsUnattributedExpansions(t *testing.T) {
	keywords := []string{"oncology"}
	expanded := []string{"oncology", "carcinoma", "cancer"}
	got := composeQueryExpression(keywords, expanded)
	want := `("oncology" OR "carcinoma" OR "cancer")`
	if got != want {
		t.Errorf("composeQueryExpression() = %q, want %q", got, want)
	}
}

func TestComposeQueryExpression_MultipleKeywordsEachGetExpansions(t *testing.T) {
	keywords := []string{"oncology", "genomics"}
	expanded := []string{"oncology", "genomics", "cancer"}
	got := composeQueryExpression(keywords, expanded)
	want := `("oncology" OR "cancer") AND ("genomics" OR "cancer")`
	if got != want {
		t.Errorf("composeQueryExpression() = %q, want %q", got, want)
	}
}
