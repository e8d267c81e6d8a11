package moment

import "testing"

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected float64
	}{
		{"identical strings", "明天去打羽毛球", "明天去打羽毛球", 1.0},
		{"disjoint strings", "abc", "xyz", 0},
		{"empty left", "", "abc", 0},
		{"empty right", "abc", "", 0},
		{"both empty", "", "", 0},
		{"repeated runes collapse", "aaabbb", "ab", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Similarity(tt.a, tt.b); got != tt.expected {
				t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestSimilarity_NearDuplicateDescriptions(t *testing.T) {
	// 7 shared runes out of an 8 rune union: 0.875, above the merge threshold.
	got := Similarity("明天去打羽毛球", "明天去打羽毛球吧")
	if got <= 0.8 {
		t.Errorf("near-duplicates must score above the merge threshold, got %v", got)
	}

	// Same activity phrased differently shares too few characters to merge.
	low := Similarity("去打羽毛球", "医院复诊预约")
	if low > 0.8 {
		t.Errorf("unrelated descriptions must not merge, got %v", low)
	}
}

func TestSimilarity_Symmetric(t *testing.T) {
	a, b := "买生日蛋糕", "生日买个蛋糕"
	if Similarity(a, b) != Similarity(b, a) {
		t.Errorf("similarity must be symmetric")
	}
}
