package moment

// Similarity computes character-set Jaccard overlap between two short
// descriptions: |chars(a) ∩ chars(b)| / |chars(a) ∪ chars(b)|.
//
// This is a coarse lexical-overlap signal, not semantic similarity. It works
// well for the short, repetitive event descriptions the model produces and
// is a documented limitation, not a bug.
func Similarity(a, b string) float64 {
	setA := runeSet(a)
	setB := runeSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{}, len(s))
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}
