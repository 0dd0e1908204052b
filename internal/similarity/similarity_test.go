package similarity

import (
	"math"
	"testing"

	"counsel/internal/entry"
)

func TestCosine_Identity(t *testing.T) {
	v := []float64{0.3, -1.2, 4.0}
	if got := Cosine(v, v); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("cosine(v, v) = %f, want 1.0", got)
	}
}

func TestCosine_Symmetry(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{-2, 0.5, 1}
	if Cosine(a, b) != Cosine(b, a) {
		t.Errorf("cosine should be symmetric")
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	if got := Cosine([]float64{1, 0}, []float64{0, 1}); got != 0.0 {
		t.Errorf("orthogonal vectors should score 0, got %f", got)
	}
}

func TestCosine_Opposite(t *testing.T) {
	if got := Cosine([]float64{1, 0}, []float64{-1, 0}); math.Abs(got+1.0) > 1e-9 {
		t.Errorf("opposite vectors should score -1, got %f", got)
	}
}

func TestCosine_Degenerate(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
	}{
		{"nil a", nil, []float64{1}},
		{"nil b", []float64{1}, nil},
		{"length mismatch", []float64{1, 2}, []float64{1, 2, 3}},
		{"zero norm", []float64{0, 0}, []float64{1, 1}},
	}
	for _, c := range cases {
		if got := Cosine(c.a, c.b); got != 0.0 {
			t.Errorf("%s: expected 0.0, got %f", c.name, got)
		}
	}
}

func mkEntry(id, userID uint, title string, vec []float64) entry.Entry {
	return entry.Entry{
		ID:        id,
		UserID:    userID,
		Kind:      entry.KindDirection,
		Title:     title,
		Embedding: entry.EncodeEmbedding(vec),
	}
}

func TestRank_OrdersByScore(t *testing.T) {
	target := mkEntry(1, 7, "target", []float64{1, 0})
	candidates := []entry.Entry{
		mkEntry(2, 7, "far", []float64{0, 1}),
		mkEntry(3, 7, "close", []float64{0.9, 0.1}),
		mkEntry(4, 7, "closest", []float64{1, 0.01}),
	}
	matches := Rank(&target, candidates, 5)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Title != "closest" || matches[1].Title != "close" || matches[2].Title != "far" {
		t.Errorf("wrong order: %+v", matches)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("scores not descending: %+v", matches)
		}
	}
}

func TestRank_SkipsTargetForeignAndUnembedded(t *testing.T) {
	target := mkEntry(1, 7, "target", []float64{1, 0})
	candidates := []entry.Entry{
		mkEntry(1, 7, "target itself", []float64{1, 0}),
		mkEntry(2, 8, "other owner", []float64{1, 0}),
		mkEntry(3, 7, "no embedding", nil),
		mkEntry(4, 7, "ok", []float64{0.5, 0.5}),
	}
	matches := Rank(&target, candidates, 5)
	if len(matches) != 1 || matches[0].ID != 4 {
		t.Errorf("expected only the valid candidate: %+v", matches)
	}
}

func TestRank_CapsAtK(t *testing.T) {
	target := mkEntry(1, 7, "target", []float64{1, 0})
	var candidates []entry.Entry
	for i := uint(2); i < 12; i++ {
		candidates = append(candidates, mkEntry(i, 7, "c", []float64{1, float64(i) / 100}))
	}
	matches := Rank(&target, candidates, DefaultTopK)
	if len(matches) != DefaultTopK {
		t.Errorf("expected %d matches, got %d", DefaultTopK, len(matches))
	}
}

func TestRank_TargetWithoutEmbedding(t *testing.T) {
	target := mkEntry(1, 7, "target", nil)
	candidates := []entry.Entry{mkEntry(2, 7, "c", []float64{1, 0})}
	matches := Rank(&target, candidates, 5)
	if len(matches) != 0 {
		t.Errorf("target without embedding should rank nothing: %+v", matches)
	}
}
