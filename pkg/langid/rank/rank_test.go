package rank

import (
	"errors"
	"testing"

	"github.com/cognicore/langid/pkg/langid/internalerr"
)

func TestLanguageString(t *testing.T) {
	l := Language{Lang: "en", Prob: 0.9999}
	if got := l.String(); got != "en:0.9999" {
		t.Errorf("String() = %q, want %q", got, "en:0.9999")
	}
}

func TestRankedOrderAndThreshold(t *testing.T) {
	r := DefaultRanker()
	langs := []string{"de", "en", "fr", "nl"}
	probs := []float64{0.05, 0.6, 0.25, 0.1}

	got := r.Ranked(langs, probs)
	want := []Language{{"en", 0.6}, {"fr", 0.25}}
	if len(got) != len(want) {
		t.Fatalf("Ranked() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ranked()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestRankedTiesKeepIndexOrder(t *testing.T) {
	r := NewRanker(0, 0)
	langs := []string{"a", "b", "c", "d"}
	probs := []float64{0.2, 0.3, 0.3, 0.2}

	for range 10 {
		got := r.Ranked(langs, probs)
		order := ""
		for _, l := range got {
			order += l.Lang
		}
		if order != "bcad" {
			t.Fatalf("Ranked() order = %q, want %q", order, "bcad")
		}
	}
}

func TestBest(t *testing.T) {
	tests := []struct {
		name    string
		ranker  *Ranker
		probs   []float64
		want    string
		wantErr bool
	}{
		{"clear winner", DefaultRanker(), []float64{0.1, 0.9}, "fr", false},
		{"tie goes to first loaded", NewRanker(0, 0), []float64{0.5, 0.5}, "en", false},
		{"nothing above threshold", DefaultRanker(), []float64{0.05, 0.05}, "", true},
		{"below min confidence", NewRanker(0, 0.8), []float64{0.4, 0.6}, "", true},
		{"empty distribution", DefaultRanker(), nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.ranker.Best([]string{"en", "fr"}, tt.probs)
			if tt.wantErr {
				if !errors.Is(err, internalerr.ErrNoCandidate) {
					t.Fatalf("Best() error = %v, want ErrNoCandidate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Best() unexpected error: %v", err)
			}
			if got.Lang != tt.want {
				t.Errorf("Best() = %v, want %s", got, tt.want)
			}
		})
	}
}

func TestAllKeepsIndexOrder(t *testing.T) {
	got := All([]string{"en", "fr", "de"}, []float64{0, 0.7, 0.3})
	if len(got) != 3 || got[0].Lang != "en" || got[2].Prob != 0.3 {
		t.Errorf("All() = %v", got)
	}
}
