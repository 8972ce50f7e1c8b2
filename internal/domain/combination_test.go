package domain

import (
	"math"
	"reflect"
	"testing"
)

func TestGenerateCombinationsExample(t *testing.T) {
	got := GenerateCombinations([][]string{{"40", "41"}, {"Gray", "Blue"}})
	want := []Combination{
		{"40", "Gray"}, {"40", "Blue"}, {"41", "Gray"}, {"41", "Blue"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("combinations = %v, want %v", got, want)
	}

	names := []string{"40 / Gray", "40 / Blue", "41 / Gray", "41 / Blue"}
	for i, c := range got {
		if c.Name() != names[i] {
			t.Errorf("Name() = %q, want %q", c.Name(), names[i])
		}
	}
}

func TestGenerateCombinationsCount(t *testing.T) {
	tests := []struct {
		name string
		sets [][]string
		want int
	}{
		{"empty input is identity", nil, 1},
		{"single set", [][]string{{"a", "b", "c"}}, 3},
		{"three sets", [][]string{{"a", "b"}, {"1", "2", "3"}, {"x", "y"}}, 12},
		{"empty set", [][]string{{"a"}, {}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateCombinations(tt.sets)
			if len(got) != tt.want {
				t.Fatalf("len = %d, want %d", len(got), tt.want)
			}
			if CombinationCount(tt.sets) != tt.want {
				t.Fatalf("CombinationCount = %d, want %d", CombinationCount(tt.sets), tt.want)
			}
			for _, c := range got {
				if len(c) != len(tt.sets) {
					t.Fatalf("combination %v has length %d, want %d", c, len(c), len(tt.sets))
				}
			}
		})
	}
}

func TestGenerateCombinationsEmptyInput(t *testing.T) {
	got := GenerateCombinations(nil)
	if len(got) != 1 || len(got[0]) != 0 {
		t.Fatalf("want a single empty combination, got %v", got)
	}
}

func TestCombinationCountSaturates(t *testing.T) {
	big := make([]string, 1<<20)
	sets := [][]string{big, big, big, big}
	if got := CombinationCount(sets); got != math.MaxInt {
		t.Fatalf("CombinationCount = %d, want MaxInt", got)
	}
}

func TestCombinationKeyAvoidsSeparatorCollision(t *testing.T) {
	a := Combination{"A / B", "C"}
	b := Combination{"A", "B / C"}
	if a.Name() != b.Name() {
		t.Fatalf("test setup: names should collide, got %q and %q", a.Name(), b.Name())
	}
	if a.Key() == b.Key() {
		t.Fatal("keys must differ for distinct tuples")
	}
	if a.Key() != (Combination{"A / B", "C"}).Key() {
		t.Fatal("key must be stable")
	}
}
