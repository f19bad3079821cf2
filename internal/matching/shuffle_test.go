package matching

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestShuffleFairness(t *testing.T) {
	const (
		n      = 5
		trials = 50000
	)
	r := rand.New(rand.NewPCG(1, 2))
	input := []int{0, 1, 2, 3, 4}

	var counts [n][n]int // counts[element][position]
	for range trials {
		out := Shuffle(input, r)
		for pos, v := range out {
			counts[v][pos]++
		}
	}

	expected := float64(trials) / n
	var chi2 float64
	for v := range n {
		for pos := range n {
			d := float64(counts[v][pos]) - expected
			chi2 += d * d / expected
		}
	}
	// (n-1)^2 = 16 degrees of freedom; 39.25 is the 99.9th percentile.
	if chi2 > 39.25 {
		t.Errorf("chi-square = %.2f, shuffle looks biased: %v", chi2, counts)
	}
}

func TestShufflePurity(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	input := []string{"a", "b", "c", "d", "e", "f"}
	orig := slices.Clone(input)

	for range 100 {
		out := Shuffle(input, r)
		if !slices.Equal(input, orig) {
			t.Fatalf("input mutated: %v", input)
		}
		sorted := slices.Clone(out)
		slices.Sort(sorted)
		if !slices.Equal(sorted, orig) {
			t.Fatalf("output %v is not a permutation of %v", out, orig)
		}
	}
}

func TestShuffleEdgeCases(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	if got := Shuffle([]int{}, r); len(got) != 0 {
		t.Errorf("Shuffle(empty) = %v", got)
	}
	if got := Shuffle([]int{42}, r); !slices.Equal(got, []int{42}) {
		t.Errorf("Shuffle(single) = %v", got)
	}
}
