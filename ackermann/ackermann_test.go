package ackermann

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestClosedFormConsistency checks, for m in {0, 1, 2} and random n, p,
// that the closed form matches the recursive expansion one level up,
// the closed-form Ackermann consistency property.
func TestClosedFormConsistency(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		n := uint16(rng.Intn(Mod))
		p := uint16(rng.Intn(Mod))
		for m := uint16(0); m <= 2; m++ {
			want, ok := closedForm(m, n, p)
			if !ok {
				t.Fatalf("closedForm(%d, %d, %d) reported not-ok", m, n, p)
			}
			var got uint16
			switch {
			case m == 0:
				got = (n + 1) % Mod
			case n == 0:
				got, _ = closedForm(m-1, p, p)
			default:
				inner, _ := closedForm(m, n-1, p)
				got, _ = closedForm(m-1, inner, p)
			}
			if got != want {
				t.Fatalf("one-level expansion of A(%d, %d, %d) = %d, want closed form %d", m, n, p, got, want)
			}
		}
	}
}

func TestRecursiveAndIterativeAgree(t *testing.T) {
	cases := []struct{ m, n, p uint16 }{
		{3, 0, 2}, {3, 1, 0}, {3, 2, 1}, {4, 0, 3}, {4, 1, 5}, {3, 3, 7},
	}
	for _, c := range cases {
		want := Recursive(c.m, c.n, c.p, newMemo())
		got := Iterative(c.m, c.n, c.p, newMemo())
		if got != want {
			t.Errorf("Iterative(%d,%d,%d) = %d, want Recursive's %d", c.m, c.n, c.p, got, want)
		}
	}
}

func TestA0IsIncrement(t *testing.T) {
	memo := newMemo()
	for n := uint16(0); n < 10; n++ {
		if got := Recursive(0, n, 99, memo); got != (n+1)%Mod {
			t.Errorf("A(0,%d,_) = %d, want %d", n, got, (n+1)%Mod)
		}
	}
	if got := Recursive(0, Mod-1, 0, memo); got != 0 {
		t.Errorf("A(0,32767,_) = %d, want 0 (wraps)", got)
	}
}

// TestSolveFindsReferenceSeed checks that the published reference
// instance's teleporter seed is 25734.
func TestSolveFindsReferenceSeed(t *testing.T) {
	if testing.Short() {
		t.Skip("full seed search is slow under -short")
	}
	p, err := Solve()
	require.NoError(t, err)
	require.Equal(t, uint16(25734), p)
}

// TestSolveAndSolveIterativeAgree checks that both evaluators land on
// the same seed without requiring the slow full search twice.
func TestSolveAndSolveIterativeAgree(t *testing.T) {
	if testing.Short() {
		t.Skip("full seed search is slow under -short")
	}
	p1, err := Solve()
	require.NoError(t, err)
	p2, err := SolveIterative()
	require.NoError(t, err)
	require.Equal(t, p1, p2)
}
