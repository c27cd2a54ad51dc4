package physics

import (
	"slices"
	"testing"
)

func TestRectsOverlap(t *testing.T) {
	tests := []struct {
		name string
		b    [4]float64
		want bool
	}{
		{"inside", [4]float64{2, 2, 2, 2}, true},
		{"partial", [4]float64{8, 8, 5, 5}, true},
		{"touching edge", [4]float64{10, 0, 5, 5}, false},
		{"apart", [4]float64{20, 20, 1, 1}, false},
		{"above", [4]float64{0, -6, 10, 5}, false},
	}
	for _, tt := range tests {
		got := RectsOverlap(0, 0, 10, 10, tt.b[0], tt.b[1], tt.b[2], tt.b[3])
		if got != tt.want {
			t.Errorf("%s: RectsOverlap = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSpatialGridQuery(t *testing.T) {
	g := NewSpatialGrid(800, 600, 64)
	g.Insert(10, 10, 8, 8, 0)
	g.Insert(100, 10, 8, 8, 1)
	g.Insert(500, 500, 8, 8, 2)
	g.Insert(-30, -30, 8, 8, 3) // clamped into the corner cell

	var found []int
	g.Query(0, 0, 130, 60, func(i int) bool {
		found = append(found, i)
		return false
	})
	slices.Sort(found)
	if !slices.Equal(found, []int{0, 1, 3}) {
		t.Fatalf("found = %v, want [0 1 3]", found)
	}

	g.Clear()
	g.Query(0, 0, 800, 600, func(i int) bool {
		t.Fatalf("unexpected item %d after Clear", i)
		return true
	})
}

func TestSpatialGridSpanningItemVisitedOnce(t *testing.T) {
	g := NewSpatialGrid(800, 600, 64)
	g.Insert(0, 0, 300, 200, 0) // covers many cells

	for range 3 {
		calls := 0
		g.Query(0, 0, 800, 600, func(int) bool {
			calls++
			return false
		})
		if calls != 1 {
			t.Fatalf("calls = %d, want 1", calls)
		}
	}

	hit := false
	g.Query(250, 150, 4, 4, func(i int) bool {
		hit = i == 0
		return true
	})
	if !hit {
		t.Fatal("far corner of a large item not found")
	}
}

func TestSpatialGridEarlyStop(t *testing.T) {
	g := NewSpatialGrid(100, 100, 50)
	for i := range 5 {
		g.Insert(10, 10, 4, 4, i)
	}
	calls := 0
	g.Query(10, 10, 1, 1, func(int) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
