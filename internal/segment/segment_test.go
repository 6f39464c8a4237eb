package segment

import "testing"

func TestNewRejectsInvertedAndEmpty(t *testing.T) {
	if _, err := New(3, 3); err != ErrInvalidSegment {
		t.Fatalf("empty segment: expected ErrInvalidSegment, got %v", err)
	}
	if _, err := New(5, 2); err != ErrInvalidSegment {
		t.Fatalf("inverted segment: expected ErrInvalidSegment, got %v", err)
	}
	if _, err := New(0, 1); err != nil {
		t.Fatalf("minimal segment should be valid, got %v", err)
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Segment
		want bool
	}{
		{"identical", Segment{0, 3}, Segment{0, 3}, true},
		{"nested", Segment{0, 6}, Segment{2, 4}, true},
		{"partial left", Segment{0, 3}, Segment{2, 5}, true},
		{"partial right", Segment{2, 5}, Segment{0, 3}, true},
		{"adjacent share boundary", Segment{0, 3}, Segment{3, 6}, false},
		{"adjacent reversed", Segment{3, 6}, Segment{0, 3}, false},
		{"disjoint with gap", Segment{0, 2}, Segment{4, 6}, false},
		{"single stop inside", Segment{2, 3}, Segment{1, 4}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.want {
				t.Fatalf("%v overlaps %v = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			// overlap is symmetric
			if got := tc.b.Overlaps(tc.a); got != tc.want {
				t.Fatalf("%v overlaps %v = %v, want %v (symmetry)", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestContainsExcludesDestination(t *testing.T) {
	s := Segment{2, 5}
	if !s.Contains(2) {
		t.Fatal("origin stop should be contained")
	}
	if !s.Contains(4) {
		t.Fatal("interior stop should be contained")
	}
	if s.Contains(5) {
		t.Fatal("destination stop must not be contained (half-open)")
	}
	if s.Contains(1) {
		t.Fatal("stop before origin must not be contained")
	}
}

func TestString(t *testing.T) {
	if got := (Segment{1, 4}).String(); got != "[1,4)" {
		t.Fatalf("String() = %q, want %q", got, "[1,4)")
	}
}
