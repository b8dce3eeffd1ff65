package core

import "testing"

func TestBoxOverlaps(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Box
		expected bool
	}{
		{
			name:     "overlapping boxes",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 5, Y: 5, W: 10, H: 10},
			expected: true,
		},
		{
			name:     "separated horizontally",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 15, Y: 0, W: 10, H: 10},
			expected: false,
		},
		{
			name:     "separated vertically",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 0, Y: 15, W: 10, H: 10},
			expected: false,
		},
		{
			name:     "touching edges count",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 10, Y: 0, W: 10, H: 10},
			expected: true,
		},
		{
			name:     "touching corner counts",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 10, Y: 10, W: 5, H: 5},
			expected: true,
		},
		{
			name:     "contained box",
			a:        Box{X: 0, Y: 0, W: 20, H: 20},
			b:        Box{X: 5, Y: 5, W: 1, H: 1},
			expected: true,
		},
		{
			name:     "just past the edge",
			a:        Box{X: 0, Y: 0, W: 10, H: 10},
			b:        Box{X: 10.01, Y: 0, W: 10, H: 10},
			expected: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Overlaps(tc.b); got != tc.expected {
				t.Errorf("Overlaps() = %v, expected %v", got, tc.expected)
			}
			if got := tc.b.Overlaps(tc.a); got != tc.expected {
				t.Errorf("Overlaps() (reversed) = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestBoxAround(t *testing.T) {
	b := BoxAround(100, 50, 12)
	if b.X != 88 || b.Y != 38 || b.W != 24 || b.H != 24 {
		t.Errorf("BoxAround() = %+v", b)
	}
	if b.Right() != 112 || b.Bottom() != 62 {
		t.Errorf("edges = (%v, %v), expected (112, 62)", b.Right(), b.Bottom())
	}
}

func TestRectContains(t *testing.T) {
	r := NewRect(10, 10, 20, 15)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"inside", 15, 15, true},
		{"top-left corner", 10, 10, true},
		{"bottom-right edge (exclusive)", 30, 25, false},
		{"left of rect", 5, 15, false},
		{"below rect", 15, 30, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := r.Contains(tc.x, tc.y); got != tc.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tc.x, tc.y, got, tc.expected)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, expected float64
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{0, 0, 10, 0},
		{10, 0, 10, 10},
	}

	for _, tc := range tests {
		if got := Clamp(tc.val, tc.lo, tc.hi); got != tc.expected {
			t.Errorf("Clamp(%v, %v, %v) = %v, expected %v", tc.val, tc.lo, tc.hi, got, tc.expected)
		}
	}

	if got := Clamp(7, 1, 5); got != 5 {
		t.Errorf("Clamp(int) = %d, expected 5", got)
	}
}

func TestScaleRoundTrip(t *testing.T) {
	s := NewScale(80, 20, 800, 400)
	if s.X != 10 || s.Y != 20 {
		t.Fatalf("NewScale() = %+v, expected {10 20}", s)
	}

	fx, fy := s.ToField(40, 10)
	if fx != 400 || fy != 200 {
		t.Errorf("ToField(40, 10) = (%v, %v), expected (400, 200)", fx, fy)
	}

	hx, hy := s.ToHost(fx, fy)
	if hx != 40 || hy != 10 {
		t.Errorf("ToHost() = (%d, %d), expected (40, 10)", hx, hy)
	}

	zero := NewScale(0, 0, 800, 400)
	if zero.X != 1 || zero.Y != 1 {
		t.Errorf("NewScale with empty host = %+v, expected identity", zero)
	}
}
