package fingerprint

import "testing"

func TestStaticStride(t *testing.T) {
	s := NewStaticStrideWithFirst(5115, 128)
	if s.FirstStride() != 128 || s.MinStride() != 5115 {
		t.Fatalf("unexpected stride %+v", s)
	}
	next := s.Iterator()
	for i := 0; i < 3; i++ {
		if v := next(); v != 5115 {
			t.Errorf("step %d: got %d, want 5115", i, v)
		}
	}
}

func TestRandomStrideBoundsAndReproducibility(t *testing.T) {
	s := NewRandomStride(100, 900, 42)
	a, b := s.Iterator(), s.Iterator()

	for i := 0; i < 500; i++ {
		x, y := a(), b()
		if x != y {
			t.Fatalf("step %d: iterators diverged (%d vs %d)", i, x, y)
		}
		if x < 100 || x > 900 {
			t.Fatalf("step %d: %d out of [100, 900]", i, x)
		}
	}
}

func TestRandomStrideDegenerateRange(t *testing.T) {
	next := NewRandomStride(64, 64, 7).Iterator()
	if v := next(); v != 64 {
		t.Errorf("got %d, want 64", v)
	}
}
