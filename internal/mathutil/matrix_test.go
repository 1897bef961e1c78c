package mathutil

import (
	"math"
	"testing"
)

func TestNewMat(t *testing.T) {
	m := NewMat(3, 4)
	if len(m) != 3 {
		t.Fatalf("rows = %d, want 3", len(m))
	}
	for i, row := range m {
		if len(row) != 4 {
			t.Fatalf("row %d cols = %d, want 4", i, len(row))
		}
	}
	// rows share one backing array
	m[0] = m[0][:cap(m[0])]
	if len(m[0]) != 12 {
		t.Errorf("backing array len = %d, want 12", len(m[0]))
	}
}

func TestCloneVec(t *testing.T) {
	src := Vec{1, 2, 3}
	dst := CloneVec(src)
	dst[0] = 7
	if src[0] != 1 {
		t.Errorf("CloneVec aliases source: src[0] = %f", src[0])
	}
}

func TestFirstNonFinite(t *testing.T) {
	tests := []struct {
		v    Vec
		want int
	}{
		{Vec{1, 2, 3}, -1},
		{Vec{}, -1},
		{Vec{1, math.NaN(), 3}, 1},
		{Vec{math.Inf(-1)}, 0},
		{Vec{0, 0, math.Inf(1)}, 2},
	}
	for _, tt := range tests {
		if got := FirstNonFinite(tt.v); got != tt.want {
			t.Errorf("FirstNonFinite(%v) = %d, want %d", tt.v, got, tt.want)
		}
	}
}

func TestFill(t *testing.T) {
	v := make(Vec, 4)
	FillVec(v, LogZero)
	for i, x := range v {
		if x != LogZero {
			t.Errorf("v[%d] = %f, want LogZero", i, x)
		}
	}
}
