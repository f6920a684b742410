// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package grid

import (
	"errors"
	"testing"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		n       int
		wantErr error
	}{
		{"ok", 3, 2, 30, nil},
		{"longer data ok", 3, 2, 40, nil},
		{"short", 3, 2, 29, ErrShortData},
		{"negative width", -1, 2, 30, ErrInvalidDimensions},
		{"empty", 0, 0, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.w, tt.h, make([]int, tt.n))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New(%d, %d) error = %v, want %v", tt.w, tt.h, err, tt.wantErr)
			}
		})
	}
}

func TestAtLayout(t *testing.T) {
	g := Empty(3, 2)
	// (plane*height + y)*width + x
	g.Data[(2*2+1)*3+2] = 77
	if got := g.At(2, 1, 2); got != 77 {
		t.Errorf("At(2,1,2) = %d, want 77", got)
	}
	if got := g.At(2, 1, 1); got != 0 {
		t.Errorf("At(2,1,1) = %d, want 0", got)
	}
}

func TestOutOfBoundsWithoutWrap(t *testing.T) {
	g := Empty(2, 2)
	for i := range g.Data {
		g.Data[i] = 5
	}
	coords := [][2]int{{-1, 0}, {0, -1}, {2, 0}, {0, 2}, {-3, -3}}
	for _, c := range coords {
		if got := g.At(c[0], c[1], 0); got != 0 {
			t.Errorf("At(%d,%d) = %d, want 0", c[0], c[1], got)
		}
	}
	if got := g.At(0, 0, PlaneCount); got != 0 {
		t.Errorf("plane out of range = %d, want 0", got)
	}
}

func TestWrap(t *testing.T) {
	g := Empty(3, 2)
	if err := g.Set(0, 0, 0, 11); err != nil {
		t.Fatal(err)
	}
	if err := g.Set(2, 1, 0, 22); err != nil {
		t.Fatal(err)
	}

	if got := g.At(3, 0, 0); got != 0 {
		t.Errorf("no wrap: At(3,0) = %d, want 0", got)
	}

	g.HorizontalWrap = true
	if got := g.At(3, 0, 0); got != 11 {
		t.Errorf("h wrap: At(3,0) = %d, want 11", got)
	}
	if got := g.At(-1, 1, 0); got != 22 {
		t.Errorf("h wrap: At(-1,1) = %d, want 22", got)
	}
	if got := g.At(0, 2, 0); got != 0 {
		t.Errorf("h wrap only: At(0,2) = %d, want 0", got)
	}

	g.VerticalWrap = true
	if got := g.At(0, 2, 0); got != 11 {
		t.Errorf("v wrap: At(0,2) = %d, want 11", got)
	}
	if got := g.At(-4, -1, 0); got != 22 {
		t.Errorf("both wrap: At(-4,-1) = %d, want 22", got)
	}
}

func TestNilGridReadsZero(t *testing.T) {
	var g *Grid
	if got := g.At(0, 0, 0); got != 0 {
		t.Errorf("nil grid At = %d, want 0", got)
	}
	var zero Grid
	if got := zero.Shadow(0, 0); got != 0 {
		t.Errorf("zero grid Shadow = %d, want 0", got)
	}
}

func TestSetOutOfRange(t *testing.T) {
	g := Empty(2, 2)
	if err := g.Set(5, 0, 0, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Set out of range error = %v, want ErrOutOfRange", err)
	}
}

func TestModFloorDiv(t *testing.T) {
	tests := []struct {
		a, n, mod, div int
	}{
		{7, 3, 1, 2},
		{-1, 3, 2, -1},
		{-3, 3, 0, -1},
		{-4, 3, 2, -2},
		{0, 5, 0, 0},
	}
	for _, tt := range tests {
		if got := Mod(tt.a, tt.n); got != tt.mod {
			t.Errorf("Mod(%d,%d) = %d, want %d", tt.a, tt.n, got, tt.mod)
		}
		if got := FloorDiv(tt.a, tt.n); got != tt.div {
			t.Errorf("FloorDiv(%d,%d) = %d, want %d", tt.a, tt.n, got, tt.div)
		}
	}
}
