package domain

import (
	"math"
	"testing"
)

func TestVec3_Distances(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 5}
	b := Vec3{X: 4, Y: 6, Z: -1}

	if got := a.Dist2D(b); got != 5 {
		t.Errorf("Dist2D ignores height: got %v want 5", got)
	}
	if got := b.Sub(a).Flat().Len(); got != 5 {
		t.Errorf("Flat().Len() = %v, want 5", got)
	}
	if got := a.Add(b).Scale(2); got != (Vec3{X: 10, Y: 16, Z: 8}) {
		t.Errorf("Add/Scale = %v", got)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	tests := []struct {
		name string
		v    Vec3
		want bool
	}{
		{"zero", Vec3{}, true},
		{"regular", Vec3{X: -15, Y: 10, Z: 0.04}, true},
		{"nan", Vec3{X: math.NaN()}, false},
		{"inf", Vec3{Z: math.Inf(-1)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.want {
				t.Errorf("IsFinite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAngleBetween2D(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Vec3
		want   float64
		wantOK bool
	}{
		{"same direction", Vec3{X: 1}, Vec3{X: 3}, 0, true},
		{"perpendicular", Vec3{X: 1}, Vec3{Y: -2}, 90, true},
		{"opposite", Vec3{X: 2}, Vec3{X: -3}, 180, true},
		{"height ignored", Vec3{X: 1, Z: 10}, Vec3{X: 1}, 0, true},
		{"zero vector", Vec3{}, Vec3{X: 1}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AngleBetween2D(tt.a, tt.b)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("angle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{180, 180},
		{-180, 180},
		{190, -170},
		{-190, 170},
		{720, 0},
		{-450, -90},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); got != tt.want {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
