package math

import (
	"testing"
)

func TestVec3Add(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{3, 4, 5}
	got := a.Add(b)
	want := Vec3{4, 6, 8}
	if got != want {
		t.Errorf("Vec3.Add() = %v, want %v", got, want)
	}
}

func TestVec3Length(t *testing.T) {
	v := Vec3{3, 4, 0}
	got := v.Length()
	if got != 5 {
		t.Errorf("Vec3.Length() = %v, want 5", got)
	}
}

func TestVec3DistanceSymmetric(t *testing.T) {
	a := Vec3{1, -2, 0.5}
	b := Vec3{-3, 4, 2}
	if a.Distance(b) != b.Distance(a) {
		t.Errorf("Distance not symmetric: %v vs %v", a.Distance(b), b.Distance(a))
	}
}

func TestVec3Div(t *testing.T) {
	got := Vec3{2, 4, 6}.Div(2)
	want := Vec3{1, 2, 3}
	if got != want {
		t.Errorf("Vec3.Div() = %v, want %v", got, want)
	}
}

func TestVec3Lerp(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{10, -10, 4}
	if got := a.Lerp(b, 0.5); got != (Vec3{5, -5, 2}) {
		t.Errorf("Vec3.Lerp(0.5) = %v", got)
	}
	if got := a.Lerp(b, 0); got != a {
		t.Errorf("Vec3.Lerp(0) = %v, want %v", got, a)
	}
}

func TestVec3IsZero(t *testing.T) {
	if !(Vec3{}).IsZero() {
		t.Error("expected zero vector")
	}
	if (Vec3{0, 1e-12, 0}).IsZero() {
		t.Error("expected non-zero vector")
	}
}
