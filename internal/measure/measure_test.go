package measure

import (
	"math"
	"reflect"
	"testing"
)

func TestNewMeasurementDistances(t *testing.T) {
	m := NewMeasurement(0, 0, 3, 4, 2.0)
	if m.PixelDist != 5 {
		t.Errorf("pixel dist = %v, want 5", m.PixelDist)
	}
	if m.Dist != 10 {
		t.Errorf("calibrated dist = %v, want 10", m.Dist)
	}

	un := NewMeasurement(0, 0, 3, 4, 0)
	if un.Dist != 0 {
		t.Errorf("uncalibrated dist = %v, want 0", un.Dist)
	}
}

func TestGroupNormalizesCorners(t *testing.T) {
	g := NewGroup("G1", 100, 100, 0, 0)
	if g.X1 != 0 || g.Y1 != 0 || g.X2 != 100 || g.Y2 != 100 {
		t.Errorf("group = %+v, corners not normalized", g)
	}
}

func TestGroupContains(t *testing.T) {
	tests := []struct {
		name string
		g    Group
		m    Measurement
		want bool
	}{
		{
			name: "midpoint inside",
			g:    NewGroup("G", 0, 0, 100, 100),
			m:    NewMeasurement(40, 40, 60, 60, 1),
			want: true,
		},
		{
			name: "midpoint outside",
			g:    NewGroup("G", 0, 0, 100, 100),
			m:    NewMeasurement(140, 140, 160, 160, 1),
			want: false,
		},
		{
			name: "midpoint on boundary",
			g:    NewGroup("G", 0, 0, 100, 100),
			m:    NewMeasurement(100, 40, 100, 60, 1),
			want: true,
		},
		{
			name: "line crosses group but midpoint inside",
			g:    NewGroup("G", 40, 40, 80, 80),
			m:    NewMeasurement(10, 50, 90, 50, 1),
			want: true,
		},
		{
			name: "endpoint inside but midpoint outside",
			g:    NewGroup("G", 0, 0, 30, 30),
			m:    NewMeasurement(10, 15, 70, 15, 1),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.g.Contains(tt.m); got != tt.want {
				t.Errorf("Contains() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAssignGroups(t *testing.T) {
	groups := []Group{
		NewGroup("G1", 0, 0, 100, 100),
		NewGroup("G2", 200, 200, 300, 300),
		NewGroup("Overlap", 0, 0, 400, 400),
	}
	ms := []Measurement{
		NewMeasurement(40, 40, 60, 60, 1),    // in G1 (first match wins)
		NewMeasurement(240, 240, 260, 260, 1), // in G2
		NewMeasurement(150, 150, 160, 160, 1), // only in Overlap
		NewMeasurement(500, 500, 510, 510, 1), // in none
	}

	got := AssignGroups(ms, groups)
	want := []string{"G1", "G2", "Overlap", ""}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AssignGroups() = %v, want %v", got, want)
	}
}

func TestAssignGroupsNoGroups(t *testing.T) {
	ms := []Measurement{NewMeasurement(0, 0, 1, 1, 1)}
	got := AssignGroups(ms, nil)
	if !reflect.DeepEqual(got, []string{""}) {
		t.Errorf("AssignGroups() = %v", got)
	}
}

func TestConvertLength(t *testing.T) {
	tests := []struct {
		value    float64
		from, to Unit
		want     float64
	}{
		{10, Angstrom, Nanometer, 1},
		{1000, Nanometer, Micrometer, 1},
		{1000, Micrometer, Millimeter, 1},
		{10, Millimeter, Centimeter, 1},
		{1, Centimeter, Nanometer, 1e7},
		{42.5, Nanometer, Nanometer, 42.5},
	}

	for _, tt := range tests {
		got, err := ConvertLength(tt.value, tt.from, tt.to)
		if err != nil {
			t.Fatalf("ConvertLength(%v, %s, %s): %v", tt.value, tt.from, tt.to, err)
		}
		if math.Abs(got-tt.want) > 1e-9*math.Max(1, tt.want) {
			t.Errorf("ConvertLength(%v, %s, %s) = %v, want %v", tt.value, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConvertLengthRoundTrip(t *testing.T) {
	v, err := ConvertLength(123.456, Nanometer, Micrometer)
	if err != nil {
		t.Fatal(err)
	}
	back, err := ConvertLength(v, Micrometer, Nanometer)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(back-123.456) > 1e-9 {
		t.Errorf("round trip = %v, want 123.456", back)
	}
}

func TestConvertLengthUnknownUnit(t *testing.T) {
	if _, err := ConvertLength(1, Unit("parsec"), Nanometer); err == nil {
		t.Error("expected error for unknown unit")
	}
}

func TestSupportedUnitsAllConvertible(t *testing.T) {
	for _, u := range SupportedUnits {
		if _, err := ConvertLength(1, u, Nanometer); err != nil {
			t.Errorf("unit %q not convertible: %v", u, err)
		}
	}
}
