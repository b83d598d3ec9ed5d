package measure

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"testing"

	"nanomeasurer/internal/segment"
	"nanomeasurer/pkg/geometry"
)

func readRows(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	r := csv.NewReader(buf)
	r.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read csv: %v", err)
		}
		rows = append(rows, rec)
	}
	return rows
}

func findRow(rows [][]string, first string) []string {
	for _, r := range rows {
		if len(r) > 0 && r[0] == first {
			return r
		}
	}
	return nil
}

func TestWriteMeasurementsUncalibrated(t *testing.T) {
	ms := []Measurement{
		NewMeasurement(0, 0, 3, 4, 0),
		NewMeasurement(0, 0, 6, 8, 0),
	}

	var buf bytes.Buffer
	if err := WriteMeasurements(&buf, ms, nil, ExportOptions{}); err != nil {
		t.Fatal(err)
	}
	rows := readRows(t, &buf)

	if got := rows[0][1]; got != "Diameter (px)" {
		t.Errorf("header unit column = %q, want %q", got, "Diameter (px)")
	}
	if len(rows[0]) != 7 {
		t.Errorf("header has %d columns, want 7 without groups", len(rows[0]))
	}
	if rows[1][1] != "5.0000" || rows[2][1] != "10.0000" {
		t.Errorf("diameters = %q, %q", rows[1][1], rows[2][1])
	}

	if r := findRow(rows, "Mean"); r == nil || r[1] != "7.5000" {
		t.Errorf("mean row = %v", r)
	}
	if r := findRow(rows, "Count"); r == nil || r[1] != "2" {
		t.Errorf("count row = %v", r)
	}
	if findRow(rows, "Scale") != nil {
		t.Error("uncalibrated export should not carry a scale row")
	}
}

func TestWriteMeasurementsCalibratedWithGroups(t *testing.T) {
	// 1.5 nm/px; displayed in μm.
	opts := ExportOptions{Scale: 1.5, CalibUnit: Nanometer, DisplayUnit: Micrometer}
	ms := []Measurement{
		NewMeasurement(0, 0, 0, 1000, opts.Scale), // 1500 nm = 1.5 µm, mid (0,500)
		NewMeasurement(200, 200, 200, 1200, opts.Scale),
	}
	groups := []Group{NewGroup("left", 0, 0, 50, 1000)}

	var buf bytes.Buffer
	if err := WriteMeasurements(&buf, ms, groups, opts); err != nil {
		t.Fatal(err)
	}
	rows := readRows(t, &buf)

	if got := rows[0][1]; got != "Diameter ("+string(Micrometer)+")" {
		t.Errorf("header unit column = %q", got)
	}
	if got := rows[0][7]; got != "Group" {
		t.Errorf("last header column = %q, want Group", got)
	}
	if rows[1][1] != "1.5000" {
		t.Errorf("converted diameter = %q, want 1.5000", rows[1][1])
	}
	if rows[1][7] != "left" || rows[2][7] != "" {
		t.Errorf("group labels = %q, %q", rows[1][7], rows[2][7])
	}

	if r := findRow(rows, "Scale"); r == nil || r[1] != "1.500000" {
		t.Errorf("scale row = %v", r)
	}
	if findRow(rows, "Group left") == nil {
		t.Error("missing per-group statistics block")
	}
}

func TestWriteMeasurementsGaussianBlock(t *testing.T) {
	ms := []Measurement{
		NewMeasurement(0, 0, 8, 0, 0),
		NewMeasurement(0, 0, 10, 0, 0),
		NewMeasurement(0, 0, 12, 0, 0),
	}

	var buf bytes.Buffer
	if err := WriteMeasurements(&buf, ms, nil, ExportOptions{}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "Gaussian fit") {
		t.Error("missing Gaussian block for spread values")
	}
	// Identical values fit no curve.
	same := []Measurement{
		NewMeasurement(0, 0, 10, 0, 0),
		NewMeasurement(0, 0, 10, 0, 0),
	}
	buf.Reset()
	if err := WriteMeasurements(&buf, same, nil, ExportOptions{}); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "Gaussian fit") {
		t.Error("unexpected Gaussian block for zero deviation")
	}
}

func TestWriteParticleAreas(t *testing.T) {
	particles := []segment.Particle{
		{Rank: 1, Area: 400, Centroid: geometry.Point2D{X: 10, Y: 10}},
		{Rank: 2, Area: 100, Centroid: geometry.Point2D{X: 50, Y: 50}},
	}

	var buf bytes.Buffer
	opts := ExportOptions{Scale: 2, CalibUnit: Nanometer}
	if err := WriteParticleAreas(&buf, particles, 100, 100, opts); err != nil {
		t.Fatal(err)
	}
	rows := readRows(t, &buf)

	if got := rows[0][1]; got != "Area (nm²)" {
		t.Errorf("header unit column = %q", got)
	}
	// 400 px² × 2² = 1600 nm².
	if rows[1][1] != "1600.0000" || rows[1][2] != "400" {
		t.Errorf("rank-1 row = %v", rows[1])
	}
	// 500 of 10000 pixels covered.
	if r := findRow(rows, "Coverage"); r == nil || r[1] != "5.00%" {
		t.Errorf("coverage row = %v", r)
	}
}

func TestWriteParticleAreasEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParticleAreas(&buf, nil, 100, 100, ExportOptions{}); err != nil {
		t.Fatal(err)
	}
	rows := readRows(t, &buf)
	if len(rows) != 1 {
		t.Errorf("empty export has %d rows, want header only", len(rows))
	}
	if findRow(rows, "Coverage") != nil {
		t.Error("empty export should not report coverage")
	}
}
