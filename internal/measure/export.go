package measure

import (
	"encoding/csv"
	"fmt"
	"io"

	"nanomeasurer/internal/segment"
)

// ExportOptions configures CSV export.
type ExportOptions struct {
	// Scale is the calibrated length per pixel; 0 exports raw pixel
	// values.
	Scale float64
	// CalibUnit is the unit the scale was calibrated in.
	CalibUnit Unit
	// DisplayUnit is the unit values are converted to for output; empty
	// means the calibration unit.
	DisplayUnit Unit
}

func (o ExportOptions) displayUnit() Unit {
	if o.DisplayUnit == "" {
		return o.CalibUnit
	}
	return o.DisplayUnit
}

// calibrated reports whether measurements carry real-world lengths.
func (o ExportOptions) calibrated() bool {
	return o.Scale > 0
}

// displayValues converts the calibrated distances of all measurements to
// the display unit, or returns pixel distances when uncalibrated.
func (o ExportOptions) displayValues(ms []Measurement) ([]float64, error) {
	vals := make([]float64, len(ms))
	for i, m := range ms {
		if !o.calibrated() {
			vals[i] = m.PixelDist
			continue
		}
		v, err := ConvertLength(m.Dist, o.CalibUnit, o.displayUnit())
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// WriteMeasurements writes the measurement table with optional grouping,
// followed by overall statistics, a Gaussian-fit block with a sampled
// curve when the deviation is nonzero, and per-group statistics.
func WriteMeasurements(w io.Writer, ms []Measurement, groups []Group, opts ExportOptions) error {
	cw := csv.NewWriter(w)
	labels := AssignGroups(ms, groups)
	hasGroups := len(groups) > 0

	unit := string(opts.displayUnit())
	if !opts.calibrated() {
		unit = "px"
	}

	header := []string{"#", "Diameter (" + unit + ")", "Pixel distance", "X1", "Y1", "X2", "Y2"}
	if hasGroups {
		header = append(header, "Group")
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write measurements: %w", err)
	}

	vals, err := opts.displayValues(ms)
	if err != nil {
		return fmt.Errorf("write measurements: %w", err)
	}

	for i, m := range ms {
		row := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%.4f", vals[i]),
			fmt.Sprintf("%.4f", m.PixelDist),
			fmt.Sprintf("%.2f", m.X1),
			fmt.Sprintf("%.2f", m.Y1),
			fmt.Sprintf("%.2f", m.X2),
			fmt.Sprintf("%.2f", m.Y2),
		}
		if hasGroups {
			row = append(row, labels[i])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write measurements: %w", err)
		}
	}

	if len(vals) > 0 {
		if err := writeStatsBlock(cw, "Statistics", vals, opts); err != nil {
			return err
		}
		if err := writeGaussianBlock(cw, vals, unit); err != nil {
			return err
		}
	}

	if hasGroups {
		for _, g := range groups {
			var gvals []float64
			for i := range ms {
				if labels[i] == g.Name {
					gvals = append(gvals, vals[i])
				}
			}
			if len(gvals) == 0 {
				continue
			}
			if err := writeStatsBlock(cw, "Group "+g.Name, gvals, ExportOptions{}); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteParticleAreas writes the ranked particle-area table followed by
// area statistics and coverage. Areas are in px² when uncalibrated,
// otherwise scale²-converted to the calibration unit squared.
func WriteParticleAreas(w io.Writer, particles []segment.Particle, imgW, imgH int, opts ExportOptions) error {
	cw := csv.NewWriter(w)

	unit := "px²"
	areaScale := 1.0
	if opts.calibrated() {
		unit = string(opts.CalibUnit) + "²"
		areaScale = opts.Scale * opts.Scale
	}

	if err := cw.Write([]string{"#", "Area (" + unit + ")", "Area (px²)"}); err != nil {
		return fmt.Errorf("write areas: %w", err)
	}

	vals := make([]float64, len(particles))
	totalPx := 0
	for i, p := range particles {
		vals[i] = float64(p.Area) * areaScale
		totalPx += p.Area
		row := []string{
			fmt.Sprintf("%d", p.Rank),
			fmt.Sprintf("%.4f", vals[i]),
			fmt.Sprintf("%d", p.Area),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write areas: %w", err)
		}
	}

	if len(vals) > 0 {
		if err := writeStatsBlock(cw, "Statistics", vals, opts); err != nil {
			return err
		}

		coverage := 0.0
		if imgW*imgH > 0 {
			coverage = float64(totalPx) / float64(imgW*imgH) * 100
		}
		if err := cw.Write([]string{"Coverage", fmt.Sprintf("%.2f%%", coverage)}); err != nil {
			return fmt.Errorf("write areas: %w", err)
		}
		if err := writeGaussianBlock(cw, vals, unit); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func writeStatsBlock(cw *csv.Writer, title string, vals []float64, opts ExportOptions) error {
	s := Summarize(vals)
	rows := [][]string{
		{},
		{title, ""},
		{"Count", fmt.Sprintf("%d", s.Count)},
		{"Mean", fmt.Sprintf("%.4f", s.Mean)},
		{"Std dev", fmt.Sprintf("%.4f", s.Std)},
		{"Min", fmt.Sprintf("%.4f", s.Min)},
		{"Max", fmt.Sprintf("%.4f", s.Max)},
	}
	if opts.calibrated() {
		rows = append(rows, []string{"Scale", fmt.Sprintf("%.6f", opts.Scale)})
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write stats: %w", err)
		}
	}
	return nil
}

func writeGaussianBlock(cw *csv.Writer, vals []float64, unit string) error {
	s := Summarize(vals)
	xs, ys := GaussianCurve(s)
	if xs == nil {
		return nil
	}

	rows := [][]string{
		{},
		{"Gaussian fit", "f(x) = (1/(σ√(2π))) × exp(-(x-μ)²/(2σ²))"},
		{"μ", fmt.Sprintf("%.4f", s.Mean)},
		{"σ", fmt.Sprintf("%.4f", s.Std)},
		{},
		{"x (" + unit + ")", "density"},
	}
	for _, r := range rows {
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write gaussian: %w", err)
		}
	}
	for i := range xs {
		r := []string{fmt.Sprintf("%.4f", xs[i]), fmt.Sprintf("%.6f", ys[i])}
		if err := cw.Write(r); err != nil {
			return fmt.Errorf("write gaussian: %w", err)
		}
	}
	return nil
}
