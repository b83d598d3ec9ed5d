// Command exportcsv converts a measurement list to a calibrated CSV
// report with grouping, statistics and a Gaussian fit.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"nanomeasurer/internal/measure"
)

func main() {
	inPath := flag.String("in", "", "Measurement list: one x1,y1,x2,y2 line per measurement")
	outPath := flag.String("out", "", "Output CSV path (default stdout)")
	groupsArg := flag.String("groups", "", "Grouping rectangles as name:x1,y1,x2,y2;...")
	scale := flag.Float64("scale", 0, "Calibrated length per pixel (0 = pixel output)")
	calibUnit := flag.String("unit", "nm", "Calibration unit (Å, nm, μm, mm, cm)")
	displayUnit := flag.String("display", "", "Display unit (default: calibration unit)")
	flag.Parse()

	if *inPath == "" {
		fmt.Println("Usage: exportcsv -in <measurements.txt> [-out report.csv] [-groups name:x1,y1,x2,y2;...] [-scale N] [-unit nm] [-display μm]")
		os.Exit(1)
	}

	ms, err := readMeasurements(*inPath, *scale)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read measurements: %v\n", err)
		os.Exit(1)
	}

	groups, err := parseGroups(*groupsArg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Bad -groups: %v\n", err)
		os.Exit(1)
	}

	opts := measure.ExportOptions{
		Scale:       *scale,
		CalibUnit:   measure.Unit(*calibUnit),
		DisplayUnit: measure.Unit(*displayUnit),
	}

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	if err := measure.WriteMeasurements(out, ms, groups, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Export failed: %v\n", err)
		os.Exit(1)
	}

	if *outPath != "" {
		fmt.Printf("Wrote %d measurements to %s\n", len(ms), *outPath)
	}
}

// readMeasurements parses one "x1,y1,x2,y2" line per measurement. Blank
// lines and lines starting with # are skipped.
func readMeasurements(path string, scale float64) ([]measure.Measurement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ms []measure.Measurement
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		vals, err := parseFloats(line, 4)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		ms = append(ms, measure.NewMeasurement(vals[0], vals[1], vals[2], vals[3], scale))
	}
	if len(ms) == 0 {
		return nil, fmt.Errorf("no measurements in %s", path)
	}
	return ms, nil
}

// parseGroups parses "name:x1,y1,x2,y2;..." into grouping rectangles.
func parseGroups(s string) ([]measure.Group, error) {
	if s == "" {
		return nil, nil
	}
	var groups []measure.Group
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, rect, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("expected name:x1,y1,x2,y2 got %q", part)
		}
		vals, err := parseFloats(rect, 4)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		groups = append(groups, measure.NewGroup(name, vals[0], vals[1], vals[2], vals[3]))
	}
	return groups, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated values, got %d", n, len(parts))
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q: %w", p, err)
		}
		vals[i] = v
	}
	return vals, nil
}
