package measure

import (
	"fmt"
)

// Unit is a supported length unit.
type Unit string

// Supported length units, smallest to largest.
const (
	Angstrom   Unit = "Å"
	Nanometer  Unit = "nm"
	Micrometer Unit = "μm"
	Millimeter Unit = "mm"
	Centimeter Unit = "cm"
)

// SupportedUnits lists the display units in menu order.
var SupportedUnits = []Unit{Angstrom, Nanometer, Micrometer, Millimeter, Centimeter}

// unitToNM maps each unit to its length in nanometers, the conversion
// pivot.
var unitToNM = map[Unit]float64{
	Angstrom:   0.1,
	Nanometer:  1.0,
	Micrometer: 1_000.0,
	Millimeter: 1_000_000.0,
	Centimeter: 10_000_000.0,
}

// ConvertLength converts a length between two units via the nanometer
// pivot. Unknown units are an error.
func ConvertLength(value float64, from, to Unit) (float64, error) {
	if from == to {
		return value, nil
	}
	fromNM, ok := unitToNM[from]
	if !ok {
		return 0, fmt.Errorf("convert length: unknown unit %q", from)
	}
	toNM, ok := unitToNM[to]
	if !ok {
		return 0, fmt.Errorf("convert length: unknown unit %q", to)
	}
	return value * fromNM / toNM, nil
}
