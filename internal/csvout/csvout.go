// Package csvout writes the optional flight-point CSV output of
// spec.md §6.2. It is the one blocking I/O operation the core performs
// (spec.md §5).
package csvout

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/avmission/missionperf/internal/flightpoint"
)

// Write renders points to path as CSV: one header row of field names
// (in declaration order among fields whose is_output flag is set),
// then one row per point. Floats use %.6g; unset values are empty
// cells.
func Write(path string, points []flightpoint.FlightPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvout: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	fields := flightpoint.OutputFields()
	header := make([]string, len(fields))
	for i, fl := range fields {
		header[i] = fl.Name
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csvout: write header: %w", err)
	}

	for _, p := range points {
		row := p.ToRow()
		cells := make([]string, len(row))
		for i, cell := range row {
			cells[i] = reformat(cell)
		}
		if err := w.Write(cells); err != nil {
			return fmt.Errorf("csvout: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("csvout: flush: %w", err)
	}
	return nil
}

// reformat re-renders a full-precision cell from FlightPoint.ToRow at
// %.6g, leaving non-numeric cells (name, booleans, empty) untouched.
func reformat(cell string) string {
	if cell == "" {
		return cell
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		return strconv.FormatFloat(v, 'g', 6, 64)
	}
	return cell
}
