package flightpoint

import "strconv"

// Row is the tabular form of a FlightPoint: ordered cells matching
// OutputFields(). Unset numeric cells are empty strings (spec.md §6.2).
type Row []string

// ToRow renders fp according to OutputFields(), in column order.
func (fp FlightPoint) ToRow() Row {
	fields := OutputFields()
	row := make(Row, len(fields))
	for i, f := range fields {
		row[i] = formatField(fp, f.Name)
	}
	return row
}

// FromRow parses a Row produced by ToRow back into a FlightPoint.
// FlightPoint.FromRow(ToRow(fp)) == fp field-wise for every base and
// extension field present in the row (spec.md testable property 7).
func FromRow(row Row) FlightPoint {
	fp := New()
	fields := OutputFields()
	for i, f := range fields {
		if i >= len(row) {
			break
		}
		setField(&fp, f.Name, row[i])
	}
	return fp
}

func formatField(fp FlightPoint, name string) string {
	switch name {
	case "time":
		return formatFloat(fp.Time)
	case "altitude":
		return formatFloat(fp.Altitude)
	case "ground_distance":
		return formatFloat(fp.GroundDistance)
	case "mass":
		return formatFloat(fp.Mass)
	case "true_airspeed":
		return formatFloat(fp.TrueAirspeed)
	case "equivalent_airspeed":
		return formatFloat(fp.EquivalentAirspeed)
	case "mach":
		return formatFloat(fp.Mach)
	case "alpha":
		return formatFloat(fp.Alpha)
	case "slope_angle":
		return formatFloat(fp.SlopeAngle)
	case "acceleration":
		return formatFloat(fp.Acceleration)
	case "thrust":
		return formatFloat(fp.Thrust)
	case "thrust_rate":
		return formatFloat(fp.ThrustRate)
	case "thrust_is_regulated":
		return strconv.FormatBool(fp.ThrustIsRegulated)
	case "sfc":
		return formatFloat(fp.SFC)
	case "drag":
		return formatFloat(fp.Drag)
	case "lift":
		return formatFloat(fp.Lift)
	case "CL":
		return formatFloat(fp.CL)
	case "CD":
		return formatFloat(fp.CD)
	case "consumed_fuel":
		return formatFloat(fp.ConsumedFuel)
	case "name":
		return fp.Name
	case "isa_offset":
		return formatFloat(fp.ISAOffset)
	default:
		if _, ok := extraFields[name]; ok {
			return formatFloat(fp.Extra(name))
		}
		return ""
	}
}

func setField(fp *FlightPoint, name, cell string) {
	switch name {
	case "time":
		fp.Time = parseFloat(cell)
	case "altitude":
		fp.Altitude = parseFloat(cell)
	case "ground_distance":
		fp.GroundDistance = parseFloat(cell)
	case "mass":
		fp.Mass = parseFloat(cell)
	case "true_airspeed":
		fp.TrueAirspeed = parseFloat(cell)
	case "equivalent_airspeed":
		fp.EquivalentAirspeed = parseFloat(cell)
	case "mach":
		fp.Mach = parseFloat(cell)
	case "alpha":
		fp.Alpha = parseFloat(cell)
	case "slope_angle":
		fp.SlopeAngle = parseFloat(cell)
	case "acceleration":
		fp.Acceleration = parseFloat(cell)
	case "thrust":
		fp.Thrust = parseFloat(cell)
	case "thrust_rate":
		fp.ThrustRate = parseFloat(cell)
	case "thrust_is_regulated":
		fp.ThrustIsRegulated, _ = strconv.ParseBool(cell)
	case "sfc":
		fp.SFC = parseFloat(cell)
	case "drag":
		fp.Drag = parseFloat(cell)
	case "lift":
		fp.Lift = parseFloat(cell)
	case "CL":
		fp.CL = parseFloat(cell)
	case "CD":
		fp.CD = parseFloat(cell)
	case "consumed_fuel":
		fp.ConsumedFuel = parseFloat(cell)
	case "name":
		fp.Name = cell
	case "isa_offset":
		fp.ISAOffset = parseFloat(cell)
	default:
		if _, ok := extraFields[name]; ok {
			fp.SetExtra(name, parseFloat(cell))
		}
	}
}

func formatFloat(v float64) string {
	if !IsSet(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseFloat(cell string) float64 {
	if cell == "" {
		return Unset
	}
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return Unset
	}
	return v
}
