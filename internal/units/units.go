// Package units provides shared constants and validation for length units
package units

// Unit constants
const (
	M  = "m"
	CM = "cm"
	MM = "mm"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{M, CM, MM}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, cm, mm"
}

// ConvertLength converts a length from meters to the target units.
// Point coordinates are always stored in meters.
func ConvertLength(meters float64, targetUnits string) float64 {
	switch targetUnits {
	case CM:
		return meters * 100
	case MM:
		return meters * 1000
	case M:
		return meters
	default:
		return meters // default to meters if unknown unit
	}
}

// ConvertLengths returns a converted copy of meters.
func ConvertLengths(meters []float64, targetUnits string) []float64 {
	out := make([]float64, len(meters))
	for i, v := range meters {
		out[i] = ConvertLength(v, targetUnits)
	}
	return out
}
