// Package units provides shared constants and validation for area units
package units

// Unit constants
const (
	KM2 = "km2"
	M2  = "m2"
	HA  = "ha"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{KM2, M2, HA}

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
	return "km2, m2, ha"
}

// ConvertArea converts a built-up area from square kilometres to the target units
// Database stores areas in km² (square kilometres)
func ConvertArea(areaKM2 float64, targetUnits string) float64 {
	switch targetUnits {
	case M2:
		return areaKM2 * 1e6 // km² to m²
	case HA:
		return areaKM2 * 100 // km² to hectares
	case KM2:
		return areaKM2 // no conversion needed
	default:
		return areaKM2 // default to km² if unknown unit
	}
}
