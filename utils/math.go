package utils

import "math"

const (
	metersPerInch = 0.0254
	inchesPerFoot = 12
)

// DegToRad converts degrees to radians.
func DegToRad(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(radians float64) float64 {
	return radians * 180 / math.Pi
}

// InchesToMeters converts a length in inches to metres.
func InchesToMeters(inches float64) float64 {
	return inches * metersPerInch
}

// FeetToMeters converts a length in feet to metres.
func FeetToMeters(feet float64) float64 {
	return InchesToMeters(feet * inchesPerFoot)
}

// MetersToInches converts a length in metres to inches.
func MetersToInches(meters float64) float64 {
	return meters / metersPerInch
}

// WrapAngle normalizes an angle in radians to (-π, π].
func WrapAngle(radians float64) float64 {
	wrapped := math.Mod(radians+math.Pi, 2*math.Pi)
	if wrapped <= 0 {
		wrapped += 2 * math.Pi
	}
	return wrapped - math.Pi
}

// IsFinite reports whether none of the values are NaN or infinite.
func IsFinite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Float64AlmostEqual compares two float64s and returns if the difference between them is less
// than epsilon.
func Float64AlmostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}
