// Package geoid derives stable integer identifiers for geographic places.
package geoid

import "math"

// Tolerance is the coordinate window, in degrees, within which two pairs
// are treated as the same physical place (~1 km at the equator for the
// lookup window; id rounding itself works at ~11 m).
const Tolerance = 0.01

// ResolveID derives a deterministic id from coordinates. Both coordinates
// are rounded to 4 decimal places (~11 m), packed into one 64-bit word and
// run through a finalizer mix, so coordinate drift below the rounding
// threshold always lands on the same id while distinct places spread over
// the full 63-bit space.
func ResolveID(lat, lon float64) int64 {
	latE4 := int32(math.Round(lat * 1e4))
	lonE4 := int32(math.Round(lon * 1e4))
	packed := uint64(uint32(latE4))<<32 | uint64(uint32(lonE4))
	// clear the sign bit, ids stay positive
	return int64(mix64(packed) &^ (1 << 63))
}

// SamePlace reports whether two coordinate pairs fall within the tolerance
// window of each other.
func SamePlace(aLat, aLon, bLat, bLon float64) bool {
	return math.Abs(aLat-bLat) < Tolerance && math.Abs(aLon-bLon) < Tolerance
}

// mix64 is the SplitMix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
