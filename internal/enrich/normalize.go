package enrich

import "math"

// NormalizeLng maps a longitude into [-180, 180).
// Continuous panning of the map yields values outside that range; the result
// is congruent to lng modulo 360. math.Mod truncates, so the extra +360 keeps
// negative inputs on the floored branch.
func NormalizeLng(lng float64) float64 {
	return math.Mod(math.Mod(lng+180, 360)+360, 360) - 180
}
