package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius used by DistanceKm. No ellipsoidal correction is applied.
const EarthRadiusKm = 6371.0

// Unavailable is shown in place of a distance that cannot be computed
const Unavailable = "Indisponível"

// DistanceKm returns the great-circle distance between two points using the haversine formula
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * c
}

// Distance is DistanceKm over Coordinates
func Distance(from, to Coordinates) float64 {
	return DistanceKm(from.Latitude, from.Longitude, to.Latitude, to.Longitude)
}

// FormatDistance renders km with one decimal, or Unavailable when ok is false
func FormatDistance(km float64, ok bool) string {
	if !ok {
		return Unavailable
	}
	return fmt.Sprintf("%.1f km", km)
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
