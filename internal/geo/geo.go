// Package geo provides great-circle distance math for the proximity query.
// Computations are pure; the store only sees the bounding box produced here.
package geo

import "math"

// EarthRadiusMeters is the mean earth radius used by the haversine formula.
const EarthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two points
// given in degrees. Accuracy is within ~0.5% of the ellipsoidal distance,
// and it behaves correctly across the antimeridian and near the poles.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := radians(lat1)
	phi2 := radians(lat2)
	dPhi := radians(lat2 - lat1)
	dLambda := radians(lon2 - lon1)

	sinPhi := math.Sin(dPhi / 2)
	sinLambda := math.Sin(dLambda / 2)
	a := sinPhi*sinPhi + math.Cos(phi1)*math.Cos(phi2)*sinLambda*sinLambda
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusMeters * c
}

// BoundingBox is a latitude/longitude window guaranteed to contain every
// point within a given distance of its center. It over-approximates: callers
// must still filter candidates with Haversine.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64

	// WrapsAntimeridian marks a box crossing the 180° meridian; the
	// longitude window is then (lon >= MinLon OR lon <= MaxLon).
	WrapsAntimeridian bool
	// AllLongitudes marks a box touching a pole, where every longitude is
	// within range.
	AllLongitudes bool
}

// NewBoundingBox computes the search window around (lat, lon) for the given
// radius in meters.
func NewBoundingBox(lat, lon, radiusMeters float64) BoundingBox {
	angular := radiusMeters / EarthRadiusMeters
	dLat := degrees(angular)

	box := BoundingBox{
		MinLat: lat - dLat,
		MaxLat: lat + dLat,
	}

	// A box that reaches a pole covers every longitude.
	if box.MinLat <= -90 || box.MaxLat >= 90 {
		box.MinLat = math.Max(box.MinLat, -90)
		box.MaxLat = math.Min(box.MaxLat, 90)
		box.MinLon = -180
		box.MaxLon = 180
		box.AllLongitudes = true
		return box
	}

	// Longitude span widens with latitude; use the latitude extreme closest
	// to a pole so the window never undershoots.
	cosLat := math.Min(math.Cos(radians(box.MinLat)), math.Cos(radians(box.MaxLat)))
	if cosLat <= 0 {
		box.MinLon = -180
		box.MaxLon = 180
		box.AllLongitudes = true
		return box
	}
	dLon := degrees(angular / cosLat)
	if dLon >= 180 {
		box.MinLon = -180
		box.MaxLon = 180
		box.AllLongitudes = true
		return box
	}

	box.MinLon = normalizeLon(lon - dLon)
	box.MaxLon = normalizeLon(lon + dLon)
	box.WrapsAntimeridian = box.MinLon > box.MaxLon
	return box
}

// ValidLatitude reports whether v is a finite latitude in degrees.
func ValidLatitude(v float64) bool {
	return finite(v) && v >= -90 && v <= 90
}

// ValidLongitude reports whether v is a finite longitude in degrees.
func ValidLongitude(v float64) bool {
	return finite(v) && v >= -180 && v <= 180
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func normalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon < -180 {
		lon += 360
	}
	return lon
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
