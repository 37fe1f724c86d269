package geo

import "math"

const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate in decimal degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether p lies within the WGS84 latitude and longitude ranges.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// DistanceKm returns the great-circle distance between a and b.
func DistanceKm(a, b Point) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// WithinRadius reports whether p is at most radiusKm from center.
func WithinRadius(center, p Point, radiusKm float64) bool {
	return DistanceKm(center, p) <= radiusKm
}

// Box is an axis-aligned latitude/longitude range.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a box that contains every point within radiusKm of
// center. It over-approximates, callers still filter with DistanceKm.
func BoundingBox(center Point, radiusKm float64) Box {
	latDelta := toDegrees(radiusKm / EarthRadiusKm)
	box := Box{
		MinLat: math.Max(center.Lat-latDelta, -90),
		MaxLat: math.Min(center.Lat+latDelta, 90),
		MinLng: -180,
		MaxLng: 180,
	}

	cosLat := math.Cos(toRadians(center.Lat))
	if cosLat < 1e-9 || box.MinLat == -90 || box.MaxLat == 90 {
		return box
	}
	lngDelta := toDegrees(radiusKm / (EarthRadiusKm * cosLat))
	if lngDelta >= 180 {
		return box
	}
	box.MinLng = center.Lng - lngDelta
	box.MaxLng = center.Lng + lngDelta
	return box
}

// LngRanges splits the longitude span where it crosses the antimeridian.
func (b Box) LngRanges() [][2]float64 {
	switch {
	case b.MinLng < -180:
		return [][2]float64{{b.MinLng + 360, 180}, {-180, b.MaxLng}}
	case b.MaxLng > 180:
		return [][2]float64{{b.MinLng, 180}, {-180, b.MaxLng - 360}}
	default:
		return [][2]float64{{b.MinLng, b.MaxLng}}
	}
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }
