package venues

import "math"

// earthRadiusNM is the mean Earth radius in nautical miles
const earthRadiusNM = 3440.065

// DistanceNM returns the great-circle distance between two points in nautical miles
func DistanceNM(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusNM * math.Asin(math.Min(1, math.Sqrt(h)))
}

// ValidPoint reports whether p is a real coordinate
func ValidPoint(p Point) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180 &&
		!math.IsNaN(p.Lat) && !math.IsNaN(p.Lon)
}

// boxAround returns a box containing every point within radiusNM of p.
// Across the antimeridian the box wraps and MinLon > MaxLon. Near the poles,
// or when the radius spans every meridian, it widens to the full longitude range.
func boxAround(p Point, radiusNM float64) *BoundingBox {
	dLat := radiusNM / 60
	box := &BoundingBox{
		MinLat: math.Max(-90, p.Lat-dLat),
		MaxLat: math.Min(90, p.Lat+dLat),
		MinLon: -180,
		MaxLon: 180,
	}

	cosLat := math.Cos(p.Lat * math.Pi / 180)
	if cosLat < 0.01 {
		return box
	}
	dLon := dLat / cosLat
	if dLon >= 180 {
		return box
	}
	box.MinLon = wrapLon(p.Lon - dLon)
	box.MaxLon = wrapLon(p.Lon + dLon)
	return box
}

// wrapLon folds a longitude into [-180, 180]
func wrapLon(lon float64) float64 {
	switch {
	case lon < -180:
		return lon + 360
	case lon > 180:
		return lon - 360
	}
	return lon
}
