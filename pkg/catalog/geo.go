package catalog

import (
	"math"
	"strconv"

	"github.com/geteduroam/discogen/pkg/models"
)

// EarthRadius is the mean radius of the earth in kilometers.
const EarthRadius = 6371.0

// Round rounds v to digits decimals, halves away from zero.
func Round(v float64, digits int) float64 {
	p := math.Pow(10, float64(digits))
	scaled := v * p
	// Drop representation error first, so 1.0005 is a half and rounds up.
	if r, err := strconv.ParseFloat(strconv.FormatFloat(scaled, 'g', 15, 64), 64); err == nil {
		scaled = r
	}
	return math.Round(scaled) / p
}

// Distance returns the great-circle distance in kilometers between a and b.
func Distance(a, b models.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	cos := math.Sin(lat1)*math.Sin(lat2) + math.Cos(lat1)*math.Cos(lat2)*math.Cos(dLon)
	// Rounding can push identical points just past 1.
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * EarthRadius
}
