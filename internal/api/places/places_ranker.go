package places

import (
	"math"
	"sort"
	"strconv"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

// EarthRadiusKm is the sphere radius used for distances.
const EarthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(a types.Origin, lat, lng float64) float64 {
	dLat := toRadians(lat - a.Lat)
	dLng := toRadians(lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// FormatDistance renders distances that round to under 1000 m in whole
// meters and the rest in km with one decimal: 0.32 -> "320m", 3.2 -> "3.2km".
func FormatDistance(km float64) string {
	if meters := math.Round(km * 1000); meters < 1000 {
		return strconv.Itoa(int(meters)) + "m"
	}
	return strconv.FormatFloat(km, 'f', 1, 64) + "km"
}

// Rank merges per-category results, keeps the first record seen for each
// provider ID, annotates distances from origin and sorts by rating
// descending, then distance ascending. Equal records keep their merge order.
func Rank(origin types.Origin, results []types.CategoryResult) []types.EnrichedRecord {
	seen := make(map[string]struct{})
	out := make([]types.EnrichedRecord, 0)
	for _, r := range results {
		for _, rec := range r.Records {
			if _, ok := seen[rec.ID]; ok {
				continue
			}
			seen[rec.ID] = struct{}{}
			km := HaversineKm(origin, rec.Latitude, rec.Longitude)
			out = append(out, types.EnrichedRecord{
				ProviderRecord: rec,
				DistanceKm:     km,
				Distance:       FormatDistance(km),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].RatingOrZero(), out[j].RatingOrZero()
		if ri != rj {
			return ri > rj
		}
		return out[i].DistanceKm < out[j].DistanceKm
	})
	return out
}
