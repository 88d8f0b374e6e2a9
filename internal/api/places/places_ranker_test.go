package places

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestFormatDistance(t *testing.T) {
	tests := []struct {
		km   float64
		want string
	}{
		{0.32, "320m"},
		{0, "0m"},
		{0.0004, "0m"},
		{0.5, "500m"},
		{0.9994, "999m"},
		{0.9996, "1.0km"},
		{1, "1.0km"},
		{3.2, "3.2km"},
		{3.24, "3.2km"},
		{12.345, "12.3km"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDistance(tt.km))
		})
	}
}

func TestHaversineKm(t *testing.T) {
	origin := types.Origin{Lat: 12.97, Lng: 77.59}
	assert.Equal(t, 0.0, HaversineKm(origin, 12.97, 77.59))

	// One degree of latitude on a 6371 km sphere.
	assert.InDelta(t, 2*math.Pi*EarthRadiusKm/360, HaversineKm(types.Origin{}, 1, 0), 1e-9)

	// Paris to London.
	d := HaversineKm(types.Origin{Lat: 48.8566, Lng: 2.3522}, 51.5074, -0.1278)
	assert.InDelta(t, 343.5, d, 1.0)
}

func TestRank(t *testing.T) {
	origin := types.Origin{Lat: 12.97, Lng: 77.59}

	t.Run("Dedupes by provider ID keeping the first", func(t *testing.T) {
		results := []types.CategoryResult{
			{Category: "restaurant", Records: []types.ProviderRecord{{ID: "XYZ", Name: "first", Latitude: 12.97, Longitude: 77.59}}},
			{Category: "sushi_restaurant", Records: []types.ProviderRecord{{ID: "XYZ", Name: "second", Latitude: 12.98, Longitude: 77.60}}},
		}
		got := Rank(origin, results)
		require.Len(t, got, 1)
		assert.Equal(t, "XYZ", got[0].ID)
		assert.Equal(t, "first", got[0].Name)
	})

	t.Run("Rating desc then distance asc", func(t *testing.T) {
		results := []types.CategoryResult{
			{Records: []types.ProviderRecord{
				{ID: "far-4.5", Rating: ptr(4.5), Latitude: 13.07, Longitude: 77.59},
				{ID: "unrated", Latitude: 12.97, Longitude: 77.59},
				{ID: "near-4.5", Rating: ptr(4.5), Latitude: 12.971, Longitude: 77.59},
			}},
			{Records: []types.ProviderRecord{
				{ID: "top", Rating: ptr(4.9), Latitude: 13.5, Longitude: 77.59},
				{ID: "zero", Rating: ptr(0.0), Latitude: 12.975, Longitude: 77.59},
			}},
		}
		got := Rank(origin, results)
		ids := make([]string, len(got))
		for i, r := range got {
			ids[i] = r.ID
		}
		assert.Equal(t, []string{"top", "near-4.5", "far-4.5", "unrated", "zero"}, ids)
	})

	t.Run("Equal keys keep merge order", func(t *testing.T) {
		results := []types.CategoryResult{{Records: []types.ProviderRecord{
			{ID: "a", Rating: ptr(4.0), Latitude: 12.98, Longitude: 77.59},
			{ID: "b", Rating: ptr(4.0), Latitude: 12.98, Longitude: 77.59},
		}}}
		got := Rank(origin, results)
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
	})

	t.Run("Annotates distance", func(t *testing.T) {
		results := []types.CategoryResult{{Records: []types.ProviderRecord{
			{ID: "a", Latitude: 12.97, Longitude: 77.59},
		}}}
		got := Rank(origin, results)
		assert.Equal(t, "0m", got[0].Distance)
		assert.Equal(t, 0.0, got[0].DistanceKm)
	})

	t.Run("Empty input", func(t *testing.T) {
		got := Rank(origin, nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("No duplicate IDs in output", func(t *testing.T) {
		var results []types.CategoryResult
		for c := 0; c < 4; c++ {
			var recs []types.ProviderRecord
			for i := 0; i < 10; i++ {
				recs = append(recs, types.ProviderRecord{ID: string(rune('a' + (i+c)%12)), Rating: ptr(float64(i % 3))})
			}
			results = append(results, types.CategoryResult{Records: recs})
		}
		seen := map[string]bool{}
		for _, r := range Rank(origin, results) {
			assert.False(t, seen[r.ID], r.ID)
			seen[r.ID] = true
		}
		assert.Len(t, seen, 12)
	})
}
