package types

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestClampRadius(t *testing.T) {
	tests := []struct {
		name   string
		radius *int
		want   int
	}{
		{"absent uses default", nil, 5000},
		{"below minimum", intPtr(10), 1000},
		{"negative", intPtr(-5), 1000},
		{"zero", intPtr(0), 1000},
		{"lower bound", intPtr(1000), 1000},
		{"inside range", intPtr(2500), 2500},
		{"upper bound", intPtr(50000), 50000},
		{"above maximum", intPtr(120000), 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClampRadius(tt.radius))
		})
	}
}

func TestSearchRequestValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		req := SearchRequest{Lat: floatPtr(12.97), Lng: floatPtr(77.59), Query: "find me a good sushi place"}
		require.NoError(t, req.Validate())
		assert.Equal(t, Origin{Lat: 12.97, Lng: 77.59}, req.Origin())
		assert.Equal(t, 5000, req.EffectiveRadius())
	})

	t.Run("Equator and meridian are valid", func(t *testing.T) {
		req := SearchRequest{Lat: floatPtr(0), Lng: floatPtr(0)}
		assert.NoError(t, req.Validate())
	})

	t.Run("Invalid origins", func(t *testing.T) {
		cases := []SearchRequest{
			{},
			{Lat: floatPtr(10)},
			{Lng: floatPtr(10)},
			{Lat: floatPtr(91), Lng: floatPtr(0)},
			{Lat: floatPtr(-91), Lng: floatPtr(0)},
			{Lat: floatPtr(0), Lng: floatPtr(181)},
			{Lat: floatPtr(math.NaN()), Lng: floatPtr(0)},
		}
		for _, req := range cases {
			err := req.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidOrigin)
		}
	})

	t.Run("Overlong query is a query error", func(t *testing.T) {
		req := SearchRequest{Lat: floatPtr(12.97), Lng: floatPtr(77.59), Query: strings.Repeat("a", 501)}
		err := req.Validate()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidQuery)
		assert.NotErrorIs(t, err, ErrInvalidOrigin)
	})

	t.Run("Query of 500 characters is valid", func(t *testing.T) {
		req := SearchRequest{Lat: floatPtr(12.97), Lng: floatPtr(77.59), Query: strings.Repeat("a", 500)}
		assert.NoError(t, req.Validate())
	})

	t.Run("Bad origin wins over bad query", func(t *testing.T) {
		req := SearchRequest{Lat: floatPtr(95), Lng: floatPtr(77.59), Query: strings.Repeat("a", 501)}
		assert.ErrorIs(t, req.Validate(), ErrInvalidOrigin)
	})
}

func TestRatingOrZero(t *testing.T) {
	assert.Equal(t, 0.0, ProviderRecord{}.RatingOrZero())
	assert.Equal(t, 4.5, ProviderRecord{Rating: floatPtr(4.5)}.RatingOrZero())
}

func TestInterestSet(t *testing.T) {
	set := NewInterestSet("sushi", "", "cafe", "sushi")
	assert.Equal(t, InterestSet{"sushi", "cafe"}, set)
	assert.Equal(t, "sushi cafe", set.Hint())
	assert.Equal(t, []string{"sushi", "cafe"}, set.Strings())
	assert.False(t, set.IsDefault())

	empty := NewInterestSet().OrDefault()
	assert.Equal(t, InterestSet{DefaultInterest}, empty)
	assert.True(t, empty.IsDefault())
	assert.Equal(t, "", empty.Hint())

	assert.Equal(t, InterestTag("museum"), NormalizeTag("  Museum "))
}

func TestAffinityEntries(t *testing.T) {
	rec := AffinityRecord{"cafe": 2, "sushi": 5, "bar": 2}
	assert.Equal(t, []AffinityEntry{
		{Tag: "sushi", Count: 5},
		{Tag: "bar", Count: 2},
		{Tag: "cafe", Count: 2},
	}, rec.Entries())
}
