package types

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	MinRadiusMeters     = 1000
	MaxRadiusMeters     = 50000
	DefaultRadiusMeters = 5000
)

var (
	// ErrInvalidOrigin is returned for a missing or out-of-range origin.
	ErrInvalidOrigin = errors.New("invalid origin")
	ErrInvalidQuery  = errors.New("invalid query")
)

var validate = validator.New()

// CategoryCode is a place provider category identifier, e.g. "sushi_restaurant".
type CategoryCode string

// Origin is the point a search is centred on.
type Origin struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// SearchRequest is the input of the nearby search.
type SearchRequest struct {
	Lat          *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng          *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Query        string   `json:"query,omitempty" validate:"max=500"`
	RadiusMeters *int     `json:"radius,omitempty"`
}

// Validate checks the origin and query. Radius is never rejected, only clamped.
// Origin problems take precedence over query problems.
func (r SearchRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if fe.StructField() != "Query" {
				return fmt.Errorf("%w: %s", ErrInvalidOrigin, err.Error())
			}
		}
		return fmt.Errorf("%w: %s", ErrInvalidQuery, err.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidOrigin, err.Error())
}

// Origin assumes Validate has passed.
func (r SearchRequest) Origin() Origin {
	return Origin{Lat: *r.Lat, Lng: *r.Lng}
}

func (r SearchRequest) EffectiveRadius() int {
	return ClampRadius(r.RadiusMeters)
}

// ClampRadius returns the default when radius is absent and otherwise
// bounds it to [MinRadiusMeters, MaxRadiusMeters].
func ClampRadius(radius *int) int {
	if radius == nil {
		return DefaultRadiusMeters
	}
	switch r := *radius; {
	case r < MinRadiusMeters:
		return MinRadiusMeters
	case r > MaxRadiusMeters:
		return MaxRadiusMeters
	default:
		return r
	}
}

// ProviderRecord is one place as returned by the place provider for one category.
type ProviderRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Address     string   `json:"address,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount int      `json:"review_count"`
	OpenNow     *bool    `json:"open_now,omitempty"`
	PhotoRefs   []string `json:"photo_refs,omitempty"`
	Types       []string `json:"types,omitempty"`
}

// RatingOrZero treats an absent rating as 0.
func (p ProviderRecord) RatingOrZero() float64 {
	if p.Rating == nil {
		return 0
	}
	return *p.Rating
}

// EnrichedRecord is a ProviderRecord with its distance from the search origin.
type EnrichedRecord struct {
	ProviderRecord
	DistanceKm float64 `json:"distance_km"`
	Distance   string  `json:"distance"`
}

// CategoryResult is the settled outcome of one per-category provider call.
type CategoryResult struct {
	Category CategoryCode
	Records  []ProviderRecord
	Cached   bool
	Err      error
}

// NearbyResponse is returned by the nearby search endpoint.
type NearbyResponse struct {
	Places         []EnrichedRecord `json:"places"`
	Count          int              `json:"count"`
	RadiusMeters   int              `json:"radius"`
	Categories     []CategoryCode   `json:"categories"`
	Interests      []string         `json:"interests"`
	InterestSource InterestSource   `json:"interest_source"`
}

// FeedResponse is returned by the personalised feed endpoint.
type FeedResponse struct {
	Tags            []InterestTag                    `json:"tags"`
	Recommendations map[InterestTag][]EnrichedRecord `json:"recommendations"`
	RadiusMeters    int                              `json:"radius"`
}
