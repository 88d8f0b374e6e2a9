package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/koushik8686/GeoGuide-sub000/config"
	"github.com/koushik8686/GeoGuide-sub000/internal/container"
	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

const e2eSecret = "e2e-secret"

// E2ETestSuite drives the full HTTP stack against fake provider and
// recommender services.
type E2ETestSuite struct {
	suite.Suite
	provider    *httptest.Server
	recommender *httptest.Server
	server      *httptest.Server
	container   *container.Container
	client      *http.Client
	logger      *slog.Logger

	providerDown    atomic.Bool
	recommenderDown atomic.Bool
	providerCalls   atomic.Int64
}

var placeFixtures = map[string]string{
	"sushi_restaurant": `[
		{"place_id":"sushi-1","name":"Sushi Corner","geometry":{"location":{"lat":12.9703,"lng":77.59}},"rating":4.2},
		{"place_id":"sushi-2","name":"Omakase House","geometry":{"location":{"lat":13.0,"lng":77.62}},"rating":4.7},
		{"place_id":"shared","name":"Food Court","geometry":{"location":{"lat":12.975,"lng":77.595}}}
	]`,
	"restaurant": `[
		{"place_id":"shared","name":"Food Court","geometry":{"location":{"lat":12.975,"lng":77.595}}},
		{"place_id":"rest-1","name":"Meals Ready","geometry":{"location":{"lat":12.98,"lng":77.6}},"rating":3.9}
	]`,
	"museum": `[
		{"place_id":"museum-1","name":"City Museum","geometry":{"location":{"lat":12.976,"lng":77.59}},"rating":4.5}
	]`,
	"dentist": `[
		{"place_id":"dent-1","name":"Smile Clinic","geometry":{"location":{"lat":12.9701,"lng":77.5901}},"rating":4.0}
	]`,
}

func (s *E2ETestSuite) SetupSuite() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))

	s.provider = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.providerCalls.Add(1)
		if s.providerDown.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		results, ok := placeFixtures[r.URL.Query().Get("type")]
		if !ok {
			_, _ = w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"status":"OK","results":%s}`, results)
	}))

	// Recommends the user's most frequent tags, then "museum".
	s.recommender = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.recommenderDown.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		var req struct {
			Affinity map[string]int64 `json:"affinity"`
			TopN     int              `json:"top_n"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		tags := make([]string, 0, len(req.Affinity)+1)
		for tag := range req.Affinity {
			tags = append(tags, tag)
		}
		sort.Slice(tags, func(i, j int) bool {
			if req.Affinity[tags[i]] != req.Affinity[tags[j]] {
				return req.Affinity[tags[i]] > req.Affinity[tags[j]]
			}
			return tags[i] < tags[j]
		})
		if len(tags) > 0 {
			tags = append(tags, "museum")
		}
		if len(tags) > req.TopN {
			tags = tags[:req.TopN]
		}
		_ = json.NewEncoder(w).Encode(map[string][]string{"tags": tags})
	}))

	cfg, err := config.LoadEmbedded()
	s.Require().NoError(err)
	cfg.Affinity.Store = "memory"
	cfg.Auth.JWTSecret = e2eSecret
	cfg.Providers.Classifier.Enabled = false
	cfg.Providers.Places.BaseURL = s.provider.URL
	cfg.Providers.Places.CacheTTL = 0
	cfg.Providers.Places.BreakerFailures = 1000
	cfg.Providers.Recommender.BaseURL = s.recommender.URL
	cfg.RateLimit.Requests = 0

	s.container, err = container.NewContainer(s.T().Context(), &cfg, s.logger)
	s.Require().NoError(err)

	s.server = httptest.NewServer(newHTTPHandler(&cfg, s.container, s.logger))
	s.client = &http.Client{Timeout: 10 * time.Second}
}

func (s *E2ETestSuite) TearDownSuite() {
	for _, srv := range []*httptest.Server{s.server, s.provider, s.recommender} {
		if srv != nil {
			srv.Close()
		}
	}
	if s.container != nil {
		s.container.Close()
	}
}

func (s *E2ETestSuite) SetupTest() {
	s.providerDown.Store(false)
	s.recommenderDown.Store(false)
}

func (s *E2ETestSuite) token(userID uuid.UUID) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(e2eSecret))
	s.Require().NoError(err)
	return signed
}

func (s *E2ETestSuite) makeRequest(method, path, body string, userID *uuid.UUID) (int, []byte) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != nil {
		req.Header.Set("Authorization", "Bearer "+s.token(*userID))
	}

	res, err := s.client.Do(req)
	s.Require().NoError(err)
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	s.Require().NoError(err)
	return res.StatusCode, raw
}

func (s *E2ETestSuite) TestAnonymousSushiSearch() {
	status, raw := s.makeRequest(http.MethodGet, "/api/v1/places/nearby?lat=12.97&lng=77.59&q=find+me+a+good+sushi+place", "", nil)
	s.Require().Equal(http.StatusOK, status, string(raw))

	var resp types.NearbyResponse
	s.Require().NoError(json.Unmarshal(raw, &resp))
	s.Equal(5000, resp.RadiusMeters)
	s.Equal([]string{"sushi"}, resp.Interests)
	s.Equal([]types.CategoryCode{"sushi_restaurant"}, resp.Categories)
	s.Require().Equal(3, resp.Count)
	s.Equal("sushi-2", resp.Places[0].ID)
	s.Equal("sushi-1", resp.Places[1].ID)
	s.Equal("shared", resp.Places[2].ID)
	s.Equal("33m", resp.Places[1].Distance)
}

func (s *E2ETestSuite) TestPostSearchDedupesAcrossCategories() {
	body := `{"lat":12.97,"lng":77.59,"query":"sushi dinner","radius":300}`
	status, raw := s.makeRequest(http.MethodPost, "/api/v1/places/nearby", body, nil)
	s.Require().Equal(http.StatusOK, status, string(raw))

	var resp types.NearbyResponse
	s.Require().NoError(json.Unmarshal(raw, &resp))
	s.Equal(types.MinRadiusMeters, resp.RadiusMeters)
	s.ElementsMatch([]types.CategoryCode{"sushi_restaurant", "restaurant"}, resp.Categories)

	shared := 0
	for _, p := range resp.Places {
		if p.ID == "shared" {
			shared++
		}
	}
	s.Equal(1, shared)
	s.Equal(4, resp.Count)
}

func (s *E2ETestSuite) TestPersonalizationWorkflow() {
	userID := uuid.New()

	status, raw := s.makeRequest(http.MethodGet, "/api/v1/places/feed?lat=12.97&lng=77.59", "", &userID)
	s.Require().Equal(http.StatusOK, status, string(raw))
	s.JSONEq(`{"tags":[],"recommendations":{},"radius":5000}`, string(raw))

	for i := 0; i < 2; i++ {
		status, _ = s.makeRequest(http.MethodGet, "/api/v1/places/nearby?lat=12.97&lng=77.59&q=dentist+near+me", "", &userID)
		s.Require().Equal(http.StatusOK, status)
	}
	status, _ = s.makeRequest(http.MethodGet, "/api/v1/places/nearby?lat=12.97&lng=77.59&q=sushi", "", &userID)
	s.Require().Equal(http.StatusOK, status)
	s.Require().NoError(s.container.DiscoveryService.Drain(s.T().Context()))

	status, raw = s.makeRequest(http.MethodGet, "/api/v1/affinity", "", &userID)
	s.Require().Equal(http.StatusOK, status)
	var aff types.AffinityResponse
	s.Require().NoError(json.Unmarshal(raw, &aff))
	s.Equal([]types.AffinityEntry{{Tag: "dentist", Count: 2}, {Tag: "sushi", Count: 1}}, aff.Interests)

	status, raw = s.makeRequest(http.MethodGet, "/api/v1/places/feed?lat=12.97&lng=77.59&limit=3", "", &userID)
	s.Require().Equal(http.StatusOK, status, string(raw))
	var feed types.FeedResponse
	s.Require().NoError(json.Unmarshal(raw, &feed))
	s.Equal([]types.InterestTag{"dentist", "sushi", "museum"}, feed.Tags)
	s.Len(feed.Recommendations["dentist"], 1)
	s.Len(feed.Recommendations["sushi"], 3)
	s.Equal("museum-1", feed.Recommendations["museum"][0].ID)
}

func (s *E2ETestSuite) TestErrorHandlingWorkflow() {
	status, _ := s.makeRequest(http.MethodGet, "/api/v1/places/nearby?lng=77.59&q=sushi", "", nil)
	s.Equal(http.StatusBadRequest, status)

	status, _ = s.makeRequest(http.MethodGet, "/api/v1/places/nearby?lat=95&lng=77.59", "", nil)
	s.Equal(http.StatusBadRequest, status)

	status, _ = s.makeRequest(http.MethodGet, "/api/v1/places/feed?lat=12.97&lng=77.59", "", nil)
	s.Equal(http.StatusUnauthorized, status)

	userID := uuid.New()
	s.recommenderDown.Store(true)
	status, raw := s.makeRequest(http.MethodGet, "/api/v1/places/feed?lat=12.97&lng=77.59", "", &userID)
	s.Equal(http.StatusBadGateway, status)
	var body map[string]interface{}
	s.Require().NoError(json.Unmarshal(raw, &body))
	s.Equal(false, body["success"])
	s.NotEmpty(body["request_id"])
	s.recommenderDown.Store(false)

	s.providerDown.Store(true)
	status, _ = s.makeRequest(http.MethodGet, "/api/v1/places/nearby?lat=12.97&lng=77.59&q=sushi", "", nil)
	s.Equal(http.StatusBadGateway, status)
}

func (s *E2ETestSuite) TestNoResultsIsNotAnError() {
	status, raw := s.makeRequest(http.MethodGet, "/api/v1/places/nearby?lat=12.97&lng=77.59&q=zoo", "", nil)
	s.Require().Equal(http.StatusOK, status)
	var resp types.NearbyResponse
	s.Require().NoError(json.Unmarshal(raw, &resp))
	s.Equal(0, resp.Count)
	s.NotNil(resp.Places)
}

func (s *E2ETestSuite) TestConcurrentSearchesKeepEveryIncrement() {
	userID := uuid.New()
	const n = 20

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := s.makeRequest(http.MethodGet, "/api/v1/places/nearby?lat=12.97&lng=77.59&q=museum", "", &userID)
			s.Equal(http.StatusOK, status)
		}()
	}
	wg.Wait()
	s.Require().NoError(s.container.DiscoveryService.Drain(s.T().Context()))

	status, raw := s.makeRequest(http.MethodGet, "/api/v1/affinity", "", &userID)
	s.Require().Equal(http.StatusOK, status)
	var aff types.AffinityResponse
	s.Require().NoError(json.Unmarshal(raw, &aff))
	s.Require().Len(aff.Interests, 1)
	s.Equal(int64(n), aff.Interests[0].Count)
}

func (s *E2ETestSuite) TestHealth() {
	status, raw := s.makeRequest(http.MethodGet, "/ping", "", nil)
	s.Equal(http.StatusOK, status)
	s.Equal("pong", string(raw))

	status, _ = s.makeRequest(http.MethodGet, "/ready", "", nil)
	s.Equal(http.StatusOK, status)
}

func TestE2E(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping end-to-end suite in short mode")
	}
	suite.Run(t, new(E2ETestSuite))
}
