package discovery

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	appMiddleware "github.com/koushik8686/GeoGuide-sub000/app/middleware"
	"github.com/koushik8686/GeoGuide-sub000/internal/api"
	"github.com/koushik8686/GeoGuide-sub000/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	NearbySearch(w http.ResponseWriter, r *http.Request)
	NearbySearchPost(w http.ResponseWriter, r *http.Request)
	Feed(w http.ResponseWriter, r *http.Request)
	GetAffinity(w http.ResponseWriter, r *http.Request)
	Ready(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// NearbySearch godoc
// @Summary      Nearby search
// @Description  Finds places near an origin that match the interests found in free text.
// @Tags         Places
// @Produce      json
// @Param        lat    query number  true  "Origin latitude"
// @Param        lng    query number  true  "Origin longitude"
// @Param        q      query string  false "Free text query"
// @Param        radius query integer false "Radius in meters, clamped to [1000, 50000]"
// @Success      200 {object} types.NearbyResponse
// @Failure      400 {object} map[string]interface{} "Invalid origin"
// @Failure      502 {object} map[string]interface{} "Place provider unavailable"
// @Router       /places/nearby [get]
func (h *HandlerImpl) NearbySearch(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequestFromQuery(r)
	if err != nil {
		h.logger.DebugContext(r.Context(), "Rejected nearby search", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Query = r.URL.Query().Get("q")
	h.search(w, r, req, "NearbySearch")
}

// NearbySearchPost godoc
// @Summary      Nearby search (JSON body)
// @Tags         Places
// @Accept       json
// @Produce      json
// @Param        request body types.SearchRequest true "Search request"
// @Success      200 {object} types.NearbyResponse
// @Failure      400 {object} map[string]interface{} "Invalid input"
// @Failure      502 {object} map[string]interface{} "Place provider unavailable"
// @Router       /places/nearby [post]
func (h *HandlerImpl) NearbySearchPost(w http.ResponseWriter, r *http.Request) {
	var req types.SearchRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		h.logger.DebugContext(r.Context(), "Rejected nearby search body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	h.search(w, r, req, "NearbySearchPost")
}

func (h *HandlerImpl) search(w http.ResponseWriter, r *http.Request, req types.SearchRequest, name string) {
	ctx, span := otel.Tracer("DiscoveryHandler").Start(r.Context(), name, trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/places/nearby"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", name))

	var userID *uuid.UUID
	if id, ok := appMiddleware.GetUserIDFromContext(ctx); ok {
		userID = &id
	}

	resp, err := h.service.Search(ctx, userID, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		h.writeError(w, r, l, err)
		return
	}

	span.SetAttributes(attribute.Int("results.count", resp.Count))
	span.SetStatus(codes.Ok, "search completed")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Feed godoc
// @Summary      Personalised feed
// @Description  Places grouped by the tags the recommender picks from the caller's affinity.
// @Tags         Places
// @Produce      json
// @Param        lat    query number  true  "Origin latitude"
// @Param        lng    query number  true  "Origin longitude"
// @Param        radius query integer false "Radius in meters"
// @Param        limit  query integer false "Number of tags, 1 to 20"
// @Success      200 {object} types.FeedResponse
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Failure      502 {object} map[string]interface{} "Recommender unavailable"
// @Security     BearerAuth
// @Router       /places/feed [get]
func (h *HandlerImpl) Feed(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("DiscoveryHandler").Start(r.Context(), "Feed", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/places/feed"),
	))
	defer span.End()

	l := h.logger.With(slog.String("HandlerImpl", "Feed"))

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		l.WarnContext(ctx, "User ID not found in context")
		h.writeError(w, r, l, api.ErrUnauthorized)
		return
	}

	req, err := searchRequestFromQuery(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := api.QueryInt(r, "limit")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Feed(ctx, userID, req, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "feed failed")
		h.writeError(w, r, l, err)
		return
	}

	span.SetStatus(codes.Ok, "feed served")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// GetAffinity godoc
// @Summary      Caller affinity
// @Tags         Affinity
// @Produce      json
// @Success      200 {object} types.AffinityResponse
// @Failure      401 {object} map[string]interface{} "Unauthorized"
// @Security     BearerAuth
// @Router       /affinity [get]
func (h *HandlerImpl) GetAffinity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("HandlerImpl", "GetAffinity"))

	userID, ok := appMiddleware.GetUserIDFromContext(ctx)
	if !ok {
		l.WarnContext(ctx, "User ID not found in context")
		h.writeError(w, r, l, api.ErrUnauthorized)
		return
	}

	resp, err := h.service.Affinity(ctx, userID)
	if err != nil {
		h.writeError(w, r, l, err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

func (h *HandlerImpl) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Ready(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "Readiness check failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusServiceUnavailable, "not ready")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, l *slog.Logger, err error) {
	switch {
	case errors.Is(err, types.ErrInvalidOrigin), errors.Is(err, types.ErrInvalidQuery), errors.Is(err, api.ErrInvalidInput):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, api.ErrUnauthorized):
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, api.ErrUpstream):
		l.ErrorContext(r.Context(), "Upstream failure", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadGateway, "Upstream service unavailable")
	default:
		l.ErrorContext(r.Context(), "Request failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

func searchRequestFromQuery(r *http.Request) (types.SearchRequest, error) {
	lat, err := api.QueryFloat(r, "lat")
	if err != nil {
		return types.SearchRequest{}, err
	}
	lng, err := api.QueryFloat(r, "lng")
	if err != nil {
		return types.SearchRequest{}, err
	}
	radius, err := api.QueryInt(r, "radius")
	if err != nil {
		return types.SearchRequest{}, err
	}
	return types.SearchRequest{Lat: lat, Lng: lng, RadiusMeters: radius}, nil
}
