// Package handler provides HTTP handlers for the Greenwave API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/greenwave/greenwave/internal/api/models"
	"github.com/greenwave/greenwave/internal/api/response"
	"github.com/greenwave/greenwave/internal/clock"
	"github.com/greenwave/greenwave/internal/congestion"
	"github.com/greenwave/greenwave/internal/routeopt"
	"github.com/greenwave/greenwave/pkg/geo"
)

// Forecast query bounds. The lookahead loop is intentionally short; longer
// horizons exceed what the predictor's confidence supports.
const (
	defaultForecastSteps   = 6
	maxForecastSteps       = 24
	defaultForecastStepMin = 15
)

// RouteHandler handles route optimization and congestion forecast endpoints.
type RouteHandler struct {
	optimizer *routeopt.Service
	predictor *congestion.Predictor
	clock     clock.Clock
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(optimizer *routeopt.Service, predictor *congestion.Predictor, clk clock.Clock) *RouteHandler {
	if clk == nil {
		clk = clock.System()
	}
	return &RouteHandler{
		optimizer: optimizer,
		predictor: predictor,
		clock:     clk,
	}
}

// OptimizeRoutes handles POST /v1/routes:optimize - score candidate routes
// between two points.
func (h *RouteHandler) OptimizeRoutes(w http.ResponseWriter, r *http.Request) {
	var input models.RouteOptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	level := routeopt.EmergencyNormal
	switch input.EmergencyLevel {
	case "", string(routeopt.EmergencyNormal):
	case string(routeopt.EmergencyMedium):
		level = routeopt.EmergencyMedium
	case string(routeopt.EmergencyHigh):
		level = routeopt.EmergencyHigh
	default:
		response.BadRequest(w, r, "invalid emergency level", []models.FieldError{
			{Field: "emergencyLevel", Message: "must be one of normal, medium, high"},
		})
		return
	}

	result, err := h.optimizer.Optimize(r.Context(), routeopt.Request{
		Start:          geo.Point{Lat: input.Start.Lat, Lng: input.Start.Lng},
		End:            geo.Point{Lat: input.End.Lat, Lng: input.End.Lng},
		EmergencyLevel: level,
	})
	if err != nil {
		if errors.Is(err, routeopt.ErrInvalidCoordinates) {
			response.BadRequest(w, r, "coordinates out of range", []models.FieldError{
				{Field: "start", Message: "lat must be in [-90,90], lng in [-180,180]"},
				{Field: "end", Message: "lat must be in [-90,90], lng in [-180,180]"},
			})
			return
		}
		response.InternalError(w, r, "route optimization failed")
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, models.NewRouteOptimizeResponse(*result))
}

// CongestionForecast handles GET /v1/congestion/forecast - congestion
// lookahead at a point.
func (h *RouteHandler) CongestionForecast(w http.ResponseWriter, r *http.Request) {
	lat, latErr := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lng, lngErr := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if latErr != nil || lngErr != nil {
		response.BadRequest(w, r, "lat and lng query parameters are required", []models.FieldError{
			{Field: "lat", Message: "must be a number"},
			{Field: "lng", Message: "must be a number"},
		})
		return
	}

	steps := defaultForecastSteps
	if raw := r.URL.Query().Get("steps"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxForecastSteps {
			response.BadRequest(w, r, "invalid steps parameter", []models.FieldError{
				{Field: "steps", Message: "must be an integer between 1 and 24"},
			})
			return
		}
		steps = parsed
	}

	stepMinutes := defaultForecastStepMin
	if raw := r.URL.Query().Get("stepMinutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 60 {
			response.BadRequest(w, r, "invalid stepMinutes parameter", []models.FieldError{
				{Field: "stepMinutes", Message: "must be an integer between 1 and 60"},
			})
			return
		}
		stepMinutes = parsed
	}

	forecast, err := h.predictor.ForecastWindow(
		h.clock.Now(),
		geo.Point{Lat: lat, Lng: lng},
		steps,
		time.Duration(stepMinutes)*time.Minute,
	)
	if err != nil {
		if errors.Is(err, geo.ErrInvalidCoordinates) {
			response.BadRequest(w, r, "coordinates out of range", nil)
			return
		}
		response.InternalError(w, r, "congestion forecast failed")
		return
	}

	resp := models.CongestionForecastResponse{
		Samples:  models.NewCongestionSamples(forecast.Samples),
		Trend:    string(forecast.Trend),
		PeakTime: models.Timestamp(forecast.PeakTime),
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}
