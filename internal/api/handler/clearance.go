package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/greenwave/greenwave/internal/api/models"
	"github.com/greenwave/greenwave/internal/api/response"
	"github.com/greenwave/greenwave/internal/clearance"
	"github.com/greenwave/greenwave/internal/intersection"
	"github.com/greenwave/greenwave/pkg/geo"
)

// ClearanceHandler handles intersection registry and clearance endpoints.
type ClearanceHandler struct {
	intersections *intersection.Service
}

// NewClearanceHandler creates a new ClearanceHandler.
func NewClearanceHandler(intersections *intersection.Service) *ClearanceHandler {
	return &ClearanceHandler{
		intersections: intersections,
	}
}

// CreateIntersection handles POST /v1/intersections - register an
// intersection.
func (h *ClearanceHandler) CreateIntersection(w http.ResponseWriter, r *http.Request) {
	var input models.IntersectionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	lanes := make([]clearance.Lane, 0, len(input.Lanes))
	for _, lane := range input.Lanes {
		lanes = append(lanes, clearance.Lane{Direction: clearance.Direction(lane.Direction)})
	}

	in, err := h.intersections.Create(r.Context(), intersection.CreateInput{
		Name:          input.Name,
		Location:      geo.Point{Lat: input.Location.Lat, Lng: input.Location.Lng},
		Lanes:         lanes,
		CorridorID:    input.CorridorID,
		CorridorOrder: input.CorridorOrder,
		Monitored:     input.Monitored,
	})
	if err != nil {
		var verr *intersection.ValidationError
		if errors.As(err, &verr) {
			response.BadRequest(w, r, "validation error", verr.Errors)
			return
		}
		response.InternalError(w, r, "failed to register intersection")
		return
	}

	response.Created(w, r, "/v1/intersections/"+in.ID, toAPIIntersection(in))
}

// ListIntersections handles GET /v1/intersections.
func (h *ClearanceHandler) ListIntersections(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			response.BadRequest(w, r, "invalid limit parameter", []models.FieldError{
				{Field: "limit", Message: "must be an integer between 1 and 200"},
			})
			return
		}
		limit = parsed
	}
	cursor := r.URL.Query().Get("cursor")

	result, err := h.intersections.List(r.Context(), limit, cursor)
	if err != nil {
		response.InternalError(w, r, "failed to list intersections")
		return
	}

	items := make([]models.Intersection, 0, len(result.Items))
	for _, in := range result.Items {
		items = append(items, toAPIIntersection(in))
	}

	var nextCursor *string
	if result.NextCursor != "" {
		nextCursor = &result.NextCursor
	}

	response.JSON(w, r, http.StatusOK, models.PagedIntersections{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: limit, NextCursor: nextCursor},
	})
}

// GetIntersection handles GET /v1/intersections/{intersectionId}.
func (h *ClearanceHandler) GetIntersection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "intersectionId")

	in, err := h.intersections.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, intersection.ErrIntersectionNotFound) {
			response.NotFound(w, r, "intersection not found")
			return
		}
		response.InternalError(w, r, "failed to load intersection")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIIntersection(in))
}

// DeleteIntersection handles DELETE /v1/intersections/{intersectionId}.
func (h *ClearanceHandler) DeleteIntersection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "intersectionId")

	if err := h.intersections.Delete(r.Context(), id); err != nil {
		if errors.Is(err, intersection.ErrIntersectionNotFound) {
			response.NotFound(w, r, "intersection not found")
			return
		}
		response.InternalError(w, r, "failed to delete intersection")
		return
	}

	response.NoContent(w, r)
}

// PlanClearance handles POST /v1/intersections/{intersectionId}/clearance:plan.
func (h *ClearanceHandler) PlanClearance(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "intersectionId")

	var input models.ClearancePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var emergency *clearance.EmergencyContext
	if input.Emergency != nil {
		emergency = &clearance.EmergencyContext{
			Priority:  clearance.Priority(input.Emergency.Priority),
			Direction: clearance.Direction(input.Emergency.Direction),
		}
	}

	plan, err := h.intersections.PlanClearance(r.Context(), id, emergency)
	if err != nil {
		switch {
		case errors.Is(err, intersection.ErrIntersectionNotFound):
			response.NotFound(w, r, "intersection not found")
		case errors.Is(err, clearance.ErrNoLanes):
			response.Conflict(w, r, "intersection has no lane state to plan against")
		case errors.Is(err, clearance.ErrUnknownDirection):
			response.BadRequest(w, r, "intersection has an unknown lane direction", nil)
		default:
			response.InternalError(w, r, "clearance planning failed")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewClearancePlan(plan))
}

// CoordinateCorridor handles POST /v1/corridors:coordinate.
func (h *ClearanceHandler) CoordinateCorridor(w http.ResponseWriter, r *http.Request) {
	var input models.CorridorCoordinateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.CorridorID == "" && len(input.IntersectionIDs) == 0 {
		response.BadRequest(w, r, "either corridorId or intersectionIds is required", []models.FieldError{
			{Field: "corridorId", Message: "required if intersectionIds not provided"},
			{Field: "intersectionIds", Message: "required if corridorId not provided"},
		})
		return
	}

	var (
		schedule clearance.Schedule
		err      error
	)
	if input.CorridorID != "" {
		schedule, err = h.intersections.CoordinateCorridor(r.Context(), input.CorridorID)
	} else {
		schedule, err = h.intersections.CoordinateAdHoc(r.Context(), input.IntersectionIDs)
	}
	if err != nil {
		if errors.Is(err, clearance.ErrEmptyCorridor) {
			response.NotFound(w, r, "corridor has no intersections")
			return
		}
		response.InternalError(w, r, "corridor coordination failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.NewCorridorSchedule(schedule))
}

// toAPIIntersection converts an intersection record to API form.
func toAPIIntersection(in *intersection.Intersection) models.Intersection {
	lanes := make([]models.Lane, 0, len(in.Lanes))
	for _, lane := range in.Lanes {
		lanes = append(lanes, models.Lane{Direction: string(lane.Direction), Status: string(lane.Status)})
	}

	return models.Intersection{
		ID:              in.ID,
		Name:            in.Name,
		Location:        models.Point{Lat: in.Location.Lat, Lng: in.Location.Lng},
		Lanes:           lanes,
		CongestionLevel: string(in.CongestionLevel),
		CorridorID:      in.CorridorID,
		CorridorOrder:   in.CorridorOrder,
		Monitored:       in.Monitored,
		CreatedAt:       models.Timestamp(in.CreatedAt),
		UpdatedAt:       models.Timestamp(in.UpdatedAt),
	}
}
