package handlers

import (
	"hos-compliance-service/internal/api/dto"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/services"
	"net/http"
	"strings"
	"time"
)

// ScheduleHandler plans breaks for routes with known legs, and for
// waypoint trips when a distance provider is configured.
type ScheduleHandler struct {
	Rules   domain.RuleSet
	Planner *services.TripPlanner
	Metrics *obs.Metrics
}

func (h *ScheduleHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req dto.ScheduleRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	s, err := services.ScheduleBreaks(dto.ToRouteLegs(req.Legs), req.HOSState(h.Rules, time.Now()))
	if err != nil {
		writeServiceError(w, r, "schedules.Schedule", err)
		return
	}
	h.Metrics.CountSchedule(string(s.Status))

	writeJSON(w, r, http.StatusOK, dto.FromSchedule(s))
}

func (h *ScheduleHandler) PlanTrip(w http.ResponseWriter, r *http.Request) {
	if h.Planner == nil || h.Planner.Provider == nil {
		writeError(w, r, http.StatusServiceUnavailable, "trip planning needs a distance provider; use POST /schedules with explicit legs")
		return
	}

	var req dto.TripPlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	waypoints := req.Waypoints
	if len(waypoints) == 0 {
		for _, loc := range []string{req.CurrentLocation, req.PickupLocation, req.DropoffLocation} {
			if strings.TrimSpace(loc) != "" {
				waypoints = append(waypoints, loc)
			}
		}
	}

	plan, err := h.Planner.Plan(r.Context(), services.TripRequest{
		DriverID:              req.DriverID,
		Waypoints:             waypoints,
		StartTime:             timeOrZero(req.StartTime),
		CurrentCycleUsedHours: req.CurrentCycleUsed,
		StopOnDutyHours:       req.StopOnDutyHours,
	})
	if err != nil {
		writeServiceError(w, r, "schedules.PlanTrip", err)
		return
	}
	h.Metrics.CountSchedule(string(plan.Schedule.Status))

	writeJSON(w, r, http.StatusOK, dto.TripPlanResponse{
		Legs:        dto.FromRouteLegs(plan.Legs),
		Start:       dto.FromTotals(plan.Start.Totals),
		Schedule:    dto.FromSchedule(plan.Schedule),
		Coordinates: plan.Coordinates,
	})
}
