package handlers

import (
	"hos-compliance-service/internal/api/dto"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/services"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DriverHandler exposes a driver's duty log: recording status changes,
// corrections, day views, and compliance queries.
type DriverHandler struct {
	Logs      *services.LogService
	DisplayTZ *time.Location
	Metrics   *obs.Metrics
}

func (h *DriverHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.Logs.Drivers(r.Context())
	if err != nil {
		writeServiceError(w, r, "drivers.List", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ListDriversResponse{Drivers: ids})
}

func (h *DriverHandler) RecordStatus(w http.ResponseWriter, r *http.Request) {
	var req dto.StatusChangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := domain.ParseDutyStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	iv, err := h.Logs.RecordStatusChange(r.Context(), mux.Vars(r)["driverID"], domain.StatusChange{
		Status:   status,
		At:       timeOrZero(req.At),
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, "drivers.RecordStatus", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromInterval(iv))
}

func (h *DriverHandler) Close(w http.ResponseWriter, r *http.Request) {
	var req dto.CloseRequest
	if !decodeOptionalJSON(w, r, &req) {
		return
	}

	iv, err := h.Logs.Close(r.Context(), mux.Vars(r)["driverID"], timeOrZero(req.At))
	if err != nil {
		writeServiceError(w, r, "drivers.Close", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromInterval(iv))
}

func (h *DriverHandler) Amend(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	target, err := uuid.Parse(vars["intervalID"])
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "interval id must be a UUID")
		return
	}

	var req dto.AmendRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	status, err := domain.ParseDutyStatus(req.Status)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	iv, err := h.Logs.Amend(r.Context(), vars["driverID"], domain.Amendment{
		Target:   target,
		Status:   status,
		Location: req.Location,
		Notes:    req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, "drivers.Amend", err)
		return
	}
	writeJSON(w, r, http.StatusCreated, dto.FromInterval(iv))
}

// DayLog returns one calendar day of the log in the display time zone
// (or ?tz=). The day defaults to today.
func (h *DriverHandler) DayLog(w http.ResponseWriter, r *http.Request) {
	loc := h.DisplayTZ
	if tz := r.URL.Query().Get("tz"); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "unknown time zone "+tz)
			return
		}
		loc = l
	}

	day := services.DayOf(time.Now(), loc)
	if v := r.URL.Query().Get("day"); v != "" {
		d, err := services.ParseDay(v)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "day must be YYYY-MM-DD")
			return
		}
		day = d
	}

	view, err := h.Logs.DayView(r.Context(), mux.Vars(r)["driverID"], day, loc)
	if err != nil {
		writeServiceError(w, r, "drivers.DayLog", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromDayLog(view))
}

func (h *DriverHandler) Compliance(w http.ResponseWriter, r *http.Request) {
	asOf, err := optionalTime(r, "as_of")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.Logs.Compliance(r.Context(), mux.Vars(r)["driverID"], asOf)
	if err != nil {
		writeServiceError(w, r, "drivers.Compliance", err)
		return
	}

	for _, v := range report.Violations {
		h.Metrics.CountViolation(string(v.Rule), string(v.Severity))
	}
	for _, v := range report.Warnings {
		h.Metrics.CountViolation(string(v.Rule), string(v.Severity))
	}

	writeJSON(w, r, http.StatusOK, dto.FromCompliance(report))
}
