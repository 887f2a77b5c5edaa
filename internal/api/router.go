package api

import (
	"hos-compliance-service/internal/api/handlers"
	"hos-compliance-service/internal/domain"
	"hos-compliance-service/internal/platform/obs"
	"hos-compliance-service/internal/services"
	"log"
	"net/http"
	"time"

	gh "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// Deps are the collaborators the HTTP layer needs. Planner may be nil
// when no distance provider is configured.
type Deps struct {
	Logs      *services.LogService
	Planner   *services.TripPlanner
	Rules     domain.RuleSet
	DisplayTZ *time.Location
	Metrics   *obs.Metrics
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	drivers := &handlers.DriverHandler{Logs: d.Logs, DisplayTZ: d.DisplayTZ, Metrics: d.Metrics}
	schedules := &handlers.ScheduleHandler{Rules: d.Rules, Planner: d.Planner, Metrics: d.Metrics}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)
	r.HandleFunc("/rulesets", handlers.RuleSets(d.Rules)).Methods(http.MethodGet)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/drivers", drivers.List).Methods(http.MethodGet)
	dr := r.PathPrefix("/drivers/{driverID}").Subrouter()
	dr.HandleFunc("/status", drivers.RecordStatus).Methods(http.MethodPost)
	dr.HandleFunc("/close", drivers.Close).Methods(http.MethodPost)
	dr.HandleFunc("/intervals/{intervalID}/amend", drivers.Amend).Methods(http.MethodPost)
	dr.HandleFunc("/log", drivers.DayLog).Methods(http.MethodGet)
	dr.HandleFunc("/compliance", drivers.Compliance).Methods(http.MethodGet)

	r.HandleFunc("/schedules", schedules.Schedule).Methods(http.MethodPost)
	r.HandleFunc("/trips/plan", schedules.PlanTrip).Methods(http.MethodPost)

	r.Use(metricsMiddleware(d.Metrics))

	cors := gh.CORS(
		gh.AllowedOrigins([]string{"*"}),
		gh.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		gh.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
	)
	recovery := gh.RecoveryHandler(gh.RecoveryLogger(log.Default()), gh.PrintRecoveryStack(true))

	return requestIDMiddleware(loggingMiddleware(recovery(cors(r))))
}
