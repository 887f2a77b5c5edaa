package handlers

import (
	"hos-compliance-service/internal/api/dto"
	"hos-compliance-service/internal/domain"
	"net/http"
)

// Health provides a minimal liveness check endpoint.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// RuleSets lists the published rule tables and the one the service uses.
func RuleSets(active domain.RuleSet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, dto.ListRuleSetsResponse{
			Default:  active.Version,
			RuleSets: domain.RuleSets(),
		})
	}
}
