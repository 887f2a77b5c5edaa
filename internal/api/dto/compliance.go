package dto

import "hos-compliance-service/internal/domain"

type ComplianceResponse struct {
	DriverID       string             `json:"driver_id"`
	RuleSetVersion string             `json:"ruleset"`
	Compliant      bool               `json:"compliant"`
	Totals         domain.Totals      `json:"totals"`
	Remaining      domain.Remaining   `json:"remaining"`
	Violations     []domain.Violation `json:"violations"`
	Warnings       []domain.Violation `json:"warnings"`
}

type ListRuleSetsResponse struct {
	Default  string           `json:"default"`
	RuleSets []domain.RuleSet `json:"rulesets"`
}
