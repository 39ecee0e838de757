package api

// ErrorResponse is the error envelope for every callable operation: a
// machine-readable code, a caller-safe message and optional details.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// PlanCatalogResponse is the payload of GET /api/v1/plans.
type PlanCatalogResponse struct {
	OK        bool              `json:"ok"`
	Plans     any               `json:"plans"`
	TrialDays int               `json:"trialDays"`
	Provider  string            `json:"provider"`
	PlanCodes map[string]string `json:"planCodes"`
}
