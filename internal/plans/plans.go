// Package plans holds the static Sedifex subscription catalog and the
// billing defaults applied during store onboarding.
package plans

import "sedifex-backend-go/internal/config"

// PlanID identifies a subscription plan. Valid ids are "starter", "pro" and
// "enterprise".
type PlanID = string

// PlanIDs lists the valid plan identifiers in display order.
var PlanIDs = []PlanID{"starter", "pro", "enterprise"}

// Marketing is the storefront metadata attached to a plan.
type Marketing struct {
	Badge       string   `json:"badge,omitempty"`
	Highlight   bool     `json:"highlight,omitempty"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

// CatalogEntry is one plan's reference data. Read-only at runtime.
type CatalogEntry struct {
	ID              PlanID    `json:"id"`
	Name            string    `json:"name"`
	MonthlyGHS      int       `json:"monthlyGhs"`
	BillingFeatures []string  `json:"billingFeatures"`
	Marketing       Marketing `json:"marketing"`
}

// Catalog is the fixed plan table, keyed by plan id.
var Catalog = map[PlanID]CatalogEntry{
	"starter": {
		ID:         "starter",
		Name:       "Starter",
		MonthlyGHS: 99,
		BillingFeatures: []string{
			"Up to 1,000 SKUs",
			"Single location",
			"Email support",
		},
		Marketing: Marketing{
			Badge:       "Best for single stores",
			Description: "Kick off with a lightweight workspace for owner-operators.",
			Features: []string{
				"Up to 1,000 SKUs",
				"Single location",
				"Owner access + 2 staff accounts",
				"Core inventory workflows",
			},
		},
	},
	"pro": {
		ID:         "pro",
		Name:       "Pro",
		MonthlyGHS: 249,
		BillingFeatures: []string{
			"Up to 10,000 SKUs",
			"Multi-location",
			"Priority email + chat support",
		},
		Marketing: Marketing{
			Badge:       "Most popular",
			Highlight:   true,
			Description: "Grow into multi-store ops with team workflows and support.",
			Features: []string{
				"Up to 10,000 SKUs",
				"Multi-location",
				"10 staff accounts included",
				"Priority support",
			},
		},
	},
	"enterprise": {
		ID:         "enterprise",
		Name:       "Enterprise",
		MonthlyGHS: 499,
		BillingFeatures: []string{
			"Unlimited SKUs",
			"Multi-location + advanced roles",
			"Dedicated success manager",
		},
		Marketing: Marketing{
			Description: "Scale a nationwide fleet with advanced controls and limits.",
			Features: []string{
				"Unlimited SKUs",
				"Unlimited stores & users",
				"Advanced roles & approvals",
				"Dedicated success manager",
			},
		},
	},
}

// IsValidPlanID reports whether id names a catalog entry.
func IsValidPlanID(id string) bool {
	_, ok := Catalog[id]
	return ok
}

// List returns the catalog entries in display order.
func List() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(PlanIDs))
	for _, id := range PlanIDs {
		entries = append(entries, Catalog[id])
	}
	return entries
}

// BillingConfig holds the onboarding billing defaults: trial length, the
// payment provider code and the provider-side plan codes.
type BillingConfig struct {
	TrialDays int
	Provider  string
	PlanCodes map[PlanID]string
}

// DefaultProvider is the payment provider recorded on new billing blocks.
const DefaultProvider = "paystack"

// NewBillingConfig builds the billing defaults from the app configuration.
func NewBillingConfig(appConfig *config.Config) BillingConfig {
	trialDays := 14
	if appConfig != nil && appConfig.TrialDays > 0 {
		trialDays = appConfig.TrialDays
	}
	codes := map[PlanID]string{"starter": "", "pro": "", "enterprise": ""}
	if appConfig != nil {
		codes["starter"] = appConfig.PaystackPlanCodeStarter
		codes["pro"] = appConfig.PaystackPlanCodePro
		codes["enterprise"] = appConfig.PaystackPlanCodeEnterprise
	}
	return BillingConfig{TrialDays: trialDays, Provider: DefaultProvider, PlanCodes: codes}
}
