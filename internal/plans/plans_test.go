package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sedifex-backend-go/internal/config"
)

func TestCatalog(t *testing.T) {
	assert.True(t, IsValidPlanID("starter"))
	assert.True(t, IsValidPlanID("pro"))
	assert.True(t, IsValidPlanID("enterprise"))
	assert.False(t, IsValidPlanID("gold"))
	assert.False(t, IsValidPlanID(""))
	assert.False(t, IsValidPlanID("Starter"), "plan ids are matched as-is; normalization is the caller's job")

	entries := List()
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"starter", "pro", "enterprise"}, []string{entries[0].ID, entries[1].ID, entries[2].ID})

	assert.Equal(t, 99, Catalog["starter"].MonthlyGHS)
	assert.Equal(t, 249, Catalog["pro"].MonthlyGHS)
	assert.Equal(t, 499, Catalog["enterprise"].MonthlyGHS)
	assert.True(t, Catalog["pro"].Marketing.Highlight, "pro is the highlighted tier")
}

func TestNewBillingConfig(t *testing.T) {
	t.Run("defaults without configuration", func(t *testing.T) {
		billing := NewBillingConfig(nil)
		assert.Equal(t, 14, billing.TrialDays)
		assert.Equal(t, DefaultProvider, billing.Provider)
		require.Contains(t, billing.PlanCodes, "starter")
		assert.Equal(t, "", billing.PlanCodes["starter"])
	})

	t.Run("reads overrides from the app config", func(t *testing.T) {
		billing := NewBillingConfig(&config.Config{
			TrialDays:                  30,
			PaystackPlanCodeStarter:    "PLN_starter",
			PaystackPlanCodePro:        "PLN_pro",
			PaystackPlanCodeEnterprise: "PLN_enterprise",
		})
		assert.Equal(t, 30, billing.TrialDays)
		assert.Equal(t, "PLN_starter", billing.PlanCodes["starter"])
		assert.Equal(t, "PLN_pro", billing.PlanCodes["pro"])
		assert.Equal(t, "PLN_enterprise", billing.PlanCodes["enterprise"])
	})

	t.Run("a zero trial falls back to the default", func(t *testing.T) {
		billing := NewBillingConfig(&config.Config{TrialDays: 0})
		assert.Equal(t, 14, billing.TrialDays)
	})
}
