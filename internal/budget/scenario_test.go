package budget_test

import (
	"testing"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *budget.Session {
	session := budget.NewSession(budget.NewEmptyTemplate("Test Budget", types.NewMonth(2026, 1)))
	session.SetTemplateAmount("rent", amount("900"))
	session.SetTemplateAmount("groceries", amount("400"))
	session.SetTemplateAmount("salary", amount("2500"))
	session.UpdateSettings(budget.SettingsUpdate{
		IncomeCategories: &[]string{"income"},
	})
	session.MarkClean()
	return session
}

func TestResolvedTemplateLayersOverrides(t *testing.T) {
	session := newTestSession()
	scenario := session.AddScenario("Job change", "")

	session.SetScenarioOverride(scenario.ID, "salary", amount("3000"))
	resolved := session.ResolvedTemplate(scenario.ID)

	assert.True(t, resolved["salary"].Amount.Equal(amount("3000")))
	assert.True(t, resolved["rent"].Amount.Equal(amount("900")), "untouched categories keep baseline")

	// The baseline itself never changes.
	assert.True(t, session.Template().Template["salary"].Amount.Equal(amount("2500")))
}

func TestResolvedTemplateUnknownScenario(t *testing.T) {
	session := newTestSession()

	resolved := session.ResolvedTemplate("no-such-scenario")
	assert.True(t, resolved["rent"].Amount.Equal(amount("900")))
}

func TestResolvedTemplateOverrideWithoutBaselineEntry(t *testing.T) {
	session := newTestSession()
	scenario := session.AddScenario("New cost", "")

	session.SetScenarioOverride(scenario.ID, "daycare", amount("350"))
	resolved := session.ResolvedTemplate(scenario.ID)

	assert.True(t, resolved["daycare"].Amount.Equal(amount("350")))
}

func TestSetScenarioOverrideEpsilon(t *testing.T) {
	session := newTestSession()
	scenario := session.AddScenario("Tweaks", "")

	session.SetScenarioOverride(scenario.ID, "rent", amount("950"))
	stored, _ := session.Scenario(scenario.ID)
	require.Len(t, stored.Overrides, 1)

	// Setting an amount back within 0.005 of the baseline removes the
	// override instead of storing a no-op.
	session.SetScenarioOverride(scenario.ID, "rent", amount("900.004"))
	stored, _ = session.Scenario(scenario.ID)
	assert.Empty(t, stored.Overrides)

	// Exactly at the threshold the override stays.
	session.SetScenarioOverride(scenario.ID, "rent", amount("900.005"))
	stored, _ = session.Scenario(scenario.ID)
	assert.Len(t, stored.Overrides, 1)
}

func TestApplyScenarioToBaseline(t *testing.T) {
	session := newTestSession()
	scenario := session.AddScenario("Promotion", "")
	session.SetScenarioOverride(scenario.ID, "salary", amount("3000"))
	session.SetScenarioOverride(scenario.ID, "rent", amount("1100"))

	require.True(t, session.ApplyScenarioToBaseline(scenario.ID))

	template := session.Template()
	assert.True(t, template.Template["salary"].Amount.Equal(amount("3000")))
	assert.True(t, template.Template["rent"].Amount.Equal(amount("1100")))
	assert.Empty(t, template.Scenarios, "applied scenario is deleted")
}

func TestDuplicateScenario(t *testing.T) {
	session := newTestSession()
	scenario := session.AddScenario("Original", "desc")
	session.SetScenarioOverride(scenario.ID, "salary", amount("3000"))
	item, ok := session.AddVirtualItem(scenario.ID, "Side gig", amount("200"), true)
	require.True(t, ok)

	duplicate, ok := session.DuplicateScenario(scenario.ID)
	require.True(t, ok)

	assert.Equal(t, "Original (copy)", duplicate.Name)
	assert.NotEqual(t, scenario.ID, duplicate.ID)
	require.Len(t, duplicate.VirtualItems, 1)
	assert.NotEqual(t, item.ID, duplicate.VirtualItems[0].ID, "virtual items get fresh ids")
	assert.True(t, duplicate.Overrides["salary"].Amount.Equal(amount("3000")))

	// Mutating the copy leaves the original alone.
	session.SetScenarioOverride(duplicate.ID, "salary", amount("3500"))
	original, _ := session.Scenario(scenario.ID)
	assert.True(t, original.Overrides["salary"].Amount.Equal(amount("3000")))
}

func TestVirtualItemCommands(t *testing.T) {
	session := newTestSession()
	scenario := session.AddScenario("What if", "")

	item, ok := session.AddVirtualItem(scenario.ID, "Car loan", amount("250"), false)
	require.True(t, ok)

	newAmount := amount("275")
	session.UpdateVirtualItem(scenario.ID, item.ID, budget.VirtualItemUpdate{Amount: &newAmount})

	stored, _ := session.Scenario(scenario.ID)
	require.Len(t, stored.VirtualItems, 1)
	assert.True(t, stored.VirtualItems[0].Amount.Equal(amount("275")))
	assert.Equal(t, "Car loan", stored.VirtualItems[0].Name)

	session.RemoveVirtualItem(scenario.ID, item.ID)
	stored, _ = session.Scenario(scenario.ID)
	assert.Empty(t, stored.VirtualItems)
}

func TestDeleteScenario(t *testing.T) {
	session := newTestSession()
	scenario := session.AddScenario("Gone soon", "")

	assert.True(t, session.DeleteScenario(scenario.ID))
	assert.False(t, session.DeleteScenario(scenario.ID))
	assert.Empty(t, session.Template().Scenarios)
}

func TestImpactSummary(t *testing.T) {
	session := newTestSession()
	tree := testTree()

	scenario := session.AddScenario("Bigger flat", "")
	session.SetScenarioOverride(scenario.ID, "rent", amount("1200"))
	session.AddVirtualItem(scenario.ID, "Parking", amount("80"), false)
	session.AddVirtualItem(scenario.ID, "Sublet income", amount("300"), true)

	summary, ok := session.ImpactSummary(tree, scenario.ID)
	require.True(t, ok)

	assert.True(t, summary.BaselineIncome.Equal(amount("2500")))
	assert.True(t, summary.BaselineExpenses.Equal(amount("1300")))
	assert.True(t, summary.ScenarioIncome.Equal(amount("2800")))
	assert.True(t, summary.ScenarioExpenses.Equal(amount("1680")))
	assert.Equal(t, 1, summary.OverriddenCount)

	// Net: scenario (2800-1680=1120) minus baseline (2500-1300=1200).
	assert.True(t, summary.NetDelta.Equal(amount("-80")))
}

func TestImpactSummarySkipsExcluded(t *testing.T) {
	session := newTestSession()
	session.ToggleExcludedCategory("rent")
	tree := testTree()

	scenario := session.AddScenario("Ignored override", "")
	session.SetScenarioOverride(scenario.ID, "rent", amount("1200"))

	summary, ok := session.ImpactSummary(tree, scenario.ID)
	require.True(t, ok)

	assert.True(t, summary.BaselineExpenses.Equal(amount("400")))
	assert.True(t, summary.ScenarioExpenses.Equal(amount("400")))
	assert.Zero(t, summary.OverriddenCount)
	assert.True(t, summary.NetDelta.IsZero())
}

func TestImpactSummaryUnknownScenario(t *testing.T) {
	session := newTestSession()

	_, ok := session.ImpactSummary(testTree(), "missing")
	assert.False(t, ok)
}

func TestOverrideDoesNotMarkTemplateEntriesDirty(t *testing.T) {
	session := newTestSession()
	scenario := session.AddScenario("Isolation", "")
	session.MarkClean()

	session.SetScenarioOverride(scenario.ID, "salary", decimal.RequireFromString("2600"))
	assert.True(t, session.Dirty(), "override still marks the document dirty")
	assert.True(t, session.Template().Template["salary"].Amount.Equal(amount("2500")))
}
