package budget

import (
	"time"

	"github.com/budgetplanner/backend/internal/categories"
	"github.com/budgetplanner/backend/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Overrides closer to the baseline than this are "no change" and are
// not stored. The same threshold decides whether a leaf counts as
// overridden in the impact summary.
var overrideEpsilon = decimal.New(5, -3)

func (s *Session) scenarioIndex(scenarioID string) int {
	for i, scenario := range s.template.Scenarios {
		if scenario.ID == scenarioID {
			return i
		}
	}
	return -1
}

// Scenario returns a scenario by id.
func (s *Session) Scenario(scenarioID string) (models.Scenario, bool) {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return models.Scenario{}, false
	}
	return s.template.Scenarios[idx], true
}

// AddScenario creates a new empty scenario and returns it.
func (s *Session) AddScenario(name, description string) models.Scenario {
	scenario := models.Scenario{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		Overrides:   map[string]models.ScenarioOverride{},
	}

	s.template.Scenarios = append(s.template.Scenarios, scenario)
	s.markDirty()
	return scenario
}

// DeleteScenario removes a scenario. Unknown ids are a no-op.
func (s *Session) DeleteScenario(scenarioID string) bool {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return false
	}

	s.template.Scenarios = append(s.template.Scenarios[:idx], s.template.Scenarios[idx+1:]...)
	s.markDirty()
	return true
}

// ScenarioUpdate carries the scenario metadata fields to change. Nil
// fields are left untouched.
type ScenarioUpdate struct {
	Name        *string
	Description *string
	Notes       *string
}

// UpdateScenario applies a partial metadata update to a scenario.
func (s *Session) UpdateScenario(scenarioID string, update ScenarioUpdate) {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return
	}

	scenario := &s.template.Scenarios[idx]
	if update.Name != nil {
		scenario.Name = *update.Name
	}
	if update.Description != nil {
		scenario.Description = *update.Description
	}
	if update.Notes != nil {
		scenario.Notes = *update.Notes
	}
	s.markDirty()
}

// ResolvedTemplate returns the baseline template with the scenario's
// override amounts layered on top. Entries are copied, so the result
// never aliases baseline entries for mutation. If the scenario id is
// unknown, the baseline map itself is returned and must be treated as
// read-only by the caller.
func (s *Session) ResolvedTemplate(scenarioID string) map[string]models.TemplateEntry {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return s.template.Template
	}

	resolved := make(map[string]models.TemplateEntry, len(s.template.Template))
	for categoryID, entry := range s.template.Template {
		resolved[categoryID] = entry
	}

	// Only the amount is replaced; line items, notes and routing stay
	// at their baseline values while a scenario is viewed.
	for categoryID, override := range s.template.Scenarios[idx].Overrides {
		entry := resolved[categoryID]
		entry.Amount = override.Amount
		resolved[categoryID] = entry
	}

	return resolved
}

// SetScenarioOverride stores an override for a category. An amount
// within the epsilon of the baseline amount removes any existing
// override instead, so "no change" is never persisted. Any replacement
// line items a previous override carried are discarded. Unknown
// scenario ids are a no-op.
func (s *Session) SetScenarioOverride(scenarioID, categoryID string, amount decimal.Decimal) {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return
	}

	scenario := &s.template.Scenarios[idx]
	if scenario.Overrides == nil {
		scenario.Overrides = map[string]models.ScenarioOverride{}
	}

	baseline := s.template.Template[categoryID].Amount
	if amount.Sub(baseline).Abs().LessThan(overrideEpsilon) {
		delete(scenario.Overrides, categoryID)
	} else {
		scenario.Overrides[categoryID] = models.ScenarioOverride{Amount: amount}
	}
	s.markDirty()
}

// ApplyScenarioToBaseline writes every override of a scenario into the
// baseline template (amount always, line items when the override
// carries them) and then deletes the scenario. This promotion is
// one-way and cannot be undone.
func (s *Session) ApplyScenarioToBaseline(scenarioID string) bool {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return false
	}

	for categoryID, override := range s.template.Scenarios[idx].Overrides {
		entry := s.template.Template[categoryID]
		entry.Amount = override.Amount
		if len(override.LineItems) > 0 {
			entry.LineItems = append([]models.LineItem(nil), override.LineItems...)
		}
		s.template.Template[categoryID] = entry
	}

	s.template.Scenarios = append(s.template.Scenarios[:idx], s.template.Scenarios[idx+1:]...)
	s.markDirty()
	return true
}

// DuplicateScenario deep-copies a scenario under a fresh id. Virtual
// items get fresh ids as well so the copies never share identity with
// the original.
func (s *Session) DuplicateScenario(scenarioID string) (models.Scenario, bool) {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return models.Scenario{}, false
	}
	original := s.template.Scenarios[idx]

	duplicate := models.Scenario{
		ID:          uuid.NewString(),
		Name:        original.Name + " (copy)",
		Description: original.Description,
		Notes:       original.Notes,
		CreatedAt:   time.Now().UTC(),
		Overrides:   make(map[string]models.ScenarioOverride, len(original.Overrides)),
	}

	for categoryID, override := range original.Overrides {
		copied := models.ScenarioOverride{Amount: override.Amount}
		if len(override.LineItems) > 0 {
			copied.LineItems = append([]models.LineItem(nil), override.LineItems...)
		}
		duplicate.Overrides[categoryID] = copied
	}

	for _, item := range original.VirtualItems {
		item.ID = uuid.NewString()
		duplicate.VirtualItems = append(duplicate.VirtualItems, item)
	}

	s.template.Scenarios = append(s.template.Scenarios, duplicate)
	s.markDirty()
	return duplicate, true
}

// AddVirtualItem appends a synthetic amount to a scenario.
func (s *Session) AddVirtualItem(scenarioID, name string, amount decimal.Decimal, isIncome bool) (models.VirtualItem, bool) {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return models.VirtualItem{}, false
	}

	item := models.VirtualItem{
		ID:       uuid.NewString(),
		Name:     name,
		Amount:   amount,
		IsIncome: isIncome,
	}

	s.template.Scenarios[idx].VirtualItems = append(s.template.Scenarios[idx].VirtualItems, item)
	s.markDirty()
	return item, true
}

// VirtualItemUpdate carries the virtual item fields to change. Nil
// fields are left untouched.
type VirtualItemUpdate struct {
	Name     *string
	Amount   *decimal.Decimal
	IsIncome *bool
}

// UpdateVirtualItem applies a partial update to one virtual item.
func (s *Session) UpdateVirtualItem(scenarioID, itemID string, update VirtualItemUpdate) {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return
	}

	items := s.template.Scenarios[idx].VirtualItems
	for i := range items {
		if items[i].ID != itemID {
			continue
		}

		if update.Name != nil {
			items[i].Name = *update.Name
		}
		if update.Amount != nil {
			items[i].Amount = *update.Amount
		}
		if update.IsIncome != nil {
			items[i].IsIncome = *update.IsIncome
		}
		s.markDirty()
		return
	}
}

// RemoveVirtualItem deletes a virtual item from a scenario.
func (s *Session) RemoveVirtualItem(scenarioID, itemID string) {
	idx := s.scenarioIndex(scenarioID)
	if idx < 0 {
		return
	}

	scenario := &s.template.Scenarios[idx]
	items := scenario.VirtualItems[:0]
	for _, item := range scenario.VirtualItems {
		if item.ID != itemID {
			items = append(items, item)
		}
	}

	if len(items) == 0 {
		scenario.VirtualItems = nil
	} else {
		scenario.VirtualItems = items
	}
	s.markDirty()
}

// ScenarioImpactSummary compares a scenario against the baseline.
type ScenarioImpactSummary struct {
	BaselineIncome   decimal.Decimal `json:"baselineIncome"`
	BaselineExpenses decimal.Decimal `json:"baselineExpenses"`
	ScenarioIncome   decimal.Decimal `json:"scenarioIncome"`
	ScenarioExpenses decimal.Decimal `json:"scenarioExpenses"`
	OverriddenCount  int             `json:"overriddenCount"`
	NetDelta         decimal.Decimal `json:"netDelta"`
}

// ComputeScenarioImpact walks the category roots once and accumulates
// baseline and scenario totals from each leaf's template amount under
// the two templates.
//
// A leaf counts as income when its root ancestor's id is in the income
// set, not when its own id is. Excluded categories are skipped
// entirely, on both the baseline and the scenario side. Virtual items
// are added to the scenario totals after the tree walk; they have no
// baseline counterpart.
func ComputeScenarioImpact(
	tree *categories.Tree,
	baseline, resolved map[string]models.TemplateEntry,
	scenario models.Scenario,
	incomeIDs, excludedIDs []string,
) ScenarioImpactSummary {
	var summary ScenarioImpactSummary
	excluded := newIDSet(excludedIDs)
	income := newIDSet(incomeIDs)

	var walk func(idx int, isIncome bool)
	walk = func(idx int, isIncome bool) {
		category := tree.Category(idx)
		if excluded.contains(category.ID) {
			return
		}

		children := tree.Children(idx)
		if category.Group && len(children) > 0 {
			for _, child := range children {
				walk(child, isIncome)
			}
			return
		}

		baselineAmount := baseline[category.ID].Amount
		scenarioAmount := resolved[category.ID].Amount

		if isIncome {
			summary.BaselineIncome = summary.BaselineIncome.Add(baselineAmount)
			summary.ScenarioIncome = summary.ScenarioIncome.Add(scenarioAmount)
		} else {
			summary.BaselineExpenses = summary.BaselineExpenses.Add(baselineAmount)
			summary.ScenarioExpenses = summary.ScenarioExpenses.Add(scenarioAmount)
		}

		if scenarioAmount.Sub(baselineAmount).Abs().GreaterThanOrEqual(overrideEpsilon) {
			summary.OverriddenCount++
		}
	}

	for _, root := range tree.Roots() {
		walk(root, income.contains(tree.Category(root).ID))
	}

	for _, item := range scenario.VirtualItems {
		if item.IsIncome {
			summary.ScenarioIncome = summary.ScenarioIncome.Add(item.Amount)
		} else {
			summary.ScenarioExpenses = summary.ScenarioExpenses.Add(item.Amount)
		}
	}

	summary.NetDelta = summary.ScenarioIncome.Sub(summary.ScenarioExpenses).
		Sub(summary.BaselineIncome.Sub(summary.BaselineExpenses))

	return summary
}

// ImpactSummary resolves a scenario and computes its impact against
// the session's baseline.
func (s *Session) ImpactSummary(tree *categories.Tree, scenarioID string) (ScenarioImpactSummary, bool) {
	scenario, ok := s.Scenario(scenarioID)
	if !ok {
		return ScenarioImpactSummary{}, false
	}

	return ComputeScenarioImpact(
		tree,
		s.template.Template,
		s.ResolvedTemplate(scenarioID),
		scenario,
		s.template.Settings.IncomeCategories,
		s.template.Settings.ExcludedCategories,
	), true
}
