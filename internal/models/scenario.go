package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScenarioOverride replaces the baseline amount for one category while
// a scenario is active. Replacement line items are optional and only
// take effect when the scenario is applied to the baseline.
type ScenarioOverride struct {
	Amount    decimal.Decimal `json:"amount"`
	LineItems []LineItem      `json:"lineItems,omitempty"`
}

// VirtualItem is a synthetic income or expense amount in a scenario
// that is not tied to any category.
type VirtualItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	IsIncome bool            `json:"isIncome"`
}

// Scenario is a named, non-destructive set of overrides and virtual
// items layered over the baseline template.
type Scenario struct {
	ID           string                      `json:"id"`
	Name         string                      `json:"name"`
	Description  string                      `json:"description,omitempty"`
	Notes        string                      `json:"notes,omitempty"`
	CreatedAt    time.Time                   `json:"createdAt"`
	Overrides    map[string]ScenarioOverride `json:"overrides"`
	VirtualItems []VirtualItem               `json:"virtualItems,omitempty"`
}
