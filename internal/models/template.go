package models

import (
	"github.com/budgetplanner/backend/internal/types"
	"github.com/shopspring/decimal"
)

// LineItem is a named part of a template entry's planned amount.
// Whenever line items exist, their amounts sum to the entry amount.
// That invariant is maintained by the session commands, not by the
// aggregator.
type LineItem struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// TemplateEntry is the planned amount for one category, plus display
// metadata. SourceAccount and TargetAccount are routing metadata and
// do not participate in any arithmetic.
type TemplateEntry struct {
	Amount        decimal.Decimal `json:"amount"`
	SourceAccount string          `json:"sourceAccount,omitempty"`
	TargetAccount string          `json:"targetAccount,omitempty"`
	LineItems     []LineItem      `json:"lineItems,omitempty"`
	Note          string          `json:"note,omitempty"`
}

// BudgetSettings holds the per-budget configuration.
type BudgetSettings struct {
	Currency           string   `json:"currency"`
	Accounts           []string `json:"accounts"`           // Account id allow-list for the transaction query
	IncomeCategories   []string `json:"incomeCategories"`   // Root category ids treated as income
	ExcludedCategories []string `json:"excludedCategories"` // Category ids whose planned contribution is forced to zero
	StartMonth         string   `json:"startDate"`          // YYYY-MM
	CustomEntities     []string `json:"customEntities"`
}

// UnplannedTransaction is a snapshot of a transaction that was flagged
// as outside the plan for its month and category.
type UnplannedTransaction struct {
	ID          int64           `json:"txId"`
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	BookingDate string          `json:"bookingDate"`
	Purpose     string          `json:"purpose,omitempty"`
}

// MovedTransaction reassigns a transaction from its booking month to a
// different reporting month. Records live in the source month's bucket
// and each carry their own target month.
type MovedTransaction struct {
	ID          int64       `json:"txId"`
	TargetMonth types.Month `json:"targetMonth"`
}

// BudgetTemplate is the persisted budget document: settings, the
// per-category planned amounts, and the month-keyed bookkeeping
// sections. The on-disk shape must stay additive across versions, so
// all optional sections default to empty on load (see Normalize).
type BudgetTemplate struct {
	Name     string                   `json:"name"`
	Version  string                   `json:"version"`
	Settings BudgetSettings           `json:"settings"`
	Template map[string]TemplateEntry `json:"template"`

	Comments  map[types.Month]map[string]string                 `json:"comments,omitempty"`
	Unplanned map[types.Month]map[string][]UnplannedTransaction `json:"unplanned,omitempty"`
	Moved     map[types.Month][]MovedTransaction                `json:"moved,omitempty"`
	Scenarios []Scenario                                        `json:"scenarios,omitempty"`
}

// Normalize backfills sections that are missing from documents written
// by older versions. It never errors: a loadable document is a valid
// document.
func (b *BudgetTemplate) Normalize() {
	if b.Template == nil {
		b.Template = map[string]TemplateEntry{}
	}
	if b.Comments == nil {
		b.Comments = map[types.Month]map[string]string{}
	}
	if b.Unplanned == nil {
		b.Unplanned = map[types.Month]map[string][]UnplannedTransaction{}
	}
	if b.Moved == nil {
		b.Moved = map[types.Month][]MovedTransaction{}
	}
	if b.Settings.Accounts == nil {
		b.Settings.Accounts = []string{}
	}
	if b.Settings.IncomeCategories == nil {
		b.Settings.IncomeCategories = []string{}
	}
	if b.Settings.ExcludedCategories == nil {
		b.Settings.ExcludedCategories = []string{}
	}
	if b.Settings.CustomEntities == nil {
		b.Settings.CustomEntities = []string{}
	}
}
