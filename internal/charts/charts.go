// Package charts reshapes budget rows into chart-ready structures:
// pie slices with small-slice merging, planned-vs-actual bar items and
// the over/under-budget and unplanned alert lists.
package charts

import (
	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/categories"
	"github.com/budgetplanner/backend/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// Slices below this share of the total merge into the "Other" slice.
var smallSliceThreshold = decimal.New(2, -2)

// OtherSliceID marks the synthetic slice that collects all merged
// small slices.
const OtherSliceID = "__other__"

// ValueMode selects which row amount feeds the pie.
type ValueMode string

const (
	ValuePlanned ValueMode = "planned"
	ValueActual  ValueMode = "actual"
)

// PieSlice is one pie chart segment. Group slices keep their child rows
// so the caller can drill down a level.
type PieSlice struct {
	ID       string          `json:"uuid"`
	Name     string          `json:"name"`
	Value    decimal.Decimal `json:"value"`
	Group    bool            `json:"group"`
	Children []budget.Row    `json:"children"`
}

// RowsToPieData turns one level of rows into pie slices.
//
// Excluded rows are dropped, values are taken as absolutes under the
// requested mode and zero-value slices are removed. Every slice whose
// share of the total falls below 2% is merged into a single "Other"
// slice appended at the end, so the summed value of the output equals
// the summed value of the input.
func RowsToPieData(rows []budget.Row, mode ValueMode) []PieSlice {
	var raw []PieSlice
	for _, row := range rows {
		if row.Excluded {
			continue
		}

		value := row.Actual
		if mode == ValuePlanned {
			value = row.Planned
		}
		value = value.Abs()

		if value.IsZero() {
			continue
		}

		raw = append(raw, PieSlice{
			ID:       row.ID,
			Name:     row.Name,
			Value:    value,
			Group:    row.Group && len(row.Children) > 0,
			Children: row.Children,
		})
	}

	if len(raw) == 0 {
		return raw
	}

	total := decimal.Zero
	for _, slice := range raw {
		total = total.Add(slice.Value)
	}

	significant := make([]PieSlice, 0, len(raw))
	other := decimal.Zero

	for _, slice := range raw {
		if slice.Value.Div(total).LessThan(smallSliceThreshold) {
			other = other.Add(slice.Value)
		} else {
			significant = append(significant, slice)
		}
	}

	if other.IsPositive() {
		significant = append(significant, PieSlice{
			ID:    OtherSliceID,
			Name:  "Other",
			Value: other,
		})
	}

	return significant
}

// BarItem is one planned-vs-actual bar chart entry.
type BarItem struct {
	ID           string          `json:"uuid"`
	Name         string          `json:"name"`
	Planned      decimal.Decimal `json:"planned"`
	Actual       decimal.Decimal `json:"actual"`
	Difference   decimal.Decimal `json:"difference"`
	IsOverBudget bool            `json:"isOverBudget"`
}

// RowsToBarData emits one bar per non-excluded row that has a non-zero
// planned or actual amount.
func RowsToBarData(rows []budget.Row) []BarItem {
	var items []BarItem
	for _, row := range rows {
		if row.Excluded {
			continue
		}
		if !row.Planned.IsPositive() && !row.Actual.IsPositive() {
			continue
		}

		items = append(items, BarItem{
			ID:           row.ID,
			Name:         row.Name,
			Planned:      row.Planned,
			Actual:       row.Actual,
			Difference:   row.Difference,
			IsOverBudget: row.Actual.GreaterThan(row.Planned) && row.Planned.IsPositive(),
		})
	}
	return items
}

// OverBudgetAlert flags a category that missed its plan. OverAmount is
// the overage for expenses and the shortfall for income.
type OverBudgetAlert struct {
	ID         string          `json:"uuid"`
	Name       string          `json:"name"`
	Planned    decimal.Decimal `json:"planned"`
	Actual     decimal.Decimal `json:"actual"`
	OverAmount decimal.Decimal `json:"overAmount"`
	Severity   decimal.Decimal `json:"severity"`
}

// The floor keeps income shortfall severity finite when nothing came in.
var severityFloor = decimal.New(1, -2)

// CollectOverBudgetItems walks both row forests and flags expense leaves
// that overspent their plan and income leaves that fell short of it.
// Severity ranks both kinds on one list: actual/planned for overspend,
// planned/actual (floored) for shortfall, sorted descending.
func CollectOverBudgetItems(incomeRows, expenseRows []budget.Row) []OverBudgetAlert {
	var alerts []OverBudgetAlert

	var walkExpenses func(rows []budget.Row)
	walkExpenses = func(rows []budget.Row) {
		for _, row := range rows {
			if row.Excluded {
				continue
			}
			if row.Group && len(row.Children) > 0 {
				walkExpenses(row.Children)
				continue
			}
			if row.Planned.IsPositive() && row.Actual.GreaterThan(row.Planned) {
				alerts = append(alerts, OverBudgetAlert{
					ID:         row.ID,
					Name:       row.Name,
					Planned:    row.Planned,
					Actual:     row.Actual,
					OverAmount: row.Actual.Sub(row.Planned),
					Severity:   row.Actual.Div(row.Planned),
				})
			}
		}
	}

	var walkIncome func(rows []budget.Row)
	walkIncome = func(rows []budget.Row) {
		for _, row := range rows {
			if row.Excluded {
				continue
			}
			if row.Group && len(row.Children) > 0 {
				walkIncome(row.Children)
				continue
			}
			if row.Planned.IsPositive() && row.Actual.LessThan(row.Planned) {
				divisor := row.Actual
				if divisor.LessThan(severityFloor) {
					divisor = severityFloor
				}
				alerts = append(alerts, OverBudgetAlert{
					ID:         row.ID,
					Name:       row.Name,
					Planned:    row.Planned,
					Actual:     row.Actual,
					OverAmount: row.Planned.Sub(row.Actual),
					Severity:   row.Planned.Div(divisor),
				})
			}
		}
	}

	walkExpenses(expenseRows)
	walkIncome(incomeRows)

	slices.SortFunc(alerts, func(a, b OverBudgetAlert) int {
		return b.Severity.Cmp(a.Severity)
	})
	return alerts
}

// UnplannedAlert groups the unplanned transactions of one category.
type UnplannedAlert struct {
	CategoryID   string                        `json:"categoryUuid"`
	CategoryName string                        `json:"categoryName"`
	Transactions []models.UnplannedTransaction `json:"transactions"`
	TotalAmount  decimal.Decimal               `json:"totalAmount"`
}

// CollectUnplannedAlerts builds one alert per category carrying
// unplanned transactions in the month, resolving display names against
// the category tree. The raw category id stands in when the category is
// no longer in the tree. Alerts come out sorted by category id for a
// deterministic order.
func CollectUnplannedAlerts(unplanned map[string][]models.UnplannedTransaction, tree *categories.Tree) []UnplannedAlert {
	var alerts []UnplannedAlert

	for categoryID, transactions := range unplanned {
		if len(transactions) == 0 {
			continue
		}

		name := categoryID
		if idx, ok := tree.IndexOf(categoryID); ok {
			name = tree.Category(idx).Name
		}

		total := decimal.Zero
		for _, tx := range transactions {
			total = total.Add(tx.Amount.Abs())
		}

		alerts = append(alerts, UnplannedAlert{
			CategoryID:   categoryID,
			CategoryName: name,
			Transactions: transactions,
			TotalAmount:  total,
		})
	}

	slices.SortFunc(alerts, func(a, b UnplannedAlert) int {
		switch {
		case a.CategoryID < b.CategoryID:
			return -1
		case a.CategoryID > b.CategoryID:
			return 1
		default:
			return 0
		}
	})
	return alerts
}
