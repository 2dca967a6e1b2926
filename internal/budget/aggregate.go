// Package budget implements the budget aggregation core: the
// planned/actual rollup over the category tree, the session manager
// owning the budget template, scenario resolution and the
// unplanned/moved transaction bookkeeping.
//
// Everything in this package is synchronous and free of I/O. Missing
// data never errors: a category without a template entry plans 0, a
// transaction for an unknown category is ignored.
package budget

import (
	"github.com/budgetplanner/backend/internal/categories"
	"github.com/budgetplanner/backend/internal/models"
	"github.com/shopspring/decimal"
)

// TransactionGroup is the per-category slice of transactions with
// their signed total.
type TransactionGroup struct {
	Total        decimal.Decimal      `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

// GroupTransactions groups transactions by category id, summing the
// signed amounts. The data source reports expenses as negative and
// income as positive amounts.
func GroupTransactions(transactions []models.Transaction) map[string]TransactionGroup {
	groups := make(map[string]TransactionGroup)

	for _, tx := range transactions {
		group := groups[tx.CategoryID]
		group.Total = group.Total.Add(tx.Amount)
		group.Transactions = append(group.Transactions, tx)
		groups[tx.CategoryID] = group
	}

	return groups
}

// Row is the aggregation result for one category node. Rows mirror the
// tree shape of the categories they were computed from.
type Row struct {
	ID            string            `json:"uuid"`
	Name          string            `json:"name"`
	Group         bool              `json:"group"`
	Indentation   int               `json:"indentation"`
	IsIncome      bool              `json:"isIncome"`
	Planned       decimal.Decimal   `json:"planned"`
	Actual        decimal.Decimal   `json:"actual"`
	Difference    decimal.Decimal   `json:"difference"`
	Excluded      bool              `json:"excluded"`
	SourceAccount string            `json:"sourceAccount,omitempty"`
	TargetAccount string            `json:"targetAccount,omitempty"`
	LineItems     []models.LineItem `json:"lineItems,omitempty"`
	Note          string            `json:"note,omitempty"`
	Children      []Row             `json:"children"`
}

// ComputeRows aggregates planned and actual amounts over the given
// subtrees, post-order.
//
// Group nodes with children sum their children. Leaf nodes (and groups
// without children) take the template amount as planned and the signed
// transaction totals of all reachable leaves as actual; for expense
// subtrees the actual is flipped to its absolute value since the
// source reports expenses as negative amounts.
//
// Excluded categories plan 0, for groups regardless of their
// children, while their actual is kept for visibility. Their
// difference is always 0.
func ComputeRows(
	tree *categories.Tree,
	nodes []int,
	template map[string]models.TemplateEntry,
	groups map[string]TransactionGroup,
	excludedIDs []string,
	isIncome bool,
) []Row {
	return computeRows(tree, nodes, template, groups, newIDSet(excludedIDs), isIncome)
}

func computeRows(
	tree *categories.Tree,
	nodes []int,
	template map[string]models.TemplateEntry,
	groups map[string]TransactionGroup,
	excluded idSet,
	isIncome bool,
) []Row {
	rows := make([]Row, 0, len(nodes))

	for _, idx := range nodes {
		category := tree.Category(idx)
		isExcluded := excluded.contains(category.ID)

		children := computeRows(tree, tree.Children(idx), template, groups, excluded, isIncome)

		var planned, actual decimal.Decimal
		if category.Group && len(children) > 0 {
			for _, child := range children {
				planned = planned.Add(child.Planned)
				actual = actual.Add(child.Actual)
			}
		} else {
			if !isExcluded {
				planned = template[category.ID].Amount
			}

			for _, leafID := range tree.LeafIDs(idx) {
				actual = actual.Add(groups[leafID].Total)
			}
			if !isIncome {
				actual = actual.Abs()
			}
		}

		// An excluded group plans 0 no matter what its children carry
		if isExcluded && category.Group {
			planned = decimal.Zero
		}

		var difference decimal.Decimal
		if !isExcluded {
			if isIncome {
				difference = actual.Sub(planned)
			} else {
				difference = planned.Sub(actual)
			}
		}

		entry := template[category.ID]
		rows = append(rows, Row{
			ID:            category.ID,
			Name:          category.Name,
			Group:         category.Group,
			Indentation:   category.Indentation,
			IsIncome:      isIncome,
			Planned:       planned,
			Actual:        actual,
			Difference:    difference,
			Excluded:      isExcluded,
			SourceAccount: entry.SourceAccount,
			TargetAccount: entry.TargetAccount,
			LineItems:     entry.LineItems,
			Note:          entry.Note,
			Children:      children,
		})
	}

	return rows
}

// MonthSummary is the scalar rollup over the income and expense row
// forests of one month.
type MonthSummary struct {
	TotalIncomePlanned   decimal.Decimal `json:"totalIncomePlanned"`
	TotalIncomeActual    decimal.Decimal `json:"totalIncomeActual"`
	TotalExpensesPlanned decimal.Decimal `json:"totalExpensesPlanned"`
	TotalExpensesActual  decimal.Decimal `json:"totalExpensesActual"`
	NetPlanned           decimal.Decimal `json:"netPlanned"`
	NetActual            decimal.Decimal `json:"netActual"`
}

// Summarize rolls planned and actual up across both row forests.
// Group rows with children are recursed into instead of trusting their
// already-aggregated fields, and excluded rows are skipped at every
// level. Only a row's own exclusion flag counts, not its parent's.
func Summarize(incomeRows, expenseRows []Row) MonthSummary {
	incomePlanned, incomeActual := sumRows(incomeRows)
	expensesPlanned, expensesActual := sumRows(expenseRows)

	return MonthSummary{
		TotalIncomePlanned:   incomePlanned,
		TotalIncomeActual:    incomeActual,
		TotalExpensesPlanned: expensesPlanned,
		TotalExpensesActual:  expensesActual,
		NetPlanned:           incomePlanned.Sub(expensesPlanned),
		NetActual:            incomeActual.Sub(expensesActual),
	}
}

func sumRows(rows []Row) (planned, actual decimal.Decimal) {
	for _, row := range rows {
		if row.Excluded {
			continue
		}

		if row.Group && len(row.Children) > 0 {
			childPlanned, childActual := sumRows(row.Children)
			planned = planned.Add(childPlanned)
			actual = actual.Add(childActual)
			continue
		}

		planned = planned.Add(row.Planned)
		actual = actual.Add(row.Actual)
	}

	return planned, actual
}

type idSet map[string]struct{}

func newIDSet(ids []string) idSet {
	set := make(idSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func (s idSet) contains(id string) bool {
	_, ok := s[id]
	return ok
}
