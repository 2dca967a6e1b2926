// Package narrative renders budget data as plain text for
// language-model consumption: the category forests as indented lines
// plus a scalar month summary.
package narrative

import (
	"fmt"
	"strings"
	"time"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/types"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Amounts are formatted with German number conventions, matching the
// settlement currency display the rest of the system uses.
var printer = message.NewPrinter(language.German)

func formatAmount(amount decimal.Decimal) string {
	value, _ := amount.Float64()
	return printer.Sprintf("%.2f", value)
}

// FormatRows renders a row forest as indented plain-text lines. Group
// rows with children become a bracketed heading with their children
// indented below; leaf rows carry planned, actual and the signed
// difference between them. Excluded rows are left out.
func FormatRows(rows []budget.Row) string {
	var lines []string
	appendRows(&lines, rows, 0)
	return strings.Join(lines, "\n")
}

func appendRows(lines *[]string, rows []budget.Row, indent int) {
	prefix := strings.Repeat("  ", indent)

	for _, row := range rows {
		if row.Excluded {
			continue
		}

		if row.Group && len(row.Children) > 0 {
			*lines = append(*lines, fmt.Sprintf("%s[%s]", prefix, row.Name))
			appendRows(lines, row.Children, indent+1)
			continue
		}

		diff := row.Actual.Sub(row.Planned)
		sign := ""
		if !diff.IsNegative() {
			sign = "+"
		}
		*lines = append(*lines, fmt.Sprintf("%s%s: planned %s, actual %s, diff %s%s",
			prefix, row.Name, formatAmount(row.Planned), formatAmount(row.Actual), sign, formatAmount(diff)))
	}
}

// BuildBudgetContext assembles the full plain-text budget description
// for one month: a preamble, the scalar summary and both category
// forests. The scenario name is included when one is active.
func BuildBudgetContext(
	incomeRows, expenseRows []budget.Row,
	summary budget.MonthSummary,
	month types.Month,
	scenarioName string,
) string {
	parts := []string{
		"You are a helpful financial advisor analyzing a personal budget.",
		"Current month: " + time.Time(month).Format("January 2006"),
	}

	if scenarioName != "" {
		parts = append(parts, fmt.Sprintf("Active scenario: %q", scenarioName))
	}

	parts = append(parts,
		"",
		"== Summary ==",
		fmt.Sprintf("Income planned: %s | actual: %s",
			formatAmount(summary.TotalIncomePlanned), formatAmount(summary.TotalIncomeActual)),
		fmt.Sprintf("Expenses planned: %s | actual: %s",
			formatAmount(summary.TotalExpensesPlanned), formatAmount(summary.TotalExpensesActual)),
		fmt.Sprintf("Net planned: %s | net actual: %s",
			formatAmount(summary.NetPlanned), formatAmount(summary.NetActual)),
		"",
		"== Income Categories ==",
		FormatRows(incomeRows),
		"",
		"== Expense Categories ==",
		FormatRows(expenseRows),
	)

	return strings.Join(parts, "\n")
}
