package budget_test

import (
	"testing"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/categories"
	"github.com/budgetplanner/backend/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cat(id, name string, group bool, indentation int) models.Category {
	return models.Category{ID: id, Name: name, Currency: "EUR", Group: group, Indentation: indentation}
}

func testTree() *categories.Tree {
	return categories.Build([]models.Category{
		cat("income", "Income", true, 0),
		cat("salary", "Salary", false, 1),
		cat("expenses", "Expenses", true, 0),
		cat("housing", "Housing", true, 1),
		cat("rent", "Rent", false, 2),
		cat("utilities", "Utilities", false, 2),
		cat("groceries", "Groceries", false, 1),
	})
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(id int64, categoryID, amountStr string) models.Transaction {
	return models.Transaction{
		ID:         id,
		CategoryID: categoryID,
		Amount:     amount(amountStr),
		Currency:   "EUR",
		Name:       "tx",
	}
}

func findRow(t *testing.T, rows []budget.Row, id string) budget.Row {
	t.Helper()
	for _, row := range rows {
		if row.ID == id {
			return row
		}
		if found, ok := findRowIn(row.Children, id); ok {
			return found
		}
	}
	t.Fatalf("row %q not found", id)
	return budget.Row{}
}

func findRowIn(rows []budget.Row, id string) (budget.Row, bool) {
	for _, row := range rows {
		if row.ID == id {
			return row, true
		}
		if found, ok := findRowIn(row.Children, id); ok {
			return found, true
		}
	}
	return budget.Row{}, false
}

func TestGroupTransactions(t *testing.T) {
	groups := budget.GroupTransactions([]models.Transaction{
		tx(1, "rent", "-900"),
		tx(2, "rent", "-50.50"),
		tx(3, "salary", "2500"),
	})

	assert.True(t, groups["rent"].Total.Equal(amount("-950.50")))
	assert.Len(t, groups["rent"].Transactions, 2)
	assert.True(t, groups["salary"].Total.Equal(amount("2500")))
}

func TestComputeRowsGroupSumsChildren(t *testing.T) {
	tree := testTree()
	template := map[string]models.TemplateEntry{
		"rent":      {Amount: amount("900")},
		"utilities": {Amount: amount("150")},
		"groceries": {Amount: amount("400")},
	}
	groups := budget.GroupTransactions([]models.Transaction{
		tx(1, "rent", "-900"),
		tx(2, "utilities", "-120"),
		tx(3, "groceries", "-380"),
	})

	_, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	rows := budget.ComputeRows(tree, expenseRoots, template, groups, nil, false)

	housing := findRow(t, rows, "housing")
	rent := findRow(t, rows, "rent")
	utilities := findRow(t, rows, "utilities")

	// A group's planned and actual are exactly the sum of its children.
	assert.True(t, housing.Planned.Equal(rent.Planned.Add(utilities.Planned)))
	assert.True(t, housing.Actual.Equal(rent.Actual.Add(utilities.Actual)))

	expenses := findRow(t, rows, "expenses")
	assert.True(t, expenses.Planned.Equal(amount("1450")))
	assert.True(t, expenses.Actual.Equal(amount("1400")))
}

func TestComputeRowsExpenseActualIsAbsolute(t *testing.T) {
	tree := testTree()
	groups := budget.GroupTransactions([]models.Transaction{tx(1, "rent", "-900")})

	_, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	rows := budget.ComputeRows(tree, expenseRoots, nil, groups, nil, false)

	rent := findRow(t, rows, "rent")
	assert.True(t, rent.Actual.Equal(amount("900")), "expense actuals flip to absolute value")
}

func TestComputeRowsDifferenceOrientation(t *testing.T) {
	tree := testTree()
	template := map[string]models.TemplateEntry{
		"salary": {Amount: amount("2500")},
		"rent":   {Amount: amount("900")},
	}
	groups := budget.GroupTransactions([]models.Transaction{
		tx(1, "salary", "2600"),
		tx(2, "rent", "-950"),
	})

	incomeRoots, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	incomeRows := budget.ComputeRows(tree, incomeRoots, template, groups, nil, true)
	expenseRows := budget.ComputeRows(tree, expenseRoots, template, groups, nil, false)

	// Income: positive difference means earned more than planned.
	salary := findRow(t, incomeRows, "salary")
	assert.True(t, salary.Difference.Equal(amount("100")))

	// Expense: negative difference means overspent.
	rent := findRow(t, expenseRows, "rent")
	assert.True(t, rent.Difference.Equal(amount("-50")))
}

func TestComputeRowsExcluded(t *testing.T) {
	tree := testTree()
	template := map[string]models.TemplateEntry{
		"rent":      {Amount: amount("900")},
		"utilities": {Amount: amount("150")},
	}
	groups := budget.GroupTransactions([]models.Transaction{tx(1, "rent", "-900")})

	_, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	rows := budget.ComputeRows(tree, expenseRoots, template, groups, []string{"rent"}, false)

	// Excluded leaf plans 0 and has difference 0, actual stays visible.
	rent := findRow(t, rows, "rent")
	assert.True(t, rent.Excluded)
	assert.True(t, rent.Planned.IsZero())
	assert.True(t, rent.Actual.Equal(amount("900")))
	assert.True(t, rent.Difference.IsZero())

	// The parent still sums what the excluded child reports.
	housing := findRow(t, rows, "housing")
	assert.True(t, housing.Planned.Equal(amount("150")))
}

func TestComputeRowsExcludedGroupPlansZero(t *testing.T) {
	tree := testTree()
	template := map[string]models.TemplateEntry{
		"rent":      {Amount: amount("900")},
		"utilities": {Amount: amount("150")},
	}

	_, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	rows := budget.ComputeRows(tree, expenseRoots, template, nil, []string{"housing"}, false)

	housing := findRow(t, rows, "housing")
	assert.True(t, housing.Excluded)
	assert.True(t, housing.Planned.IsZero(), "excluded group plans 0 regardless of children")

	// Children themselves are not excluded and keep their own plans.
	rent := findRow(t, rows, "rent")
	assert.True(t, rent.Planned.Equal(amount("900")))
}

func TestComputeRowsMissingTemplatePlansZero(t *testing.T) {
	tree := testTree()

	_, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	rows := budget.ComputeRows(tree, expenseRoots, nil, nil, nil, false)

	groceries := findRow(t, rows, "groceries")
	assert.True(t, groceries.Planned.IsZero())
	assert.True(t, groceries.Actual.IsZero())
	assert.True(t, groceries.Difference.IsZero())
}

func TestComputeRowsUnknownCategoryIgnored(t *testing.T) {
	tree := testTree()
	groups := budget.GroupTransactions([]models.Transaction{
		tx(1, "rent", "-900"),
		tx(2, "no-such-category", "-123"),
	})

	_, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	rows := budget.ComputeRows(tree, expenseRoots, nil, groups, nil, false)

	expenses := findRow(t, rows, "expenses")
	assert.True(t, expenses.Actual.Equal(amount("900")))
}

func TestComputeRowsCopiesEntryMetadata(t *testing.T) {
	tree := testTree()
	template := map[string]models.TemplateEntry{
		"rent": {
			Amount:        amount("900"),
			SourceAccount: "acc-1",
			TargetAccount: "acc-2",
			Note:          "cold rent",
		},
	}

	_, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	rows := budget.ComputeRows(tree, expenseRoots, template, nil, nil, false)

	rent := findRow(t, rows, "rent")
	assert.Equal(t, "acc-1", rent.SourceAccount)
	assert.Equal(t, "acc-2", rent.TargetAccount)
	assert.Equal(t, "cold rent", rent.Note)
}

func TestSummarize(t *testing.T) {
	tree := testTree()
	template := map[string]models.TemplateEntry{
		"salary":    {Amount: amount("2500")},
		"rent":      {Amount: amount("900")},
		"utilities": {Amount: amount("150")},
		"groceries": {Amount: amount("400")},
	}
	groups := budget.GroupTransactions([]models.Transaction{
		tx(1, "salary", "2500"),
		tx(2, "rent", "-900"),
		tx(3, "groceries", "-450"),
	})

	incomeRoots, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	incomeRows := budget.ComputeRows(tree, incomeRoots, template, groups, nil, true)
	expenseRows := budget.ComputeRows(tree, expenseRoots, template, groups, nil, false)

	summary := budget.Summarize(incomeRows, expenseRows)

	assert.True(t, summary.TotalIncomePlanned.Equal(amount("2500")))
	assert.True(t, summary.TotalIncomeActual.Equal(amount("2500")))
	assert.True(t, summary.TotalExpensesPlanned.Equal(amount("1450")))
	assert.True(t, summary.TotalExpensesActual.Equal(amount("1350")))
	assert.True(t, summary.NetPlanned.Equal(amount("1050")))
	assert.True(t, summary.NetActual.Equal(amount("1150")))
}

func TestSummarizeSkipsExcludedRows(t *testing.T) {
	tree := testTree()
	template := map[string]models.TemplateEntry{
		"rent":      {Amount: amount("900")},
		"utilities": {Amount: amount("150")},
	}
	groups := budget.GroupTransactions([]models.Transaction{tx(1, "rent", "-900")})

	_, expenseRoots := tree.SplitIncomeExpense([]string{"income"})
	rows := budget.ComputeRows(tree, expenseRoots, template, groups, []string{"rent"}, false)

	summary := budget.Summarize(nil, rows)

	// The excluded leaf contributes neither planned nor actual to the
	// totals, even though its row still shows the actual.
	assert.True(t, summary.TotalExpensesPlanned.Equal(amount("150")))
	assert.True(t, summary.TotalExpensesActual.IsZero())
	require.True(t, findRow(t, rows, "rent").Actual.Equal(amount("900")))
}
