package source_test

import (
	"context"
	"testing"

	"github.com/budgetplanner/backend/internal/categories"
	"github.com/budgetplanner/backend/internal/source"
	"github.com/budgetplanner/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoAccountIDs(t *testing.T) []string {
	t.Helper()
	accounts, err := source.NewDemo().Accounts(context.Background())
	require.NoError(t, err)

	ids := make([]string, 0, len(accounts))
	for _, account := range accounts {
		ids = append(ids, account.ID)
	}
	return ids
}

func TestDemoCategoriesBuildATree(t *testing.T) {
	cats, err := source.NewDemo().Categories(context.Background())
	require.NoError(t, err)

	tree := categories.Build(cats)
	assert.Equal(t, len(cats), tree.Len())

	// Exactly two top-level groups: income and expenses.
	require.Len(t, tree.Roots(), 2)
	assert.Equal(t, source.DemoIncomeGroupID, tree.Category(tree.Roots()[0]).ID)
}

func TestDemoTransactionsDeterministic(t *testing.T) {
	demo := source.NewDemo()
	jan := types.NewMonth(2026, 1)

	first, err := demo.Transactions(context.Background(), jan.FirstDay(), jan.LastDay(), demoAccountIDs(t))
	require.NoError(t, err)
	second, err := demo.Transactions(context.Background(), jan.FirstDay(), jan.LastDay(), demoAccountIDs(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestDemoTransactionsWindowed(t *testing.T) {
	demo := source.NewDemo()

	transactions, err := demo.Transactions(context.Background(), "2026-01-10", "2026-01-20", demoAccountIDs(t))
	require.NoError(t, err)

	for _, tx := range transactions {
		assert.GreaterOrEqual(t, tx.BookingDate, "2026-01-10")
		assert.LessOrEqual(t, tx.BookingDate, "2026-01-20")
	}
}

func TestDemoTransactionsAccountFilter(t *testing.T) {
	demo := source.NewDemo()
	jan := types.NewMonth(2026, 1)

	transactions, err := demo.Transactions(context.Background(), jan.FirstDay(), jan.LastDay(), []string{"demo-acc-002"})
	require.NoError(t, err)

	require.NotEmpty(t, transactions)
	for _, tx := range transactions {
		assert.Equal(t, "demo-acc-002", tx.AccountID)
	}
}

func TestDemoSurpriseTransactionsHaveStableIDs(t *testing.T) {
	demo := source.NewDemo()
	jan := types.NewMonth(2026, 1)

	transactions, err := demo.Transactions(context.Background(), jan.FirstDay(), jan.LastDay(), demoAccountIDs(t))
	require.NoError(t, err)

	ids := map[int64]bool{}
	for _, tx := range transactions {
		ids[tx.ID] = true
	}

	// These ids are referenced by the pre-built unplanned bookkeeping.
	assert.True(t, ids[9001])
	assert.True(t, ids[9002])
	assert.False(t, ids[9003], "the February surprise is not in January")
}

func TestDemoTemplateMatchesCategories(t *testing.T) {
	demo := source.NewDemo()
	template := source.DemoTemplate()

	cats, err := demo.Categories(context.Background())
	require.NoError(t, err)

	known := map[string]bool{}
	for _, category := range cats {
		known[category.ID] = true
	}

	for id := range template.Template {
		assert.True(t, known[id], "template entry %s has no category", id)
	}

	require.Len(t, template.Scenarios, 1)
	assert.Equal(t, "Urlaub Kroatien", template.Scenarios[0].Name)
}

func TestFetch(t *testing.T) {
	jan := types.NewMonth(2026, 1)

	snapshot, err := source.Fetch(context.Background(), source.NewDemo(), jan.FirstDay(), jan.LastDay(), demoAccountIDs(t))
	require.NoError(t, err)

	assert.NotEmpty(t, snapshot.Accounts)
	assert.NotEmpty(t, snapshot.Categories)
	assert.NotEmpty(t, snapshot.Transactions)
}
