package budget_test

import (
	"testing"

	"github.com/budgetplanner/backend/internal/budget"
	"github.com/budgetplanner/backend/internal/models"
	"github.com/budgetplanner/backend/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unplannedTx(id int64, name, amountStr string) models.UnplannedTransaction {
	return models.UnplannedTransaction{ID: id, Name: name, Amount: amount(amountStr), BookingDate: "2026-01-15"}
}

func TestMarkUnplannedUnionsByID(t *testing.T) {
	session := newTestSession()
	jan := types.NewMonth(2026, 1)

	session.MarkUnplanned(jan, "groceries", []models.UnplannedTransaction{
		unplannedTx(1, "Repair", "-120"),
		unplannedTx(2, "Gift", "-40"),
	})
	session.MarkUnplanned(jan, "groceries", []models.UnplannedTransaction{
		unplannedTx(2, "Gift renamed", "-40"),
		unplannedTx(3, "Vet", "-85"),
	})

	unplanned := session.UnplannedForMonth(jan)
	require.Len(t, unplanned["groceries"], 3)

	// The snapshot of an already marked transaction is kept.
	assert.Equal(t, "Gift", unplanned["groceries"][1].Name)
}

func TestUnmarkUnplannedPrunesEmptyBuckets(t *testing.T) {
	session := newTestSession()
	jan := types.NewMonth(2026, 1)

	session.MarkUnplanned(jan, "groceries", []models.UnplannedTransaction{unplannedTx(1, "Repair", "-120")})
	session.UnmarkUnplanned(jan, "groceries", 1)

	assert.Empty(t, session.UnplannedForMonth(jan))
	assert.NotContains(t, session.Template().Unplanned, jan)
}

func TestUnmarkUnplannedUnknownIsNoOp(t *testing.T) {
	session := newTestSession()
	session.MarkClean()

	session.UnmarkUnplanned(types.NewMonth(2026, 1), "groceries", 99)
	assert.Empty(t, session.UnplannedForMonth(types.NewMonth(2026, 1)))
}

func TestUnplannedForMonthReturnsCopy(t *testing.T) {
	session := newTestSession()
	jan := types.NewMonth(2026, 1)
	session.MarkUnplanned(jan, "groceries", []models.UnplannedTransaction{unplannedTx(1, "Repair", "-120")})

	unplanned := session.UnplannedForMonth(jan)
	unplanned["groceries"][0].Name = "mutated"

	assert.Equal(t, "Repair", session.UnplannedForMonth(jan)["groceries"][0].Name)
}

func TestMoveTransactions(t *testing.T) {
	session := newTestSession()
	jan := types.NewMonth(2026, 1)
	feb := types.NewMonth(2026, 2)

	session.MoveTransactions(jan, feb, []int64{10, 11})

	assert.Equal(t, []int64{10, 11}, session.MovedOutForMonth(jan))
	assert.Equal(t, []budget.MovedIn{
		{SourceMonth: jan, TransactionID: 10},
		{SourceMonth: jan, TransactionID: 11},
	}, session.MovedInForMonth(feb))
}

func TestMoveTransactionsRetargetsExistingMove(t *testing.T) {
	session := newTestSession()
	jan := types.NewMonth(2026, 1)
	feb := types.NewMonth(2026, 2)
	mar := types.NewMonth(2026, 3)

	session.MoveTransactions(jan, feb, []int64{10})
	session.MoveTransactions(jan, mar, []int64{10})

	// The transaction is moved once, now pointing at March.
	assert.Equal(t, []int64{10}, session.MovedOutForMonth(jan))
	assert.Empty(t, session.MovedInForMonth(feb))
	assert.Equal(t, []budget.MovedIn{{SourceMonth: jan, TransactionID: 10}}, session.MovedInForMonth(mar))
}

func TestUnmoveTransaction(t *testing.T) {
	session := newTestSession()
	jan := types.NewMonth(2026, 1)
	feb := types.NewMonth(2026, 2)

	session.MoveTransactions(jan, feb, []int64{10})
	session.UnmoveTransaction(jan, 10)

	assert.Empty(t, session.MovedOutForMonth(jan))
	assert.Empty(t, session.MovedInForMonth(feb))
	assert.NotContains(t, session.Template().Moved, jan)
}

func TestMovedInForMonthSortedAcrossSources(t *testing.T) {
	session := newTestSession()
	jan := types.NewMonth(2026, 1)
	feb := types.NewMonth(2026, 2)
	mar := types.NewMonth(2026, 3)

	session.MoveTransactions(feb, mar, []int64{7})
	session.MoveTransactions(jan, mar, []int64{20, 5})

	assert.Equal(t, []budget.MovedIn{
		{SourceMonth: jan, TransactionID: 5},
		{SourceMonth: jan, TransactionID: 20},
		{SourceMonth: feb, TransactionID: 7},
	}, session.MovedInForMonth(mar))
}
