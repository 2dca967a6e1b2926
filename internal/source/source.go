// Package source defines the banking data source the engine consumes:
// accounts, the flat category list and transactions for a date window.
// The demo source generates deterministic data; a real implementation
// would talk to the banking application instead.
package source

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/budgetplanner/backend/internal/models"
)

// Source provides the raw banking data.
type Source interface {
	// Accounts returns all known accounts.
	Accounts(ctx context.Context) ([]models.Account, error)

	// Categories returns the flat category list, in display order with
	// indentation levels encoding the hierarchy.
	Categories(ctx context.Context) ([]models.Category, error)

	// Transactions returns the booked transactions of the given
	// accounts within [from, to], both "YYYY-MM-DD" inclusive.
	Transactions(ctx context.Context, from, to string, accountIDs []string) ([]models.Transaction, error)
}

// Snapshot bundles one coherent fetch of all three data sets.
type Snapshot struct {
	Accounts     []models.Account
	Categories   []models.Category
	Transactions []models.Transaction
}

// Fetch loads accounts, categories and transactions concurrently.
func Fetch(ctx context.Context, src Source, from, to string, accountIDs []string) (Snapshot, error) {
	var snapshot Snapshot

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snapshot.Accounts, err = src.Accounts(ctx)
		return err
	})
	g.Go(func() (err error) {
		snapshot.Categories, err = src.Categories(ctx)
		return err
	})
	g.Go(func() (err error) {
		snapshot.Transactions, err = src.Transactions(ctx, from, to, accountIDs)
		return err
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snapshot, nil
}
