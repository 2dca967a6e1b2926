package budget

import (
	"github.com/budgetplanner/backend/internal/models"
	"github.com/budgetplanner/backend/internal/types"
	"golang.org/x/exp/slices"
)

// MarkUnplanned records transactions as unplanned for a category in a
// month. Transactions already recorded under that category keep their
// original snapshot; the set is a union by transaction id.
func (s *Session) MarkUnplanned(month types.Month, categoryID string, transactions []models.UnplannedTransaction) {
	monthBucket, ok := s.template.Unplanned[month]
	if !ok {
		monthBucket = map[string][]models.UnplannedTransaction{}
		s.template.Unplanned[month] = monthBucket
	}

	existing := monthBucket[categoryID]
	for _, tx := range transactions {
		known := false
		for _, e := range existing {
			if e.ID == tx.ID {
				known = true
				break
			}
		}
		if !known {
			existing = append(existing, tx)
		}
	}

	monthBucket[categoryID] = existing
	s.markDirty()
}

// UnmarkUnplanned removes one transaction from a category's unplanned
// set. Empty category and month buckets are pruned.
func (s *Session) UnmarkUnplanned(month types.Month, categoryID string, transactionID int64) {
	monthBucket, ok := s.template.Unplanned[month]
	if !ok {
		return
	}

	transactions, ok := monthBucket[categoryID]
	if !ok {
		return
	}

	kept := transactions[:0]
	for _, tx := range transactions {
		if tx.ID != transactionID {
			kept = append(kept, tx)
		}
	}

	if len(kept) == 0 {
		delete(monthBucket, categoryID)
		if len(monthBucket) == 0 {
			delete(s.template.Unplanned, month)
		}
	} else {
		monthBucket[categoryID] = kept
	}
	s.markDirty()
}

// UnplannedForMonth returns the unplanned transactions of a month keyed
// by category id. The result is a copy.
func (s *Session) UnplannedForMonth(month types.Month) map[string][]models.UnplannedTransaction {
	monthBucket := s.template.Unplanned[month]
	result := make(map[string][]models.UnplannedTransaction, len(monthBucket))
	for categoryID, transactions := range monthBucket {
		result[categoryID] = append([]models.UnplannedTransaction(nil), transactions...)
	}
	return result
}

// MoveTransactions attributes transactions booked in the source month
// to a different target month. Ids already moved out of the source
// month are updated to the new target instead of duplicated.
func (s *Session) MoveTransactions(source, target types.Month, transactionIDs []int64) {
	moved := s.template.Moved[source]

	for _, id := range transactionIDs {
		updated := false
		for i := range moved {
			if moved[i].ID == id {
				moved[i].TargetMonth = target
				updated = true
				break
			}
		}
		if !updated {
			moved = append(moved, models.MovedTransaction{ID: id, TargetMonth: target})
		}
	}

	s.template.Moved[source] = moved
	s.markDirty()
}

// UnmoveTransaction reverts a move, returning the transaction to its
// booking month. Empty month buckets are pruned.
func (s *Session) UnmoveTransaction(source types.Month, transactionID int64) {
	moved, ok := s.template.Moved[source]
	if !ok {
		return
	}

	kept := moved[:0]
	for _, m := range moved {
		if m.ID != transactionID {
			kept = append(kept, m)
		}
	}

	if len(kept) == 0 {
		delete(s.template.Moved, source)
	} else {
		s.template.Moved[source] = kept
	}
	s.markDirty()
}

// MovedOutForMonth returns the ids of transactions booked in the month
// but attributed elsewhere. Callers exclude these from the month's
// aggregation.
func (s *Session) MovedOutForMonth(month types.Month) []int64 {
	moved := s.template.Moved[month]
	ids := make([]int64, 0, len(moved))
	for _, m := range moved {
		ids = append(ids, m.ID)
	}
	return ids
}

// MovedIn identifies a transaction attributed to a month it was not
// booked in, together with the month it was booked in.
type MovedIn struct {
	SourceMonth   types.Month `json:"sourceMonth"`
	TransactionID int64       `json:"transactionId"`
}

// MovedInForMonth scans all source months and returns every transaction
// attributed to the given month. The result is sorted by source month,
// then transaction id, so callers get a deterministic order out of the
// map iteration.
func (s *Session) MovedInForMonth(month types.Month) []MovedIn {
	var result []MovedIn
	for source, moved := range s.template.Moved {
		for _, m := range moved {
			if m.TargetMonth.Equal(month) {
				result = append(result, MovedIn{SourceMonth: source, TransactionID: m.ID})
			}
		}
	}

	slices.SortFunc(result, func(a, b MovedIn) int {
		if !a.SourceMonth.Equal(b.SourceMonth) {
			if a.SourceMonth.Before(b.SourceMonth) {
				return -1
			}
			return 1
		}
		switch {
		case a.TransactionID < b.TransactionID:
			return -1
		case a.TransactionID > b.TransactionID:
			return 1
		default:
			return 0
		}
	})

	return result
}
