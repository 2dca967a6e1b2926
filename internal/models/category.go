// Package models contains the domain types of the budget planner.
//
// Categories, accounts and transactions mirror what the banking data
// source reports and are immutable once fetched. The budget template
// types form the persisted document that the session manager mutates.
package models

// Category is one entry of the flat, indentation-encoded category list
// reported by the banking data source.
type Category struct {
	ID          string `json:"uuid"`
	Name        string `json:"name"`
	Currency    string `json:"currency"`
	Group       bool   `json:"group"`       // Groups contain their children at a higher indentation
	Indentation int    `json:"indentation"` // Depth in the flat source ordering
	IsDefault   bool   `json:"isDefault"`
}
