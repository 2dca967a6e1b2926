package models

import "github.com/shopspring/decimal"

// Transaction is a booked transaction from the banking data source.
//
// The source reports expenses as negative amounts and income as
// positive amounts. Transactions are supplied per query window and are
// never mutated by this backend.
type Transaction struct {
	ID          int64           `json:"id"` // Unique within one data source
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	BookingDate string          `json:"bookingDate"` // YYYY-MM-DD
	ValueDate   string          `json:"valueDate"`   // YYYY-MM-DD
	Name        string          `json:"name"`
	Purpose     string          `json:"purpose,omitempty"`
	CategoryID  string          `json:"categoryUuid"`
	AccountID   string          `json:"accountUuid"`
	Booked      bool            `json:"booked"`
}
