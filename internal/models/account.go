package models

import "github.com/shopspring/decimal"

// Account is a bank account as reported by the banking data source.
// Accounts are not used in budget arithmetic, only for routing metadata
// and for restricting the transaction query window.
type Account struct {
	ID              string          `json:"uuid"`
	Name            string          `json:"name"`
	AccountNumber   string          `json:"accountNumber"`
	BankCode        string          `json:"bankCode"`
	Currency        string          `json:"currency"`
	BalanceAmount   decimal.Decimal `json:"balanceAmount"`
	BalanceCurrency string          `json:"balanceCurrency"`
	Group           bool            `json:"group"`
	Indentation     int             `json:"indentation"`
	Owner           string          `json:"owner"`
	AccountType     string          `json:"accountType"`
	Portfolio       bool            `json:"portfolio"`
}
