package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	CashAccount  AccountType = "cash"
	BankAccount  AccountType = "bank"
	CardAccount  AccountType = "card"
	OtherAccount AccountType = "other"
)

// DefaultAccountID is the account reference stored on transactions that
// were recorded without one.
const DefaultAccountID = "Cash"

type (
	TransactionType string

	AccountType string

	Transaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		Category    string          `json:"category"`              // denormalized category name
		SubCategory string          `json:"subCategory,omitempty"` // optional
		Date        time.Time       `json:"date"`
		Description string          `json:"description,omitempty"`
		AccountID   string          `json:"accountId"`
	}

	Category struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		Icon          string          `json:"icon"`
		Type          TransactionType `json:"type"`
		SubCategories []string        `json:"subCategories"`
	}

	Account struct {
		ID   string      `json:"id"`
		Name string      `json:"name"`
		Type AccountType `json:"type"`
		// Balance is a declared opening figure. The real balance is always
		// derived from transactions.
		Balance *decimal.Decimal `json:"balance,omitempty"`
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrInvalidDate        = errors.New("invalid date")
	ErrEmptyName          = errors.New("empty name")
	ErrInvalidAccountType = errors.New("invalid account type")
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Valid reports whether t is one of the known account kinds.
func (t AccountType) Valid() bool {
	switch t {
	case CashAccount, BankAccount, CardAccount, OtherAccount:
		return true
	default:
		return false
	}
}

// Signed returns the amount with income positive and expense negative.
func (tx Transaction) Signed() decimal.Decimal {
	if tx.Type == Expense {
		return tx.Amount.Neg()
	}
	return tx.Amount
}

// Validate checks the write-time invariants of a transaction. Amount sign and
// magnitude are not checked.
func (tx Transaction) Validate() error {
	if !tx.Type.Valid() {
		return ErrInvalidType
	}
	if tx.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Normalize fills write-time defaults.
func (tx Transaction) Normalize() Transaction {
	tx.Category = strings.TrimSpace(tx.Category)
	tx.SubCategory = strings.TrimSpace(tx.SubCategory)
	tx.Description = strings.TrimSpace(tx.Description)
	tx.AccountID = strings.TrimSpace(tx.AccountID)
	if tx.AccountID == "" {
		tx.AccountID = DefaultAccountID
	}
	return tx
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// HasSubCategory reports whether name is already listed under c.
func (c Category) HasSubCategory(name string) bool {
	for _, s := range c.SubCategories {
		if s == name {
			return true
		}
	}
	return false
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Type.Valid() {
		return ErrInvalidAccountType
	}
	return nil
}
