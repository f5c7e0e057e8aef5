package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
	"moneymanager/internal/storage"
)

// ErrLastAccount rejects deleting the only remaining account.
var ErrLastAccount = errors.New("you must have at least one account")

var accountsKey = storage.NewKey(AccountsKey, core.DefaultAccounts)

// AccountPatch holds the fields to change; nil fields are left alone.
type AccountPatch struct {
	Name    *string
	Type    *core.AccountType
	Balance *decimal.Decimal
}

// Accounts is the account collection. It never becomes empty.
type Accounts struct {
	store  *storage.Store
	logger *log.Logger
	newID  func() string
}

func NewAccounts(store *storage.Store, logger *log.Logger) *Accounts {
	if logger == nil {
		logger = log.Default()
	}
	return &Accounts{
		store:  store,
		logger: logger.WithComponent(log.ComponentRepository),
		newID:  uuid.NewString,
	}
}

func (r *Accounts) List(ctx context.Context) ([]core.Account, error) {
	accts, err := storage.Get(ctx, r.store, accountsKey)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return cloneAccounts(accts), nil
}

// Create appends a with a fresh id.
func (r *Accounts) Create(ctx context.Context, a core.Account) (core.Account, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return core.Account{}, err
	}
	a.ID = r.newID()

	err := storage.Update(ctx, r.store, accountsKey, func(prev []core.Account) ([]core.Account, error) {
		return append(cloneAccounts(prev), cloneAccount(a)), nil
	})
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}

	r.logger.Info("Account created", log.FieldOperation, log.OpCreate, log.FieldAccountID, a.ID)
	return a, nil
}

// Update merges patch into the account with the given id. It reports false
// when no such account exists.
func (r *Accounts) Update(ctx context.Context, id string, patch AccountPatch) (bool, error) {
	found := false
	err := storage.Update(ctx, r.store, accountsKey, func(prev []core.Account) ([]core.Account, error) {
		i := indexOfAccount(prev, id)
		if i < 0 {
			return nil, storage.ErrUnchanged
		}
		a := prev[i]
		if patch.Name != nil {
			a.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Type != nil {
			a.Type = *patch.Type
		}
		if patch.Balance != nil {
			b := *patch.Balance
			a.Balance = &b
		}
		if err := a.Validate(); err != nil {
			return nil, err
		}
		found = true
		next := cloneAccounts(prev)
		next[i] = a
		return next, nil
	})
	if err != nil {
		return false, fmt.Errorf("update account %s: %w", id, err)
	}
	if found {
		r.logger.Info("Account updated", log.FieldOperation, log.OpUpdate, log.FieldAccountID, id)
	}
	return found, nil
}

// Delete removes the account with the given id. It returns ErrLastAccount,
// leaving the collection as it was, when only one account remains.
func (r *Accounts) Delete(ctx context.Context, id string) error {
	found := false
	err := storage.Update(ctx, r.store, accountsKey, func(prev []core.Account) ([]core.Account, error) {
		if len(prev) <= 1 {
			return nil, ErrLastAccount
		}
		i := indexOfAccount(prev, id)
		if i < 0 {
			return nil, storage.ErrUnchanged
		}
		found = true
		return slices.Delete(cloneAccounts(prev), i, i+1), nil
	})
	if errors.Is(err, ErrLastAccount) {
		r.logger.Warn("Refused to delete last account",
			log.FieldAccountID, id,
			log.FieldErrorType, log.ErrorTypeValidation)
		return ErrLastAccount
	}
	if err != nil {
		return fmt.Errorf("delete account %s: %w", id, err)
	}
	if found {
		r.logger.Info("Account deleted", log.FieldOperation, log.OpDelete, log.FieldAccountID, id)
	}
	return nil
}

func indexOfAccount(accts []core.Account, id string) int {
	return slices.IndexFunc(accts, func(a core.Account) bool { return a.ID == id })
}

// cloneAccounts copies accts including each opening balance, so callers
// cannot write through to the stored collection.
func cloneAccounts(accts []core.Account) []core.Account {
	out := make([]core.Account, len(accts))
	for i, a := range accts {
		out[i] = cloneAccount(a)
	}
	return out
}

func cloneAccount(a core.Account) core.Account {
	if a.Balance != nil {
		b := *a.Balance
		a.Balance = &b
	}
	return a
}
