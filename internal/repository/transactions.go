// Package repository provides typed CRUD over the collections held in a
// storage.Store. Each repository owns exactly one key.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
	"moneymanager/internal/storage"
)

// Storage keys.
const (
	TransactionsKey = "transactions"
	CategoriesKey   = "categories"
	AccountsKey     = "accounts"
)

var transactionsKey = storage.NewKey(TransactionsKey, func() []core.Transaction { return []core.Transaction{} })

// TransactionInput carries every user-editable field of a transaction.
type TransactionInput struct {
	Amount      decimal.Decimal
	Type        core.TransactionType
	Category    string
	SubCategory string
	Date        time.Time
	Description string
	AccountID   string
}

func (in TransactionInput) build(id string) (core.Transaction, error) {
	tx := core.Transaction{
		ID:          id,
		Amount:      in.Amount,
		Type:        in.Type,
		Category:    in.Category,
		SubCategory: in.SubCategory,
		Date:        in.Date,
		Description: in.Description,
		AccountID:   in.AccountID,
	}.Normalize()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// InputOf returns the editable fields of tx.
func InputOf(tx core.Transaction) TransactionInput {
	return TransactionInput{
		Amount:      tx.Amount,
		Type:        tx.Type,
		Category:    tx.Category,
		SubCategory: tx.SubCategory,
		Date:        tx.Date,
		Description: tx.Description,
		AccountID:   tx.AccountID,
	}
}

// Transactions is the transaction collection, newest created first.
type Transactions struct {
	store  *storage.Store
	logger *log.Logger
	newID  func() string
}

func NewTransactions(store *storage.Store, logger *log.Logger) *Transactions {
	if logger == nil {
		logger = log.Default()
	}
	return &Transactions{
		store:  store,
		logger: logger.WithComponent(log.ComponentRepository),
		newID:  uuid.NewString,
	}
}

// List returns a copy of the collection in repository order.
func (r *Transactions) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := storage.Get(ctx, r.store, transactionsKey)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return cloneTransactions(txs), nil
}

// Create stores a new transaction at the head of the collection.
func (r *Transactions) Create(ctx context.Context, in TransactionInput) (core.Transaction, error) {
	tx, err := in.build(r.newID())
	if err != nil {
		return core.Transaction{}, err
	}

	err = storage.Update(ctx, r.store, transactionsKey, func(prev []core.Transaction) ([]core.Transaction, error) {
		next := make([]core.Transaction, 0, len(prev)+1)
		next = append(next, tx)
		return append(next, prev...), nil
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	r.logger.Info("Transaction created",
		log.NewFields().
			WithOperation(log.OpCreate).
			WithTransaction(tx.ID, string(tx.Type), tx.Amount.String(), tx.Category).
			ToSlice()...)
	return tx, nil
}

// Update replaces the transaction with the given id, keeping its position.
// It reports false, without error, when no such transaction exists.
func (r *Transactions) Update(ctx context.Context, id string, in TransactionInput) (bool, error) {
	tx, err := in.build(id)
	if err != nil {
		return false, err
	}

	found := false
	err = storage.Update(ctx, r.store, transactionsKey, func(prev []core.Transaction) ([]core.Transaction, error) {
		i := indexOfTransaction(prev, id)
		if i < 0 {
			return nil, storage.ErrUnchanged
		}
		found = true
		next := cloneTransactions(prev)
		next[i] = tx
		return next, nil
	})
	if err != nil {
		return false, fmt.Errorf("update transaction %s: %w", id, err)
	}

	if found {
		r.logger.Info("Transaction updated", log.FieldOperation, log.OpUpdate, log.FieldTransactionID, id)
	} else {
		r.logger.Debug("Update ignored, transaction not found", log.FieldTransactionID, id)
	}
	return found, nil
}

// Upsert updates tx when it carries an id and creates it otherwise. An id
// that matches nothing changes nothing and yields the zero Transaction.
func (r *Transactions) Upsert(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if tx.ID == "" {
		return r.Create(ctx, InputOf(tx))
	}
	found, err := r.Update(ctx, tx.ID, InputOf(tx))
	if err != nil || !found {
		return core.Transaction{}, err
	}
	return InputOf(tx).build(tx.ID)
}

// Delete removes the transaction with the given id. Unknown ids are ignored.
func (r *Transactions) Delete(ctx context.Context, id string) error {
	found := false
	err := storage.Update(ctx, r.store, transactionsKey, func(prev []core.Transaction) ([]core.Transaction, error) {
		i := indexOfTransaction(prev, id)
		if i < 0 {
			return nil, storage.ErrUnchanged
		}
		found = true
		next := make([]core.Transaction, 0, len(prev)-1)
		next = append(next, prev[:i]...)
		return append(next, prev[i+1:]...), nil
	})
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}

	if found {
		r.logger.Info("Transaction deleted", log.FieldOperation, log.OpDelete, log.FieldTransactionID, id)
	} else {
		r.logger.Debug("Delete ignored, transaction not found", log.FieldTransactionID, id)
	}
	return nil
}

func indexOfTransaction(txs []core.Transaction, id string) int {
	for i, tx := range txs {
		if tx.ID == id {
			return i
		}
	}
	return -1
}

func cloneTransactions(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	return out
}
