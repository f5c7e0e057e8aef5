// Package services exposes the operations a front end drives: entity
// edits through the repositories and read models from the aggregation
// engine.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"moneymanager/internal/aggregate"
	"moneymanager/internal/core"
	"moneymanager/internal/insight"
	"moneymanager/internal/log"
	"moneymanager/internal/repository"
	"moneymanager/internal/storage"
)

// InsightRequester turns a transaction list into a spending summary.
type InsightRequester interface {
	RequestInsight(ctx context.Context, txs []core.Transaction) (string, error)
}

// Option configures a Wallet.
type Option func(*Wallet)

// WithClock overrides the clock used for "current month" and day labels.
func WithClock(now func() time.Time) Option {
	return func(w *Wallet) { w.Now = now }
}

// Wallet is the callback surface of the application.
type Wallet struct {
	store        *storage.Store
	transactions *repository.Transactions
	categories   *repository.Categories
	accounts     *repository.Accounts
	advisor      InsightRequester
	inflight     singleflight.Group
	logger       *log.Logger

	Now func() time.Time
}

func NewWallet(store *storage.Store, advisor InsightRequester, logger *log.Logger, opts ...Option) *Wallet {
	if logger == nil {
		logger = log.Default()
	}
	w := &Wallet{
		store:        store,
		transactions: repository.NewTransactions(store, logger),
		categories:   repository.NewCategories(store, logger),
		accounts:     repository.NewAccounts(store, logger),
		advisor:      advisor,
		logger:       logger.WithComponent(log.ComponentApp),
		Now:          time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Transactions

func (w *Wallet) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	return w.transactions.List(ctx)
}

// UpsertTransaction creates tx when it has no id and replaces the stored
// transaction with the same id otherwise.
func (w *Wallet) UpsertTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	return w.transactions.Upsert(ctx, tx)
}

func (w *Wallet) DeleteTransaction(ctx context.Context, id string) error {
	return w.transactions.Delete(ctx, id)
}

// Categories

func (w *Wallet) ListCategories(ctx context.Context) ([]core.Category, error) {
	return w.categories.List(ctx)
}

func (w *Wallet) AddCategory(ctx context.Context, c core.Category) (core.Category, error) {
	return w.categories.Create(ctx, c)
}

// DeleteCategory removes the category. Transactions keep their category
// label.
func (w *Wallet) DeleteCategory(ctx context.Context, id string) error {
	return w.categories.Delete(ctx, id)
}

func (w *Wallet) AddSubCategory(ctx context.Context, categoryID, name string) error {
	return w.categories.AddSubCategory(ctx, categoryID, name)
}

func (w *Wallet) RemoveSubCategory(ctx context.Context, categoryID, name string) error {
	return w.categories.RemoveSubCategory(ctx, categoryID, name)
}

// Accounts

func (w *Wallet) ListAccounts(ctx context.Context) ([]core.Account, error) {
	return w.accounts.List(ctx)
}

func (w *Wallet) AddAccount(ctx context.Context, a core.Account) (core.Account, error) {
	return w.accounts.Create(ctx, a)
}

func (w *Wallet) UpdateAccount(ctx context.Context, id string, patch repository.AccountPatch) (bool, error) {
	return w.accounts.Update(ctx, id, patch)
}

// DeleteAccount fails with repository.ErrLastAccount when id names the only
// remaining account.
func (w *Wallet) DeleteAccount(ctx context.Context, id string) error {
	return w.accounts.Delete(ctx, id)
}

// Read models

func (w *Wallet) ComputeDashboard(txs []core.Transaction) aggregate.Dashboard {
	return aggregate.ComputeDashboard(txs, w.Now())
}

func (w *Wallet) GroupTransactions(txs []core.Transaction, mode aggregate.Mode) []aggregate.Bucket {
	return aggregate.Group(txs, mode)
}

func (w *Wallet) ComputeBreakdown(txs []core.Transaction, dim aggregate.Dimension) []aggregate.Slice {
	return aggregate.Breakdown(txs, dim)
}

// DayLabel renders a day bucket heading relative to the wallet clock.
func (w *Wallet) DayLabel(day time.Time) string {
	return aggregate.DayLabel(day, w.Now())
}

// RequestInsight asks for a spending summary of txs. A call for the same
// snapshot made while one is pending shares that call's result; each caller
// stops waiting when its own ctx ends. The shared request is detached from
// any one caller's cancellation.
func (w *Wallet) RequestInsight(ctx context.Context, txs []core.Transaction) (string, error) {
	if w.advisor == nil {
		return "", insight.ErrNotConfigured
	}
	detached := context.WithoutCancel(ctx)
	ch := w.inflight.DoChan(snapshotKey(txs), func() (any, error) {
		return w.advisor.RequestInsight(detached, txs)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Shared {
			w.logger.DebugContext(ctx, "Shared pending insight request")
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// snapshotKey identifies the prompt a snapshot produces. Snapshots with the
// same key get the same analysis.
func snapshotKey(txs []core.Transaction) string {
	sum := sha256.Sum256([]byte(insight.BuildPrompt(txs, insight.DefaultCurrency)))
	return hex.EncodeToString(sum[:])
}

// ResetAll erases every stored collection. Defaults are seeded again on the
// next read.
func (w *Wallet) ResetAll(ctx context.Context) error {
	if err := w.store.Reset(ctx); err != nil {
		return fmt.Errorf("reset all data: %w", err)
	}
	w.logger.InfoContext(ctx, "All data reset", log.FieldOperation, log.OpReset)
	return nil
}
