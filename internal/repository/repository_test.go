package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
	"moneymanager/internal/storage"
)

func newTestStore() *storage.Store {
	return storage.NewStore(storage.NewMemoryBackend(), log.New(log.Config{Output: io.Discard}))
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func expense(amount int64, category string) TransactionInput {
	return TransactionInput{
		Amount:   decimal.NewFromInt(amount),
		Type:     core.Expense,
		Category: category,
		Date:     time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC),
	}
}

func ids(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.ID
	}
	return out
}

func TestTransactionsCreateInsertsAtHead(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactions(newTestStore(), nil)
	repo.newID = sequentialIDs()

	for _, c := range []string{"Food", "Bills", "Health"} {
		if _, err := repo.Create(ctx, expense(10, c)); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	txs, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	got := fmt.Sprint(ids(txs))
	if got != "[id-3 id-2 id-1]" {
		t.Fatalf("order = %s", got)
	}
	if txs[0].AccountID != core.DefaultAccountID {
		t.Errorf("account not normalized: %q", txs[0].AccountID)
	}
}

func TestTransactionsCreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactions(newTestStore(), nil)

	in := expense(10, "Food")
	in.Type = "transfer"
	if _, err := repo.Create(ctx, in); !errors.Is(err, core.ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}

	in = expense(10, "Food")
	in.Date = time.Time{}
	if _, err := repo.Create(ctx, in); !errors.Is(err, core.ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}

	txs, _ := repo.List(ctx)
	if len(txs) != 0 {
		t.Fatalf("rejected input changed state: %v", txs)
	}
}

func TestTransactionsUpsertReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactions(newTestStore(), nil)
	repo.newID = sequentialIDs()

	_, _ = repo.Create(ctx, expense(10, "Food"))
	x, _ := repo.Create(ctx, expense(20, "Bills"))
	_, _ = repo.Create(ctx, expense(30, "Health"))

	x.Amount = decimal.NewFromInt(50)
	x.Description = "edited"
	if _, err := repo.Upsert(ctx, x); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	txs, _ := repo.List(ctx)
	if len(txs) != 3 {
		t.Fatalf("length changed: %d", len(txs))
	}
	if got := fmt.Sprint(ids(txs)); got != "[id-3 id-2 id-1]" {
		t.Fatalf("order changed: %s", got)
	}
	if !txs[1].Amount.Equal(decimal.NewFromInt(50)) || txs[1].Description != "edited" {
		t.Fatalf("entry not replaced: %+v", txs[1])
	}
}

func TestTransactionsUpdateUnknownIDIsNoop(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactions(newTestStore(), nil)
	_, _ = repo.Create(ctx, expense(10, "Food"))

	found, err := repo.Update(ctx, "nope", expense(99, "Food"))
	if err != nil || found {
		t.Fatalf("Update = %v, %v", found, err)
	}

	got, err := repo.Upsert(ctx, core.Transaction{ID: "nope", Type: core.Expense, Date: time.Now()})
	if err != nil || got.ID != "" {
		t.Fatalf("Upsert unknown = %+v, %v", got, err)
	}

	txs, _ := repo.List(ctx)
	if len(txs) != 1 || !txs[0].Amount.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("state changed: %+v", txs)
	}
}

func TestTransactionsDelete(t *testing.T) {
	ctx := context.Background()
	var logs bytes.Buffer
	repo := NewTransactions(newTestStore(), log.New(log.Config{Output: &logs, Format: log.FormatJSON}))
	tx, _ := repo.Create(ctx, expense(10, "Food"))

	if err := repo.Delete(ctx, "missing"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
	if strings.Contains(logs.String(), "Transaction deleted") {
		t.Fatalf("deleting an unknown id logged a deletion:\n%s", logs.String())
	}
	if err := repo.Delete(ctx, tx.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !strings.Contains(logs.String(), "Transaction deleted") {
		t.Errorf("deletion not logged:\n%s", logs.String())
	}
	txs, _ := repo.List(ctx)
	if len(txs) != 0 {
		t.Fatalf("expected empty, got %d", len(txs))
	}
}

func TestTransactionsListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactions(newTestStore(), nil)
	_, _ = repo.Create(ctx, expense(10, "Food"))

	txs, _ := repo.List(ctx)
	txs[0].Category = "mutated"

	again, _ := repo.List(ctx)
	if again[0].Category != "Food" {
		t.Fatalf("List exposed shared state")
	}
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	repo := NewCategories(newTestStore(), nil)
	repo.newID = sequentialIDs()

	cats, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(cats) != 8 || cats[0].Name != "Food" {
		t.Fatalf("expected seeded defaults, got %d", len(cats))
	}

	created, err := repo.Create(ctx, core.Category{Name: " Pets ", Icon: "Paw", Type: core.Expense})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "id-1" || created.Name != "Pets" {
		t.Fatalf("created = %+v", created)
	}

	if _, err := repo.Create(ctx, core.Category{Name: "", Type: core.Expense}); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	_ = repo.AddSubCategory(ctx, "id-1", "Vet")
	_ = repo.AddSubCategory(ctx, "id-1", "Vet")
	_ = repo.AddSubCategory(ctx, "unknown", "Vet")

	cats, _ = repo.List(ctx)
	pets := cats[len(cats)-1]
	if fmt.Sprint(pets.SubCategories) != "[Vet Vet]" {
		t.Fatalf("sub-categories = %v", pets.SubCategories)
	}

	_ = repo.RemoveSubCategory(ctx, "1", "Snacks")
	cats, _ = repo.List(ctx)
	if cats[0].HasSubCategory("Snacks") {
		t.Fatalf("Snacks not removed: %v", cats[0].SubCategories)
	}

	if err := repo.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	cats, _ = repo.List(ctx)
	if len(cats) != 8 || cats[0].Name != "Transport" {
		t.Fatalf("after delete: %d, first %s", len(cats), cats[0].Name)
	}
}

func TestAccountsDeleteKeepsLastAccount(t *testing.T) {
	ctx := context.Background()
	repo := NewAccounts(newTestStore(), nil)

	if err := repo.Delete(ctx, "1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	err := repo.Delete(ctx, "2")
	if !errors.Is(err, ErrLastAccount) {
		t.Fatalf("expected ErrLastAccount, got %v", err)
	}
	if err.Error() != "you must have at least one account" {
		t.Errorf("message = %q", err.Error())
	}

	accts, _ := repo.List(ctx)
	if len(accts) != 1 || accts[0].ID != "2" {
		t.Fatalf("state changed: %+v", accts)
	}
}

func TestAccountsCreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewAccounts(newTestStore(), nil)
	repo.newID = sequentialIDs()

	a, err := repo.Create(ctx, core.Account{Name: "Visa", Type: core.CardAccount})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create(ctx, core.Account{Name: "Wallet", Type: "crypto"}); !errors.Is(err, core.ErrInvalidAccountType) {
		t.Fatalf("expected ErrInvalidAccountType, got %v", err)
	}

	name := "Visa Gold"
	balance := decimal.RequireFromString("120.50")
	found, err := repo.Update(ctx, a.ID, AccountPatch{Name: &name, Balance: &balance})
	if err != nil || !found {
		t.Fatalf("Update = %v, %v", found, err)
	}

	accts, _ := repo.List(ctx)
	got := accts[2]
	if got.Name != "Visa Gold" || got.Type != core.CardAccount || got.Balance == nil || !got.Balance.Equal(balance) {
		t.Fatalf("patched account = %+v", got)
	}

	found, err = repo.Update(ctx, "missing", AccountPatch{Name: &name})
	if err != nil || found {
		t.Fatalf("Update missing = %v, %v", found, err)
	}
}

func TestAccountsListReturnsCopy(t *testing.T) {
	ctx := context.Background()
	repo := NewAccounts(newTestStore(), nil)

	opening := decimal.NewFromInt(500)
	a, err := repo.Create(ctx, core.Account{Name: "Savings", Type: core.BankAccount, Balance: &opening})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	opening = decimal.NewFromInt(1)

	accts, _ := repo.List(ctx)
	i := slices.IndexFunc(accts, func(x core.Account) bool { return x.ID == a.ID })
	if i < 0 || !accts[i].Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("stored account = %+v", accts)
	}
	*accts[i].Balance = decimal.NewFromInt(-999)

	again, _ := repo.List(ctx)
	if !again[i].Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("List exposed shared balance: %s", again[i].Balance)
	}
}
