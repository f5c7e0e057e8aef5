package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"moneymanager/internal/core"
	"moneymanager/internal/log"
	"moneymanager/internal/storage"
)

var categoriesKey = storage.NewKey(CategoriesKey, core.DefaultCategories)

// Categories is the category collection. Transactions refer to categories
// by name, so deleting one leaves those references as plain labels.
type Categories struct {
	store  *storage.Store
	logger *log.Logger
	newID  func() string
}

func NewCategories(store *storage.Store, logger *log.Logger) *Categories {
	if logger == nil {
		logger = log.Default()
	}
	return &Categories{
		store:  store,
		logger: logger.WithComponent(log.ComponentRepository),
		newID:  uuid.NewString,
	}
}

func (r *Categories) List(ctx context.Context) ([]core.Category, error) {
	cats, err := storage.Get(ctx, r.store, categoriesKey)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cloneCategories(cats), nil
}

// Create appends c with a fresh id. Any id on c is ignored.
func (r *Categories) Create(ctx context.Context, c core.Category) (core.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}
	c.ID = r.newID()
	c.SubCategories = append([]string{}, c.SubCategories...)

	err := storage.Update(ctx, r.store, categoriesKey, func(prev []core.Category) ([]core.Category, error) {
		return append(cloneCategories(prev), c), nil
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	r.logger.Info("Category created", log.FieldOperation, log.OpCreate, log.FieldCategoryID, c.ID, log.FieldCategory, c.Name)
	return c, nil
}

// Delete removes the category with the given id. Unknown ids are ignored.
func (r *Categories) Delete(ctx context.Context, id string) error {
	err := storage.Update(ctx, r.store, categoriesKey, func(prev []core.Category) ([]core.Category, error) {
		i := indexOfCategory(prev, id)
		if i < 0 {
			return nil, storage.ErrUnchanged
		}
		next := cloneCategories(prev)
		return slices.Delete(next, i, i+1), nil
	})
	if err != nil {
		return fmt.Errorf("delete category %s: %w", id, err)
	}
	r.logger.Info("Category deleted", log.FieldOperation, log.OpDelete, log.FieldCategoryID, id)
	return nil
}

// AddSubCategory appends name to the category's list. Duplicates are not
// rejected here.
func (r *Categories) AddSubCategory(ctx context.Context, id, name string) error {
	return r.editSubCategories(ctx, id, func(subs []string) []string {
		return append(subs, name)
	})
}

// RemoveSubCategory drops every occurrence of name from the category's list.
func (r *Categories) RemoveSubCategory(ctx context.Context, id, name string) error {
	return r.editSubCategories(ctx, id, func(subs []string) []string {
		return slices.DeleteFunc(subs, func(s string) bool { return s == name })
	})
}

func (r *Categories) editSubCategories(ctx context.Context, id string, edit func([]string) []string) error {
	err := storage.Update(ctx, r.store, categoriesKey, func(prev []core.Category) ([]core.Category, error) {
		i := indexOfCategory(prev, id)
		if i < 0 {
			return nil, storage.ErrUnchanged
		}
		next := cloneCategories(prev)
		next[i].SubCategories = edit(next[i].SubCategories)
		return next, nil
	})
	if err != nil {
		return fmt.Errorf("edit sub-categories of %s: %w", id, err)
	}
	return nil
}

func indexOfCategory(cats []core.Category, id string) int {
	return slices.IndexFunc(cats, func(c core.Category) bool { return c.ID == id })
}

// cloneCategories copies the slice and each sub-category list.
func cloneCategories(cats []core.Category) []core.Category {
	out := make([]core.Category, len(cats))
	for i, c := range cats {
		c.SubCategories = append([]string{}, c.SubCategories...)
		out[i] = c
	}
	return out
}
