package dummydb

import (
	"context"
	"encoding/json"

	"github.com/trezcool/darasa/core/cart"
)

type cartRepository struct {
	db *cartTable
}

var _ cart.Repository = (*cartRepository)(nil) // interface compliance check

func NewCartRepository(db *DB) cart.Repository {
	return &cartRepository{db: db.cart}
}

func (repo *cartRepository) GetItems(ctx context.Context, ownerID string) ([]cart.Item, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	data, ok := repo.db.table[ownerID]
	if !ok {
		return nil, cart.ErrSlotNotFound
	}
	var items []cart.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (repo *cartRepository) SaveItems(ctx context.Context, ownerID string, items []cart.Item) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if items == nil {
		items = []cart.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	repo.db.table[ownerID] = data
	return nil
}

func (repo *cartRepository) DeleteItems(ctx context.Context, ownerID string) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	delete(repo.db.table, ownerID)
	return nil
}

// HasSlot reports whether a durable slot exists for the owner. Test helper.
func HasSlot(db *DB, ownerID string) bool {
	db.cart.RLock()
	defer db.cart.RUnlock()
	_, ok := db.cart.table[ownerID]
	return ok
}
