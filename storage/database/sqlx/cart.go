package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core/cart"
)

// cartRepository persists each owner's cart as a single serialized slot,
// overwritten in full on every mutation.
type cartRepository struct {
	db *sqlx.DB
}

var _ cart.Repository = (*cartRepository)(nil)

func NewCartRepository(db *sqlx.DB) cart.Repository {
	return &cartRepository{db: db}
}

type cartSlotRow struct {
	OwnerID   string    `db:"owner_id"`
	Items     []byte    `db:"items"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (repo *cartRepository) GetItems(ctx context.Context, ownerID string) ([]cart.Item, error) {
	var row cartSlotRow
	err := repo.db.GetContext(ctx, &row, `SELECT owner_id, items, updated_at FROM cart_slot WHERE owner_id = $1`, ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, cart.ErrSlotNotFound
		}
		return nil, errors.Wrap(err, "getting cart slot")
	}

	var items []cart.Item
	if err = json.Unmarshal(row.Items, &items); err != nil {
		return nil, errors.Wrap(err, "decoding cart slot")
	}
	return items, nil
}

func (repo *cartRepository) SaveItems(ctx context.Context, ownerID string, items []cart.Item) error {
	if items == nil {
		items = []cart.Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encoding cart slot")
	}

	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO cart_slot (owner_id, items, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (owner_id) DO UPDATE SET items = EXCLUDED.items, updated_at = EXCLUDED.updated_at`,
		ownerID, data, null.TimeFrom(time.Now().UTC()),
	)
	return errors.Wrap(err, "saving cart slot")
}

func (repo *cartRepository) DeleteItems(ctx context.Context, ownerID string) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM cart_slot WHERE owner_id = $1`, ownerID)
	return errors.Wrap(err, "deleting cart slot")
}
