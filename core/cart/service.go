package cart

import (
	"context"
	"errors"
	"sync"
)

// ErrSlotNotFound is returned by a Repository when no cart slot exists for an owner.
var ErrSlotNotFound = errors.New("cart slot not found")

type (
	// Repository mirrors cart contents to durable storage; one slot per owner.
	// The slot holds the full serialized item collection and is overwritten
	// on every mutation (write-through), then deleted when the cart is cleared.
	Repository interface {
		GetItems(ctx context.Context, ownerID string) ([]Item, error)
		SaveItems(ctx context.Context, ownerID string, items []Item) error
		DeleteItems(ctx context.Context, ownerID string) error
	}

	Service struct {
		repo Repository

		mu    sync.Mutex
		carts map[string][]Item // in-memory state per owner
	}
)

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		carts: make(map[string][]Item),
	}
}

// load returns the owner's in-memory items, hydrating them from the durable
// slot on first access. mu must be held.
func (svc *Service) load(ctx context.Context, ownerID string) ([]Item, error) {
	if items, ok := svc.carts[ownerID]; ok {
		return items, nil
	}
	items, err := svc.repo.GetItems(ctx, ownerID)
	if err != nil {
		if errors.Is(err, ErrSlotNotFound) {
			items = nil
		} else {
			return nil, err
		}
	}
	svc.carts[ownerID] = items
	return items, nil
}

// save writes through to the durable slot and only then updates the
// in-memory state. mu must be held.
func (svc *Service) save(ctx context.Context, ownerID string, items []Item) error {
	if err := svc.repo.SaveItems(ctx, ownerID, items); err != nil {
		return err
	}
	svc.carts[ownerID] = items
	return nil
}

func copyItems(items []Item) []Item {
	cpy := make([]Item, len(items))
	copy(cpy, items)
	return cpy
}

func (svc *Service) Items(ctx context.Context, ownerID string) ([]Item, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	items, err := svc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return copyItems(items), nil
}

// Add inserts the item or, if it is already in the cart, increments its quantity.
func (svc *Service) Add(ctx context.Context, ownerID string, ni NewItem) ([]Item, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	items, err := svc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	// mutate a copy; the in-memory state is only replaced once the durable
	// slot accepted the write, so a failed save never desyncs the two.
	next := copyItems(items)
	var found bool
	for i := range next {
		if next[i].ID == ni.ID {
			next[i].Quantity += ni.Quantity
			found = true
			break
		}
	}
	if !found {
		next = append(next, ni.item())
	}

	if err = svc.save(ctx, ownerID, next); err != nil {
		return nil, err
	}
	return copyItems(next), nil
}

// Remove deletes the item with the given id; it is a no-op if the item is absent.
func (svc *Service) Remove(ctx context.Context, ownerID string, id int) ([]Item, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	items, err := svc.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ID == id {
			next := make([]Item, 0, len(items)-1)
			next = append(next, items[:i]...)
			next = append(next, items[i+1:]...)
			if err = svc.save(ctx, ownerID, next); err != nil {
				return nil, err
			}
			return copyItems(next), nil
		}
	}
	return copyItems(items), nil
}

// Clear empties the in-memory cart and deletes the durable slot.
func (svc *Service) Clear(ctx context.Context, ownerID string) error {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	if err := svc.repo.DeleteItems(ctx, ownerID); err != nil && !errors.Is(err, ErrSlotNotFound) {
		return err
	}
	delete(svc.carts, ownerID)
	return nil
}

// Total sums price × quantity over all items. It is recomputed on every call.
func (svc *Service) Total(ctx context.Context, ownerID string) (float64, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	items, err := svc.load(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, it := range items {
		total += it.Subtotal()
	}
	return total, nil
}
