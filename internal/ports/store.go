package ports

import (
	"context"
	"time"

	"github.com/sufield/todoapi/internal/domain"
)

// Store runs units of work atomically.
//
// Error Contract:
// - Atomic returns the error fn returned, unchanged, after rolling back
// - Atomic wraps begin/commit failures; they classify as internal
type Store interface {
	// Atomic runs fn inside one transaction. The transaction commits only if
	// fn returns nil; any error or panic rolls it back so no partial write is
	// ever observable.
	Atomic(ctx context.Context, fn func(tx Tx) error) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// Tx is the view of the store inside one transaction.
type Tx interface {
	Lists() ListRepository
	Items() ItemRepository
}

// ListRepository persists lists.
//
// Error Contract:
// - Get and GetForUpdate return domain.ErrNotFound if no list has the id
// - Update returns domain.ErrNotFound if the row vanished
type ListRepository interface {
	// Insert stores l and returns it with its assigned ID.
	Insert(ctx context.Context, l domain.List) (domain.List, error)
	Get(ctx context.Context, id int64) (domain.List, error)
	// GetForUpdate reads the list and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (domain.List, error)
	// ListByOwner returns the owner's lists, most recently updated first.
	ListByOwner(ctx context.Context, ownerID string) ([]domain.List, error)
	Update(ctx context.Context, l domain.List) error
}

// ItemRepository persists items, tombstones included.
//
// Error Contract:
// - GetForUpdate returns domain.ErrNotFound if no item has the id
// - Update returns domain.ErrNotFound if the row vanished
// - Insert returns domain.ErrNotFound if the parent list does not exist
type ItemRepository interface {
	Insert(ctx context.Context, it domain.Item) (domain.Item, error)
	// GetForUpdate reads the item and locks its row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (domain.Item, error)
	Update(ctx context.Context, it domain.Item) error
	// Delete removes the row. It reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
	// ListLive returns the list's items that are not tombstoned, oldest first.
	ListLive(ctx context.Context, listID int64) ([]domain.Item, error)
	// ListPurgeable returns ids of items tombstoned strictly before cutoff,
	// oldest tombstone first, at most limit of them.
	ListPurgeable(ctx context.Context, cutoff time.Time, limit int) ([]int64, error)
}
