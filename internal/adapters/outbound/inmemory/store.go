package inmemory

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

// Store is an in-memory implementation of ports.Store.
type Store struct {
	mu     sync.Mutex
	data   *snapshot
	closed bool
}

type snapshot struct {
	lists    map[int64]domain.List
	items    map[int64]domain.Item
	nextList int64
	nextItem int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: &snapshot{
		lists: make(map[int64]domain.List),
		items: make(map[int64]domain.Item),
	}}
}

var errClosed = errors.New("inmemory store is closed")

// Atomic runs fn under the store mutex. The first write in fn stages a copy of
// the data; the copy is committed only if fn returns nil. Read-only calls
// never copy.
func (s *Store) Atomic(ctx context.Context, fn func(tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errClosed
	}

	t := &tx{base: s.data}
	if err := fn(t); err != nil {
		return err
	}
	if t.staged == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.data = t.staged
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	return ctx.Err()
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (d *snapshot) clone() *snapshot {
	c := &snapshot{
		lists:    maps.Clone(d.lists),
		items:    make(map[int64]domain.Item, len(d.items)),
		nextList: d.nextList,
		nextItem: d.nextItem,
	}
	for id, it := range d.items {
		c.items[id] = it.Clone()
	}
	return c
}

type tx struct {
	base   *snapshot
	staged *snapshot
}

func (t *tx) read() *snapshot {
	if t.staged != nil {
		return t.staged
	}
	return t.base
}

func (t *tx) write() *snapshot {
	if t.staged == nil {
		t.staged = t.base.clone()
	}
	return t.staged
}

func (t *tx) Lists() ports.ListRepository { return listRepo{t} }
func (t *tx) Items() ports.ItemRepository { return itemRepo{t} }

type listRepo struct {
	tx *tx
}

func (r listRepo) Insert(_ context.Context, l domain.List) (domain.List, error) {
	data := r.tx.write()
	data.nextList++
	l.ID = data.nextList
	data.lists[l.ID] = l
	return l, nil
}

func (r listRepo) Get(_ context.Context, id int64) (domain.List, error) {
	data := r.tx.read()
	l, ok := data.lists[id]
	if !ok {
		return domain.List{}, domain.ErrNotFound
	}
	return l, nil
}

// GetForUpdate needs no row lock: Atomic already holds the store mutex.
func (r listRepo) GetForUpdate(ctx context.Context, id int64) (domain.List, error) {
	return r.Get(ctx, id)
}

func (r listRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.List, error) {
	data := r.tx.read()
	out := []domain.List{}
	for _, l := range data.lists {
		if l.OwnerID == ownerID {
			out = append(out, l)
		}
	}
	slices.SortFunc(out, func(a, b domain.List) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out, nil
}

func (r listRepo) Update(_ context.Context, l domain.List) error {
	if _, ok := r.tx.read().lists[l.ID]; !ok {
		return domain.ErrNotFound
	}
	r.tx.write().lists[l.ID] = l
	return nil
}

type itemRepo struct {
	tx *tx
}

func (r itemRepo) Insert(_ context.Context, it domain.Item) (domain.Item, error) {
	if _, ok := r.tx.read().lists[it.ListID]; !ok {
		return domain.Item{}, fmt.Errorf("list %d: %w", it.ListID, domain.ErrNotFound)
	}
	data := r.tx.write()
	data.nextItem++
	it.ID = data.nextItem
	data.items[it.ID] = it.Clone()
	return it.Clone(), nil
}

func (r itemRepo) GetForUpdate(_ context.Context, id int64) (domain.Item, error) {
	data := r.tx.read()
	it, ok := data.items[id]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	return it.Clone(), nil
}

func (r itemRepo) Update(_ context.Context, it domain.Item) error {
	if _, ok := r.tx.read().items[it.ID]; !ok {
		return domain.ErrNotFound
	}
	r.tx.write().items[it.ID] = it.Clone()
	return nil
}

func (r itemRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.tx.read().items[id]; !ok {
		return false, nil
	}
	delete(r.tx.write().items, id)
	return true, nil
}

func (r itemRepo) ListLive(_ context.Context, listID int64) ([]domain.Item, error) {
	data := r.tx.read()
	out := []domain.Item{}
	for _, it := range data.items {
		if it.ListID == listID && !it.IsDeleted() {
			out = append(out, it.Clone())
		}
	}
	slices.SortFunc(out, func(a, b domain.Item) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (r itemRepo) ListPurgeable(_ context.Context, cutoff time.Time, limit int) ([]int64, error) {
	data := r.tx.read()
	var tombs []domain.Item
	for _, it := range data.items {
		if it.DeletedAt != nil && it.DeletedAt.Before(cutoff) {
			tombs = append(tombs, it)
		}
	}
	slices.SortFunc(tombs, func(a, b domain.Item) int {
		if c := a.DeletedAt.Compare(*b.DeletedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	ids := make([]int64, 0, len(tombs))
	for _, it := range tombs {
		if limit > 0 && len(ids) == limit {
			break
		}
		ids = append(ids, it.ID)
	}
	return ids, nil
}
