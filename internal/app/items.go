package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sufield/todoapi/internal/assert"
	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

// ItemService enforces every item transition: create, partial update,
// completion toggle, soft delete, restore, purge, due date and priority.
//
// Every operation except Create and Purge runs one transaction covering the
// row-locked read, the ownership check and the write. Expected failures are
// returned as domain sentinels (see domain.KindOf); anything else is a
// storage failure and the transaction has been rolled back.
type ItemService struct {
	store      ports.Store
	clock      ports.Clock
	undoWindow time.Duration
	logger     *slog.Logger
}

// NewItemService wires an ItemService. WithUndoWindow and WithLogger apply.
func NewItemService(store ports.Store, clock ports.Clock, opts ...Option) *ItemService {
	s := buildSettings(opts)
	return &ItemService{
		store:      store,
		clock:      clock,
		undoWindow: s.undoWindow,
		logger:     s.logger,
	}
}

// UndoWindow returns the configured restore window.
func (s *ItemService) UndoWindow() time.Duration { return s.undoWindow }

// Create stores a new live item.
//
// Precondition: the caller has already checked that the creator owns the
// list (ListService.Authorize). Create itself only guards referential
// integrity, so a missing list yields domain.ErrNotFound.
func (s *ItemService) Create(ctx context.Context, n domain.NewItem) (domain.Item, error) {
	if err := n.Validate(); err != nil {
		return domain.Item{}, err
	}

	it := n.Build(s.clock.Now())
	var created domain.Item
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		var err error
		created, err = tx.Items().Insert(ctx, it)
		if err != nil {
			return fmt.Errorf("insert item into list %d: %w", n.ListID, err)
		}
		return nil
	})
	if err != nil {
		return domain.Item{}, err
	}

	s.logger.Debug("item created", "item_id", created.ID, "list_id", created.ListID)
	return created, nil
}

// ListItems returns the live items of a list the requester owns, oldest first.
func (s *ItemService) ListItems(ctx context.Context, listID int64, requester string) ([]domain.Item, error) {
	var items []domain.Item
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		if _, err := ownedList(ctx, tx.Lists(), listID, requester); err != nil {
			return err
		}
		var err error
		items, err = tx.Items().ListLive(ctx, listID)
		if err != nil {
			return fmt.Errorf("list items of list %d: %w", listID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Update applies a partial update. Text is always written; each other field
// of patch is written only when it is not Absent.
func (s *ItemService) Update(ctx context.Context, itemID int64, requester string, patch domain.ItemPatch) (domain.Item, error) {
	if err := patch.Validate(); err != nil {
		return domain.Item{}, err
	}
	return s.mutate(ctx, itemID, requester, func(it *domain.Item, now time.Time) error {
		patch.ApplyTo(it)
		it.UpdatedAt = now
		return nil
	})
}

// UpdateInList is Update addressed through a list. The list is checked
// first; an item that lives in a different list is reported as not found.
func (s *ItemService) UpdateInList(ctx context.Context, listID, itemID int64, requester string, patch domain.ItemPatch) (domain.Item, error) {
	if err := patch.Validate(); err != nil {
		return domain.Item{}, err
	}

	var out domain.Item
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		if _, err := ownedList(ctx, tx.Lists(), listID, requester); err != nil {
			return err
		}
		it, err := tx.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			return fmt.Errorf("item %d: %w", itemID, err)
		}
		if it.ListID != listID {
			return fmt.Errorf("item %d in list %d: %w", itemID, listID, domain.ErrNotFound)
		}

		patch.ApplyTo(&it)
		it.UpdatedAt = s.clock.Now()
		if err := tx.Items().Update(ctx, it); err != nil {
			return fmt.Errorf("update item %d: %w", itemID, err)
		}
		out = it
		return nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	return out, nil
}

// ToggleCompletion flips completed to not_started and anything else to
// completed.
func (s *ItemService) ToggleCompletion(ctx context.Context, itemID int64, requester string) (domain.Item, error) {
	return s.mutate(ctx, itemID, requester, func(it *domain.Item, now time.Time) error {
		it.Status = it.Status.Toggled()
		it.UpdatedAt = now
		return nil
	})
}

// SoftDelete tombstones the item. Deleting a tombstone again re-stamps
// DeletedAt, which restarts the undo window.
func (s *ItemService) SoftDelete(ctx context.Context, itemID int64, requester string) error {
	_, err := s.mutate(ctx, itemID, requester, func(it *domain.Item, now time.Time) error {
		it.DeletedAt = &now
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("item soft-deleted", "item_id", itemID)
	return nil
}

// Restore brings a tombstone back to life. Failures are checked in order:
// not found, forbidden, not deleted, undo timeout.
func (s *ItemService) Restore(ctx context.Context, itemID int64, requester string) (domain.Item, error) {
	return s.mutate(ctx, itemID, requester, func(it *domain.Item, now time.Time) error {
		if !it.IsDeleted() {
			return fmt.Errorf("item %d: %w", itemID, domain.ErrNotDeleted)
		}
		if !it.Restorable(now, s.undoWindow) {
			return fmt.Errorf("item %d deleted at %s: %w", itemID, it.DeletedAt.Format(time.RFC3339Nano), domain.ErrUndoTimeout)
		}
		it.DeletedAt = nil
		it.UpdatedAt = now
		return nil
	})
}

// SetDueDate sets the due date, or clears it when due is nil.
func (s *ItemService) SetDueDate(ctx context.Context, itemID int64, requester string, due *domain.Date) (domain.Item, error) {
	return s.mutate(ctx, itemID, requester, func(it *domain.Item, now time.Time) error {
		if due == nil {
			it.DueDate = nil
		} else {
			d := *due
			it.DueDate = &d
		}
		it.UpdatedAt = now
		return nil
	})
}

// SetPriority sets the priority, or clears it when p is nil.
func (s *ItemService) SetPriority(ctx context.Context, itemID int64, requester string, p *domain.Priority) (domain.Item, error) {
	if p != nil && !p.Valid() {
		return domain.Item{}, &domain.ValidationError{Field: "priority", Reason: fmt.Sprintf("%q is not one of low, medium, high", *p)}
	}
	return s.mutate(ctx, itemID, requester, func(it *domain.Item, now time.Time) error {
		if p == nil {
			it.Priority = nil
		} else {
			v := *p
			it.Priority = &v
		}
		it.UpdatedAt = now
		return nil
	})
}

// Purge hard-deletes the item if it is tombstoned and its undo window has
// strictly elapsed; otherwise it reports false. There is no ownership check:
// this is for the reaper and must not be reachable by end users.
func (s *ItemService) Purge(ctx context.Context, itemID int64) (bool, error) {
	var purged bool
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		it, err := tx.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			if domain.KindOf(err) == domain.KindNotFound {
				return nil
			}
			return fmt.Errorf("item %d: %w", itemID, err)
		}
		if !it.Purgeable(s.clock.Now(), s.undoWindow) {
			return nil
		}
		purged, err = tx.Items().Delete(ctx, itemID)
		if err != nil {
			return fmt.Errorf("delete item %d: %w", itemID, err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return purged, nil
}

// mutate runs fn against the locked, ownership-checked item and persists
// the result, all in one transaction.
func (s *ItemService) mutate(ctx context.Context, itemID int64, requester string, fn func(it *domain.Item, now time.Time) error) (domain.Item, error) {
	var out domain.Item
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		it, err := tx.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			return fmt.Errorf("item %d: %w", itemID, err)
		}
		if _, err := ownedList(ctx, tx.Lists(), it.ListID, requester); err != nil {
			return err
		}

		now := s.clock.Now()
		if err := fn(&it, now); err != nil {
			return err
		}
		assert.Invariant(it.Status.Valid(), "item %d has invalid status %q", it.ID, it.Status)
		assert.Invariant(it.Tags != nil, "item %d has nil tags", it.ID)
		assert.Invariant(!it.UpdatedAt.After(now), "item %d updated_at is in the future", it.ID)
		if err := tx.Items().Update(ctx, it); err != nil {
			return fmt.Errorf("update item %d: %w", itemID, err)
		}
		out = it
		return nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	return out, nil
}
