package app

import (
	"context"
	"fmt"

	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

// Authorizer is the single ownership check shared by every list and item
// operation. Lists have exactly one owner and nothing is delegated.
type Authorizer struct {
	store ports.Store
}

// NewAuthorizer returns an Authorizer reading lists from store.
func NewAuthorizer(store ports.Store) *Authorizer {
	return &Authorizer{store: store}
}

// Authorize returns nil if requester owns the list, domain.ErrNotFound if
// the list does not exist and domain.ErrForbidden otherwise.
func (a *Authorizer) Authorize(ctx context.Context, listID int64, requester string) error {
	return a.store.Atomic(ctx, func(tx ports.Tx) error {
		_, err := ownedList(ctx, tx.Lists(), listID, requester)
		return err
	})
}

// IsOwner is the boolean form of Authorize. A missing list is still
// reported as domain.ErrNotFound so callers can tell it apart from a list
// that belongs to someone else.
func (a *Authorizer) IsOwner(ctx context.Context, listID int64, requester string) (bool, error) {
	err := a.Authorize(ctx, listID, requester)
	switch domain.KindOf(err) {
	case "":
		return true, nil
	case domain.KindForbidden:
		return false, nil
	default:
		return false, err
	}
}

// ownedList loads the list inside an open transaction and checks ownership.
func ownedList(ctx context.Context, lists ports.ListRepository, listID int64, requester string) (domain.List, error) {
	l, err := lists.Get(ctx, listID)
	if err != nil {
		return domain.List{}, fmt.Errorf("list %d: %w", listID, err)
	}
	if !l.OwnedBy(requester) {
		return domain.List{}, fmt.Errorf("list %d: %w", listID, domain.ErrForbidden)
	}
	return l, nil
}
