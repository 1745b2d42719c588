package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

// ListService creates, reads and renames lists.
type ListService struct {
	store  ports.Store
	clock  ports.Clock
	auth   *Authorizer
	logger *slog.Logger
}

// NewListService wires a ListService. Only WithLogger applies.
func NewListService(store ports.Store, clock ports.Clock, opts ...Option) *ListService {
	s := buildSettings(opts)
	return &ListService{
		store:  store,
		clock:  clock,
		auth:   NewAuthorizer(store),
		logger: s.logger,
	}
}

// Create stores a new list owned by owner.
func (s *ListService) Create(ctx context.Context, name, owner string) (domain.List, error) {
	l, err := domain.NewList(name, owner, s.clock.Now())
	if err != nil {
		return domain.List{}, err
	}

	var created domain.List
	err = s.store.Atomic(ctx, func(tx ports.Tx) error {
		created, err = tx.Lists().Insert(ctx, l)
		if err != nil {
			return fmt.Errorf("insert list: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.List{}, err
	}

	s.logger.Debug("list created", "list_id", created.ID, "owner", owner)
	return created, nil
}

// Get returns the list if requester owns it.
func (s *ListService) Get(ctx context.Context, listID int64, requester string) (domain.List, error) {
	var l domain.List
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		var err error
		l, err = ownedList(ctx, tx.Lists(), listID, requester)
		return err
	})
	if err != nil {
		return domain.List{}, err
	}
	return l, nil
}

// ListByOwner returns owner's lists, most recently updated first.
func (s *ListService) ListByOwner(ctx context.Context, owner string) ([]domain.List, error) {
	var lists []domain.List
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		var err error
		lists, err = tx.Lists().ListByOwner(ctx, owner)
		if err != nil {
			return fmt.Errorf("list lists of %s: %w", owner, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lists, nil
}

// Rename changes the list name and bumps UpdatedAt. The row is locked for
// the read-check-write so concurrent renames serialize.
func (s *ListService) Rename(ctx context.Context, listID int64, requester, name string) (domain.List, error) {
	if err := domain.ValidateListName(name); err != nil {
		return domain.List{}, err
	}

	var renamed domain.List
	err := s.store.Atomic(ctx, func(tx ports.Tx) error {
		l, err := tx.Lists().GetForUpdate(ctx, listID)
		if err != nil {
			return fmt.Errorf("list %d: %w", listID, err)
		}
		if !l.OwnedBy(requester) {
			return fmt.Errorf("list %d: %w", listID, domain.ErrForbidden)
		}

		l.Name = name
		l.UpdatedAt = s.clock.Now()
		if err := tx.Lists().Update(ctx, l); err != nil {
			return fmt.Errorf("update list %d: %w", listID, err)
		}
		renamed = l
		return nil
	})
	if err != nil {
		return domain.List{}, err
	}
	return renamed, nil
}

// Authorize is the ownership check item handlers run before Create.
func (s *ListService) Authorize(ctx context.Context, listID int64, requester string) error {
	return s.auth.Authorize(ctx, listID, requester)
}

// IsOwner reports whether requester owns the list.
func (s *ListService) IsOwner(ctx context.Context, listID int64, requester string) (bool, error) {
	return s.auth.IsOwner(ctx, listID, requester)
}
