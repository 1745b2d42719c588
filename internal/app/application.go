package app

import (
	"errors"
	"fmt"

	"github.com/sufield/todoapi/internal/ports"
)

// Application is the composition root that wires the services to a store.
type Application struct {
	Store  ports.Store
	Clock  ports.Clock
	Lists  *ListService
	Items  *ItemService
	Reaper *Reaper
}

// New wires all services around store. A nil clock means ports.SystemClock.
func New(store ports.Store, clock ports.Clock, opts ...Option) (*Application, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	items := NewItemService(store, clock, opts...)
	return &Application{
		Store:  store,
		Clock:  clock,
		Lists:  NewListService(store, clock, opts...),
		Items:  items,
		Reaper: NewReaper(store, clock, items, opts...),
	}, nil
}

// Close releases the store.
func (a *Application) Close() error {
	if a.Store == nil {
		return nil
	}
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
