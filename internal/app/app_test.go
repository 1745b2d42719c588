package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sufield/todoapi/internal/adapters/outbound/inmemory"
	"github.com/sufield/todoapi/internal/app"
	"github.com/sufield/todoapi/internal/bg"
	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
	"github.com/sufield/todoapi/internal/testhelpers"
)

var epoch = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

type fixture struct {
	ctx   context.Context
	clock *testhelpers.FakeClock
	store *inmemory.Store
	app   *app.Application
}

func newFixture(t *testing.T, opts ...app.Option) *fixture {
	t.Helper()
	clock := testhelpers.NewFakeClock(epoch)
	store := inmemory.NewStore()
	opts = append([]app.Option{app.WithRunner(bg.Sync{})}, opts...)
	a, err := app.New(store, clock, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return &fixture{ctx: context.Background(), clock: clock, store: store, app: a}
}

func (f *fixture) list(t *testing.T, owner string) domain.List {
	t.Helper()
	l, err := f.app.Lists.Create(f.ctx, "Groceries", owner)
	require.NoError(t, err)
	return l
}

func (f *fixture) item(t *testing.T, l domain.List, text string) domain.Item {
	t.Helper()
	it, err := f.app.Items.Create(f.ctx, domain.NewItem{ListID: l.ID, Text: text, CreatedBy: l.OwnerID})
	require.NoError(t, err)
	return it
}

// stored reads the item straight from the store, tombstones included.
func (f *fixture) stored(t *testing.T, id int64) (domain.Item, bool) {
	t.Helper()
	var it domain.Item
	var found bool
	require.NoError(t, f.store.Atomic(f.ctx, func(tx ports.Tx) error {
		got, err := tx.Items().GetForUpdate(f.ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		it, found = got, err == nil
		return err
	}))
	return it, found
}
