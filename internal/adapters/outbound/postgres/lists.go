package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/sufield/todoapi/internal/domain"
)

const listsTable = "todo_lists"

var listColumns = []string{"id", "name", "owner_id", "created_at", "updated_at"}

type listRow struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	OwnerID   string    `db:"owner_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r listRow) toDomain() domain.List {
	return domain.List{
		ID:        r.ID,
		Name:      r.Name,
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

type listRepo struct {
	tx *sqlx.Tx
}

func (r *listRepo) Insert(ctx context.Context, l domain.List) (domain.List, error) {
	query, args, err := psql.Insert(listsTable).
		Columns("name", "owner_id", "created_at", "updated_at").
		Values(l.Name, l.OwnerID, l.CreatedAt, l.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return domain.List{}, fmt.Errorf("build insert list: %w", err)
	}
	if err := r.tx.QueryRowxContext(ctx, query, args...).Scan(&l.ID); err != nil {
		return domain.List{}, fmt.Errorf("insert list: %w", err)
	}
	return l, nil
}

func (r *listRepo) Get(ctx context.Context, id int64) (domain.List, error) {
	return r.get(ctx, psql.Select(listColumns...).From(listsTable).Where(sq.Eq{"id": id}))
}

func (r *listRepo) GetForUpdate(ctx context.Context, id int64) (domain.List, error) {
	return r.get(ctx, psql.Select(listColumns...).From(listsTable).Where(sq.Eq{"id": id}).Suffix("FOR UPDATE"))
}

func (r *listRepo) get(ctx context.Context, b sq.SelectBuilder) (domain.List, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return domain.List{}, fmt.Errorf("build select list: %w", err)
	}
	var row listRow
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		return domain.List{}, notFound(err, "list")
	}
	return row.toDomain(), nil
}

func (r *listRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.List, error) {
	query, args, err := psql.Select(listColumns...).
		From(listsTable).
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("updated_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select lists: %w", err)
	}

	var rows []listRow
	if err := r.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select lists: %w", err)
	}
	out := make([]domain.List, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *listRepo) Update(ctx context.Context, l domain.List) error {
	query, args, err := psql.Update(listsTable).
		Set("name", l.Name).
		Set("updated_at", l.UpdatedAt).
		Where(sq.Eq{"id": l.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update list: %w", err)
	}
	res, err := r.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update list: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
