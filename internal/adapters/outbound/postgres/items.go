package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/sufield/todoapi/internal/domain"
)

const itemsTable = "todo_items"

var itemColumns = []string{
	"id", "list_id", "text", "description", "tags", "status", "due_date",
	"priority", "created_at", "updated_at", "deleted_at", "created_by",
}

type itemRow struct {
	ID          int64          `db:"id"`
	ListID      int64          `db:"list_id"`
	Text        string         `db:"text"`
	Description sql.NullString `db:"description"`
	Tags        string         `db:"tags"`
	Status      string         `db:"status"`
	DueDate     sql.NullTime   `db:"due_date"`
	Priority    sql.NullString `db:"priority"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   sql.NullTime   `db:"deleted_at"`
	CreatedBy   string         `db:"created_by"`
}

// toDomain converts a row. A tags column that is not a JSON string array
// reads back as no tags.
func (r itemRow) toDomain(logger *slog.Logger) domain.Item {
	it := domain.Item{
		ID:        r.ID,
		ListID:    r.ListID,
		Text:      r.Text,
		Tags:      decodeTags(r.Tags),
		Status:    domain.Status(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
		CreatedBy: r.CreatedBy,
	}
	if it.Tags == nil {
		logger.Warn("malformed tags column", "item_id", r.ID, "tags", r.Tags)
		it.Tags = []string{}
	}
	if r.Description.Valid {
		d := r.Description.String
		it.Description = &d
	}
	if r.DueDate.Valid {
		d := domain.DateOf(r.DueDate.Time)
		it.DueDate = &d
	}
	if r.Priority.Valid {
		p := domain.Priority(r.Priority.String)
		it.Priority = &p
	}
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time.UTC()
		it.DeletedAt = &t
	}
	return it
}

// decodeTags returns nil when raw is not a JSON array of strings or holds
// tags that could not have been written (null elements, empty or over-long
// tags, too many tags).
func decodeTags(raw string) []string {
	if raw == "" {
		return []string{}
	}
	var elems []*string
	if err := json.Unmarshal([]byte(raw), &elems); err != nil || elems == nil {
		return nil
	}
	tags := make([]string, 0, len(elems))
	for _, e := range elems {
		if e == nil {
			return nil
		}
		tags = append(tags, *e)
	}
	if domain.ValidateTags(tags) != nil {
		return nil
	}
	return tags
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

// itemValues maps column names to the values stored for it.
func itemValues(it domain.Item) (map[string]any, error) {
	tags, err := encodeTags(it.Tags)
	if err != nil {
		return nil, err
	}
	v := map[string]any{
		"list_id":     it.ListID,
		"text":        it.Text,
		"description": nil,
		"tags":        tags,
		"status":      string(it.Status),
		"due_date":    nil,
		"priority":    nil,
		"created_at":  it.CreatedAt,
		"updated_at":  it.UpdatedAt,
		"deleted_at":  nil,
		"created_by":  it.CreatedBy,
	}
	if it.Description != nil {
		v["description"] = *it.Description
	}
	if it.DueDate != nil {
		v["due_date"] = it.DueDate.String()
	}
	if it.Priority != nil {
		v["priority"] = string(*it.Priority)
	}
	if it.DeletedAt != nil {
		v["deleted_at"] = *it.DeletedAt
	}
	return v, nil
}

type itemRepo struct {
	tx     *sqlx.Tx
	logger *slog.Logger
}

func (r *itemRepo) Insert(ctx context.Context, it domain.Item) (domain.Item, error) {
	values, err := itemValues(it)
	if err != nil {
		return domain.Item{}, err
	}
	query, args, err := psql.Insert(itemsTable).SetMap(values).Suffix("RETURNING id").ToSql()
	if err != nil {
		return domain.Item{}, fmt.Errorf("build insert item: %w", err)
	}
	if err := r.tx.QueryRowxContext(ctx, query, args...).Scan(&it.ID); err != nil {
		if isForeignKeyViolation(err) {
			return domain.Item{}, fmt.Errorf("list %d: %w", it.ListID, domain.ErrNotFound)
		}
		return domain.Item{}, fmt.Errorf("insert item: %w", err)
	}
	if it.Tags == nil {
		it.Tags = []string{}
	}
	return it, nil
}

func (r *itemRepo) GetForUpdate(ctx context.Context, id int64) (domain.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From(itemsTable).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return domain.Item{}, fmt.Errorf("build select item: %w", err)
	}
	var row itemRow
	if err := r.tx.GetContext(ctx, &row, query, args...); err != nil {
		return domain.Item{}, notFound(err, "item")
	}
	return row.toDomain(r.logger), nil
}

func (r *itemRepo) Update(ctx context.Context, it domain.Item) error {
	values, err := itemValues(it)
	if err != nil {
		return err
	}
	delete(values, "created_at")
	delete(values, "created_by")

	query, args, err := psql.Update(itemsTable).SetMap(values).Where(sq.Eq{"id": it.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("build update item: %w", err)
	}
	res, err := r.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *itemRepo) Delete(ctx context.Context, id int64) (bool, error) {
	query, args, err := psql.Delete(itemsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return false, fmt.Errorf("build delete item: %w", err)
	}
	res, err := r.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	return n > 0, nil
}

func (r *itemRepo) ListLive(ctx context.Context, listID int64) ([]domain.Item, error) {
	query, args, err := psql.Select(itemColumns...).
		From(itemsTable).
		Where(sq.And{sq.Eq{"list_id": listID}, sq.Eq{"deleted_at": nil}}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select items: %w", err)
	}

	var rows []itemRow
	if err := r.tx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select items: %w", err)
	}
	out := make([]domain.Item, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain(r.logger))
	}
	return out, nil
}

func (r *itemRepo) ListPurgeable(ctx context.Context, cutoff time.Time, limit int) ([]int64, error) {
	b := psql.Select("id").
		From(itemsTable).
		Where(tombstonedBefore(cutoff)).
		OrderBy("deleted_at ASC", "id ASC")
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select purgeable: %w", err)
	}

	var ids []int64
	if err := r.tx.SelectContext(ctx, &ids, query, args...); err != nil {
		return nil, fmt.Errorf("select purgeable: %w", err)
	}
	return ids, nil
}

func tombstonedBefore(cutoff time.Time) sq.Sqlizer {
	return sq.And{sq.NotEq{"deleted_at": nil}, sq.Lt{"deleted_at": cutoff}}
}
