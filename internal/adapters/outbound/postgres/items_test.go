package postgres

import (
	"bytes"
	"database/sql"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/todoapi/internal/domain"
)

func TestTags_RoundTripPreservesOrder(t *testing.T) {
	raw, err := encodeTags([]string{"b", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, `["b","a","b"]`, raw)
	assert.Equal(t, []string{"b", "a", "b"}, decodeTags(raw))
}

func TestTags_EmptyEncodesAsEmptyArray(t *testing.T) {
	raw, err := encodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
	assert.Equal(t, []string{}, decodeTags("[]"))
	assert.Equal(t, []string{}, decodeTags(""))
}

func TestItemRow_MalformedTagsReadAsEmpty(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	for _, raw := range []string{"not json", `{"a":1}`, `[1,2]`, "null", `["a", null]`, `[null]`, `["a", ""]`} {
		it := itemRow{ID: 7, Tags: raw, Status: "not_started"}.toDomain(logger)
		assert.Equal(t, []string{}, it.Tags, raw)
	}
	assert.Contains(t, buf.String(), "malformed tags column")
}

func TestTags_NullElementIsMalformed(t *testing.T) {
	assert.Nil(t, decodeTags(`["a", null]`))
	assert.Nil(t, decodeTags(`["a", 1]`))
	assert.Nil(t, decodeTags(`["`+strings.Repeat("x", domain.MaxTagLength+1)+`"]`))
	assert.Equal(t, []string{"a", "b"}, decodeTags(`["a","b"]`))
}

func TestItemRow_ToDomain(t *testing.T) {
	created := time.Date(2025, 1, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	row := itemRow{
		ID:          1,
		ListID:      2,
		Text:        "Buy milk",
		Description: sql.NullString{String: "oat", Valid: true},
		Tags:        `["errand"]`,
		Status:      "in_progress",
		DueDate:     sql.NullTime{Time: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		Priority:    sql.NullString{String: "high", Valid: true},
		CreatedAt:   created,
		UpdatedAt:   created,
		CreatedBy:   "u1",
	}

	it := row.toDomain(slog.Default())
	assert.Equal(t, "oat", *it.Description)
	assert.Equal(t, []string{"errand"}, it.Tags)
	assert.Equal(t, domain.StatusInProgress, it.Status)
	assert.Equal(t, "2025-03-01", it.DueDate.String())
	assert.Equal(t, domain.PriorityHigh, *it.Priority)
	assert.Equal(t, time.UTC, it.CreatedAt.Location())
	assert.True(t, it.CreatedAt.Equal(created))
	assert.Nil(t, it.DeletedAt)
}

func TestItemValues(t *testing.T) {
	due := domain.Date{Year: 2025, Month: time.March, Day: 1}
	p := domain.PriorityLow
	v, err := itemValues(domain.Item{ListID: 2, Text: "x", Status: domain.StatusNotStarted, DueDate: &due, Priority: &p})
	require.NoError(t, err)

	assert.Equal(t, "2025-03-01", v["due_date"])
	assert.Equal(t, "low", v["priority"])
	assert.Equal(t, "[]", v["tags"])
	assert.Nil(t, v["description"])
	assert.Nil(t, v["deleted_at"])
}

func TestListPurgeableQuery(t *testing.T) {
	cutoff := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := psql.Select("id").
		From(itemsTable).
		Where(tombstonedBefore(cutoff)).
		ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM todo_items WHERE (deleted_at IS NOT NULL AND deleted_at < $1)", query)
	assert.Equal(t, []any{cutoff}, args)
}
