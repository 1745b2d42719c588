package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/todoapi/internal/adapters/inbound/httpapi"
	"github.com/sufield/todoapi/internal/adapters/outbound/identity"
	"github.com/sufield/todoapi/internal/adapters/outbound/inmemory"
	"github.com/sufield/todoapi/internal/app"
	"github.com/sufield/todoapi/internal/bg"
	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
	"github.com/sufield/todoapi/internal/testhelpers"
)

var epoch = time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC)

type apiFixture struct {
	t       *testing.T
	clock   *testhelpers.FakeClock
	handler http.Handler
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	clock := testhelpers.NewFakeClock(epoch)
	store := inmemory.NewStore()
	a, err := app.New(store, clock, app.WithRunner(bg.Sync{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	sessions := inmemory.NewSessionStore()
	sessions.Put("live", ports.Session{User: domain.User{ID: "cookie-user"}, ExpiresAt: epoch.Add(time.Hour)})
	sessions.Put("stale", ports.Session{User: domain.User{ID: "cookie-user"}, ExpiresAt: epoch.Add(-time.Hour)})

	h, err := httpapi.NewRouter(httpapi.RouterConfig{
		Lists: a.Lists,
		Items: a.Items,
		Store: store,
		Identity: identity.Chain{
			identity.HeaderResolver{Trusted: true},
			identity.NewSessionResolver(sessions, clock),
		},
		Version:        "test",
		CORSOrigins:    []string{"http://localhost:3001"},
		RequestTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return &apiFixture{t: t, clock: clock, handler: h}
}

// do sends a request as user (no credentials when user is empty).
func (f *apiFixture) do(method, path, user, body string) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set(identity.HeaderUserID, user)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (f *apiFixture) createList(user, name string) int64 {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/v1/lists", user, `{"name":"`+name+`"}`)
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(decode(f.t, rec)["id"].(float64))
}

func (f *apiFixture) createItem(user string, listID int64, body string) int64 {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/v1/lists/"+itoa(listID)+"/items", user, body)
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return int64(decode(f.t, rec)["id"].(float64))
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func TestHealthEndpoints(t *testing.T) {
	f := newAPI(t)

	rec := f.do(http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])

	rec = f.do(http.MethodGet, "/api/v1/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"status": "ok", "version": "test"}, decode(t, rec))

	rec = f.do(http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDIsEchoedOrMinted(t *testing.T) {
	f := newAPI(t)

	rec := f.do(http.MethodGet, "/health", "", "")
	assert.Len(t, rec.Header().Get(httpapi.HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(httpapi.HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(httpapi.HeaderRequestID))
}

func TestAuthentication(t *testing.T) {
	f := newAPI(t)

	rec := f.do(http.MethodGet, "/api/v1/lists", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthenticated", decode(t, rec)["code"])

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "better-auth.session_token", Value: "live.signature"})
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cookie-user", decode(t, rec)["id"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/validate", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "stale.signature"})
	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "session_expired", decode(t, rec)["code"])

	rec = f.do(http.MethodGet, "/api/v1/auth/validate", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["valid"])
}

func TestListEndpoints(t *testing.T) {
	f := newAPI(t)

	first := f.createList("u1", "first")
	f.clock.Advance(time.Second)
	second := f.createList("u1", "second")
	f.clock.Advance(time.Second)
	f.createList("u2", "theirs")

	rec := f.do(http.MethodPut, "/api/v1/lists/"+itoa(first)+"/name", "u1", `{"name":"renamed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "renamed", decode(t, rec)["name"])

	rec = f.do(http.MethodGet, "/api/v1/lists", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var lists []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lists))
	require.Len(t, lists, 2)
	assert.EqualValues(t, first, lists[0]["id"])
	assert.EqualValues(t, second, lists[1]["id"])
	assert.Equal(t, "u1", lists[0]["owner_id"])

	rec = f.do(http.MethodGet, "/api/v1/lists/"+itoa(first), "u2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", decode(t, rec)["code"])

	rec = f.do(http.MethodGet, "/api/v1/lists/999", "u1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodGet, "/api/v1/lists/abc", "u1", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestErrorStatusMapping(t *testing.T) {
	f := newAPI(t)
	listID := f.createList("u1", "L")
	itemID := f.createItem("u1", listID, `{"text":"x"}`)
	item := "/api/v1/items/" + itoa(itemID)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		status int
		code   string
	}{
		{"malformed json", http.MethodPost, "/api/v1/lists", "u1", `{"name":`, http.StatusBadRequest, "malformed_request"},
		{"schema violation", http.MethodPost, "/api/v1/lists", "u1", `{"name":""}`, http.StatusUnprocessableEntity, "validation"},
		{"missing required", http.MethodPut, item, "u1", `{"tags":[]}`, http.StatusUnprocessableEntity, "validation"},
		{"blank text", http.MethodPut, item, "u1", `{"text":"   "}`, http.StatusUnprocessableEntity, "validation"},
		{"bad priority", http.MethodPatch, item + "/priority", "u1", `{"priority":"urgent"}`, http.StatusUnprocessableEntity, "validation"},
		{"bad date", http.MethodPatch, item + "/due-date", "u1", `{"due_date":"2025-02-30"}`, http.StatusUnprocessableEntity, "validation"},
		{"missing item", http.MethodPatch, "/api/v1/items/999/toggle-complete", "u1", "", http.StatusNotFound, "not_found"},
		{"not owner", http.MethodPatch, item + "/toggle-complete", "u2", "", http.StatusForbidden, "forbidden"},
		{"create in foreign list", http.MethodPost, "/api/v1/lists/" + itoa(listID) + "/items", "u2", `{"text":"x"}`, http.StatusForbidden, "forbidden"},
		{"restore live item", http.MethodPost, item + "/restore", "u1", "", http.StatusConflict, "not_deleted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(tt.method, tt.path, tt.user, tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			body := decode(t, rec)
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["detail"])
		})
	}
}

func TestItemTriStateOverHTTP(t *testing.T) {
	f := newAPI(t)
	listID := f.createList("u1", "L")
	itemID := f.createItem("u1", listID,
		`{"text":"Buy milk","description":"2%","tags":["errand"],"due_date":"2025-03-01","priority":"high"}`)
	item := "/api/v1/items/" + itoa(itemID)

	// Absent keys keep their values.
	rec := f.do(http.MethodPut, item, "u1", `{"text":"Buy oat milk"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode(t, rec)
	assert.Equal(t, "Buy oat milk", got["text"])
	assert.Equal(t, "2%", got["description"])
	assert.Equal(t, []any{"errand"}, got["tags"])
	assert.Equal(t, "2025-03-01", got["due_date"])
	assert.Equal(t, "high", got["priority"])

	// Explicit null clears.
	rec = f.do(http.MethodPut, item, "u1",
		`{"text":"Buy oat milk","description":null,"tags":null,"due_date":null,"priority":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got = decode(t, rec)
	assert.Nil(t, got["description"])
	assert.Equal(t, []any{}, got["tags"])
	assert.Nil(t, got["due_date"])
	assert.Nil(t, got["priority"])
	assert.Equal(t, "not_started", got["status"])
}

func TestUnknownKeysAreIgnored(t *testing.T) {
	f := newAPI(t)
	listID := f.createList("u1", "L")
	itemID := f.createItem("u1", listID, `{"text":"Buy milk","priority":"high","tags":["errand"]}`)
	item := "/api/v1/items/" + itoa(itemID)

	// Keys differing only in case from a known key do not bind to it.
	rec := f.do(http.MethodPut, item, "u1", `{"text":"Buy milk","Priority":null,"TAGS":null,"Text":"other"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode(t, rec)
	assert.Equal(t, "Buy milk", got["text"])
	assert.Equal(t, "high", got["priority"])
	assert.Equal(t, []any{"errand"}, got["tags"])

	rec = f.do(http.MethodPatch, item+"/priority", "u1", `{"priority":"low","PRIORITY":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "low", decode(t, rec)["priority"])

	rec = f.do(http.MethodPatch, item+"/due-date", "u1", `{"due_date":"2025-12-31","Due_Date":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-12-31", decode(t, rec)["due_date"])

	rec = f.do(http.MethodPut, "/api/v1/lists/"+itoa(listID)+"/name", "u1", `{"name":"Groceries","NAME":"ignored"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Groceries", decode(t, rec)["name"])
}

func TestUpdateInListRejectsForeignItem(t *testing.T) {
	f := newAPI(t)
	a := f.createList("u1", "A")
	b := f.createList("u1", "B")
	itemID := f.createItem("u1", a, `{"text":"x"}`)

	rec := f.do(http.MethodPut, "/api/v1/lists/"+itoa(b)+"/items/"+itoa(itemID), "u1", `{"text":"y"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(http.MethodPut, "/api/v1/lists/"+itoa(a)+"/items/"+itoa(itemID), "u1", `{"text":"y"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "y", decode(t, rec)["text"])
}

func TestToggleDeleteRestoreOverHTTP(t *testing.T) {
	f := newAPI(t)
	listID := f.createList("u1", "L")
	itemID := f.createItem("u1", listID, `{"text":"x"}`)
	item := "/api/v1/items/" + itoa(itemID)

	rec := f.do(http.MethodPatch, item+"/toggle-complete", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", decode(t, rec)["status"])

	rec = f.do(http.MethodDelete, item, "u1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/v1/lists/"+itoa(listID)+"/items", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	f.clock.Advance(5 * time.Second)
	rec = f.do(http.MethodPost, item+"/restore", "u1", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode(t, rec)
	assert.Nil(t, got["deleted_at"])
	assert.Equal(t, "completed", got["status"])

	rec = f.do(http.MethodDelete, item, "u1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
	f.clock.Advance(6 * time.Second)
	rec = f.do(http.MethodPost, item+"/restore", "u1", "")
	assert.Equal(t, http.StatusGone, rec.Code)
	assert.Equal(t, "undo_timeout", decode(t, rec)["code"])
}

func TestDueDateAndPriorityEndpoints(t *testing.T) {
	f := newAPI(t)
	listID := f.createList("u1", "L")
	item := "/api/v1/items/" + itoa(f.createItem("u1", listID, `{"text":"x"}`))

	rec := f.do(http.MethodPatch, item+"/due-date", "u1", `{"due_date":"2025-12-31"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "2025-12-31", decode(t, rec)["due_date"])

	rec = f.do(http.MethodPatch, item+"/due-date", "u1", `{"due_date":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["due_date"])

	rec = f.do(http.MethodPatch, item+"/priority", "u1", `{"priority":"low"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "low", decode(t, rec)["priority"])

	rec = f.do(http.MethodPatch, item+"/priority", "u1", `{"priority":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, decode(t, rec)["priority"])

	rec = f.do(http.MethodPatch, item+"/priority", "u1", `{}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	f := newAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/lists", nil)
	req.Header.Set("Origin", "http://localhost:3001")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestNewRouter_RequiresDependencies(t *testing.T) {
	_, err := httpapi.NewRouter(httpapi.RouterConfig{})
	assert.Error(t, err)
}
