package httpapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/todoapi/internal/domain"
)

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(ServerConfig{Handler: http.NotFoundHandler()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address is required")

	_, err = NewServer(ServerConfig{Address: ":0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "handler is required")
}

func TestServer_StartServeStop(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "ok")
	})
	s, err := NewServer(ServerConfig{Address: "127.0.0.1:0", Handler: handler})
	require.NoError(t, err)
	assert.Nil(t, s.Addr())

	ctx := context.Background()
	require.NoError(t, s.Start(ctx))
	require.Error(t, s.Start(ctx), "second start")

	resp, err := http.Get("http://" + s.Addr().String() + "/")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	assert.NoError(t, <-s.Done())
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	s, err := NewServer(ServerConfig{Address: "127.0.0.1:0", Handler: http.NotFoundHandler()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, time.Second) }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSchemas_Compile(t *testing.T) {
	set, err := compileSchemas()
	require.NoError(t, err)
	assert.Len(t, set, 4)
}

func TestSchemaViolation_NamesField(t *testing.T) {
	set, err := compileSchemas()
	require.NoError(t, err)

	_, err = set.validate(schemaItem, stringsReader(`{"text":"x","tags":["ok",""]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tags.1")

	_, err = set.validate(schemaItem, stringsReader(`[`))
	assert.ErrorIs(t, err, errMalformed)
}

func TestSchemaValidate_AcceptsValidBody(t *testing.T) {
	set, err := compileSchemas()
	require.NoError(t, err)

	body := `{"text":"Buy milk","tags":["errand"],"due_date":"2025-03-01","priority":null}`
	data, err := set.validate(schemaItem, stringsReader(body))
	require.NoError(t, err)
	assert.JSONEq(t, body, string(data))

	_, err = set.validate(schemaList, stringsReader(`{"name":"L"} {"name":"M"}`))
	assert.ErrorIs(t, err, errMalformed)

	_, err = set.validate(schemaList, stringsReader(`{"name":1}`))
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Field)
}

func stringsReader(s string) io.Reader { return strings.NewReader(s) }
