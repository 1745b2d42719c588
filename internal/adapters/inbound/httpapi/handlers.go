package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sufield/todoapi/internal/app"
	"github.com/sufield/todoapi/internal/domain"
	"github.com/sufield/todoapi/internal/ports"
)

type handlers struct {
	lists   *app.ListService
	items   *app.ItemService
	store   ports.Store
	schemas schemaSet
	logger  *slog.Logger
	version string
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, h.logger, err)
}

// decode validates the body against schema and binds its members into dst
// by exact key.
func (h *handlers) decode(r *http.Request, schema string, dst requestBody) error {
	data, err := h.schemas.validate(schema, r.Body)
	if err != nil {
		return err
	}
	var fields bodyFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if err := dst.bindFields(fields); err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

func requester(r *http.Request) string {
	u, _ := UserFromContext(r.Context())
	return u.ID
}

func (h *handlers) root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "todoapi is running", "version": h.version})
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *handlers) apiHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// ready reports whether the store answers a ping within two seconds.
func (h *handlers) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		h.logger.WarnContext(ctx, "readiness check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *handlers) authValidate(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "user": u})
}

func (h *handlers) authMe(w http.ResponseWriter, r *http.Request) {
	u, _ := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}

func (h *handlers) createList(w http.ResponseWriter, r *http.Request) {
	var req listRequest
	if err := h.decode(r, schemaList, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	l, err := h.lists.Create(r.Context(), req.Name, requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newListResponse(l))
}

func (h *handlers) listLists(w http.ResponseWriter, r *http.Request) {
	ls, err := h.lists.ListByOwner(r.Context(), requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponses(ls))
}

func (h *handlers) getList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	l, err := h.lists.Get(r.Context(), listID, requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(l))
}

func (h *handlers) renameList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req listRequest
	if err := h.decode(r, schemaList, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	l, err := h.lists.Rename(r.Context(), listID, requester(r), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newListResponse(l))
}

func (h *handlers) listItems(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	items, err := h.items.ListItems(r.Context(), listID, requester(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponses(items))
}

func (h *handlers) createItem(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req itemRequest
	if err := h.decode(r, schemaItem, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.lists.Authorize(r.Context(), listID, requester(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	it, err := h.items.Create(r.Context(), req.newItem(listID, requester(r)))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newItemResponse(it))
}

func (h *handlers) updateItemInList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "list_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req itemRequest
	if err := h.decode(r, schemaItem, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	it, err := h.items.UpdateInList(r.Context(), listID, itemID, requester(r), req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(it))
}

func (h *handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "item_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req itemRequest
	if err := h.decode(r, schemaItem, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	it, err := h.items.Update(r.Context(), itemID, requester(r), req.patch())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(it))
}

// itemAction adapts the body-less item operations.
func (h *handlers) itemAction(op func(ctx context.Context, itemID int64, requester string) (domain.Item, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := pathID(r, "item_id")
		if err != nil {
			h.fail(w, r, err)
			return
		}
		it, err := op(r.Context(), itemID, requester(r))
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newItemResponse(it))
	}
}

func (h *handlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "item_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.items.SoftDelete(r.Context(), itemID, requester(r)); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) setDueDate(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "item_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req dueDateRequest
	if err := h.decode(r, schemaDueDate, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	it, err := h.items.SetDueDate(r.Context(), itemID, requester(r), req.DueDate.Ptr())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(it))
}

func (h *handlers) setPriority(w http.ResponseWriter, r *http.Request) {
	itemID, err := pathID(r, "item_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req priorityRequest
	if err := h.decode(r, schemaPriority, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	it, err := h.items.SetPriority(r.Context(), itemID, requester(r), req.Priority.Ptr())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newItemResponse(it))
}
