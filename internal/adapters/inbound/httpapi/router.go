package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sufield/todoapi/internal/app"
	"github.com/sufield/todoapi/internal/logging"
	"github.com/sufield/todoapi/internal/ports"
)

// RouterConfig wires NewRouter.
type RouterConfig struct {
	Lists    *app.ListService
	Items    *app.ItemService
	Store    ports.Store
	Identity ports.IdentityResolver

	// Logger receives access logs and internal errors. Default discards.
	Logger *slog.Logger

	Version        string
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter builds the API handler.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	switch {
	case cfg.Lists == nil || cfg.Items == nil:
		return nil, errors.New("list and item services are required")
	case cfg.Store == nil:
		return nil, errors.New("store is required")
	case cfg.Identity == nil:
		return nil, errors.New("identity resolver is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Discard()
	}

	schemas, err := compileSchemas()
	if err != nil {
		return nil, err
	}
	h := &handlers{
		lists:   cfg.Lists,
		items:   cfg.Items,
		store:   cfg.Store,
		schemas: schemas,
		logger:  cfg.Logger,
		version: cfg.Version,
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(accessLog(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", HeaderRequestID},
		ExposedHeaders:   []string{HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Detail: "Not found", Code: "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method not allowed", Code: "method_not_allowed"})
	})

	r.Get("/", h.root)
	r.Get("/health", h.health)
	r.Get("/readyz", h.ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.apiHealth)

		r.Group(func(r chi.Router) {
			r.Use(authenticate(cfg.Identity, cfg.Logger))

			r.Get("/auth/validate", h.authValidate)
			r.Get("/auth/me", h.authMe)

			r.Route("/lists", func(r chi.Router) {
				r.Post("/", h.createList)
				r.Get("/", h.listLists)
				r.Route("/{list_id}", func(r chi.Router) {
					r.Get("/", h.getList)
					r.Put("/name", h.renameList)
					r.Get("/items", h.listItems)
					r.Post("/items", h.createItem)
					r.Put("/items/{item_id}", h.updateItemInList)
				})
			})

			r.Route("/items/{item_id}", func(r chi.Router) {
				r.Put("/", h.updateItem)
				r.Delete("/", h.deleteItem)
				r.Patch("/toggle-complete", h.itemAction(h.items.ToggleCompletion))
				r.Post("/restore", h.itemAction(h.items.Restore))
				r.Patch("/due-date", h.setDueDate)
				r.Patch("/priority", h.setPriority)
			})
		})
	})
	return r, nil
}
