package crud

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/accessd/accessd/internal/platform/httpx"
	"github.com/accessd/accessd/internal/rbac"
	"github.com/accessd/accessd/internal/shared"
)

// Payload is implemented by request DTOs; Fields returns only the
// fields the caller explicitly sent.
type Payload interface {
	Fields() Fields
}

// RouterConfig parameterizes a Router for one entity: C is the create
// payload type, U the update payload type.
type RouterConfig[T any, C Payload, U Payload] struct {
	Logger       *slog.Logger
	Service      *Service[T]
	Resource     string // path segment and permission resource, e.g. "users"
	Authenticate func(http.Handler) http.Handler
	Guard        rbac.Guard
	Present      func(*T) any // maps the entity to its response DTO
}

// Router is the permission-gated HTTP layer over one entity service.
// Every operation runs the same pipeline: authenticate, authorize
// resource:action, delegate, respond.
type Router[T any, C Payload, U Payload] struct {
	logger       *slog.Logger
	service      *Service[T]
	resource     string
	entity       string
	authenticate func(http.Handler) http.Handler
	guard        rbac.Guard
	present      func(*T) any
	validate     *validator.Validate
}

// NewRouter builds a Router from its config. The entity display name
// for messages is the title-cased singular of the resource.
func NewRouter[T any, C Payload, U Payload](cfg RouterConfig[T, C, U]) *Router[T, C, U] {
	entity := cases.Title(language.English).String(strings.TrimSuffix(cfg.Resource, "s"))
	return &Router[T, C, U]{
		logger:       cfg.Logger,
		service:      cfg.Service,
		resource:     cfg.Resource,
		entity:       entity,
		authenticate: cfg.Authenticate,
		guard:        cfg.Guard,
		present:      cfg.Present,
		validate:     validator.New(),
	}
}

// MountRoutes registers the five CRUD operations. List and get share
// the read permission; the remaining verbs map 1:1 to actions.
func (rt *Router[T, C, U]) MountRoutes(r chi.Router) {
	r.Use(rt.authenticate)
	r.With(rt.guard.Require(rt.resource, rbac.ActionCreate)).Post("/", rt.create)
	r.With(rt.guard.Require(rt.resource, rbac.ActionRead)).Get("/", rt.list)
	r.With(rt.guard.Require(rt.resource, rbac.ActionRead)).Get("/{id}", rt.get)
	r.With(rt.guard.Require(rt.resource, rbac.ActionUpdate)).Put("/{id}", rt.update)
	r.With(rt.guard.Require(rt.resource, rbac.ActionDelete)).Delete("/{id}", rt.remove)
}

type messageResponse struct {
	Message string `json:"message"`
}

func (rt *Router[T, C, U]) create(w http.ResponseWriter, r *http.Request) {
	var payload C
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := rt.validate.Struct(payload); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	ent, err := rt.service.Create(r.Context(), payload.Fields())
	if err != nil {
		rt.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rt.present(ent))
}

func (rt *Router[T, C, U]) list(w http.ResponseWriter, r *http.Request) {
	params := shared.ParsePageParams(r)
	ents, err := rt.service.List(r.Context(), params.Skip, params.Limit)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	total, err := rt.service.Count(r.Context())
	if err != nil {
		rt.respondError(w, err)
		return
	}

	out := make([]any, 0, len(ents))
	for _, ent := range ents {
		out = append(out, rt.present(ent))
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	httpx.JSON(w, http.StatusOK, out)
}

func (rt *Router[T, C, U]) get(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.pathID(w, r)
	if !ok {
		return
	}
	ent, err := rt.service.Get(r.Context(), id)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rt.present(ent))
}

func (rt *Router[T, C, U]) update(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.pathID(w, r)
	if !ok {
		return
	}
	// Existence check first, so an unknown id is a 404 even when the
	// payload is also bad in some way the store would reject.
	if _, err := rt.service.Get(r.Context(), id); err != nil {
		rt.respondError(w, err)
		return
	}

	var payload U
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := rt.validate.Struct(payload); err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, validationDetail(err))
		return
	}

	ent, err := rt.service.Update(r.Context(), id, payload.Fields())
	if err != nil {
		rt.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rt.present(ent))
}

func (rt *Router[T, C, U]) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := rt.pathID(w, r)
	if !ok {
		return
	}
	deleted, err := rt.service.Delete(r.Context(), id)
	if err != nil {
		rt.respondError(w, err)
		return
	}
	if !deleted {
		httpx.Error(w, http.StatusNotFound, rt.entity+" not found")
		return
	}
	httpx.JSON(w, http.StatusOK, messageResponse{Message: rt.entity + " deleted successfully"})
}

func (rt *Router[T, C, U]) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusUnprocessableEntity, "id must be an integer")
		return 0, false
	}
	return id, true
}

func (rt *Router[T, C, U]) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, rt.entity+" not found")
		return
	}
	if rt.logger != nil && !errors.Is(err, shared.ErrConflict) {
		rt.logger.Error("crud operation failed",
			slog.String("resource", rt.resource), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return "invalid request payload"
	}
	parts := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
