// Package banlists exposes CRUD for tenant-scoped ban lists over the
// management API. The tenant scope on each request comes from path-level
// headers resolved by the shared tenant middleware.
package banlists

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contentguard/gateway/pkg/apiresponse"
	"github.com/contentguard/gateway/pkg/guardrail"
	"github.com/contentguard/gateway/pkg/tenant"
	"github.com/contentguard/gateway/storage/postgres"
)

// Handler serves the ban-list management endpoints.
type Handler struct {
	store *postgres.BanListStore
}

func NewHandler(store *postgres.BanListStore) *Handler {
	if store == nil {
		panic("banlists: store cannot be nil")
	}
	return &Handler{store: store}
}

type banListPayload struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	BannedWords []string `json:"banned_words"`
	Domain      string   `json:"domain"`
	IsPublic    bool     `json:"is_public"`
}

type banListView struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	BannedWords []string  `json:"banned_words"`
	Domain      string    `json:"domain"`
	IsPublic    bool      `json:"is_public"`
}

func view(list guardrail.BanList) banListView {
	return banListView{
		ID:          list.ID,
		Name:        list.Name,
		Description: list.Description,
		BannedWords: list.BannedWords,
		Domain:      list.Domain,
		IsPublic:    list.IsPublic,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}

	lists, err := h.store.List(r.Context(), scope)
	if err != nil {
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to list ban lists")
		return
	}

	views := make([]banListView, len(lists))
	for i, list := range lists {
		views[i] = view(list)
	}
	apiresponse.OK(w, http.StatusOK, views)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed ban list id")
		return
	}

	list, err := h.store.Get(r.Context(), id, scope)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			apiresponse.Fail(w, http.StatusNotFound, "ban list not found")
			return
		}
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to get ban list")
		return
	}
	apiresponse.OK(w, http.StatusOK, view(*list))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}

	var payload banListPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if payload.Name == "" || len(payload.BannedWords) == 0 {
		apiresponse.Fail(w, http.StatusBadRequest, "name and banned_words are required")
		return
	}

	list := guardrail.BanList{
		Name:        payload.Name,
		Description: payload.Description,
		BannedWords: payload.BannedWords,
		Scope:       scope,
		Domain:      payload.Domain,
		IsPublic:    payload.IsPublic,
	}
	if err := h.store.Create(r.Context(), &list); err != nil {
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to create ban list")
		return
	}
	apiresponse.OK(w, http.StatusCreated, view(list))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed ban list id")
		return
	}

	var payload banListPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	list := guardrail.BanList{
		ID:          id,
		Name:        payload.Name,
		Description: payload.Description,
		BannedWords: payload.BannedWords,
		Scope:       scope,
		Domain:      payload.Domain,
		IsPublic:    payload.IsPublic,
	}
	if err := h.store.Update(r.Context(), &list); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			apiresponse.Fail(w, http.StatusNotFound, "ban list not found")
			return
		}
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to update ban list")
		return
	}
	apiresponse.OK(w, http.StatusOK, view(list))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed ban list id")
		return
	}

	if err := h.store.Delete(r.Context(), id, scope); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			apiresponse.Fail(w, http.StatusNotFound, "ban list not found")
			return
		}
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to delete ban list")
		return
	}
	apiresponse.OK(w, http.StatusOK, map[string]string{"id": id.String()})
}

// Router mounts the ban-list CRUD endpoints.
func Router(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
