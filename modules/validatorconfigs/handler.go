// Package validatorconfigs exposes CRUD for stored validator
// configurations: the per-tenant, per-stage descriptors the guardrails
// module merges into each pipeline run.
package validatorconfigs

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contentguard/gateway/pkg/apiresponse"
	"github.com/contentguard/gateway/pkg/guardrail"
	"github.com/contentguard/gateway/pkg/pg"
	"github.com/contentguard/gateway/pkg/tenant"
	"github.com/contentguard/gateway/storage/postgres"
)

// Handler serves the validator-config management endpoints.
type Handler struct {
	store *postgres.ValidatorConfigStore
}

func NewHandler(store *postgres.ValidatorConfigStore) *Handler {
	if store == nil {
		panic("validatorconfigs: store cannot be nil")
	}
	return &Handler{store: store}
}

// decode splits a raw payload into system fields and kind-specific
// params, the same partition the pipeline builder applies at run time,
// so misconfigurations fail at write time rather than on the hot path.
func decode(r *http.Request, scope tenant.Scope) (*postgres.ValidatorConfig, error) {
	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, errors.New("malformed request body")
	}

	desc, err := guardrail.DecodeDescriptor(raw)
	if err != nil {
		return nil, err
	}

	return &postgres.ValidatorConfig{
		Scope:     scope,
		Type:      desc.Kind,
		Stage:     desc.Stage,
		OnFail:    desc.OnFail,
		Config:    desc.Params,
		IsEnabled: desc.Enabled,
	}, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}

	stage := guardrail.Stage(r.URL.Query().Get("stage"))
	if stage == "" {
		stage = guardrail.StageInput
	}

	configs, err := h.store.List(r.Context(), scope, stage, false)
	if err != nil {
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to list validator configs")
		return
	}
	apiresponse.OK(w, http.StatusOK, configs)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed validator config id")
		return
	}

	config, err := h.store.Get(r.Context(), id, scope)
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			apiresponse.Fail(w, http.StatusNotFound, "validator config not found")
			return
		}
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to get validator config")
		return
	}
	apiresponse.OK(w, http.StatusOK, config)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}

	config, err := decode(r, scope)
	if err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Create(r.Context(), config); err != nil {
		if pg.IsDuplicateKeyError(err) {
			apiresponse.Fail(w, http.StatusConflict, "a config for this validator type and stage already exists")
			return
		}
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to create validator config")
		return
	}
	apiresponse.OK(w, http.StatusCreated, config)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed validator config id")
		return
	}

	config, err := decode(r, scope)
	if err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	config.ID = id

	if err := h.store.Update(r.Context(), config); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			apiresponse.Fail(w, http.StatusNotFound, "validator config not found")
			return
		}
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to update validator config")
		return
	}
	apiresponse.OK(w, http.StatusOK, config)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	scope, err := tenant.MustFromContext(r.Context())
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed validator config id")
		return
	}

	if err := h.store.Delete(r.Context(), id, scope); err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			apiresponse.Fail(w, http.StatusNotFound, "validator config not found")
			return
		}
		apiresponse.Fail(w, http.StatusInternalServerError, "failed to delete validator config")
		return
	}
	apiresponse.OK(w, http.StatusOK, map[string]string{"id": id.String()})
}

// Router mounts the validator-config CRUD endpoints.
func Router(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}
