// Package guardrails exposes the guardrail pipeline over HTTP: the
// stage-specific execution endpoints and the validator-kind discovery
// endpoint.
package guardrails

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contentguard/gateway/pkg/apiresponse"
	"github.com/contentguard/gateway/pkg/tenant"
)

// Router mounts the guardrails endpoints. Execution endpoints sit behind
// the multitenant API-key middleware; discovery is open, it only reveals
// the registry shape.
func Router(h *Handler, resolver tenant.Resolver) chi.Router {
	r := chi.NewRouter()

	r.Group(func(protected chi.Router) {
		protected.Use(tenant.Middleware(resolver, func(w http.ResponseWriter, status int, err error) {
			apiresponse.Fail(w, status, err.Error())
		}))
		protected.Post("/input", h.RunInput)
		protected.Post("/output", h.RunOutput)
	})

	r.Get("/validators", h.Kinds)

	return r
}
