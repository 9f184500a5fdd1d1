package guardrails

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/contentguard/gateway/pkg/apiresponse"
	"github.com/contentguard/gateway/pkg/environment"
	"github.com/contentguard/gateway/pkg/guardrail"
	"github.com/contentguard/gateway/pkg/tenant"
	"github.com/contentguard/gateway/storage/postgres"
)

// ConfigStore loads the tenant's stored validator configurations for a
// stage. Satisfied by storage/postgres.ValidatorConfigStore.
type ConfigStore interface {
	List(ctx context.Context, scope tenant.Scope, stage guardrail.Stage, enabledOnly bool) ([]postgres.ValidatorConfig, error)
}

// Handler serves the guardrail execution and discovery endpoints.
type Handler struct {
	svc     *guardrail.Service
	configs ConfigStore
	log     *slog.Logger
}

// NewHandler creates the guardrails HTTP handler. configs may be nil for
// deployments that only accept ad-hoc validators in the payload.
func NewHandler(svc *guardrail.Service, configs ConfigStore, log *slog.Logger) *Handler {
	if svc == nil {
		panic("guardrails: service cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{svc: svc, configs: configs, log: log}
}

type runRequest struct {
	RequestID  string           `json:"request_id"`
	Input      string           `json:"input"`
	Output     string           `json:"output"`
	Validators []map[string]any `json:"validators"`
}

type runData struct {
	ResponseID     string  `json:"response_id"`
	RephraseNeeded bool    `json:"rephrase_needed"`
	SafeText       *string `json:"safe_text"`
}

// RunInput handles POST /input: guardrails applied to user text before it
// reaches the model.
func (h *Handler) RunInput(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, guardrail.StageInput)
}

// RunOutput handles POST /output: guardrails applied to model text before
// it reaches the user.
func (h *Handler) RunOutput(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, guardrail.StageOutput)
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request, stage guardrail.Stage) {
	ctx := r.Context()

	scope, err := tenant.MustFromContext(ctx)
	if err != nil {
		apiresponse.Fail(w, http.StatusUnauthorized, err.Error())
		return
	}

	var payload runRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		apiresponse.Fail(w, http.StatusBadRequest, "malformed request body")
		return
	}

	text := payload.Input
	if stage == guardrail.StageOutput {
		text = payload.Output
	}

	descriptors, err := h.assembleDescriptors(ctx, scope, stage, payload.Validators)
	if err != nil {
		if guardrail.IsBuildError(err) {
			apiresponse.Fail(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.ErrorContext(ctx, "descriptor assembly failed",
			slog.String("request_id", payload.RequestID),
			slog.Any("error", err),
		)
		apiresponse.Fail(w, http.StatusInternalServerError, systemMessage(ctx, err))
		return
	}

	result, err := h.svc.Run(ctx, payload.RequestID, text, descriptors, scope)
	if err != nil {
		if guardrail.IsBuildError(err) {
			apiresponse.Fail(w, http.StatusBadRequest, err.Error())
			return
		}
		apiresponse.Fail(w, http.StatusInternalServerError, systemMessage(ctx, err))
		return
	}

	data := runData{
		ResponseID:     result.ResponseID.String(),
		RephraseNeeded: result.RephraseNeeded,
		SafeText:       result.FinalText,
	}

	switch result.Status {
	case guardrail.StatusSuccess:
		apiresponse.OK(w, http.StatusOK, data)
	case guardrail.StatusValidationError:
		apiresponse.FailWithData(w, http.StatusOK, data, result.Err.Error())
	default:
		h.log.ErrorContext(ctx, "guardrail run failed",
			slog.String("request_id", payload.RequestID),
			slog.Any("error", result.Err),
		)
		apiresponse.FailWithData(w, http.StatusInternalServerError, data, systemMessage(ctx, result.Err))
	}
}

// assembleDescriptors merges the tenant's stored configs for the stage
// with the ad-hoc validators from the payload. Stored configs run first;
// payload validators append in declared order.
func (h *Handler) assembleDescriptors(ctx context.Context, scope tenant.Scope, stage guardrail.Stage, adhoc []map[string]any) ([]guardrail.Descriptor, error) {
	var descriptors []guardrail.Descriptor

	if h.configs != nil {
		stored, err := h.configs.List(ctx, scope, stage, true)
		if err != nil {
			return nil, err
		}
		for _, record := range stored {
			desc, err := record.Descriptor()
			if err != nil {
				return nil, err
			}
			descriptors = append(descriptors, desc)
		}
	}

	for _, raw := range adhoc {
		desc, err := guardrail.DecodeDescriptor(raw)
		if err != nil {
			return nil, err
		}
		desc.Stage = stage
		descriptors = append(descriptors, desc)
	}

	return descriptors, nil
}

// Kinds handles GET /validators: the discovery endpoint enumerating
// registered validator kinds with their parameter schemas.
func (h *Handler) Kinds(w http.ResponseWriter, r *http.Request) {
	apiresponse.OK(w, http.StatusOK, h.svc.Kinds())
}

// systemMessage gates system-error detail on the environment so raw
// internals never leak to production callers.
func systemMessage(ctx context.Context, err error) string {
	if environment.IsProduction(ctx) {
		return "internal server error"
	}
	if err == nil {
		return "internal server error"
	}
	return err.Error()
}
