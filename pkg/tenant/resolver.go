package tenant

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// BackendConfig configures the credential-backend resolver.
type BackendConfig struct {
	CredentialURL string        `env:"TENANT_CREDENTIAL_URL,required"` // endpoint returning the tenant scope for an API key
	Timeout       time.Duration `env:"TENANT_CREDENTIAL_TIMEOUT" envDefault:"5s"`
}

// BackendResolver resolves API keys against the central credential
// service. The service returns the organization/project pair the key
// was issued for.
type BackendResolver struct {
	url    string
	client *http.Client
}

// NewBackendResolver creates a resolver over the credential service.
func NewBackendResolver(cfg BackendConfig, client *http.Client) *BackendResolver {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &BackendResolver{url: cfg.CredentialURL, client: client}
}

type credentialRecord struct {
	OrganizationID int64 `json:"organization_id"`
	ProjectID      int64 `json:"project_id"`
}

type credentialResponse struct {
	Success bool               `json:"success"`
	Data    []credentialRecord `json:"data"`
}

// Resolve calls the credential backend with the API key and maps the
// response to a tenant scope. Network failures map to
// ErrBackendUnavailable; everything the backend rejects maps to
// ErrInvalidAPIKey.
func (r *BackendResolver) Resolve(ctx context.Context, apiKey string) (Scope, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return Scope{}, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return Scope{}, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	req.Header.Set("X-API-KEY", "ApiKey "+apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return Scope{}, fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Scope{}, ErrInvalidAPIKey
	}

	var payload credentialResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Scope{}, fmt.Errorf("%w: malformed response", ErrInvalidAPIKey)
	}
	if !payload.Success || len(payload.Data) == 0 {
		return Scope{}, ErrInvalidAPIKey
	}

	record := payload.Data[0]
	scope := Scope{OrganizationID: record.OrganizationID, ProjectID: record.ProjectID}
	if scope.IsZero() {
		return Scope{}, ErrInvalidAPIKey
	}
	return scope, nil
}
