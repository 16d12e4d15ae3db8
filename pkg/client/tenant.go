package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	apperrors "mais/pkg/errors"
	"mais/pkg/model"
)

// TenantClient resolves tenants from the tenant directory service. The
// bookings service trusts its answers as already tenant-authorized.
type TenantClient struct {
	httpClient *HttpClient
}

func NewTenantClient(baseURL string) *TenantClient {
	return &TenantClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *TenantClient) GetByID(ctx context.Context, id string) (*model.Tenant, error) {
	path := "/api/v1/tenants/" + url.PathEscape(id)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "tenant directory unreachable", http.StatusServiceUnavailable)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeTenant(resp)
	case http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Tenant", id)
	default:
		return nil, apperrors.Internal(
			fmt.Sprintf("tenant directory returned status %d", resp.StatusCode), nil)
	}
}

// GetOffering resolves a single service offering of the tenant. NotFound
// covers both a missing offering and one belonging to another tenant; the
// directory never discloses which.
func (c *TenantClient) GetOffering(ctx context.Context, tenantID string, id string) (*model.ServiceOffering, error) {
	path := "/api/v1/tenants/" + url.PathEscape(tenantID) + "/services/" + url.PathEscape(id)
	resp, err := c.httpClient.GET(ctx, path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnavailable, "tenant directory unreachable", http.StatusServiceUnavailable)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return decodeOffering(resp)
	case http.StatusNotFound:
		return nil, apperrors.NotFoundWithID("Service offering", id)
	case http.StatusBadRequest:
		return nil, apperrors.InvalidInput("Invalid service offering ID format")
	default:
		return nil, apperrors.Internal(
			fmt.Sprintf("tenant directory returned status %d", resp.StatusCode), nil)
	}
}

func decodeTenant(resp *Response) (*model.Tenant, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, apperrors.Internal("failed to decode tenant directory response", err)
	}

	var tenant model.Tenant
	if err := json.Unmarshal(wrapper.Data, &tenant); err != nil {
		return nil, apperrors.Internal("failed to decode tenant payload", err)
	}

	return &tenant, nil
}

func decodeOffering(resp *Response) (*model.ServiceOffering, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, apperrors.Internal("failed to decode tenant directory response", err)
	}

	var offering model.ServiceOffering
	if err := json.Unmarshal(wrapper.Data, &offering); err != nil {
		return nil, apperrors.Internal("failed to decode service offering payload", err)
	}

	return &offering, nil
}
