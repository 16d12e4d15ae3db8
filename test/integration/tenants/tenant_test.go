package tenants_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"mais/pkg/model"
	"mais/test/common"
)

type tenantResponse struct {
	Data model.Tenant `json:"data"`
}

type offeringResponse struct {
	Data model.ServiceOffering `json:"data"`
}

func setupClient(t *testing.T) *common.Client {
	t.Helper()
	common.RequireIntegrationEnv(t)

	client := common.NewClient(common.TenantsURL())
	client.WaitForHealthy(t, common.DefaultHealthCheckTimeout)
	return client
}

func createTenant(t *testing.T, client *common.Client, mode string) model.Tenant {
	t.Helper()

	resp := client.POST(t, "/api/v1/tenants", map[string]any{
		"name":          fmt.Sprintf("Integration %s %d", mode, time.Now().UnixNano()),
		"booking_mode":  mode,
		"contact_phone": "+972501234567",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("tenant create returned %d: %s", resp.StatusCode, resp.Body)
	}

	var result tenantResponse
	if err := resp.DecodeJSON(&result); err != nil {
		t.Fatalf("failed to decode tenant: %v", err)
	}
	return result.Data
}

func TestTenantLifecycle(t *testing.T) {
	client := setupClient(t)

	tenant := createTenant(t, client, "date")
	if !tenant.Active {
		t.Error("new tenant should start active")
	}
	if tenant.Timezone == "" {
		t.Error("timezone should be inferred from the contact phone")
	}
	path := "/api/v1/tenants/" + tenant.ID

	get := client.GET(t, path)
	if get.StatusCode != http.StatusOK {
		t.Fatalf("get returned %d: %s", get.StatusCode, get.Body)
	}

	update := client.PATCH(t, path, map[string]any{
		"name":   "Renamed Studio",
		"active": false,
	})
	if update.StatusCode != http.StatusOK {
		t.Fatalf("update returned %d: %s", update.StatusCode, update.Body)
	}
	var updated tenantResponse
	if err := update.DecodeJSON(&updated); err != nil {
		t.Fatalf("failed to decode updated tenant: %v", err)
	}
	if updated.Data.Name != "Renamed Studio" || updated.Data.Active {
		t.Errorf("update not applied: name=%q active=%v", updated.Data.Name, updated.Data.Active)
	}

	if del := client.DELETE(t, path); del.StatusCode != http.StatusNoContent {
		t.Fatalf("delete returned %d: %s", del.StatusCode, del.Body)
	}
	if get := client.GET(t, path); get.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want 404", get.StatusCode)
	}
}

func TestTenantValidation(t *testing.T) {
	client := setupClient(t)

	resp := client.POST(t, "/api/v1/tenants", map[string]any{
		"name":          "No Phone",
		"booking_mode":  "walk-in",
		"contact_phone": "not-a-number",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid tenant returned %d, want 422: %s", resp.StatusCode, resp.Body)
	}
}

func TestOfferingLifecycle(t *testing.T) {
	client := setupClient(t)

	tenant := createTenant(t, client, "timeslot")
	t.Cleanup(func() {
		client.DELETE(t, "/api/v1/tenants/"+tenant.ID)
	})
	path := "/api/v1/tenants/" + tenant.ID + "/services"

	create := client.POST(t, path, map[string]any{
		"name":         "Deep Tissue Massage",
		"duration_min": 60,
	})
	if create.StatusCode != http.StatusCreated {
		t.Fatalf("offering create returned %d: %s", create.StatusCode, create.Body)
	}
	var offering offeringResponse
	if err := create.DecodeJSON(&offering); err != nil {
		t.Fatalf("failed to decode offering: %v", err)
	}
	if offering.Data.TenantID != tenant.ID {
		t.Errorf("offering tenant_id = %q, want %q", offering.Data.TenantID, tenant.ID)
	}

	list := client.GET(t, path)
	if list.StatusCode != http.StatusOK {
		t.Fatalf("offering list returned %d", list.StatusCode)
	}
	var offerings struct {
		Data []model.ServiceOffering `json:"data"`
	}
	if err := list.DecodeJSON(&offerings); err != nil {
		t.Fatalf("failed to decode offerings: %v", err)
	}
	if len(offerings.Data) != 1 {
		t.Fatalf("offerings count = %d, want 1", len(offerings.Data))
	}

	update := client.PATCH(t, path+"/"+offering.Data.ID, map[string]any{
		"duration_min": 90,
	})
	if update.StatusCode != http.StatusOK {
		t.Fatalf("offering update returned %d: %s", update.StatusCode, update.Body)
	}
	var patched offeringResponse
	if err := update.DecodeJSON(&patched); err != nil {
		t.Fatalf("failed to decode updated offering: %v", err)
	}
	if patched.Data.DurationMin != 90 {
		t.Errorf("duration_min = %d, want 90", patched.Data.DurationMin)
	}

	if del := client.DELETE(t, path+"/"+offering.Data.ID); del.StatusCode != http.StatusNoContent {
		t.Fatalf("offering delete returned %d", del.StatusCode)
	}
}

func TestOfferingsRejectedForDateModeTenant(t *testing.T) {
	client := setupClient(t)

	tenant := createTenant(t, client, "date")
	t.Cleanup(func() {
		client.DELETE(t, "/api/v1/tenants/"+tenant.ID)
	})

	resp := client.POST(t, "/api/v1/tenants/"+tenant.ID+"/services", map[string]any{
		"name":         "Haircut",
		"duration_min": 30,
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("offering on date-mode tenant returned %d, want 400: %s", resp.StatusCode, resp.Body)
	}
}

func TestDeleteCascadesToBookings(t *testing.T) {
	client := setupClient(t)
	bookings := common.NewClient(common.BookingsURL())
	bookings.WaitForHealthy(t, common.DefaultHealthCheckTimeout)

	tenant := createTenant(t, client, "date")
	bookingsPath := "/api/v1/tenants/" + tenant.ID + "/bookings"

	created := bookings.POST(t, bookingsPath, map[string]any{
		"date":         time.Now().AddDate(0, 0, 14).Format("2006-01-02"),
		"client_email": "dana@example.com",
		"client_name":  "Dana Levi",
	})
	if created.StatusCode != http.StatusCreated {
		t.Fatalf("booking create returned %d: %s", created.StatusCode, created.Body)
	}
	var booking struct {
		Data struct {
			Booking model.Booking `json:"booking"`
		} `json:"data"`
	}
	if err := created.DecodeJSON(&booking); err != nil {
		t.Fatalf("failed to decode booking: %v", err)
	}

	if del := client.DELETE(t, "/api/v1/tenants/"+tenant.ID); del.StatusCode != http.StatusNoContent {
		t.Fatalf("tenant delete returned %d: %s", del.StatusCode, del.Body)
	}

	get := bookings.GET(t, bookingsPath+"/"+booking.Data.Booking.ID)
	if get.StatusCode != http.StatusNotFound {
		t.Errorf("booking survived tenant delete: got %d, want 404", get.StatusCode)
	}
}
