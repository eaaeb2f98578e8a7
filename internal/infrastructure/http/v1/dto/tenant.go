package dto

import (
	"contalink/internal/core/host"
	"contalink/internal/core/tenant"
)

// TenantResponse describes the tenant of the current request.
type TenantResponse struct {
	Key         tenant.Key          `json:"key"`
	Company     *tenant.CompanyInfo `json:"company"`
	Preferences *tenant.Preferences `json:"preferences,omitempty"`
	Synthetic   bool                `json:"synthetic"`
	Loading     bool                `json:"loading"`
}

// NewTenantResponse builds the response for a session after a load. The
// company is copied so the response never aliases the cached record.
func NewTenantResponse(s *tenant.Session) TenantResponse {
	resp := TenantResponse{
		Key:     s.TenantKey(),
		Company: s.Company().Clone(),
		Loading: s.Loading(),
	}
	if resp.Company != nil {
		prefs := resp.Company.Preferences()
		resp.Preferences = &prefs
		resp.Synthetic = resp.Company.Synthetic
	}
	return resp
}

// OverrideRequest switches the session to another tenant key.
// An empty subdomain clears the override.
type OverrideRequest struct {
	Subdomain string `json:"subdomain"`
}

// HostResponse shows how the request host was interpreted.
type HostResponse struct {
	Host   string      `json:"host"`
	Parsed host.Parsed `json:"parsed"`
	Key    tenant.Key  `json:"key"`
}
