package dto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contalink/internal/core/tenant"
	"contalink/pkg/logger"
)

func TestNewTenantResponseCopiesCompany(t *testing.T) {
	resolver := tenant.NewResolver(tenant.ResolverConfig{}, nil, nil, logger.Nop())
	s := tenant.NewSession(resolver, tenant.StaticContext{HostName: "restaurant.localhost"}, "")

	company, err := s.LoadTenant(context.Background(), false)
	require.NoError(t, err)
	require.NotNil(t, company)

	resp := NewTenantResponse(s)
	require.NotNil(t, resp.Company)
	assert.NotSame(t, company, resp.Company)
	assert.Equal(t, company.ID, resp.Company.ID)
	assert.True(t, resp.Synthetic)
	require.NotNil(t, resp.Preferences)
	assert.Equal(t, tenant.ModePOS, resp.Preferences.Mode)

	resp.Company.Name = "changed"
	assert.NotEqual(t, "changed", s.Company().Name)
}

func TestNewTenantResponseWithoutCompany(t *testing.T) {
	resolver := tenant.NewResolver(tenant.ResolverConfig{}, nil, nil, logger.Nop())
	s := tenant.NewSession(resolver, tenant.StaticContext{}, "")

	resp := NewTenantResponse(s)
	assert.Nil(t, resp.Company)
	assert.Nil(t, resp.Preferences)
	assert.False(t, resp.Synthetic)
}
