package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"contalink/internal/core/tenant"
)

// companyColumns is the SELECT list for companies, derived from CompanyInfo.
var companyColumns = strings.Join(ExtractDBColumns[tenant.CompanyInfo](), ", ")

// CompanyDirectory implements tenant.Directory on the portal meta database.
//
// Expected table:
//
//	CREATE TABLE companies (
//	    id bigserial PRIMARY KEY, name text, subdomain text UNIQUE,
//	    custom_domain text UNIQUE, mode text, image_url text, is_active bool,
//	    primary_color text, secondary_color text, font_family text,
//	    tagline text, empresa_servidor_id bigint);
//
// Nullable text columns must be coalesced by a view or NOT NULL DEFAULT ''.
type CompanyDirectory struct {
	pool *pgxpool.Pool
}

var (
	_ tenant.Directory = (*CompanyDirectory)(nil)
	_ tenant.Lister    = (*CompanyDirectory)(nil)
)

func NewCompanyDirectory(pool *pgxpool.Pool) *CompanyDirectory {
	return &CompanyDirectory{pool: pool}
}

func (d *CompanyDirectory) BySubdomain(ctx context.Context, subdomain string) (*tenant.CompanyInfo, error) {
	return d.getOne(ctx, "subdomain", subdomain)
}

func (d *CompanyDirectory) ByDomain(ctx context.Context, domain string) (*tenant.CompanyInfo, error) {
	return d.getOne(ctx, "custom_domain", domain)
}

// List returns all active companies ordered by subdomain.
func (d *CompanyDirectory) List(ctx context.Context) ([]*tenant.CompanyInfo, error) {
	var companies []*tenant.CompanyInfo
	err := pgxscan.Select(ctx, d.pool, &companies,
		"SELECT "+companyColumns+" FROM companies WHERE is_active ORDER BY subdomain")
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	return companies, nil
}

func (d *CompanyDirectory) getOne(ctx context.Context, column, value string) (*tenant.CompanyInfo, error) {
	var c tenant.CompanyInfo
	err := pgxscan.Get(ctx, d.pool, &c,
		"SELECT "+companyColumns+" FROM companies WHERE lower("+column+") = lower($1)", value)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, tenant.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("get company by %s: %w", column, err)
	}
	if !c.Valid() {
		return nil, tenant.ErrInvalidCompany
	}
	return &c, nil
}
