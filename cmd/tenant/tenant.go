package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"contalink/internal/config"
	"contalink/internal/core/host"
	"contalink/internal/core/tenant"
	"contalink/internal/infrastructure/storage/postgres"
)

func hostCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Host parsing",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "parse <host>...",
		Short: "Split hosts into domain and subdomain",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			for _, raw := range args {
				p := host.Parse(raw)
				if c.out == "json" {
					c.print(map[string]any{"host": raw, "domain": p.Domain, "subdomain": p.Subdomain})
					continue
				}
				fmt.Printf("%-40s domain=%s subdomain=%s\n", raw, p.Domain, p.Subdomain)
			}
		},
	})
	return cmd
}

func resolveCmd(c *cli) *cobra.Command {
	var hostName, explicit, query, stored string
	var force bool

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the company for a host the way the portal does",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			directory, closeDir, err := c.directory(ctx)
			if err != nil {
				return err
			}
			defer closeDir()

			resolver := tenant.NewResolver(tenant.ResolverConfig{BackendEnabled: c.cfg.BackendEnabled}, directory, nil, c.log)
			rc := tenant.StaticContext{
				HostName: host.Normalize(hostName),
				Params:   map[string]string{tenant.QueryOverrideParam: query},
				Store:    &tenant.MemoryOverrideStore{},
			}
			if stored != "" {
				rc.Store.Set(stored)
			}

			session := tenant.NewSession(resolver, rc, explicit)
			company, err := session.LoadTenant(ctx, force)
			if err != nil {
				return err
			}

			key := session.TenantKey()
			if c.out == "json" {
				out := map[string]any{"key": key, "company": company}
				if company != nil {
					out["preferences"] = company.Preferences()
				}
				c.print(out)
				return nil
			}

			fmt.Printf("key:       %s (source=%s, domain=%s)\n", key.String(), key.Source, key.Domain)
			if company == nil {
				fmt.Println("company:   none")
				return nil
			}
			prefs := company.Preferences()
			fmt.Printf("company:   %d %s\n", company.ID, company.Name)
			fmt.Printf("synthetic: %t\n", company.Synthetic)
			fmt.Printf("backend:   %d\n", company.BackendID)
			fmt.Printf("home:      %s\n", prefs.HomePath)
			fmt.Printf("theme:     %s / %s, %s\n", prefs.PrimaryColor, prefs.SecondaryColor, prefs.FontFamily)
			return nil
		},
	}
	cmd.Flags().StringVar(&hostName, "host", "localhost", "request host")
	cmd.Flags().StringVar(&explicit, "subdomain", "", "explicit tenant key")
	cmd.Flags().StringVar(&query, "query", "", "?subdomain= override")
	cmd.Flags().StringVar(&stored, "stored", "", "previously stored override")
	cmd.Flags().BoolVar(&force, "force", false, "bypass the cache")
	return cmd
}

func listCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List active companies in the meta database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.MetaDSN == "" {
				return fmt.Errorf("META_DATABASE_URL is required")
			}
			ctx := cmd.Context()
			pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(c.cfg.MetaDSN))
			if err != nil {
				return err
			}
			defer pool.Close()

			companies, err := postgres.NewCompanyDirectory(pool).List(ctx)
			if err != nil {
				return err
			}
			if c.out == "json" {
				c.print(companies)
				return nil
			}

			fmt.Printf("%-6s %-20s %-24s %-10s %-8s %s\n", "ID", "SUBDOMAIN", "DOMAIN", "MODE", "BACKEND", "NAME")
			for _, co := range companies {
				fmt.Printf("%-6d %-20s %-24s %-10s %-8d %s\n",
					co.ID, co.Subdomain, co.CustomDomain, co.EffectiveMode(), co.BackendID, co.Name)
			}
			fmt.Printf("\nTotal: %d companies\n", len(companies))
			return nil
		},
	}
}

// directory builds the configured company directory. It is nil when the
// backend is disabled.
func (c *cli) directory(ctx context.Context) (tenant.Directory, func(), error) {
	noop := func() {}
	if !c.cfg.BackendEnabled {
		return nil, noop, nil
	}
	if c.cfg.DirectoryDriver == config.DirectoryPostgres {
		pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(c.cfg.MetaDSN))
		if err != nil {
			return nil, noop, err
		}
		return postgres.NewCompanyDirectory(pool), pool.Close, nil
	}
	return tenant.NewHTTPDirectory(tenant.HTTPDirectoryConfig{
		BaseURL: c.cfg.APIURL,
		APIKey:  c.cfg.APIKey,
		Timeout: c.cfg.APITimeout,
	}, c.log), noop, nil
}
