// Package main provides a CLI for inspecting tenant resolution and the
// table catalogue.
//
// Usage:
//
//	tenant host parse shop.acme.com.co
//	tenant resolve --host acme.contalink.com
//	tenant list
//	tenant views list
//	tenant views show facturacion
//	tenant modules
//	tenant records build --view facturacion --backend 7 --search abc --sql postgres
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"contalink/internal/config"
	"contalink/internal/metadata"
	"contalink/pkg/logger"
)

type cli struct {
	cfg     *config.Config
	log     *logger.Logger
	catalog string
	out     string // "json" | "text"
}

func (c *cli) registry() (*metadata.Registry, error) {
	if c.catalog != "" {
		return metadata.LoadFile(c.catalog)
	}
	if c.cfg != nil && c.cfg.CatalogPath != "" {
		return metadata.LoadFile(c.cfg.CatalogPath)
	}
	return metadata.LoadDefault()
}

func (c *cli) print(v any) {
	p, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(p))
}

func main() {
	c := &cli{out: "text"}

	root := &cobra.Command{
		Use:           "tenant",
		Short:         "Contalink tenant and catalogue tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.cfg = cfg
			c.log, err = logger.New(logger.Config{Level: cfg.LogLevel, Development: true, OutputPaths: []string{"stderr"}})
			logger.SetDefault(c.log)
			return err
		},
	}
	root.PersistentFlags().StringVar(&c.catalog, "catalog", "", "catalogue YAML file (default: CATALOG_PATH or embedded)")
	root.PersistentFlags().StringVar(&c.out, "out", c.out, "output format: json|text")

	root.AddCommand(
		hostCmd(c),
		resolveCmd(c),
		listCmd(c),
		viewsCmd(c),
		modulesCmd(c),
		recordsCmd(c),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
