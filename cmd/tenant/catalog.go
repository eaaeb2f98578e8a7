package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"contalink/internal/domain/filter"
	"contalink/internal/infrastructure/storage/sqlgen"
	"contalink/internal/records"
)

func viewsCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "views",
		Short: "Inspect catalogue views",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List registered views",
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := c.registry()
				if err != nil {
					return err
				}
				for _, d := range reg.List() {
					fmt.Printf("%-24s %-24s %2d fields %d joins  %s\n",
						d.Name, d.TableName, len(d.Fields), len(d.ForeignKeys), d.Title)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "show <view>",
			Short: "Print a view descriptor",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := c.registry()
				if err != nil {
					return err
				}
				d, ok := reg.Get(args[0])
				if !ok {
					return fmt.Errorf("unknown view %q", args[0])
				}
				c.print(d)
				return nil
			},
		},
	)
	return cmd
}

func modulesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "modules",
		Short: "List modules and their views",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			if c.out == "json" {
				c.print(reg.Modules())
				return nil
			}
			for _, m := range reg.Modules() {
				names := make([]string, 0, len(m.Views))
				for _, v := range m.Views {
					names = append(names, v.View)
				}
				fmt.Printf("%-14s %-20s %s\n", m.Name, m.Label, strings.Join(names, ", "))
			}
			return nil
		},
	}
}

func recordsCmd(c *cli) *cobra.Command {
	var (
		view, search, field, value, order, dialect string
		backend                                    int64
		page, pageSize                             int
	)

	build := &cobra.Command{
		Use:   "build",
		Short: "Print the records request and SQL for a view",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			d, ok := reg.Get(view)
			if !ok {
				return fmt.Errorf("unknown view %q", view)
			}

			opts := records.Options{
				OrderBy:  records.ParseOrderBy(order),
				Page:     page,
				PageSize: pageSize,
			}
			if field != "" {
				opts.Filter = filter.Equals{Field: field, Value: value}
			}
			req, err := records.Search(d, backend, search, opts)
			if err != nil {
				return err
			}

			body, err := json.MarshalIndent(req, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(body))

			if dialect == "" {
				return nil
			}
			dl, ok := sqlgen.DialectByName(dialect)
			if !ok {
				return fmt.Errorf("unknown dialect %q", dialect)
			}
			q, err := sqlgen.Compile(req, dl)
			if err != nil {
				return err
			}
			fmt.Printf("\n-- page\n%s\n-- args %v\n\n-- count\n%s\n-- args %v\n", q.SQL, q.Args, q.CountSQL, q.CountArgs)
			return nil
		},
	}
	build.Flags().StringVar(&view, "view", "", "view name")
	build.Flags().Int64Var(&backend, "backend", 1, "backend id")
	build.Flags().StringVar(&search, "search", "", "search text")
	build.Flags().StringVar(&field, "field", "", "equality filter field")
	build.Flags().StringVar(&value, "value", "", "equality filter value")
	build.Flags().StringVar(&order, "order", "", "order, e.g. -FECHA,NUMERO")
	build.Flags().IntVar(&page, "page", records.DefaultPage, "page number")
	build.Flags().IntVar(&pageSize, "page-size", records.DefaultPageSize, "page size")
	build.Flags().StringVar(&dialect, "sql", "", "also compile SQL: firebird|postgres")
	_ = build.MarkFlagRequired("view")

	cmd := &cobra.Command{
		Use:   "records",
		Short: "Records queries",
	}
	cmd.AddCommand(build)
	return cmd
}
