package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/clients/external"
	"github.com/AnnemeHolzh/DnD-CharacterCreator-sub000/internal/errors"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse weapons, armor, tools, spells and languages",
	}
	cmd.AddCommand(newCatalogListCmd(a))
	cmd.AddCommand(newCatalogShowCmd(a))
	return cmd
}

func newCatalogListCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list [CATEGORY]",
		Short: "List one category, or every category when none is given",
		Long: fmt.Sprintf(`List catalog entries. Categories: %s.
Without a category all of them are fetched concurrently.`, categoryNames()),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			catalog, err := a.catalogClient()
			if err != nil {
				return err
			}

			categories := external.Categories
			if len(args) == 1 {
				category, ok := external.ParseCategory(args[0])
				if !ok {
					return errors.InvalidArgumentf("unknown category %q, expected one of: %s", args[0], categoryNames())
				}
				categories = []external.Category{category}
			}

			if err := catalog.Prefetch(ctx, categories...); err != nil {
				return err
			}

			listing := make(map[external.Category][]external.Entry, len(categories))
			for _, category := range categories {
				entries, err := catalog.ListCategory(ctx, category)
				if err != nil {
					return err
				}
				listing[category] = entries
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, listing)
			}
			for _, category := range categories {
				printEntries(out, category, listing[category])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the listing as JSON")
	return cmd
}

func newCatalogShowCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one catalog entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := a.catalogClient()
			if err != nil {
				return err
			}

			detail, err := catalog.GetDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, detail)
			}

			fmt.Fprintf(out, "%s (%s)\n", detail.Name, detail.Category)
			fmt.Fprintf(out, "  id: %s\n", detail.ID)
			if detail.Description != "" {
				fmt.Fprintf(out, "  %s\n", detail.Description)
			}
			if len(detail.Properties) > 0 {
				fmt.Fprintf(out, "  properties: %s\n", strings.Join(detail.Properties, ", "))
			}
			if detail.TwoHanded {
				fmt.Fprintln(out, "  two-handed: cannot be used with a shield")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the entry as JSON")
	return cmd
}

func printEntries(w io.Writer, category external.Category, entries []external.Entry) {
	fmt.Fprintf(w, "%s (%d):\n", category, len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "  %-28s %s\n", e.ID, e.Name)
	}
}

func categoryNames() string {
	names := make([]string, len(external.Categories))
	for i, c := range external.Categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
