package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/paging"
)

func wishlistCmd(g *globals) *cobra.Command {
	root := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage saved books",
		Long: "The wishlist is a list of Project Gutenberg book ids stored in\n" +
			"folio's data directory. The browser and these commands share it.",
	}

	root.AddCommand(
		wishlistListCmd(g),
		wishlistAddCmd(g),
		wishlistRemoveCmd(g),
	)
	return root
}

func wishlistListCmd(g *globals) *cobra.Command {
	var idsOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved books",
		Example: `  folio wishlist list
  folio wishlist list --ids-only --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := g.openWishlist()
			if err != nil {
				return err
			}
			ids, err := store.List()
			_ = store.Close()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if idsOnly {
				if g.jsonOutput() {
					return writeJSON(out, ids)
				}
				for _, id := range ids {
					if _, err := fmt.Fprintln(out, id); err != nil {
						return err
					}
				}
				return nil
			}
			if len(ids) == 0 {
				if g.jsonOutput() {
					return writeJSON(out, []gutendex.Book{})
				}
				_, err := fmt.Fprintln(out, "Your wishlist is empty.")
				return err
			}

			books, err := fetchSaved(cmd, g, ids)
			if err != nil {
				return err
			}
			if g.jsonOutput() {
				return writeJSON(out, books)
			}
			return printBookTable(out, books, nil)
		},
	}
	cmd.Flags().BoolVar(&idsOnly, "ids-only", false, "print ids without looking up the books")
	return cmd
}

// fetchSaved looks up every saved id, one catalog page at a time.
func fetchSaved(cmd *cobra.Command, g *globals, ids []int) ([]gutendex.Book, error) {
	client, _, err := g.newClient(cmd)
	if err != nil {
		return nil, err
	}
	books := make([]gutendex.Book, 0, len(ids))
	pages := paging.TotalPages(len(ids), gutendex.PageSize)
	for page := 1; page <= pages; page++ {
		list, err := client.BooksByIDs(cmd.Context(), ids, page)
		if err != nil {
			return nil, fmt.Errorf("look up wishlist page %d: %w", page, err)
		}
		books = append(books, list.Results...)
	}
	return books, nil
}

func wishlistAddCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "add <id>...",
		Short:   "Save books by id",
		Example: `  folio wishlist add 1342 84`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			store, _, err := g.openWishlist()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			for _, id := range ids {
				added, err := store.Add(id)
				if err != nil {
					return fmt.Errorf("add %d: %w", id, err)
				}
				msg := "Added %d\n"
				if !added {
					msg = "%d is already saved\n"
				}
				if _, err := fmt.Fprintf(out, msg, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func wishlistRemoveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>...",
		Aliases: []string{"rm"},
		Short:   "Remove books by id",
		Example: `  folio wishlist remove 84`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			store, _, err := g.openWishlist()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			for _, id := range ids {
				removed, err := store.Remove(id)
				if err != nil {
					return fmt.Errorf("remove %d: %w", id, err)
				}
				msg := "Removed %d\n"
				if !removed {
					msg = "%d was not saved\n"
				}
				if _, err := fmt.Fprintf(out, msg, id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
