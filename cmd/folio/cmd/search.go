package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/paging"
)

type searchOptions struct {
	topic     string
	page      int
	languages []string
	sort      string
}

func searchCmd(g *globals) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the catalog by title or author",
		Long: "Searches book titles and author names. Without a query it lists the\n" +
			"catalog, optionally filtered by genre with --topic.",
		Example: `  folio search "sherlock holmes"
  folio search --topic horror --page 2
  folio search austen --lang en,fr --output json`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, g, strings.Join(args, " "), opts)
		},
	}
	cmd.Flags().StringVar(&opts.topic, "topic", "", "genre filter matched against subjects and bookshelves")
	cmd.Flags().IntVar(&opts.page, "page", 1, "result page (32 books per page)")
	cmd.Flags().StringSliceVar(&opts.languages, "lang", nil, "language codes, e.g. en,fr (default from config)")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "sort order (popular, ascending, descending)")

	return cmd
}

func runSearch(cmd *cobra.Command, g *globals, query string, opts searchOptions) error {
	if opts.page < 1 {
		return fmt.Errorf("--page must be at least 1, got %d", opts.page)
	}
	switch opts.sort {
	case "", gutendex.SortPopular, gutendex.SortAscending, gutendex.SortDescending:
	default:
		return fmt.Errorf("unknown sort %q (want popular, ascending or descending)", opts.sort)
	}

	client, cfg, err := g.newClient(cmd)
	if err != nil {
		return err
	}
	languages := opts.languages
	if len(languages) == 0 {
		languages = cfg.Languages
	}

	list, err := client.ListBooks(cmd.Context(), gutendex.Query{
		Search:    query,
		Topic:     opts.topic,
		Page:      opts.page,
		Languages: languages,
		Sort:      opts.sort,
	})
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	out := cmd.OutOrStdout()
	if g.jsonOutput() {
		return writeJSON(out, list)
	}
	if len(list.Results) == 0 {
		_, err := fmt.Fprintln(out, "No books found.")
		return err
	}
	if err := printBookTable(out, list.Results, g.savedSet(cmd)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "\nPage %d of %d (%d books)\n",
		opts.page, paging.TotalPages(list.Count, gutendex.PageSize), list.Count)
	return err
}

// savedSet returns the wishlist ids for marking rows. A wishlist that cannot
// be opened (for example while the browser holds it) only loses the marks.
func (g *globals) savedSet(cmd *cobra.Command) map[int]bool {
	store, cfg, err := g.openWishlist()
	if err != nil {
		return nil
	}
	defer store.Close()

	ids, err := store.List()
	if err != nil {
		g.logger(cmd, cfg).Warn("read wishlist failed", "err", err)
		return nil
	}
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
