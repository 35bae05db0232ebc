package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/folio/internal/gutendex"
)

func showCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one book",
		Example: `  folio show 1342
  folio show 84 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			client, _, err := g.newClient(cmd)
			if err != nil {
				return err
			}

			book, err := client.FetchBook(cmd.Context(), ids[0])
			if errors.Is(err, gutendex.ErrNotFound) {
				return fmt.Errorf("book %d not found", ids[0])
			}
			if err != nil {
				return fmt.Errorf("show book %d: %w", ids[0], err)
			}

			if g.jsonOutput() {
				return writeJSON(cmd.OutOrStdout(), book)
			}
			return printBookDetail(cmd.OutOrStdout(), book)
		},
	}
}
