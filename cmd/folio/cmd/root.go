// Package cmd implements the folio command line.
package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/five82/folio/internal/app"
	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/wishlist"
)

// Version is the build version, set with -ldflags "-X ...cmd.Version=v1.2.3".
var Version = "dev"

const (
	outputTable = "table"
	outputJSON  = "json"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	configPath string
	output     string
}

// NewRootCmd builds the folio command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "folio",
		Short: "Browse the Project Gutenberg catalog from the terminal",
		Long: "folio browses the Gutendex book catalog. Run it without arguments\n" +
			"for the interactive browser, or use the subcommands to search,\n" +
			"show a book, and manage your wishlist from scripts.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return g.validate()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{ConfigPath: g.configPath})
		},
	}

	root.PersistentFlags().
		StringVar(&g.configPath, "config", "", "config file (default ~/.config/folio/config.toml)")
	root.PersistentFlags().
		StringVarP(&g.output, "output", "o", outputTable, "output format (table, json)")

	root.AddCommand(
		searchCmd(g),
		showCmd(g),
		wishlistCmd(g),
		versionCmd(),
	)
	return root
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (g *globals) validate() error {
	g.output = strings.ToLower(strings.TrimSpace(g.output))
	switch g.output {
	case outputTable, outputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table or json)", g.output)
	}
}

func (g *globals) jsonOutput() bool {
	return g.output == outputJSON
}

func (g *globals) loadConfig() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// logger writes to the command's stderr so table and JSON output stay clean.
func (g *globals) logger(cmd *cobra.Command, cfg config.Config) *log.Logger {
	return logging.NewWithWriter(cmd.ErrOrStderr(), cfg.LogLevel).WithPrefix("cli")
}

func (g *globals) newClient(cmd *cobra.Command) (*gutendex.Client, config.Config, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	client, err := app.NewClient(cfg, g.logger(cmd, cfg))
	if err != nil {
		return nil, config.Config{}, err
	}
	return client, cfg, nil
}

func (g *globals) openWishlist() (*wishlist.Store, config.Config, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, config.Config{}, err
	}
	store, err := wishlist.Open(cfg.WishlistPath())
	if err != nil {
		return nil, config.Config{}, err
	}
	return store, cfg, nil
}
