package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/five82/folio/internal/config"
	"github.com/five82/folio/internal/gutendex"
	"github.com/five82/folio/internal/logging"
	"github.com/five82/folio/internal/prefs"
	"github.com/five82/folio/internal/state"
	"github.com/five82/folio/internal/ui"
	"github.com/five82/folio/internal/wishlist"
)

// Options configure the folio application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/folio/prefs.toml
}

// Run boots the folio TUI until the context is cancelled or the user quits.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger := logging.NewWithWriter(logFile, cfg.LogLevel)
	logger.Info("folio starting", "api", cfg.APIURL, "data_dir", cfg.DataDir)

	client, err := NewClient(cfg, logger)
	if err != nil {
		return err
	}

	saved := wishlist.NewFile(cfg.WishlistPath())
	if _, err := saved.List(); err != nil {
		return fmt.Errorf("open wishlist: %w", err)
	}

	userPrefs, _ := prefs.Load(opts.PrefsPath)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	store := &state.Store{}
	debounceDelay := cfg.Debounce
	if debounceDelay == 0 {
		debounceDelay = -1
	}
	fetcher := NewFetcher(client, store, FetcherOptions{
		Debounce: debounceDelay,
		Logger:   logger.WithPrefix("fetcher"),
	})
	fetcher.Start(ctx)

	err = ui.Run(ui.Options{
		Context:   ctx,
		Catalog:   client,
		Store:     store,
		Requests:  fetcher,
		Wishlist:  saved,
		Logger:    logger.WithPrefix("ui"),
		Prefs:     userPrefs,
		PrefsPath: opts.PrefsPath,
		LogPath:   cfg.LogPath(),
		Languages: cfg.Languages,
	})
	logger.Info("folio stopped")
	return err
}

// NewClient builds a Gutendex client from config.
func NewClient(cfg config.Config, logger *log.Logger) (*gutendex.Client, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	client, err := gutendex.NewClient(cfg.APIURL,
		gutendex.WithRateLimit(cfg.RequestsPerSecond, 1),
		gutendex.WithCacheTTL(cfg.CacheTTL),
		gutendex.WithLogger(logger.WithPrefix("gutendex")),
	)
	if err != nil {
		return nil, fmt.Errorf("init gutendex client: %w", err)
	}
	return client, nil
}
