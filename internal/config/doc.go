// Package config loads folio's TOML configuration.
//
// # Configuration Discovery
//
// Load follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/folio/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing or blank, use defaults
//
// # Default Values
//
//   - API base URL: https://gutendex.com
//   - Data directory: ~/.local/share/folio
//   - Wishlist database: <data_dir>/folio.db
//   - Log file: <data_dir>/folio.log
//   - Log level: info
//   - Search debounce: 500ms
//   - Request rate: 2 per second
//   - Response cache TTL: 60s
//
// # TOML Format
//
//	api_url = "https://gutendex.com"
//	data_dir = "~/.local/share/folio"
//	log_level = "debug"
//	debounce_ms = 300
//	requests_per_second = 4
//	cache_ttl_seconds = 120
//	languages = ["en", "fr"]
//
// Every field is optional. Tilde expansion is applied to data_dir and to the
// config path itself. Zero disables the debounce (searches fire on every
// keystroke), the rate limit, and the cache respectively; negative values are
// rejected.
//
// Missing config files are not an error, so folio works out of the box.
package config
