// Package app is the composition root for folio's interactive mode.
//
// Run loads configuration, opens the log file, checks the wishlist database,
// builds the Gutendex client, starts the background Fetcher and hands
// everything to the Bubble Tea UI. It blocks until the UI exits.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()        ~/.config/folio/config.toml
//	       ├─────> logging.OpenFile()   <data_dir>/folio.log
//	       ├─────> NewClient()          rate limit, breaker, cache
//	       ├─────> wishlist.NewFile()   <data_dir>/folio.db
//	       ├─────> Fetcher.Start()      background listing loop
//	       └─────> ui.Run()             TUI (blocks)
//
// # Fetcher
//
// The UI never calls the listing endpoints directly. It submits
// state.Requests to the Fetcher:
//
//   - Submit for page jumps, view switches and confirmed input; these go out
//     at once and cancel any pending debounced search
//   - SubmitDebounced for search-as-you-type; only the last keystroke of a
//     burst reaches the API once input has been quiet for debounce_ms
//
// Each request is registered with state.Store.Begin before it runs and the
// previous in-flight request is cancelled, so results always match the most
// recent request. Failed listings (other than not-found) are retried with
// exponential backoff capped at 30 seconds until a new request arrives.
//
// # Errors
//
// Config, log file, client and wishlist failures are fatal and returned from
// Run. Fetch failures are recorded in the store and shown in the status line.
package app
