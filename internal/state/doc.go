// Package state provides thread-safe state management for folio.
//
// # Overview
//
// Store is the coordination point between the background fetcher and the UI.
// The fetcher announces each listing request with Begin, performs the HTTP
// call, and reports the outcome with Complete. The UI reads copies through
// Snapshot on every tick.
//
//	Fetcher:                       UI:
//	┌──────────────────┐          ┌──────────────────┐
//	│ seq := Begin(r)  │          │                  │
//	│ ListBooks(...)   │          │                  │
//	│ Complete(seq, …) │─────────→│ store.Snapshot() │
//	└──────────────────┘  (mutex) └──────────────────┘
//
// # Ordering
//
// Search-as-you-type produces bursts of requests. Begin assigns an increasing
// sequence number and Complete ignores any sequence that is no longer the
// newest, so results always belong to the last request the user made even
// when responses arrive out of order.
//
// # Update Semantics
//
//	// Success: replace results
//	Complete(seq, list, nil)
//	→ Books, Count, Next, Previous, Page, TotalPages from list
//	→ LastError = nil, ConsecutiveFailures = 0
//
//	// Failure: keep old results, record error
//	Complete(seq, nil, err)
//	→ Books = <unchanged>
//	→ LastError = err, ConsecutiveFailures++
//
// A gutendex.ErrNotFound (for example a page past the end) clears the
// results without counting as a failure. Two consecutive failures make
// IsOffline report true.
//
// Snapshots are copies; callers may modify them freely.
package state
