// Package ui implements folio's terminal interface on Bubble Tea.
//
// # Views
//
//   - Browse: one page of catalog results, a summary pane for the highlighted
//     book, and a pagination bar
//   - Wishlist: the saved books, paged the same way
//   - Detail: everything the catalog knows about one book, fetched by id
//   - Log: the tail of folio's own log file with level and text filters
//
// # Data flow
//
// The model never calls the catalog for listings itself. Browse and wishlist
// queries are sent to a Requester (the app fetcher), which runs them in the
// background and records the outcome in a state.Store. The fetcher signals
// on its Updates channel after every change and the model re-reads the
// snapshot; a periodic tick does the same as a fallback.
//
// Search and genre input is forwarded as it is typed through
// Requester.SubmitDebounced, so only the last edit in a burst reaches the
// API. Page changes, enter, and view switches use Requester.Submit and are
// sent immediately.
//
// Book details are loaded directly through gutendex.Catalog with a timeout.
//
// # Pagination
//
// The bar shows at most six numeric indicators (see package paging), with
// "‹ Prev" and "Next ›" around them. Clicking an indicator loads that page;
// moving one page forward or back follows the catalog's next/previous
// cursors.
//
// # Persistence
//
// Theme and the last search, genre, and page are written to the prefs file
// on change and on exit, and restored at startup. Wishlist changes go
// straight to the Wishlist store.
package ui
