// Package gutendex provides an HTTP client for the Gutendex book catalog API,
// the JSON front end to Project Gutenberg's metadata.
//
// # Client Usage
//
//	client, err := gutendex.NewClient("https://gutendex.com",
//		gutendex.WithRateLimit(2, 1),
//		gutendex.WithCacheTTL(time.Minute),
//	)
//	if err != nil {
//		log.Fatalf("failed to create client: %v", err)
//	}
//
//	list, err := client.ListBooks(ctx, gutendex.Query{Search: "dickens", Topic: "children"})
//	if err != nil {
//		log.Printf("listing failed: %v", err)
//	}
//
//	next, err := client.FetchPage(ctx, list.Next)
//
// # API Endpoints
//
//   - GET /books/: one page of 32 books, filtered by search, topic, ids,
//     languages and sort
//   - GET /books/{id}/: a single book
//
// Listing responses carry opaque next/previous cursor URLs. FetchPage follows
// them only when they name the configured host (or no host at all); a cursor
// pointing anywhere else is rejected rather than followed.
//
// # Resilience
//
// Every request passes a token-bucket rate limiter, a circuit breaker and,
// for successful responses, a short-lived cache keyed by request URL.
// After three consecutive failures the breaker opens and requests fail fast
// with ErrUnavailable until it half-opens again. Not-found responses do not
// count as failures.
//
// # Error Handling
//
//   - ErrNotFound: unknown book id, or a page past the end of a listing
//   - ErrUnavailable: the breaker is open
//   - *StatusError: any other 4xx/5xx status
//
// Example error messages:
//   - "execute request: dial tcp: connection refused"
//   - "api /books/ returned status 502"
//   - "decode response: unexpected end of JSON input"
//
// Fields the catalog omits decode to zero values; the helper methods on Book
// supply the display fallbacks ("Unknown Author", "Unknown Genre", a default
// cover).
package gutendex
