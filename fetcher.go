package revise

import "context"

// Fetcher retrieves raw HTML from URLs.
type Fetcher interface {
	// Fetch downloads the page at url and returns its body.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any held resources.
	Close() error
}
