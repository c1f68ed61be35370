package http

import (
	"context"
	"fmt"
)

// MaxEmptyPages is how many pages in a row may come back empty while still
// reporting more results before iteration fails with ErrEmptyPages.
const MaxEmptyPages = 10

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// PageFetcher fetches the page with the given zero-based index.
type PageFetcher[T any] func(ctx context.Context, page int) (Page[T], error)

// PageIterator walks paginated API results, fetching pages lazily.
type PageIterator[T any] struct {
	fetch   PageFetcher[T]
	page    int
	buffer  []T
	done    bool
	err     error
	fetched int
}

// NewPageIterator creates a new iterator with the given fetch function.
func NewPageIterator[T any](fetch PageFetcher[T]) *PageIterator[T] {
	return &PageIterator[T]{fetch: fetch}
}

// Next returns the next item. When iteration is complete it returns
// (zero, false, nil).
func (p *PageIterator[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T

	if p.err != nil {
		return zero, false, p.err
	}

	// Empty pages with HasMore set are skipped, up to MaxEmptyPages in a row.
	for empty := 0; len(p.buffer) == 0 && !p.done; empty++ {
		if empty == MaxEmptyPages {
			p.err = fmt.Errorf("%w: %d after page %d", ErrEmptyPages, empty, p.page-empty)
			return zero, false, p.err
		}
		if err := ctx.Err(); err != nil {
			p.err = err
			return zero, false, err
		}
		page, err := p.fetch(ctx, p.page)
		if err != nil {
			p.err = err
			return zero, false, err
		}
		p.buffer = page.Items
		p.done = !page.HasMore
		p.page++
	}

	if len(p.buffer) == 0 {
		return zero, false, nil
	}

	item := p.buffer[0]
	p.buffer = p.buffer[1:]
	p.fetched++

	return item, true, nil
}

// All collects every remaining item.
func (p *PageIterator[T]) All(ctx context.Context) ([]T, error) {
	return p.Take(ctx, -1)
}

// Take returns up to n items; n < 0 means no limit. No page beyond the one
// holding the n-th item is requested.
func (p *PageIterator[T]) Take(ctx context.Context, n int) ([]T, error) {
	items := []T{}
	for n < 0 || len(items) < n {
		item, ok, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, nil
}

// Pages returns how many pages have been requested so far.
func (p *PageIterator[T]) Pages() int {
	return p.page
}

// Fetched returns the number of items returned so far.
func (p *PageIterator[T]) Fetched() int {
	return p.fetched
}
