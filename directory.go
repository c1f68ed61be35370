package discuss

import (
	"context"
	"log/slog"
)

// Directory enumerates discussions known to the remote service.
// It keeps no state between calls and is safe for concurrent use.
type Directory struct {
	svc    Lister
	logger *slog.Logger
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithDirectoryLogger sets the logger used for debug output.
func WithDirectoryLogger(logger *slog.Logger) DirectoryOption {
	return func(d *Directory) {
		d.logger = logger
	}
}

// NewDirectory creates a Directory backed by svc.
func NewDirectory(svc Lister, opts ...DirectoryOption) *Directory {
	d := &Directory{
		svc:    svc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RecordingDiscussionIDs returns the ids of discussions currently recording.
// An empty slice is returned when none are.
func (d *Directory) RecordingDiscussionIDs(ctx context.Context) ([]string, error) {
	discussions, err := d.Discussions(ctx, ListOptions{State: StateRecording})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(discussions))
	for _, disc := range discussions {
		// The service filter is advisory; re-check locally.
		if !disc.State.IsRecording() {
			continue
		}
		ids = append(ids, disc.ID)
	}

	d.logger.DebugContext(ctx, "listed recording discussions", "count", len(ids))
	return ids, nil
}

// DiscussionIDs returns up to count discussion ids in any state, in the
// service's order. Fewer are returned when fewer exist.
func (d *Directory) DiscussionIDs(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, invalidArgument("count must be positive, got %d", count)
	}

	discussions, received, err := d.list(ctx, ListOptions{Limit: count})
	if err != nil {
		return nil, err
	}
	if len(discussions) < count && received >= count {
		// Repeated records used up part of the capped listing.
		d.logger.DebugContext(ctx, "relisting without limit", "count", count, "distinct", len(discussions))
		if discussions, _, err = d.list(ctx, ListOptions{}); err != nil {
			return nil, err
		}
	}

	if len(discussions) > count {
		discussions = discussions[:count]
	}

	ids := make([]string, len(discussions))
	for i, disc := range discussions {
		ids[i] = disc.ID
	}
	return ids, nil
}

// AllDiscussions returns the full record of every discussion the service
// reports, unfiltered and in the service's order.
func (d *Directory) AllDiscussions(ctx context.Context) ([]Discussion, error) {
	return d.Discussions(ctx, ListOptions{})
}

// Discussions lists discussions matching opts. Records repeating an id already
// seen are dropped so every id appears once.
func (d *Directory) Discussions(ctx context.Context, opts ListOptions) ([]Discussion, error) {
	if opts.Limit < 0 {
		return nil, invalidArgument("limit must not be negative, got %d", opts.Limit)
	}
	unique, _, err := d.list(ctx, opts)
	return unique, err
}

// list returns the de-duplicated listing and the number of records the
// service sent before de-duplication.
func (d *Directory) list(ctx context.Context, opts ListOptions) ([]Discussion, int, error) {
	discussions, err := d.svc.ListDiscussions(ctx, opts)
	if err != nil {
		return nil, 0, remote("list discussions", err)
	}

	seen := make(map[string]struct{}, len(discussions))
	unique := make([]Discussion, 0, len(discussions))
	for _, disc := range discussions {
		if _, dup := seen[disc.ID]; dup {
			d.logger.WarnContext(ctx, "duplicate discussion in listing", "id", disc.ID)
			continue
		}
		seen[disc.ID] = struct{}{}
		unique = append(unique, disc)
	}
	return unique, len(discussions), nil
}
