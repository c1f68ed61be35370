package discuss

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultBatchSize is the number of ids sent per bulk transcript request.
const DefaultBatchSize = 50

// Fetcher resolves discussion ids to transcript text.
// It keeps no state between calls and is safe for concurrent use.
type Fetcher struct {
	svc       TranscriptGetter
	bulk      BulkTranscriptGetter // nil when svc has no bulk endpoint
	batchSize int
	logger    *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithBatchSize sets how many ids go into one bulk request.
// Values <= 0 leave the default in place.
func WithBatchSize(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.batchSize = n
		}
	}
}

// WithFetcherLogger sets the logger used for debug output.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// NewFetcher creates a Fetcher backed by svc. If svc also implements
// BulkTranscriptGetter, batch lookups use the bulk endpoint.
func NewFetcher(svc TranscriptGetter, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		svc:       svc,
		batchSize: DefaultBatchSize,
		logger:    slog.Default(),
	}
	if bulk, ok := svc.(BulkTranscriptGetter); ok {
		f.bulk = bulk
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// TextResult is the outcome of resolving one discussion id.
type TextResult struct {
	ID   string
	Text string
	Err  error // non-nil when the id could not be resolved
}

// TextBatch holds one result per distinct requested id, in the order the ids
// were first requested.
type TextBatch struct {
	Results []TextResult
}

// Len returns the number of distinct ids in the batch.
func (b *TextBatch) Len() int {
	return len(b.Results)
}

// Texts returns the successfully resolved transcripts keyed by id.
func (b *TextBatch) Texts() map[string]string {
	out := make(map[string]string, len(b.Results))
	for _, r := range b.Results {
		if r.Err == nil {
			out[r.ID] = r.Text
		}
	}
	return out
}

// Failed returns the ids that could not be resolved, in request order.
func (b *TextBatch) Failed() []string {
	var ids []string
	for _, r := range b.Results {
		if r.Err != nil {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// Err joins the per-id errors, or returns nil when every id resolved.
func (b *TextBatch) Err() error {
	var errs []error
	for _, r := range b.Results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}

// DiscussionTexts resolves every id to its transcript. Duplicate ids are
// looked up once. An unknown id is recorded on its own TextResult and does not
// affect the others; any other remote failure aborts the call.
func (f *Fetcher) DiscussionTexts(ctx context.Context, ids []string) (*TextBatch, error) {
	unique := dedupe(ids)
	for _, id := range unique {
		if id == "" {
			return nil, invalidArgument("discussion id must not be empty")
		}
	}

	batch := &TextBatch{Results: make([]TextResult, 0, len(unique))}
	if len(unique) == 0 {
		return batch, nil
	}

	var (
		texts map[string]string
		err   error
	)
	if f.bulk != nil {
		texts, err = f.fetchBulk(ctx, unique)
	} else {
		texts, err = f.fetchEach(ctx, unique)
	}
	if err != nil {
		return nil, err
	}

	for _, id := range unique {
		text, ok := texts[id]
		if !ok {
			batch.Results = append(batch.Results, TextResult{ID: id, Err: notFound(id)})
			continue
		}
		batch.Results = append(batch.Results, TextResult{ID: id, Text: text})
	}

	f.logger.DebugContext(ctx, "fetched discussion texts",
		"requested", len(ids),
		"distinct", len(unique),
		"failed", len(batch.Failed()),
	)
	return batch, nil
}

// DiscussionText returns the transcript of one discussion. It returns "" when
// no transcript exists yet and ErrDiscussionNotFound for unknown ids.
func (f *Fetcher) DiscussionText(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", invalidArgument("discussion id must not be empty")
	}

	text, err := f.svc.GetTranscript(ctx, id)
	if err != nil {
		if errors.Is(err, ErrDiscussionNotFound) {
			return "", notFound(id)
		}
		return "", remote("get transcript", err)
	}
	return text, nil
}

// fetchBulk sends ids to the bulk endpoint in chunks of batchSize.
// Ids missing from the combined result are unknown to the service.
func (f *Fetcher) fetchBulk(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for start := 0; start < len(ids); start += f.batchSize {
		end := min(start+f.batchSize, len(ids))
		chunk := ids[start:end]

		texts, err := f.bulk.GetTranscripts(ctx, chunk)
		if err != nil {
			return nil, remote("get transcripts", err)
		}
		for _, id := range chunk {
			if text, ok := texts[id]; ok {
				out[id] = text
			}
		}
	}
	return out, nil
}

// fetchEach looks up ids one at a time, leaving unknown ids out of the result.
func (f *Fetcher) fetchEach(ctx context.Context, ids []string) (map[string]string, error) {
	out := make(map[string]string, len(ids))
	for _, id := range ids {
		text, err := f.svc.GetTranscript(ctx, id)
		if err != nil {
			if errors.Is(err, ErrDiscussionNotFound) {
				continue
			}
			return nil, remote("get transcript", err)
		}
		out[id] = text
	}
	return out, nil
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrDiscussionNotFound, id)
}

// dedupe returns ids with repeats removed, keeping first occurrences.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
