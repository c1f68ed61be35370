package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/randalmurphal/discuss"
)

// FakeService is an in-memory discussion service. It implements
// discuss.Service and discuss.BulkTranscriptGetter.
type FakeService struct {
	mu sync.Mutex

	// Discussions are returned by ListDiscussions in this order.
	Discussions []discuss.Discussion

	// Transcripts maps discussion id to transcript text. Ids present in
	// Discussions but missing here have no transcript yet.
	Transcripts map[string]string

	// ListErr, if set, is returned by ListDiscussions.
	ListErr error

	// TranscriptErrs forces GetTranscript to fail for specific ids.
	TranscriptErrs map[string]error

	// BulkErr, if set, is returned by GetTranscripts.
	BulkErr error

	// IgnoreStateFilter makes ListDiscussions ignore ListOptions.State, like
	// a service that does not support server-side filtering.
	IgnoreStateFilter bool

	listCalls       []discuss.ListOptions
	transcriptCalls []string
	bulkCalls       [][]string
}

// NewFakeService returns a FakeService holding the given data.
func NewFakeService(discussions []discuss.Discussion, transcripts map[string]string) *FakeService {
	return &FakeService{
		Discussions: discussions,
		Transcripts: transcripts,
	}
}

// NewSampleService returns a FakeService preloaded with SampleDiscussions.
func NewSampleService() *FakeService {
	return NewFakeService(SampleDiscussions())
}

// ListDiscussions implements discuss.Lister.
func (s *FakeService) ListDiscussions(_ context.Context, opts discuss.ListOptions) ([]discuss.Discussion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls = append(s.listCalls, opts)
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	var out []discuss.Discussion
	for _, d := range s.Discussions {
		if opts.State != "" && !s.IgnoreStateFilter && d.State != opts.State {
			continue
		}
		out = append(out, d)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

// GetTranscript implements discuss.TranscriptGetter.
func (s *FakeService) GetTranscript(_ context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcriptCalls = append(s.transcriptCalls, id)
	if err, ok := s.TranscriptErrs[id]; ok {
		return "", err
	}
	if !s.known(id) {
		return "", fmt.Errorf("fake service: %w", discuss.ErrDiscussionNotFound)
	}
	return s.Transcripts[id], nil
}

// GetTranscripts implements discuss.BulkTranscriptGetter.
func (s *FakeService) GetTranscripts(_ context.Context, ids []string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bulkCalls = append(s.bulkCalls, append([]string(nil), ids...))
	if s.BulkErr != nil {
		return nil, s.BulkErr
	}

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		if s.known(id) {
			out[id] = s.Transcripts[id]
		}
	}
	return out, nil
}

func (s *FakeService) known(id string) bool {
	for _, d := range s.Discussions {
		if d.ID == id {
			return true
		}
	}
	return false
}

// ListCalls returns the options of every ListDiscussions call so far.
func (s *FakeService) ListCalls() []discuss.ListOptions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]discuss.ListOptions(nil), s.listCalls...)
}

// TranscriptCalls returns the ids passed to GetTranscript so far.
func (s *FakeService) TranscriptCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.transcriptCalls...)
}

// BulkCalls returns the id chunks passed to GetTranscripts so far.
func (s *FakeService) BulkCalls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.bulkCalls...)
}

// SingleOnly hides the bulk endpoint of a service, forcing one request per id.
type SingleOnly struct {
	discuss.Service
}
