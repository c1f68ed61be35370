package testutil

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/randalmurphal/discuss"
)

func TestTestContext(t *testing.T) {
	ctx := TestContext(t)

	select {
	case <-ctx.Done():
		t.Error("context should not be done yet")
	default:
	}
}

func TestTestContextWithTimeout(t *testing.T) {
	ctx := TestContextWithTimeout(t, 10*time.Millisecond)

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Error("context should have timed out")
	}
}

func TestFakeService_ListDiscussions(t *testing.T) {
	ctx := context.Background()
	svc := NewSampleService()

	all, err := svc.ListDiscussions(ctx, discuss.ListOptions{})
	if err != nil {
		t.Fatalf("ListDiscussions() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("got %d discussions, want 4", len(all))
	}

	recording, _ := svc.ListDiscussions(ctx, discuss.ListOptions{State: discuss.StateRecording})
	if len(recording) != 2 {
		t.Errorf("got %d recording discussions, want 2", len(recording))
	}

	limited, _ := svc.ListDiscussions(ctx, discuss.ListOptions{Limit: 1})
	if len(limited) != 1 || limited[0].ID != "dsc_rec_1" {
		t.Errorf("limited = %+v, want first discussion only", limited)
	}

	if got := len(svc.ListCalls()); got != 3 {
		t.Errorf("ListCalls() = %d, want 3", got)
	}
}

func TestFakeService_GetTranscript(t *testing.T) {
	ctx := context.Background()
	svc := NewSampleService()

	text, err := svc.GetTranscript(ctx, "dsc_done_1")
	if err != nil {
		t.Fatalf("GetTranscript() error = %v", err)
	}
	if text != "hello\nworld" {
		t.Errorf("text = %q", text)
	}

	_, err = svc.GetTranscript(ctx, "missing")
	if !errors.Is(err, discuss.ErrDiscussionNotFound) {
		t.Errorf("error = %v, want ErrDiscussionNotFound", err)
	}
}

func TestFakeService_GetTranscripts(t *testing.T) {
	svc := NewSampleService()

	got, err := svc.GetTranscripts(context.Background(), []string{"dsc_done_2", "missing"})
	if err != nil {
		t.Fatalf("GetTranscripts() error = %v", err)
	}
	if len(got) != 1 || got["dsc_done_2"] != "short one" {
		t.Errorf("got %v", got)
	}
	if len(svc.BulkCalls()) != 1 {
		t.Errorf("BulkCalls() = %v, want one call", svc.BulkCalls())
	}
}

func TestSingleOnly(t *testing.T) {
	var svc discuss.TranscriptGetter = SingleOnly{NewSampleService()}
	if _, ok := svc.(discuss.BulkTranscriptGetter); ok {
		t.Error("SingleOnly should not expose GetTranscripts")
	}
}
