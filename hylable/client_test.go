package hylable

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/randalmurphal/discuss"
	"github.com/randalmurphal/discuss/auth"
	devhttp "github.com/randalmurphal/discuss/http"
	"github.com/randalmurphal/discuss/testutil"
)

// recorder captures requests seen by the fake API.
type recorder struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func (r *recorder) record(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}
	r.requests = append(r.requests, req.Clone(context.Background()))
	r.bodies = append(r.bodies, body)
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func serveFixture(t *testing.T, w http.ResponseWriter, name string) {
	t.Helper()
	data := testutil.LoadFixture(t, name)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) (*Client, *recorder) {
	t.Helper()

	rec := &recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.URL = server.URL + "/"
	cfg.CourseID = "crs_1"
	cfg.Auth = AuthConfig{Type: auth.TypeToken, Token: "test-token"}
	cfg.PageSize = 2
	cfg.RateLimit = RateLimitConfig{MaxRetries: 1, RetryWaitMin: time.Millisecond, RetryWaitMax: 2 * time.Millisecond}
	for _, m := range mutate {
		m(cfg)
	}

	client, err := NewClient(cfg, WithObserver(nil))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client, rec
}

func TestNewClient(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		_, err := NewClient(&Config{})
		if !errors.Is(err, ErrConfigURLRequired) {
			t.Errorf("NewClient() error = %v, want ErrConfigURLRequired", err)
		}
	})

	t.Run("rate limit unknown before first call", func(t *testing.T) {
		client, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
		if client.RateLimitRemaining() != -1 {
			t.Errorf("RateLimitRemaining() = %d, want -1", client.RateLimitRemaining())
		}
	})
}

func TestListDiscussions(t *testing.T) {
	pages := func(t *testing.T) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/v1/courses/crs_1/discussions" {
				t.Errorf("unexpected path %s", r.URL.Path)
				http.NotFound(w, r)
				return
			}
			switch r.URL.Query().Get("page") {
			case "1":
				serveFixture(t, w, "discussions_page1.json")
			case "2":
				serveFixture(t, w, "discussions_page2.json")
			default:
				t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
			}
		}
	}

	t.Run("follows pagination", func(t *testing.T) {
		client, rec := newTestClient(t, pages(t))

		got, err := client.ListDiscussions(context.Background(), discuss.ListOptions{})
		if err != nil {
			t.Fatalf("ListDiscussions() error = %v", err)
		}

		wantIDs := []string{"dsc_rec_1", "dsc_done_1", "dsc_done_2"}
		if len(got) != len(wantIDs) {
			t.Fatalf("got %d discussions, want %d", len(got), len(wantIDs))
		}
		for i, d := range got {
			if d.ID != wantIDs[i] {
				t.Errorf("discussion %d = %q, want %q", i, d.ID, wantIDs[i])
			}
		}

		if rec.count() != 2 {
			t.Errorf("got %d requests, want 2", rec.count())
		}
		first := rec.requests[0]
		if got := first.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		if got := first.URL.Query().Get("per_page"); got != "2" {
			t.Errorf("per_page = %q, want 2", got)
		}
		if first.URL.Query().Has("status") {
			t.Error("status filter sent for unfiltered listing")
		}
		if first.Header.Get(devhttp.RequestIDHeader) == "" {
			t.Error("request id header missing")
		}
	})

	t.Run("sends state filter", func(t *testing.T) {
		client, rec := newTestClient(t, pages(t))

		if _, err := client.ListDiscussions(context.Background(), discuss.ListOptions{State: discuss.StateRecording}); err != nil {
			t.Fatalf("ListDiscussions() error = %v", err)
		}
		if got := rec.requests[0].URL.Query().Get("status"); got != "recording" {
			t.Errorf("status = %q, want recording", got)
		}
	})

	t.Run("limit stops pagination", func(t *testing.T) {
		client, rec := newTestClient(t, pages(t))

		got, err := client.ListDiscussions(context.Background(), discuss.ListOptions{Limit: 1})
		if err != nil {
			t.Fatalf("ListDiscussions() error = %v", err)
		}
		if len(got) != 1 || got[0].ID != "dsc_rec_1" {
			t.Errorf("got %+v", got)
		}
		if rec.count() != 1 {
			t.Errorf("got %d requests, want 1", rec.count())
		}
	})

	t.Run("requires course", func(t *testing.T) {
		client, rec := newTestClient(t, pages(t), func(c *Config) { c.CourseID = "" })

		_, err := client.ListDiscussions(context.Background(), discuss.ListOptions{})
		if !errors.Is(err, ErrCourseIDRequired) {
			t.Errorf("error = %v, want ErrCourseIDRequired", err)
		}
		if rec.count() != 0 {
			t.Errorf("got %d requests, want 0", rec.count())
		}
	})

	t.Run("server error after retries", func(t *testing.T) {
		client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.ListDiscussions(context.Background(), discuss.ListOptions{})
		if !errors.Is(err, devhttp.ErrServerError) || !IsRetryable(err) {
			t.Errorf("error = %v, want server error", err)
		}
		if rec.count() != 2 {
			t.Errorf("got %d requests, want 2", rec.count())
		}
	})

	t.Run("zero max_retries sends one request", func(t *testing.T) {
		client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}, func(c *Config) { c.RateLimit.MaxRetries = 0 })

		if _, err := client.ListDiscussions(context.Background(), discuss.ListOptions{}); !errors.Is(err, devhttp.ErrServerError) {
			t.Errorf("error = %v, want server error", err)
		}
		if rec.count() != 1 {
			t.Errorf("got %d requests, want 1", rec.count())
		}
	})

	t.Run("stops at the context deadline", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(5 * time.Second):
			}
		})

		ctx := testutil.TestContextWithTimeout(t, 50*time.Millisecond)
		start := time.Now()
		_, err := client.ListDiscussions(ctx, discuss.ListOptions{})
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("error = %v, want deadline exceeded", err)
		}
		if elapsed := time.Since(start); elapsed > 2*time.Second {
			t.Errorf("took %v after the deadline", elapsed)
		}
	})

	t.Run("unauthorized", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
		})

		_, err := client.ListDiscussions(context.Background(), discuss.ListOptions{})
		if !IsUnauthorized(err) {
			t.Errorf("error = %v, want unauthorized", err)
		}
	})

	t.Run("tracks rate limit headers", func(t *testing.T) {
		reset := time.Date(2024, 6, 3, 12, 0, 0, 0, time.UTC)
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "42")
			w.Header().Set("X-RateLimit-Reset", reset.Format(time.RFC3339))
			pages(t)(w, r)
		})

		if _, err := client.ListDiscussions(context.Background(), discuss.ListOptions{Limit: 1}); err != nil {
			t.Fatalf("ListDiscussions() error = %v", err)
		}
		if client.RateLimitRemaining() != 42 {
			t.Errorf("RateLimitRemaining() = %d, want 42", client.RateLimitRemaining())
		}
		if !client.RateLimitReset().Equal(reset) {
			t.Errorf("RateLimitReset() = %v, want %v", client.RateLimitReset(), reset)
		}
	})
}

func TestGetTranscript(t *testing.T) {
	t.Run("joins segments", func(t *testing.T) {
		client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			serveFixture(t, w, "asr.json")
		})

		got, err := client.GetTranscript(context.Background(), "dsc_done_1")
		if err != nil {
			t.Fatalf("GetTranscript() error = %v", err)
		}
		if got != "hello\nworld" {
			t.Errorf("GetTranscript() = %q", got)
		}
		if path := rec.requests[0].URL.Path; path != "/v1/discussions/dsc_done_1/asr" {
			t.Errorf("path = %q", path)
		}
	})

	t.Run("no segments", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"segments":[]}`))
		})

		got, err := client.GetTranscript(context.Background(), "dsc_rec_1")
		if err != nil || got != "" {
			t.Errorf("GetTranscript() = %q, %v; want empty, nil", got, err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "no such discussion"})
		})

		_, err := client.GetTranscript(context.Background(), "dsc_missing")
		if !errors.Is(err, discuss.ErrDiscussionNotFound) {
			t.Errorf("error = %v, want discuss.ErrDiscussionNotFound", err)
		}
		if !errors.Is(err, ErrDiscussionNotFound) || !errors.Is(err, devhttp.ErrNotFound) {
			t.Errorf("error = %v, want both hylable and http not-found", err)
		}
		if rec.count() != 1 {
			t.Errorf("404 was retried: %d requests", rec.count())
		}
	})

	t.Run("requires id", func(t *testing.T) {
		client, rec := newTestClient(t, func(http.ResponseWriter, *http.Request) {})

		if _, err := client.GetTranscript(context.Background(), ""); !errors.Is(err, ErrDiscussionIDRequired) {
			t.Errorf("error = %v, want ErrDiscussionIDRequired", err)
		}
		if rec.count() != 0 {
			t.Error("request sent for empty id")
		}
	})
}

func TestGetTranscripts(t *testing.T) {
	t.Run("omits unknown ids", func(t *testing.T) {
		client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/v1/discussions/asr:batchGet" {
				t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
			}
			serveFixture(t, w, "batch_get.json")
		})

		ids := []string{"dsc_done_1", "dsc_rec_1", "dsc_missing"}
		got, err := client.GetTranscripts(context.Background(), ids)
		if err != nil {
			t.Fatalf("GetTranscripts() error = %v", err)
		}

		want := map[string]string{"dsc_done_1": "hello\nworld", "dsc_rec_1": ""}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for id, text := range want {
			if v, ok := got[id]; !ok || v != text {
				t.Errorf("got[%q] = %q, %v; want %q", id, v, ok, text)
			}
		}

		var body BatchGetRequest
		if err := json.Unmarshal(rec.bodies[0], &body); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if len(body.IDs) != 3 || body.IDs[2] != "dsc_missing" {
			t.Errorf("request ids = %v", body.IDs)
		}
	})

	t.Run("empty ids skip the request", func(t *testing.T) {
		client, rec := newTestClient(t, func(http.ResponseWriter, *http.Request) {})

		got, err := client.GetTranscripts(context.Background(), nil)
		if err != nil || got == nil || len(got) != 0 {
			t.Errorf("GetTranscripts() = %v, %v", got, err)
		}
		if rec.count() != 0 {
			t.Error("request sent for empty batch")
		}
	})
}

func TestGetDiscussion(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/discussions/dsc_missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"id":"dsc_done_2","status":"completed","recordedAt":"2024-06-03T01:30:00Z","duration_sec":45}`))
	})

	d, err := client.GetDiscussion(context.Background(), "dsc_done_2")
	if err != nil {
		t.Fatalf("GetDiscussion() error = %v", err)
	}
	if d.ID != "dsc_done_2" || d.DurationSeconds != 45 || d.State != discuss.StateCompleted {
		t.Errorf("GetDiscussion() = %+v", d)
	}

	if _, err := client.GetDiscussion(context.Background(), "dsc_missing"); !IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestPing(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"discussions":[],"has_more":false}`))
	})

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
	if got := rec.requests[0].URL.Query().Get("per_page"); got != "1" {
		t.Errorf("per_page = %q, want 1", got)
	}
}

func TestClientWithFetcher(t *testing.T) {
	client, rec := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		serveFixture(t, w, "batch_get.json")
	})

	fetcher := discuss.NewFetcher(client)
	batch, err := fetcher.DiscussionTexts(context.Background(), []string{"dsc_done_1", "dsc_missing"})
	if err != nil {
		t.Fatalf("DiscussionTexts() error = %v", err)
	}

	if texts := batch.Texts(); texts["dsc_done_1"] != "hello\nworld" {
		t.Errorf("Texts() = %v", texts)
	}
	if failed := batch.Failed(); len(failed) != 1 || failed[0] != "dsc_missing" {
		t.Errorf("Failed() = %v", failed)
	}
	if !errors.Is(batch.Err(), discuss.ErrDiscussionNotFound) {
		t.Errorf("Err() = %v", batch.Err())
	}
	if rec.count() != 1 {
		t.Errorf("got %d requests, want 1 bulk call", rec.count())
	}
}
