package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/randalmurphal/discuss"
	clierrors "github.com/randalmurphal/discuss/errors"
	"github.com/randalmurphal/discuss/hylable"
	"github.com/randalmurphal/discuss/metrics"
	"github.com/randalmurphal/discuss/notify"
	"github.com/randalmurphal/discuss/testutil"
)

var fixedNow = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

const baseConfig = `url: https://api.example.test
timezone: UTC
profiles:
  default:
    course_id: crs_1
    token: secret-token
`

type stubService struct {
	*testutil.FakeService
	pingErr   error
	remaining int
}

func (s *stubService) Ping(context.Context) error { return s.pingErr }

func (s *stubService) RateLimitRemaining() int { return s.remaining }

func newStub() *stubService {
	return &stubService{FakeService: testutil.NewSampleService(), remaining: -1}
}

type recordingNotifier struct {
	events []notify.Event
}

func (n *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	n.events = append(n.events, e)
	return nil
}

type harness struct {
	t       *testing.T
	svc     *stubService
	notes   *recordingNotifier
	deps    *Dependencies
	config  string
	gotCfg  *hylable.Config
	connect int
}

func newHarness(t *testing.T, configBody string) *harness {
	t.Helper()
	h := &harness{t: t, svc: newStub(), notes: &recordingNotifier{}}
	h.config = filepath.Join(t.TempDir(), "config.yaml")
	if configBody != "" {
		if err := os.WriteFile(h.config, []byte(configBody), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	h.deps = &Dependencies{
		Connect: func(cfg *hylable.Config, _ *slog.Logger) (Service, error) {
			h.connect++
			h.gotCfg = cfg
			return h.svc, nil
		},
		Now:      func() time.Time { return fixedNow },
		Gatherer: prometheus.NewRegistry(),
		Notifier: h.notes,
	}
	return h
}

func (h *harness) run(args ...string) (stdout, stderr string, err error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--config", h.config}, args...)
	err = Execute(testutil.TestContext(h.t), h.deps, args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestDurationCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"japanese", []string{"duration", "3661"}, "1時間1分1秒\n"},
		{"zero", []string{"duration", "0"}, "0秒\n"},
		{"english", []string{"duration", "--lang", "en", "90"}, "1 minute 30 seconds\n"},
		{"clock", []string{"duration", "--clock", "3661"}, "01_01_01\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "")
			got, _, err := h.run(tt.args...)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDurationCmdInvalid(t *testing.T) {
	for _, arg := range []string{"-1", "abc"} {
		t.Run(arg, func(t *testing.T) {
			h := newHarness(t, "")
			_, _, err := h.run("duration", "--", arg)
			if !errors.Is(err, discuss.ErrInvalidArgument) {
				t.Errorf("error = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestListCmd(t *testing.T) {
	h := newHarness(t, baseConfig)

	out, _, err := h.run("list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	for _, want := range []string{"dsc_done_1", "2024-06-03 02:30", "1時間1分1秒", "Climate / weather", "dsc_rec_2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if h.gotCfg == nil || h.gotCfg.CourseID != "crs_1" || h.gotCfg.Auth.Token != "secret-token" {
		t.Errorf("connect config = %+v", h.gotCfg)
	}
}

func TestListCmdIDs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"recording", []string{"list", "--recording"}, "dsc_rec_1\ndsc_rec_2\n"},
		{"count", []string{"list", "--count", "2"}, "dsc_rec_1\ndsc_done_1\n"},
		{"count beyond total", []string{"list", "-n", "10"}, "dsc_rec_1\ndsc_done_1\ndsc_done_2\ndsc_rec_2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, baseConfig)
			got, _, err := h.run(tt.args...)
			if err != nil {
				t.Fatalf("run() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListCmdJSON(t *testing.T) {
	h := newHarness(t, baseConfig)

	out, _, err := h.run("list", "--recording", "--json")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	var ids []string
	if err := json.Unmarshal([]byte(out), &ids); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(ids) != 2 || ids[0] != "dsc_rec_1" {
		t.Errorf("ids = %v", ids)
	}

	out, _, err = h.run("list", "--min-duration", "1m", "--json")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	var discussions []discuss.Discussion
	if err := json.Unmarshal([]byte(out), &discussions); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(discussions) != 1 || discussions[0].ID != "dsc_done_1" {
		t.Errorf("discussions = %+v", discussions)
	}
}

func TestListCmdErrors(t *testing.T) {
	t.Run("non-positive count", func(t *testing.T) {
		h := newHarness(t, baseConfig)
		_, _, err := h.run("list", "--count", "0")
		if !errors.Is(err, discuss.ErrInvalidArgument) {
			t.Errorf("error = %v, want ErrInvalidArgument", err)
		}
		if len(h.svc.ListCalls()) != 0 {
			t.Error("service called for invalid count")
		}
	})

	t.Run("no course", func(t *testing.T) {
		h := newHarness(t, "url: https://api.example.test\ntoken: x\n")
		_, _, err := h.run("list")
		if !errors.Is(err, clierrors.ErrNoCourse) {
			t.Errorf("error = %v, want ErrNoCourse", err)
		}
		if err != nil && !strings.Contains(err.Error(), "--course") {
			t.Errorf("suggestion missing: %q", err.Error())
		}
		if h.connect != 0 {
			t.Error("connected without a course")
		}
	})

	t.Run("course flag", func(t *testing.T) {
		h := newHarness(t, "url: https://api.example.test\ntoken: x\n")
		if _, _, err := h.run("--course", "crs_flag", "list", "-n", "1"); err != nil {
			t.Fatalf("list error = %v", err)
		}
		if h.gotCfg.CourseID != "crs_flag" {
			t.Errorf("CourseID = %q, want crs_flag", h.gotCfg.CourseID)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		h := newHarness(t, "url: https://api.example.test\ncourse_id: crs_1\n")
		_, _, err := h.run("list")
		if !errors.Is(err, clierrors.ErrNotAuthenticated) {
			t.Fatalf("error = %v, want ErrNotAuthenticated", err)
		}
		if !strings.Contains(err.Error(), "discuss config set token") {
			t.Errorf("suggestion missing: %q", err.Error())
		}
		if h.connect != 0 {
			t.Error("connected without credentials")
		}
	})

	t.Run("not configured", func(t *testing.T) {
		h := newHarness(t, "url: not a url\ncourse_id: crs_1\ntoken: x\n")
		_, _, err := h.run("list")
		if !errors.Is(err, clierrors.ErrNotConfigured) {
			t.Errorf("error = %v, want ErrNotConfigured", err)
		}
	})

	t.Run("remote failure", func(t *testing.T) {
		h := newHarness(t, baseConfig)
		h.svc.ListErr = errors.New("boom")
		_, _, err := h.run("list")
		if !discuss.IsRemote(err) {
			t.Errorf("error = %v, want remote error", err)
		}
	})
}

func TestTextCmd(t *testing.T) {
	h := newHarness(t, baseConfig)

	out, _, err := h.run("text", "dsc_done_1")
	if err != nil {
		t.Fatalf("text error = %v", err)
	}
	if out != "hello\nworld\n" {
		t.Errorf("output = %q", out)
	}

	out, errOut, err := h.run("text", "dsc_rec_1")
	if err != nil {
		t.Fatalf("text error = %v", err)
	}
	if out != "" || !strings.Contains(errOut, "No transcript yet") {
		t.Errorf("stdout = %q, stderr = %q", out, errOut)
	}

	_, _, err = h.run("text", "dsc_missing")
	var cliErr *clierrors.CLIError
	if !errors.As(err, &cliErr) || !discuss.IsNotFound(err) {
		t.Fatalf("error = %v, want CLIError wrapping not found", err)
	}
	if !strings.Contains(cliErr.Message, "dsc_missing") {
		t.Errorf("message = %q", cliErr.Message)
	}
}

func TestTextsCmd(t *testing.T) {
	h := newHarness(t, baseConfig)

	out, _, err := h.run("texts", "dsc_done_1", "dsc_done_2", "dsc_done_1")
	if err != nil {
		t.Fatalf("texts error = %v", err)
	}
	want := "== dsc_done_1 ==\nhello\nworld\n== dsc_done_2 ==\nshort one\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestTextsCmdPartial(t *testing.T) {
	h := newHarness(t, baseConfig)
	counter := metrics.BatchFailures.WithLabelValues("not_found")
	before := promtest.ToFloat64(counter)

	out, errOut, err := h.run("texts", "dsc_done_2", "nope")
	if err == nil || !strings.Contains(err.Error(), "1 of 2") {
		t.Fatalf("error = %v, want partial failure", err)
	}
	if !strings.Contains(out, "short one") {
		t.Errorf("resolved transcript missing: %q", out)
	}
	if !strings.Contains(errOut, "nope not found") {
		t.Errorf("stderr = %q", errOut)
	}
	if got := promtest.ToFloat64(counter) - before; got != 1 {
		t.Errorf("batch failures delta = %v, want 1", got)
	}
}

func TestExportCmd(t *testing.T) {
	h := newHarness(t, baseConfig)
	outDir := t.TempDir()

	out, _, err := h.run("export", "--out", outDir)
	if err != nil {
		t.Fatalf("export error = %v", err)
	}
	if !strings.Contains(out, "Exported 2 of 4") {
		t.Errorf("output = %q", out)
	}

	path := filepath.Join(outDir, "crs_1", "20240603_013000(00_00_45)_dsc_done_2_topic未設定_group未設定.asr.txt")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("exported file: %v", err)
	}
	if string(data) != "short one\n" {
		t.Errorf("content = %q", data)
	}

	if len(h.notes.events) != 1 {
		t.Fatalf("events = %d, want 1", len(h.notes.events))
	}
	e := h.notes.events[0]
	if e.Type != notify.EventExportCompleted || e.CourseID != "crs_1" || e.Metadata["written"] != 2 {
		t.Errorf("event = %+v", e)
	}
	if !e.Timestamp.Equal(fixedNow) {
		t.Errorf("Timestamp = %v, want %v", e.Timestamp, fixedNow)
	}
}

func TestExportCmdFailures(t *testing.T) {
	t.Run("missing transcripts", func(t *testing.T) {
		h := newHarness(t, baseConfig)
		h.svc.TranscriptErrs = map[string]error{
			"dsc_done_1": fmt.Errorf("gone: %w", discuss.ErrDiscussionNotFound),
		}
		h.deps.Connect = func(*hylable.Config, *slog.Logger) (Service, error) {
			return singleOnly{Service: h.svc}, nil
		}

		_, _, err := h.run("export", "--out", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "dsc_done_1") {
			t.Errorf("error = %v", err)
		}
		if len(h.notes.events) != 1 || h.notes.events[0].Type != notify.EventTranscriptMissing {
			t.Errorf("events = %+v", h.notes.events)
		}
	})

	t.Run("listing fails", func(t *testing.T) {
		h := newHarness(t, baseConfig)
		h.svc.ListErr = errors.New("boom")

		if _, _, err := h.run("export", "--out", t.TempDir()); err == nil {
			t.Fatal("export succeeded")
		}
		if len(h.notes.events) != 1 || h.notes.events[0].Type != notify.EventExportFailed {
			t.Errorf("events = %+v", h.notes.events)
		}
	})
}

// singleOnly hides the bulk endpoint so per-id lookups are used.
type singleOnly struct {
	Service
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestDoctorCmd(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := newHarness(t, baseConfig)
		h.svc.remaining = 42

		out, _, err := h.run("doctor")
		if err != nil {
			t.Fatalf("doctor error = %v\n%s", err, out)
		}
		for _, want := range []string{"crs_1", "sha256:", "(opaque)", "42 requests remaining", "All checks passed"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
		if strings.Contains(out, "secret-token") {
			t.Error("token printed in clear")
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		h := newHarness(t, baseConfig)
		h.svc.pingErr = errors.New("connection refused")

		out, _, err := h.run("doctor")
		if !errors.Is(err, errChecksFailed) {
			t.Errorf("error = %v, want errChecksFailed", err)
		}
		if !strings.Contains(out, "✗ Connection") {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		token := signedToken(t, fixedNow.Add(-time.Hour))
		h := newHarness(t, "url: https://api.example.test\ncourse_id: crs_1\ntoken: "+token+"\n")

		out, _, err := h.run("doctor")
		if !errors.Is(err, errChecksFailed) {
			t.Errorf("error = %v, want errChecksFailed", err)
		}
		if !strings.Contains(out, "✗ Token") {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("valid jwt", func(t *testing.T) {
		token := signedToken(t, fixedNow.Add(2*time.Hour))
		h := newHarness(t, "url: https://api.example.test\ncourse_id: crs_1\ntimezone: UTC\ntoken: "+token+"\n")

		out, _, err := h.run("doctor")
		if err != nil {
			t.Fatalf("doctor error = %v\n%s", err, out)
		}
		if !strings.Contains(out, "expires in 2h0m0s") {
			t.Errorf("output = %s", out)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		h := newHarness(t, "url: not a url\n")

		out, _, err := h.run("doctor")
		if !errors.Is(err, errChecksFailed) {
			t.Errorf("error = %v, want errChecksFailed", err)
		}
		if !strings.Contains(out, "✗ Configuration") || h.connect != 0 {
			t.Errorf("output = %s, connects = %d", out, h.connect)
		}
	})
}

func TestConfigCmd(t *testing.T) {
	h := newHarness(t, baseConfig)

	if _, _, err := h.run("--profile", "work", "config", "set", "course_id", "crs_9"); err != nil {
		t.Fatalf("config set error = %v", err)
	}

	out, _, err := h.run("--profile", "work", "config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "crs_9") || !strings.Contains(out, "(global)") {
		t.Errorf("show output = %s", out)
	}
	if !strings.Contains(out, "Profile work") {
		t.Errorf("show output = %s", out)
	}

	out, _, err = h.run("config", "show")
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if !strings.Contains(out, "crs_1") || strings.Contains(out, "secret-token") {
		t.Errorf("default profile output = %s", out)
	}

	if _, _, err := h.run("--profile", "work", "config", "unset", "course_id"); err != nil {
		t.Fatalf("config unset error = %v", err)
	}
	data, err := os.ReadFile(h.config)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "crs_9") {
		t.Errorf("config still holds unset value:\n%s", data)
	}

	if _, _, err := h.run("config", "set", "colour", "blue"); err == nil {
		t.Error("config set accepted an unknown key")
	}
}

func TestMetricsFile(t *testing.T) {
	h := newHarness(t, "")
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "discuss_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()
	h.deps.Gatherer = reg

	path := filepath.Join(t.TempDir(), "discuss.prom")
	if _, _, err := h.run("--metrics-file", path, "duration", "5"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(data), "discuss_test_total 1") {
		t.Errorf("metrics file = %s", data)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	h := newHarness(t, "")
	if _, _, err := h.run("--log-level", "loud", "duration", "1"); err == nil {
		t.Error("accepted invalid log level")
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"no course", clierrors.NewNoCourseError(), true},
		{"missing credentials", clierrors.NewNotAuthenticatedError(nil), true},
		{"connection", errors.New("dial tcp: connection refused"), true},
		{"not found", discuss.ErrDiscussionNotFound, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Hint(tt.err) != ""; got != tt.want {
				t.Errorf("Hint(%v) = %q, want hint %v", tt.err, Hint(tt.err), tt.want)
			}
		})
	}
}
