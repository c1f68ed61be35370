package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/randalmurphal/discuss"
	"github.com/randalmurphal/discuss/metrics"
)

// FileSuffix is appended to every exported file name.
const FileSuffix = ".asr.txt"

// Placeholders used when a discussion has no topic or group.
const (
	NoTopic = "topic未設定"
	NoGroup = "group未設定"
)

// ErrNoDir is returned when an Exporter has no output directory.
var ErrNoDir = errors.New("export: output directory not set")

// Exporter lists every discussion and writes its transcript to Dir.
type Exporter struct {
	Directory *discuss.Directory
	Fetcher   *discuss.Fetcher

	// Dir receives the transcript files. It is created if missing.
	Dir string

	// Location is used for the timestamp in file names. Defaults to Asia/Tokyo,
	// or UTC when the zone database is unavailable.
	Location *time.Location

	Logger *slog.Logger
}

// Summary reports what a Run did.
type Summary struct {
	Discussions int      // discussions listed
	Written     int      // transcripts written to disk
	Empty       int      // discussions with no transcript yet
	Failed      int      // ids the service could not resolve
	Files       []string // paths written, in listing order
	FailedIDs   []string
}

// Run exports every discussion. Ids the service cannot resolve are counted in
// the summary and skipped; listing or remote failures abort the run.
func (e *Exporter) Run(ctx context.Context) (*Summary, error) {
	if e.Dir == "" {
		return nil, ErrNoDir
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loc := e.Location
	if loc == nil {
		loc = defaultLocation()
	}

	discussions, err := e.Directory.AllDiscussions(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(discussions))
	for i, d := range discussions {
		ids[i] = d.ID
	}
	batch, err := e.Fetcher.DiscussionTexts(ctx, ids)
	if err != nil {
		return nil, err
	}

	results := make(map[string]discuss.TextResult, batch.Len())
	for _, r := range batch.Results {
		results[r.ID] = r
	}

	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	sum := &Summary{Discussions: len(discussions)}
	for _, d := range discussions {
		r := results[d.ID]
		switch {
		case r.Err != nil:
			logger.WarnContext(ctx, "skipping discussion", "id", d.ID, "error", r.Err)
			metrics.BatchFailures.WithLabelValues("not_found").Inc()
			sum.Failed++
			sum.FailedIDs = append(sum.FailedIDs, d.ID)
		case r.Text == "":
			logger.DebugContext(ctx, "no transcript yet", "id", d.ID, "state", d.State)
			sum.Empty++
		default:
			path := filepath.Join(e.Dir, FileName(d, loc))
			if err := appendText(path, r.Text); err != nil {
				return sum, err
			}
			logger.InfoContext(ctx, "wrote transcript", "id", d.ID, "path", path)
			sum.Written++
			sum.Files = append(sum.Files, path)
		}
	}
	return sum, nil
}

// FileName returns the export file name for d:
// "<YYYYMMDD_HHMMSS>(<HH_MM_SS>)_<id>_<topic>_<group>.asr.txt".
func FileName(d discuss.Discussion, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	dur, err := discuss.FormatDuration(d.DurationSeconds, discuss.FileNameLayout)
	if err != nil {
		dur = "00_00_00"
	}
	return fmt.Sprintf("%s(%s)_%s_%s_%s%s",
		d.RecordedAt.In(loc).Format("20060102_150405"),
		dur,
		sanitize(d.ID, "unknown"),
		sanitize(d.Topic, NoTopic),
		sanitize(d.GroupName, NoGroup),
		FileSuffix,
	)
}

// sanitize replaces path separators with their full-width form.
func sanitize(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return strings.NewReplacer("/", "／", "\\", "＼").Replace(s)
}

func appendText(path, text string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.WriteString(text + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func defaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		return time.UTC
	}
	return loc
}
