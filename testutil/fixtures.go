// Package testutil provides fakes and fixtures for testing code built on
// the discuss package.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/randalmurphal/discuss"
)

// LoadFixture loads a fixture file from the testdata directory.
// The path is relative to the testdata directory.
func LoadFixture(t *testing.T, path string) []byte {
	t.Helper()

	fullPath := filepath.Join("testdata", path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", path, err)
	}

	return data
}

// LoadJSONFixture loads a fixture file and unmarshals it as JSON.
func LoadJSONFixture[T any](t *testing.T, path string) T {
	t.Helper()

	data := LoadFixture(t, path)

	var result T
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("failed to parse JSON fixture %s: %v", path, err)
	}

	return result
}

// FixtureTime is the recording start used by SampleDiscussions.
var FixtureTime = time.Date(2024, 6, 3, 1, 30, 0, 0, time.UTC)

// SampleDiscussions returns a small mixed-state set of discussions, newest
// first, with transcripts for the completed ones.
func SampleDiscussions() ([]discuss.Discussion, map[string]string) {
	discussions := []discuss.Discussion{
		{
			ID:         "dsc_rec_1",
			State:      discuss.StateRecording,
			Topic:      "Energy policy",
			GroupName:  "Group A",
			RecordedAt: FixtureTime.Add(2 * time.Hour),
		},
		{
			ID:              "dsc_done_1",
			State:           discuss.StateCompleted,
			Topic:           "Climate / weather",
			Comments:        "first session",
			GroupName:       "Group B",
			DurationSeconds: 3661,
			RecordedAt:      FixtureTime.Add(time.Hour),
		},
		{
			ID:              "dsc_done_2",
			State:           discuss.StateCompleted,
			DurationSeconds: 45,
			RecordedAt:      FixtureTime,
		},
		{
			ID:         "dsc_rec_2",
			State:      discuss.StateRecording,
			RecordedAt: FixtureTime.Add(-time.Hour),
		},
	}
	transcripts := map[string]string{
		"dsc_rec_1":  "",
		"dsc_done_1": "hello\nworld",
		"dsc_done_2": "short one",
		"dsc_rec_2":  "",
	}
	return discussions, transcripts
}
