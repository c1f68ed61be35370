package output

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/randalmurphal/discuss"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "✗ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "%s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✓ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "! %s\n", msg)
}

// IDs prints one id per line.
func (f *Formatter) IDs(ids []string) {
	for _, id := range ids {
		fmt.Fprintln(f.w, id)
	}
}

// Discussions prints a table of discussions with times rendered in loc.
func (f *Formatter) Discussions(discussions []discuss.Discussion, loc *time.Location) error {
	tw := tabwriter.NewWriter(f.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATE\tRECORDED\tDURATION\tGROUP\tTOPIC")
	for _, d := range discussions {
		dur, err := discuss.SecondsToTimeFormat(d.DurationSeconds)
		if err != nil {
			dur = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.State, d.RecordedAt.In(loc).Format("2006-01-02 15:04"),
			dur, orDash(d.GroupName), orDash(d.Topic))
	}
	return tw.Flush()
}

// Transcript prints a transcript under a header naming its discussion.
func (f *Formatter) Transcript(id, text string) {
	fmt.Fprintf(f.w, "== %s ==\n", id)
	if text == "" {
		fmt.Fprintln(f.w, "(no transcript yet)")
		return
	}
	fmt.Fprintln(f.w, text)
}

// Check prints one line of a diagnostic report.
func (f *Formatter) Check(name string, ok bool, detail string) {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	fmt.Fprintf(f.w, "  %s %s: %s\n", mark, name, detail)
}

// Setting prints one configuration value with its origin.
func (f *Formatter) Setting(key, value, source string) {
	fmt.Fprintf(f.w, "  %-14s %-40s (%s)\n", key, value, source)
}

// JSON prints v as indented JSON.
func (f *Formatter) JSON(v any) error {
	enc := json.NewEncoder(f.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
