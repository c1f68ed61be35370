package discuss

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Units is an elapsed time split into whole hours, minutes and seconds.
type Units struct {
	Hours   int
	Minutes int
	Seconds int
}

// Decompose splits seconds into hours, minutes and seconds.
func Decompose(seconds int) (Units, error) {
	if seconds < 0 {
		return Units{}, invalidArgument("seconds must not be negative, got %d", seconds)
	}
	return Units{
		Hours:   seconds / 3600,
		Minutes: seconds % 3600 / 60,
		Seconds: seconds % 60,
	}, nil
}

// Layout renders decomposed units as text.
type Layout interface {
	Render(u Units) string
}

// SuffixLayout writes each unit as a number followed by a label. Leading and
// trailing zero units are left out; a zero duration renders as zero seconds.
type SuffixLayout struct {
	Hour, Hours     string
	Minute, Minutes string
	Second, Seconds string

	// Separator goes between units.
	Separator string
}

// Render implements Layout.
func (l SuffixLayout) Render(u Units) string {
	values := [3]int{u.Hours, u.Minutes, u.Seconds}

	first, last := -1, -1
	for i, v := range values {
		if v == 0 {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		first, last = 2, 2
	}

	parts := make([]string, 0, last-first+1)
	for i := first; i <= last; i++ {
		parts = append(parts, strconv.Itoa(values[i])+l.label(i, values[i]))
	}
	return strings.Join(parts, l.Separator)
}

func (l SuffixLayout) label(unit, v int) string {
	singular := [3]string{l.Hour, l.Minute, l.Second}
	plural := [3]string{l.Hours, l.Minutes, l.Seconds}
	if v == 1 || plural[unit] == "" {
		return singular[unit]
	}
	return plural[unit]
}

// ClockLayout renders zero-padded "HH_MM_SS" with every unit present, the form
// used in exported file names.
type ClockLayout struct {
	Separator string
}

// Render implements Layout.
func (l ClockLayout) Render(u Units) string {
	sep := l.Separator
	if sep == "" {
		sep = "_"
	}
	return fmt.Sprintf("%02d%s%02d%s%02d", u.Hours, sep, u.Minutes, sep, u.Seconds)
}

// Built-in layouts.
var (
	JapaneseLayout Layout = SuffixLayout{Hour: "時間", Minute: "分", Second: "秒"}

	EnglishLayout Layout = SuffixLayout{
		Hour: " hour", Hours: " hours",
		Minute: " minute", Minutes: " minutes",
		Second: " second", Seconds: " seconds",
		Separator: " ",
	}

	FileNameLayout Layout = ClockLayout{Separator: "_"}
)

var (
	layoutTags    = []language.Tag{language.Japanese, language.English}
	layoutByIndex = []Layout{JapaneseLayout, EnglishLayout}
	layoutMatcher = language.NewMatcher(layoutTags)
)

// LayoutFor returns the built-in layout closest to tag. Unsupported languages
// fall back to Japanese.
func LayoutFor(tag language.Tag) Layout {
	_, idx, conf := layoutMatcher.Match(tag)
	if conf == language.No {
		return JapaneseLayout
	}
	return layoutByIndex[idx]
}

// FormatDuration renders seconds with layout.
func FormatDuration(seconds int, layout Layout) (string, error) {
	u, err := Decompose(seconds)
	if err != nil {
		return "", err
	}
	return layout.Render(u), nil
}

// SecondsToTimeFormat renders seconds as Japanese hours, minutes and seconds,
// e.g. 3661 -> "1時間1分1秒".
func SecondsToTimeFormat(seconds int) (string, error) {
	return FormatDuration(seconds, JapaneseLayout)
}
