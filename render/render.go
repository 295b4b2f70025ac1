// Package render turns session state into what the operator sees: the
// directory listing, the signer selector and outcome lines. All escaping
// of service-provided text happens here.
package render

import (
	"strings"
	"time"
	"unicode"

	"github.com/GiveMe1Star/digital-signature/protocol"
)

// Placeholder texts.
const (
	EmptyDirectory      = "No keys have been registered yet"
	SignerPlaceholder   = "-- Select signer --"
	DefaultDateLayout   = "2006-01-02 15:04:05"
	placeholderFallback = "-"
)

// A Row is one rendered directory entry.
type Row struct {
	ID         string
	KeyBadge   string
	Name       string
	Department string
	Created    string
}

// A Directory is the rendered listing. Placeholder is set when there are
// no entries to show.
type Directory struct {
	Rows        []Row
	Placeholder string
}

// Empty reports whether the listing shows the placeholder.
func (d Directory) Empty() bool {
	return len(d.Rows) == 0
}

// DirectoryRows renders entries in the order given. Dates are shown with
// layout, or DefaultDateLayout if layout is empty.
func DirectoryRows(entries []protocol.DirectoryEntry, layout string) Directory {
	if len(entries) == 0 {
		return Directory{Placeholder: EmptyDirectory}
	}
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = Row{
			ID:         e.ID,
			KeyBadge:   e.ID,
			Name:       e.Name,
			Department: e.Department,
			Created:    FormatDate(e.CreatedAt, layout),
		}
	}
	return Directory{Rows: rows}
}

// An Option is one entry of the signer selector.
type Option struct {
	Value    string
	Label    string
	Selected bool
}

// SignerOptions renders the signer selector: the placeholder first, then
// one option per entry labelled "name (department)". The option whose
// value equals selected is marked; the placeholder is marked if none is.
func SignerOptions(entries []protocol.DirectoryEntry, selected string) []Option {
	opts := make([]Option, 0, len(entries)+1)
	opts = append(opts, Option{Value: "", Label: SignerPlaceholder})
	found := false
	for _, e := range entries {
		sel := selected != "" && e.ID == selected
		found = found || sel
		opts = append(opts, Option{Value: e.ID, Label: e.Label(), Selected: sel})
	}
	opts[0].Selected = !found
	return opts
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
}

// FormatDate formats a timestamp sent by the service. Both RFC 3339 and
// zone-less ISO 8601 timestamps are understood, with or without
// fractional seconds. Anything else is returned unchanged.
func FormatDate(raw, layout string) string {
	if layout == "" {
		layout = DefaultDateLayout
	}
	s := strings.TrimSpace(raw)
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.Format(layout)
		}
	}
	return raw
}

// clean replaces control characters so service text cannot move the
// terminal cursor.
func clean(s string) string {
	if s == "" {
		return placeholderFallback
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}
