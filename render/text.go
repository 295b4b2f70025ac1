package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/GiveMe1Star/digital-signature/presenter"
	"github.com/GiveMe1Star/digital-signature/protocol"
)

// WriteDirectoryText writes d as an aligned table.
func WriteDirectoryText(w io.Writer, d Directory) error {
	if d.Empty() {
		_, err := fmt.Fprintln(w, d.Placeholder)
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY ID\tNAME\tDEPARTMENT\tCREATED")
	for _, r := range d.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			clean(r.KeyBadge), clean(r.Name), clean(r.Department), clean(r.Created))
	}
	return tw.Flush()
}

// WriteSignersText writes the signer selector, one option per line, with
// the selected option marked by "*".
func WriteSignersText(w io.Writer, opts []Option) error {
	for _, o := range opts {
		mark := " "
		if o.Selected {
			mark = "*"
		}
		value := o.Value
		if value == "" {
			value = "-"
		}
		if _, err := fmt.Fprintf(w, "%s %-10s %s\n", mark, clean(value), clean(o.Label)); err != nil {
			return err
		}
	}
	return nil
}

// OutcomeLine renders an outcome as a single line prefixed with "[+]" on
// success and "[!]" on failure.
func OutcomeLine(o presenter.Outcome) string {
	prefix := "[+] "
	if !o.OK() {
		prefix = "[!] "
	}
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(label(o.Workflow))
	b.WriteString(": ")
	b.WriteString(clean(o.Message))
	if o.Signer != "" {
		b.WriteString(" | signer: " + clean(o.Signer))
	}
	if o.KeyID != "" {
		b.WriteString(" | key id: " + clean(o.KeyID))
	}
	if o.Path != "" {
		b.WriteString(" | saved to " + o.Path)
	}
	return b.String()
}

// AlertLine renders an alert raised by a directory action.
func AlertLine(a presenter.Alert) string {
	return OutcomeLine(a)
}

// BusyLine renders the busy indicator.
func BusyLine(s presenter.Snapshot) string {
	if !s.Busy {
		return "ready"
	}
	if s.Pending == 1 {
		return "working..."
	}
	return fmt.Sprintf("working (%d requests)...", s.Pending)
}

func label(w protocol.Workflow) string {
	switch w {
	case protocol.WorkflowSign:
		return "Sign"
	case protocol.WorkflowVerify:
		return "Verify"
	case protocol.WorkflowGenerate:
		return "Generate"
	case protocol.WorkflowRegister:
		return "Register"
	case protocol.WorkflowDelete:
		return "Delete"
	}
	return string(w)
}
