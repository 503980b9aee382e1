// Package report renders recorded time totals as text or PDF.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dori/stint/internal/model"
	"github.com/dori/stint/internal/tracker"
)

// WriteText prints one line per project followed by its indented tasks
func WriteText(w io.Writer, totals []tracker.ProjectTotal) error {
	if len(totals) == 0 {
		_, err := fmt.Fprintln(w, "No projects.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, p := range totals {
		fmt.Fprintf(tw, "%s\t%s\n", p.Name, model.FormatDuration(p.Total))
		for _, t := range p.Tasks {
			marker := ""
			if t.Running {
				marker = " (running)"
			}
			fmt.Fprintf(tw, "  %s\t%s%s\n", t.Name, model.FormatDuration(t.Total), marker)
		}
	}
	return tw.Flush()
}
