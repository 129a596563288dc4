package framework

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/alessio/shellescape"
	"github.com/fatih/color"
)

// PathResult is the outcome of executing one scenario path. It is created
// once per run and never mutated after the runner returns it.
type PathResult struct {
	PathID    int
	Name      string
	Passed    bool
	Skipped   bool
	Errors    []string
	LogsFound []string
	Duration  time.Duration
}

// Results aggregates the outcomes of every executed path.
type Results struct {
	Paths []PathResult
}

func (r *Results) Add(p PathResult) {
	r.Paths = append(r.Paths, p)
}

// OK is true iff no executed path failed. Skipped paths do not count
// either way.
func (r Results) OK() bool {
	return len(r.Failures()) == 0
}

func (r Results) Failures() []PathResult {
	var ret []PathResult
	for _, p := range r.Paths {
		if !p.Skipped && !p.Passed {
			ret = append(ret, p)
		}
	}
	return ret
}

func (r Results) executedCount() int {
	n := 0
	for _, p := range r.Paths {
		if !p.Skipped {
			n++
		}
	}
	return n
}

// PrintResults writes the final per-run summary: a tally line plus, for
// each failed path, its violations and a shell-ready command to rerun just
// that path.
func PrintResults(dest io.Writer, results Results) {
	failures := results.Failures()
	if len(failures) == 0 {
		color.New(color.FgGreen).Fprintf(dest, "All %d paths passed\n", results.executedCount())
		return
	}

	color.New(color.FgRed).Fprintf(dest, "%d of %d paths failed:\n",
		len(failures), results.executedCount())
	for _, f := range failures {
		color.New(color.FgRed).Fprintf(dest, "  [%d] %s (%s)\n", f.PathID, f.Name, f.Duration.Round(time.Millisecond))
		for _, e := range f.Errors {
			fmt.Fprintf(dest, "      %s\n", e)
		}
		fmt.Fprintf(dest, "      rerun: %s\n",
			shellescape.QuoteCommand([]string{"evidenceflow", "run", "--path", strconv.Itoa(f.PathID)}))
	}
}
