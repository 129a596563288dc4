package framework

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ScenarioLogger receives progress notifications from the runner while the
// catalog is being executed.
type ScenarioLogger interface {
	PathStarted(id int, name string)
	PathError(id int, err string)
	PathFinished(result PathResult, debugOutput CapturedOutput)
	PathSkipped(id int, name string, reason string)
}

type nullScenarioLogger struct{}

func (n nullScenarioLogger) PathStarted(int, string)                 {}
func (n nullScenarioLogger) PathError(int, string)                   {}
func (n nullScenarioLogger) PathFinished(PathResult, CapturedOutput) {}
func (n nullScenarioLogger) PathSkipped(int, string, string)         {}

func NullScenarioLogger() ScenarioLogger { return nullScenarioLogger{} }

// ConsoleScenarioLogger prints per-path progress to a writer as the run
// proceeds. Debug output captured during a path is dumped according to the
// two flags.
type ConsoleScenarioLogger struct {
	DebugOutputOnFailure bool
	DebugOutputOnSuccess bool
	Output               io.Writer
}

func (c ConsoleScenarioLogger) PathStarted(id int, name string) {
	fmt.Fprintf(c.Output, "[%d] %s\n", id, name)
}

func (c ConsoleScenarioLogger) PathError(id int, err string) {
	for _, line := range strings.Split(err, "\n") {
		fmt.Fprintf(c.Output, "  %s\n", line)
	}
}

func (c ConsoleScenarioLogger) PathFinished(result PathResult, debugOutput CapturedOutput) {
	if result.Passed {
		color.New(color.FgGreen).Fprintf(c.Output, "  PASSED (%s)\n", result.Duration.Round(time.Millisecond))
	} else {
		color.New(color.FgRed).Fprintf(c.Output, "  FAILED: [%d] %s\n", result.PathID, result.Name)
		if len(result.LogsFound) > 0 {
			fmt.Fprintf(c.Output, "  log actions found: %s\n", strings.Join(result.LogsFound, ", "))
		} else {
			fmt.Fprintf(c.Output, "  no log records found\n")
		}
	}
	if len(debugOutput) > 0 &&
		((!result.Passed && c.DebugOutputOnFailure) || (result.Passed && c.DebugOutputOnSuccess)) {
		debugOutput.Dump(c.Output, "    DEBUG ")
	}
}

func (c ConsoleScenarioLogger) PathSkipped(id int, name string, reason string) {
	if reason == "" {
		fmt.Fprintf(c.Output, "  SKIPPED: [%d] %s\n", id, name)
	} else {
		fmt.Fprintf(c.Output, "  SKIPPED: [%d] %s (%s)\n", id, name, reason)
	}
}
