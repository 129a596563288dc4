package scenarios

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const prereqTimeout = 10 * time.Second

// Prereq is one collaborator health check that must pass before scenario
// execution begins.
type Prereq struct {
	Name  string
	Check func(ctx context.Context) error
}

// CheckPrerequisites runs all checks in parallel and reports every failure
// in one error, so an operator sees the complete picture of what is down
// rather than the first unreachable collaborator.
func CheckPrerequisites(ctx context.Context, prereqs []Prereq) error {
	failures := make([]string, len(prereqs))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, p := range prereqs {
		i, p := i, p
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(groupCtx, prereqTimeout)
			defer cancel()
			if err := p.Check(checkCtx); err != nil {
				failures[i] = fmt.Sprintf("%s: %s", p.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait() // checks report via failures, never abort each other

	var report []string
	for _, f := range failures {
		if f != "" {
			report = append(report, f)
		}
	}
	if len(report) > 0 {
		return fmt.Errorf("prerequisite checks failed:\n  %s", strings.Join(report, "\n  "))
	}
	return nil
}
