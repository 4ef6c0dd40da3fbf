package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rizaldyaw/socmint/internal/domain/analysis"
	"github.com/rizaldyaw/socmint/internal/prompts"
)

// CredentialMissingMessage is the uniform placeholder reported for every task
// when no API credential is configured.
const CredentialMissingMessage = "Credential missing: LLM analysis skipped."

const (
	defaultTaskTimeout = 30 * time.Second
	defaultWorkers     = 3
	keywordLimit       = 10
)

// Orchestrator fans out the independent analysis tasks for one input unit and
// joins their results. Task failures are isolated: the composite always has a
// slot for every task, holding either real output or a tagged placeholder.
type Orchestrator struct {
	Client            analysis.Client
	CredentialPresent bool
	Model             string
	TaskTimeout       time.Duration
	Workers           int
	Clock             Clock
}

// Run dispatches the narrative report, forensic notes, and structured
// extraction tasks concurrently, blocking until every task has terminated
// (success, error, or timeout). With no credential configured it
// short-circuits all tasks without any network call.
func (o *Orchestrator) Run(ctx context.Context, username, biography string, posts []string) analysis.Composite {
	now := o.clock().Now()
	contextText := biography
	if len(posts) > 0 {
		contextText = biography + "\n" + strings.Join(posts, "\n")
	}

	if !o.CredentialPresent {
		rec := analysis.NewFallbackRecord(username, o.Model, analysis.ErrCredentialMissing, "", now)
		rec.Linguistic.Keywords = analysis.Keywords(contextText, keywordLimit)
		errs := map[analysis.TaskID]string{
			analysis.TaskReport:        analysis.ErrCredentialMissing.Error(),
			analysis.TaskForensicNotes: analysis.ErrCredentialMissing.Error(),
			analysis.TaskStructured:    analysis.ErrCredentialMissing.Error(),
		}
		return analysis.Composite{
			Report:        CredentialMissingMessage,
			ForensicNotes: CredentialMissingMessage,
			Structured:    rec,
			TaskErrors:    errs,
		}
	}

	cleaned := analysis.Clean(contextText)

	tasks := []analysis.Task{
		prompts.ReportTask(o.Model, username, cleaned),
		prompts.ForensicTask(o.Model, cleaned),
		prompts.StructuredTask(o.Model, username, biography, now),
	}

	results := make([]analysis.TaskResult, len(tasks))
	var g errgroup.Group
	g.SetLimit(o.workers())
	start := o.clock().Now()
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			tctx, cancel := context.WithTimeout(ctx, o.timeout())
			defer cancel()
			out, err := o.Client.Complete(tctx, task)
			if err != nil {
				results[i] = analysis.TaskResult{ID: task.ID, Status: analysis.StatusFailed, Err: classifyTaskErr(err)}
				return nil
			}
			results[i] = analysis.TaskResult{ID: task.ID, Status: analysis.StatusSuccess, Output: out}
			return nil
		})
	}
	_ = g.Wait()
	slog.Debug("analysis fan-out complete",
		slog.String("username", username),
		slog.Duration("elapsed", o.clock().Now().Sub(start)))

	// Merge by task identity, not completion order.
	composite := analysis.Composite{TaskErrors: map[analysis.TaskID]string{}}
	for _, r := range results {
		switch r.ID {
		case analysis.TaskReport:
			if r.Status == analysis.StatusSuccess {
				composite.Report = r.Output
			} else {
				composite.Report = failureText(r.Err)
				composite.TaskErrors[r.ID] = r.Err.Error()
			}
		case analysis.TaskForensicNotes:
			if r.Status == analysis.StatusSuccess {
				composite.ForensicNotes = r.Output
			} else {
				composite.ForensicNotes = failureText(r.Err)
				composite.TaskErrors[r.ID] = r.Err.Error()
			}
		case analysis.TaskStructured:
			if r.Status == analysis.StatusSuccess {
				composite.Structured = analysis.Repair(r.Output, username, o.Model, now)
				if composite.Structured.Error != "" {
					composite.TaskErrors[r.ID] = composite.Structured.Error
				}
			} else {
				composite.Structured = analysis.NewFallbackRecord(username, o.Model, r.Err, "", now)
				composite.TaskErrors[r.ID] = r.Err.Error()
			}
		}
	}
	// Model-supplied keywords win; otherwise derive them from the collected
	// text so the structured record is searchable even on fallback.
	if len(composite.Structured.Linguistic.Keywords) == 0 {
		composite.Structured.Linguistic.Keywords = analysis.Keywords(contextText, keywordLimit)
	}
	return composite
}

func (o *Orchestrator) clock() Clock {
	if o.Clock == nil {
		return SystemClock{}
	}
	return o.Clock
}

func (o *Orchestrator) timeout() time.Duration {
	if o.TaskTimeout <= 0 {
		return defaultTaskTimeout
	}
	return o.TaskTimeout
}

func (o *Orchestrator) workers() int {
	if o.Workers <= 0 {
		return defaultWorkers
	}
	return o.Workers
}

func classifyTaskErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", analysis.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", analysis.ErrNetwork, err)
}

func failureText(err error) string {
	return fmt.Sprintf("Analysis failed: %v", err)
}
