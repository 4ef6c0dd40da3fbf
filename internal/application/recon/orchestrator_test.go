package recon

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rizaldyaw/socmint/internal/domain/analysis"
)

// fakeClient routes each task to a per-task handler.
type fakeClient struct {
	calls    atomic.Int64
	handlers map[analysis.TaskID]func(ctx context.Context, task analysis.Task) (string, error)
}

func (f *fakeClient) Complete(ctx context.Context, task analysis.Task) (string, error) {
	f.calls.Add(1)
	if h, ok := f.handlers[task.ID]; ok {
		return h(ctx, task)
	}
	return "ok", nil
}

func okStructured(ctx context.Context, task analysis.Task) (string, error) {
	return `{"linguistic_analysis":{"summary":"fine","subjectivity":0.4,"sentiment_score":0.5}}`, nil
}

func newOrchestrator(c analysis.Client) *Orchestrator {
	return &Orchestrator{
		Client:            c,
		CredentialPresent: true,
		Model:             "test-model",
		TaskTimeout:       time.Second,
	}
}

func TestRunAllTasksSucceed(t *testing.T) {
	client := &fakeClient{handlers: map[analysis.TaskID]func(context.Context, analysis.Task) (string, error){
		analysis.TaskReport:        func(context.Context, analysis.Task) (string, error) { return "the report", nil },
		analysis.TaskForensicNotes: func(context.Context, analysis.Task) (string, error) { return "the notes", nil },
		analysis.TaskStructured:    okStructured,
	}}
	got := newOrchestrator(client).Run(context.Background(), "alice", "bio text", nil)

	if got.Report != "the report" || got.ForensicNotes != "the notes" {
		t.Errorf("outputs not merged by task: %+v", got)
	}
	if len(got.TaskErrors) != 0 {
		t.Errorf("unexpected task errors: %v", got.TaskErrors)
	}
	if got.Structured.Linguistic.SentimentScore != 0.5 {
		t.Errorf("structured record not repaired: %+v", got.Structured.Linguistic)
	}
	if client.calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", client.calls.Load())
	}
}

func TestRunPartialFailureIsolated(t *testing.T) {
	netErr := errors.New("connection reset")
	client := &fakeClient{handlers: map[analysis.TaskID]func(context.Context, analysis.Task) (string, error){
		analysis.TaskReport:        func(context.Context, analysis.Task) (string, error) { return "", netErr },
		analysis.TaskForensicNotes: func(context.Context, analysis.Task) (string, error) { return "the notes", nil },
		analysis.TaskStructured:    okStructured,
	}}
	got := newOrchestrator(client).Run(context.Background(), "alice", "bio", nil)

	if !strings.HasPrefix(got.Report, "Analysis failed:") {
		t.Errorf("failed task slot = %q", got.Report)
	}
	if got.ForensicNotes != "the notes" {
		t.Errorf("healthy task contaminated: %q", got.ForensicNotes)
	}
	if _, ok := got.TaskErrors[analysis.TaskReport]; !ok {
		t.Errorf("report failure not recorded: %v", got.TaskErrors)
	}
	if _, ok := got.TaskErrors[analysis.TaskForensicNotes]; ok {
		t.Error("healthy task has an error entry")
	}
}

func TestRunStructuredFailureGetsFallback(t *testing.T) {
	client := &fakeClient{handlers: map[analysis.TaskID]func(context.Context, analysis.Task) (string, error){
		analysis.TaskStructured: func(context.Context, analysis.Task) (string, error) {
			return "", errors.New("boom")
		},
	}}
	got := newOrchestrator(client).Run(context.Background(), "alice", "bio", nil)

	if !got.Structured.Fallback {
		t.Error("structured fallback flag not set")
	}
	if got.Structured.ProfileContext.Username != "alice" {
		t.Errorf("fallback record lost identity: %+v", got.Structured.ProfileContext)
	}
	if msg := got.TaskErrors[analysis.TaskStructured]; !strings.Contains(msg, "network") {
		t.Errorf("error not classified as network: %q", msg)
	}
}

func TestRunTaskTimeout(t *testing.T) {
	client := &fakeClient{handlers: map[analysis.TaskID]func(context.Context, analysis.Task) (string, error){
		analysis.TaskReport: func(ctx context.Context, _ analysis.Task) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		},
		analysis.TaskForensicNotes: func(context.Context, analysis.Task) (string, error) { return "notes", nil },
		analysis.TaskStructured:    okStructured,
	}}
	o := newOrchestrator(client)
	o.TaskTimeout = 20 * time.Millisecond

	done := make(chan analysis.Composite, 1)
	go func() { done <- o.Run(context.Background(), "alice", "bio", nil) }()

	select {
	case got := <-done:
		if msg := got.TaskErrors[analysis.TaskReport]; !strings.Contains(msg, "timed out") {
			t.Errorf("timeout not classified: %q", msg)
		}
		if got.ForensicNotes != "notes" {
			t.Error("slow task stalled the healthy ones")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run never returned after task timeout")
	}
}

func TestRunWithoutCredentialSkipsNetwork(t *testing.T) {
	client := &fakeClient{}
	o := newOrchestrator(client)
	o.CredentialPresent = false

	got := o.Run(context.Background(), "alice", "Loves hiking in Colorado. @trailbuddy", nil)

	if client.calls.Load() != 0 {
		t.Errorf("made %d network calls without a credential", client.calls.Load())
	}
	if got.Report != CredentialMissingMessage || got.ForensicNotes != CredentialMissingMessage {
		t.Errorf("placeholders missing: %+v", got)
	}
	if len(got.TaskErrors) != 3 {
		t.Errorf("task errors = %v, want all three tagged", got.TaskErrors)
	}
	if !got.Structured.Fallback {
		t.Error("structured record should carry the fallback flag")
	}
}

func TestRunCleansInputForPromptTasks(t *testing.T) {
	var reportPrompt string
	client := &fakeClient{handlers: map[analysis.TaskID]func(context.Context, analysis.Task) (string, error){
		analysis.TaskReport: func(_ context.Context, task analysis.Task) (string, error) {
			reportPrompt = task.Prompt
			return "report", nil
		},
		analysis.TaskStructured: okStructured,
	}}
	newOrchestrator(client).Run(context.Background(), "alice", "check https://evil.example @noise #hiking", []string{"post one"})

	if strings.Contains(reportPrompt, "https://evil.example") || strings.Contains(reportPrompt, "@noise") {
		t.Errorf("prompt contains uncleaned text: %q", reportPrompt)
	}
	if !strings.Contains(reportPrompt, "hiking") {
		t.Errorf("hashtag word lost from prompt: %q", reportPrompt)
	}
}

func TestRunTasksExecuteConcurrently(t *testing.T) {
	sleep := func(ctx context.Context, _ analysis.Task) (string, error) {
		select {
		case <-time.After(100 * time.Millisecond):
			return "ok", nil
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	client := &fakeClient{handlers: map[analysis.TaskID]func(context.Context, analysis.Task) (string, error){
		analysis.TaskReport:        sleep,
		analysis.TaskForensicNotes: sleep,
		analysis.TaskStructured:    sleep,
	}}

	start := time.Now()
	newOrchestrator(client).Run(context.Background(), "alice", "bio", nil)
	elapsed := time.Since(start)

	if client.calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", client.calls.Load())
	}
	// sequential execution would take at least 300ms
	if elapsed >= 250*time.Millisecond {
		t.Errorf("elapsed = %v, tasks did not overlap", elapsed)
	}
	if elapsed < 100*time.Millisecond {
		t.Errorf("elapsed = %v, shorter than the slowest task", elapsed)
	}
}

func TestRunBackfillsKeywordsLocally(t *testing.T) {
	client := &fakeClient{handlers: map[analysis.TaskID]func(context.Context, analysis.Task) (string, error){
		analysis.TaskStructured: okStructured, // no keywords in the model output
	}}
	posts := []string{"Great hiking trip in the mountains", "More hiking photos from the mountains"}
	got := newOrchestrator(client).Run(context.Background(), "alice", "Loves hiking.", posts)

	kw := got.Structured.Linguistic.Keywords
	if len(kw) == 0 {
		t.Fatal("keywords not derived from collected text")
	}
	if kw[0] != "hiking" {
		t.Errorf("keywords = %v, want most frequent term first", kw)
	}
}

func TestRunCredentialMissingRecordHasKeywords(t *testing.T) {
	o := &Orchestrator{Model: "test-model"}
	got := o.Run(context.Background(), "alice", "Loves hiking and photography.", nil)

	if len(got.Structured.Linguistic.Keywords) == 0 {
		t.Error("fallback record missing locally derived keywords")
	}
}

func TestRunModelKeywordsWin(t *testing.T) {
	client := &fakeClient{handlers: map[analysis.TaskID]func(context.Context, analysis.Task) (string, error){
		analysis.TaskStructured: func(context.Context, analysis.Task) (string, error) {
			return `{"linguistic_analysis":{"summary":"fine","subjectivity":0.4,"sentiment_score":0.5,"keywords":["model-term"]}}`, nil
		},
	}}
	got := newOrchestrator(client).Run(context.Background(), "alice", "Loves hiking.", nil)

	if len(got.Structured.Linguistic.Keywords) != 1 || got.Structured.Linguistic.Keywords[0] != "model-term" {
		t.Errorf("keywords = %v, want model output preserved", got.Structured.Linguistic.Keywords)
	}
}
