package analysis

import "context"

// TaskID identifies one analysis task within a run.
type TaskID string

const (
	TaskReport        TaskID = "report"
	TaskForensicNotes TaskID = "forensic_notes"
	TaskStructured    TaskID = "structured_data"
)

// Task is one LLM analysis request, built per run and owned by the orchestrator.
type Task struct {
	ID          TaskID
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float32
}

// Status enum
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// TaskResult is the terminal outcome of one task. Immutable once set.
type TaskResult struct {
	ID     TaskID
	Status Status
	Output string
	Err    error
}

// Composite is the joined output of all tasks in a run. All three slots are
// always populated; a failed task leaves a tagged placeholder, never a hole.
type Composite struct {
	Report        string            `json:"report"`
	ForensicNotes string            `json:"forensic_notes"`
	Structured    Record            `json:"structured_data"`
	TaskErrors    map[TaskID]string `json:"task_errors,omitempty"`
}

// Client port (interface to the chat-completion backend).
// Output must never be trusted as valid JSON without passing through Repair.
type Client interface {
	Complete(ctx context.Context, task Task) (string, error)
}
