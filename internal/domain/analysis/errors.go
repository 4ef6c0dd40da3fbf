package analysis

import "errors"

var (
	// ErrCredentialMissing means no API key is configured. It fails a whole
	// run fast, before any network call.
	ErrCredentialMissing = errors.New("llm credential missing")

	// ErrTimeout marks a task that exceeded its per-task deadline.
	ErrTimeout = errors.New("llm task timed out")

	// ErrNetwork marks a transport failure on a single task.
	ErrNetwork = errors.New("llm network error")

	// ErrMalformedResponse marks unparseable structured output. It is absorbed
	// by Repair and never propagates past the orchestrator.
	ErrMalformedResponse = errors.New("llm response malformed")
)
