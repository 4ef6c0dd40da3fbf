package casefs

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rizaldyaw/socmint/internal/domain/evidence"
)

// ReadLog recovers all complete events from a forensic log. A truncated final
// line (crash mid-write) is discarded rather than failing the read.
func ReadLog(path string) ([]evidence.LogEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("casefs: open log: %w", err)
	}
	defer f.Close()

	events := []evidence.LogEvent{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev evidence.LogEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return events, fmt.Errorf("casefs: read log: %w", err)
	}
	return events, nil
}

// Batches groups a case's events into preservation batches using the
// BATCH_START/BATCH_END bracketing. Events outside any bracket are dropped.
func Batches(events []evidence.LogEvent) [][]evidence.LogEvent {
	var out [][]evidence.LogEvent
	var current []evidence.LogEvent
	open := false
	for _, ev := range events {
		switch ev.Type {
		case evidence.EventBatchStart:
			current = []evidence.LogEvent{ev}
			open = true
		case evidence.EventBatchEnd:
			if open {
				current = append(current, ev)
				out = append(out, current)
				current = nil
				open = false
			}
		default:
			if open {
				current = append(current, ev)
			}
		}
	}
	return out
}
