package recon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rizaldyaw/socmint/internal/domain/analysis"
	"github.com/rizaldyaw/socmint/internal/domain/cases"
	"github.com/rizaldyaw/socmint/internal/domain/evidence"
	"github.com/rizaldyaw/socmint/internal/domain/index"
)

// ErrNoPlatforms is returned when a processing request names no supported
// platform.
var ErrNoPlatforms = errors.New("no supported platforms requested")

// CaseStore is the case-layout port the service depends on.
type CaseStore interface {
	Resolve(name string) (cases.Paths, error)
	Ensure(name string) (cases.Paths, error)
	Exists(name string) bool
	List() ([]string, error)
	Log(name string) ([]evidence.LogEvent, error)
	ArtifactPath(name, rel string) (string, error)
}

// Preserver writes collected items into a case with chain-of-custody logging.
type Preserver interface {
	Preserve(caseName string, items []evidence.Item, cctx evidence.CollectionContext) ([]evidence.PreservedItemSummary, error)
}

// Reporter renders a human-readable report into the case exports directory
// and returns the written filename.
type Reporter interface {
	Assemble(ctx context.Context, caseName, target string, composite analysis.Composite, items []evidence.PreservedItemSummary) (string, error)
}

// Service is the case-processing use case. Reporter and Index are optional;
// nil disables report rendering and the analysis index respectively.
type Service struct {
	Store        CaseStore
	Preserver    Preserver
	Collector    *Collector
	Orchestrator *Orchestrator
	Reporter     Reporter
	Index        index.Repository
	Clock        Clock
}

// ProcessCommand describes one case-processing request.
type ProcessCommand struct {
	CaseName   string
	Target     string
	Platforms  []string
	Parameters map[string]any
}

// ProcessResult summarizes a completed processing run. Analysis is always
// present, even when every LLM task failed.
type ProcessResult struct {
	Status          string              `json:"status"`
	CaseName        string              `json:"case_name"`
	Target          string              `json:"target"`
	Platforms       []string            `json:"platforms_processed"`
	CollectionMethod string             `json:"collection_method"`
	ItemsCollected  int                 `json:"items_collected"`
	ItemsPreserved  int                 `json:"items_preserved"`
	AnalysisFiles   []string            `json:"analysis_files"`
	DroppedEdges    int                 `json:"dropped_edges"`
	ReportFile      string              `json:"report_file,omitempty"`
	Analysis        *analysis.Composite `json:"analysis"`
}

// CreateCase initializes a new empty case layout.
func (s *Service) CreateCase(name string) (cases.Paths, error) {
	if s.Store.Exists(name) {
		return cases.Paths{}, fmt.Errorf("case %q: %w", name, cases.ErrExists)
	}
	return s.Store.Ensure(name)
}

// ListCases returns the names of all existing cases.
func (s *Service) ListCases() ([]string, error) {
	return s.Store.List()
}

// CaseLog returns the forensic log events recorded for a case.
func (s *Service) CaseLog(name string) ([]evidence.LogEvent, error) {
	return s.Store.Log(name)
}

// ArtifactPath resolves a case-relative artifact path for serving, rejecting
// anything that would escape the case directory.
func (s *Service) ArtifactPath(name, rel string) (string, error) {
	return s.Store.ArtifactPath(name, rel)
}

// ListAnalyses pages through indexed analysis runs for a case. Returns an
// empty page when no index is configured.
func (s *Service) ListAnalyses(ctx context.Context, caseName string, page, pageSize int) ([]*index.Analysis, error) {
	if s.Index == nil {
		return []*index.Analysis{}, nil
	}
	return s.Index.Paginate(ctx, caseName, page, pageSize)
}

// ProcessCase runs the full pipeline for one target: collect, preserve,
// analyze, persist artifacts, and optionally index and render a report.
// LLM task failures degrade the analysis but never fail the request;
// filesystem failures do.
func (s *Service) ProcessCase(ctx context.Context, cmd ProcessCommand) (*ProcessResult, error) {
	if !s.Store.Exists(cmd.CaseName) {
		return nil, fmt.Errorf("case %q: %w", cmd.CaseName, cases.ErrNotFound)
	}

	platforms := make([]string, 0, len(cmd.Platforms))
	for _, p := range cmd.Platforms {
		if PlatformSupported(p) {
			platforms = append(platforms, p)
		}
	}
	if len(platforms) == 0 {
		return nil, ErrNoPlatforms
	}

	prof, items, method := s.Collector.Collect(ctx, cmd.Target, platforms)

	summaries, err := s.Preserver.Preserve(cmd.CaseName, items, evidence.CollectionContext{
		Target:     cmd.Target,
		Platforms:  platforms,
		Method:     method,
		Parameters: cmd.Parameters,
	})
	if err != nil {
		return nil, fmt.Errorf("preserve into case %q: %w", cmd.CaseName, err)
	}

	biography := ""
	posts := make([]string, 0)
	if prof != nil {
		biography = prof.Biography
		for _, p := range prof.Posts {
			posts = append(posts, p.Caption)
		}
	} else {
		for _, it := range items {
			posts = append(posts, it.Content)
		}
	}

	composite := s.Orchestrator.Run(ctx, cmd.Target, biography, posts)

	paths, err := s.Store.Resolve(cmd.CaseName)
	if err != nil {
		return nil, err
	}

	graph, dropped := buildCollectionGraph(cmd.Target, items, composite.Structured)

	files := []string{"composite_analysis.json", "structured_record.json", "network_graph.json"}
	if err := writeJSONArtifact(filepath.Join(paths.Analysis, files[0]), composite); err != nil {
		return nil, err
	}
	if err := writeJSONArtifact(filepath.Join(paths.Analysis, files[1]), composite.Structured); err != nil {
		return nil, err
	}
	graphDoc := struct {
		analysis.Graph
		DroppedEdges int `json:"dropped_edges"`
	}{Graph: graph, DroppedEdges: dropped}
	if err := writeJSONArtifact(filepath.Join(paths.Analysis, files[2]), graphDoc); err != nil {
		return nil, err
	}

	reportFile := ""
	if s.Reporter != nil {
		reportFile, err = s.Reporter.Assemble(ctx, cmd.CaseName, cmd.Target, composite, summaries)
		if err != nil {
			slog.Error("report assembly failed", "case", cmd.CaseName, "error", err)
			reportFile = ""
		}
	}

	if s.Index != nil {
		raw, merr := json.Marshal(composite)
		if merr != nil {
			raw = []byte("{}")
		}
		rec := &index.Analysis{
			ID:         uuid.NewString(),
			CaseName:   cmd.CaseName,
			Target:     cmd.Target,
			Result:     string(raw),
			ReportFile: reportFile,
			CreatedAt:  s.clock().Now(),
		}
		if err := s.Index.Save(ctx, rec); err != nil {
			slog.Error("analysis index save failed", "case", cmd.CaseName, "error", err)
		}
	}

	status := "completed"
	if len(composite.TaskErrors) > 0 {
		status = "completed_with_errors"
	}
	return &ProcessResult{
		Status:           status,
		CaseName:         cmd.CaseName,
		Target:           cmd.Target,
		Platforms:        platforms,
		CollectionMethod: method,
		ItemsCollected:   len(items),
		ItemsPreserved:   len(summaries),
		AnalysisFiles:    files,
		DroppedEdges:     dropped,
		ReportFile:       reportFile,
		Analysis:         &composite,
	}, nil
}

func (s *Service) clock() Clock {
	if s.Clock != nil {
		return s.Clock
	}
	return SystemClock{}
}

// buildCollectionGraph derives a connection graph for the target from the
// collected items and the structured record's entity mentions. Edges that
// would reference an unknown node are dropped and counted.
func buildCollectionGraph(target string, items []evidence.Item, rec analysis.Record) (analysis.Graph, int) {
	b := analysis.NewGraphBuilder(target)

	seen := map[string]bool{}
	for _, it := range items {
		if it.Platform == "" || seen[it.Platform] {
			continue
		}
		seen[it.Platform] = true
		pid := "platform_" + it.Platform
		b.AddNode(pid, it.Platform, "platform")
		b.Connect(analysis.ProfileOwnerID, pid, "active_on")
	}

	for _, it := range items {
		for _, m := range analysis.ExtractMentions(it.Content) {
			uid := b.AddUser(m, it.Platform)
			b.Connect(analysis.ProfileOwnerID, uid, "mentions")
		}
	}
	for _, m := range rec.Entities.Mentions {
		uid := b.AddUser(m, "")
		b.Connect(analysis.ProfileOwnerID, uid, "mentions")
	}

	return b.Build(), b.Dropped()
}

func writeJSONArtifact(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
