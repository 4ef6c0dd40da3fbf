// Package report renders case analysis results into standalone HTML
// documents under the case exports directory.
package report

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/rizaldyaw/socmint/internal/domain/analysis"
	"github.com/rizaldyaw/socmint/internal/domain/evidence"
	"github.com/rizaldyaw/socmint/internal/infra/casefs"
)

// Mirror uploads a finished export to remote object storage. Optional.
type Mirror interface {
	Upload(ctx context.Context, localPath, key string) (string, error)
}

// Assembler writes HTML reports for completed analysis runs.
type Assembler struct {
	store  *casefs.Store
	mirror Mirror
	now    func() time.Time
}

// NewAssembler builds an Assembler. mirror may be nil to keep exports local.
func NewAssembler(store *casefs.Store, mirror Mirror) *Assembler {
	return &Assembler{store: store, mirror: mirror, now: time.Now}
}

type reportData struct {
	CaseName    string
	Target      string
	GeneratedAt string
	Composite   analysis.Composite
	Items       []evidence.PreservedItemSummary
	TaskErrors  map[analysis.TaskID]string
}

// Assemble renders the report into exports/ and returns the filename
// relative to the exports directory. Mirror failures are logged, not fatal.
func (a *Assembler) Assemble(ctx context.Context, caseName, target string, composite analysis.Composite, items []evidence.PreservedItemSummary) (string, error) {
	paths, err := a.store.Resolve(caseName)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("report_%s_%d.html", caseName, a.now().UTC().Unix())
	dest := filepath.Join(paths.Exports, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	data := reportData{
		CaseName:    caseName,
		Target:      target,
		GeneratedAt: a.now().UTC().Format(time.RFC3339),
		Composite:   composite,
		Items:       items,
		TaskErrors:  composite.TaskErrors,
	}
	if err := reportTmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}

	if a.mirror != nil {
		key := fmt.Sprintf("%s/exports/%s", caseName, name)
		if url, merr := a.mirror.Upload(ctx, dest, key); merr != nil {
			slog.Warn("report mirror upload failed", "case", caseName, "error", merr)
		} else {
			slog.Info("report mirrored", "case", caseName, "url", url)
		}
	}

	return name, nil
}

var reportTmpl = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>OSINT Report: {{.Target}} ({{.CaseName}})</title>
<style>
body { font-family: Georgia, serif; max-width: 960px; margin: 2rem auto; color: #1a1a1a; }
h1, h2 { border-bottom: 1px solid #ccc; padding-bottom: .25rem; }
pre { background: #f5f5f5; padding: 1rem; white-space: pre-wrap; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: .4rem .6rem; text-align: left; font-size: .9rem; }
.hash { font-family: monospace; font-size: .8rem; word-break: break-all; }
.warn { color: #8a1f11; }
.flag { background: #fff3cd; padding: .5rem 1rem; border: 1px solid #e0c268; }
</style>
</head>
<body>
<h1>OSINT Analysis Report</h1>
<p><strong>Case:</strong> {{.CaseName}} &middot; <strong>Target:</strong> {{.Target}} &middot; <strong>Generated:</strong> {{.GeneratedAt}}</p>

{{if .Composite.Structured.Fallback}}
<p class="flag">The structured analysis below contains fallback values; the model response could not be fully parsed.</p>
{{end}}

<h2>Narrative Report</h2>
<pre>{{.Composite.Report}}</pre>

<h2>Forensic Notes</h2>
<pre>{{.Composite.ForensicNotes}}</pre>

<h2>Linguistic Profile</h2>
<table>
<tr><th>Sentiment</th><td>{{.Composite.Structured.Linguistic.SentimentLabel}} ({{printf "%.3f" .Composite.Structured.Linguistic.SentimentScore}})</td></tr>
<tr><th>Subjectivity</th><td>{{printf "%.3f" .Composite.Structured.Linguistic.Subjectivity}}</td></tr>
<tr><th>Language</th><td>{{.Composite.Structured.Linguistic.Language}}</td></tr>
{{- if .Composite.Structured.Linguistic.Keywords}}
<tr><th>Keywords</th><td>{{range $i, $k := .Composite.Structured.Linguistic.Keywords}}{{if $i}}, {{end}}{{$k}}{{end}}</td></tr>
{{- end}}
<tr><th>Summary</th><td>{{.Composite.Structured.Linguistic.Summary}}</td></tr>
</table>

<h2>Threat Assessment</h2>
<p>{{.Composite.Structured.Threat.OverallAssessment}}</p>

<h2>Preserved Items ({{len .Items}})</h2>
<table>
<tr><th>Item</th><th>Data File</th><th>SHA-256</th></tr>
{{range .Items}}
<tr><td>{{.ItemID}}</td><td>{{.DataFile}}</td><td class="hash">{{.Hash}}</td></tr>
{{end}}
</table>

{{if .TaskErrors}}
<h2 class="warn">Analysis Task Errors</h2>
<table>
<tr><th>Task</th><th>Error</th></tr>
{{range $id, $msg := .TaskErrors}}
<tr><td>{{$id}}</td><td>{{$msg}}</td></tr>
{{end}}
</table>
{{end}}

<p><em>All timestamps UTC. Evidence hashes are recorded in the case forensic log.</em></p>
</body>
</html>
`))
