package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rizaldyaw/socmint/internal/application/recon"
	"github.com/rizaldyaw/socmint/internal/infra/casefs"
)

// newTestServer wires the real pipeline with simulated collection and no LLM
// credential, so no request leaves the process.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := casefs.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := &recon.Service{
		Store:        store,
		Preserver:    casefs.NewPreserver(store, "test"),
		Collector:    &recon.Collector{},
		Orchestrator: &recon.Orchestrator{Model: "test-model"},
	}
	srv := httptest.NewServer(NewRouter(svc, nil))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var m map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return m
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestCreateCaseLifecycle(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/api/cases", `{"case_name":"case_one"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/cases", `{"case_name":"case_one"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, srv.URL+"/api/cases", `{"case_name":"../escape"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad name status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	listResp, err := http.Get(srv.URL + "/api/cases")
	if err != nil {
		t.Fatal(err)
	}
	body := decode(t, listResp)
	names, _ := body["cases"].([]any)
	if len(names) != 1 || names[0] != "case_one" {
		t.Errorf("cases = %v", body["cases"])
	}
}

func TestProcessCaseEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	postJSON(t, srv.URL+"/api/cases", `{"case_name":"case_one"}`).Body.Close()

	resp := postJSON(t, srv.URL+"/api/cases/case_one/process",
		`{"target":"alice","platforms":["instagram","x"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("process status = %d", resp.StatusCode)
	}
	body := decode(t, resp)

	// No credential configured, so every task carries a placeholder.
	if body["status"] != "completed_with_errors" {
		t.Errorf("status = %v", body["status"])
	}
	if n, _ := body["items_preserved"].(float64); n < 1 {
		t.Errorf("items_preserved = %v", body["items_preserved"])
	}
	analysisDoc, _ := body["analysis"].(map[string]any)
	if analysisDoc == nil || analysisDoc["report"] != recon.CredentialMissingMessage {
		t.Errorf("analysis payload = %v", analysisDoc)
	}

	logResp, err := http.Get(srv.URL + "/api/cases/case_one/log")
	if err != nil {
		t.Fatal(err)
	}
	logBody := decode(t, logResp)
	events, _ := logBody["events"].([]any)
	if len(events) < 3 {
		t.Errorf("log events = %d, want batch bracketing", len(events))
	}

	artResp, err := http.Get(srv.URL + "/api/cases/case_one/artifacts/analysis/structured_record.json")
	if err != nil {
		t.Fatal(err)
	}
	artResp.Body.Close()
	if artResp.StatusCode != http.StatusOK {
		t.Errorf("artifact status = %d", artResp.StatusCode)
	}
}

func TestProcessValidation(t *testing.T) {
	srv := newTestServer(t)
	postJSON(t, srv.URL+"/api/cases", `{"case_name":"case_one"}`).Body.Close()

	cases := []struct {
		name string
		url  string
		body string
		want int
	}{
		{"missing case", srv.URL + "/api/cases/ghost/process", `{"target":"a","platforms":["x"]}`, http.StatusNotFound},
		{"no target", srv.URL + "/api/cases/case_one/process", `{"platforms":["x"]}`, http.StatusBadRequest},
		{"no platforms", srv.URL + "/api/cases/case_one/process", `{"target":"a"}`, http.StatusBadRequest},
		{"unsupported platforms", srv.URL + "/api/cases/case_one/process", `{"target":"a","platforms":["myspace"]}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, tc.url, tc.body)
			resp.Body.Close()
			if resp.StatusCode != tc.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tc.want)
			}
		})
	}
}

func TestLogMissingCase(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/api/cases/ghost/log")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}
