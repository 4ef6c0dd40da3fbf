package analysis

import (
	"math"
	"strings"
	"testing"
	"time"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestStripFences(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{}\n```  ", "{}"},
		{"no closing fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFences(tc.in); got != tc.want {
				t.Errorf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRepairMalformedNeverErrors(t *testing.T) {
	inputs := []string{
		"",
		"not json at all",
		"```json\ntruncated {\"linguistic",
		"1,2,3]",
		`{"linguistic_analysis": "should be an object"}`,
	}
	for _, in := range inputs {
		rec := Repair(in, "alice", "test-model", testNow)
		if !rec.Fallback {
			t.Errorf("Repair(%q): fallback flag not set", in)
		}
		if rec.Error == "" && in != `{"linguistic_analysis": "should be an object"}` {
			t.Errorf("Repair(%q): expected error to be recorded", in)
		}
		assertScoreBounds(t, rec)
	}
}

func TestRepairPreservesRawOnParseFailure(t *testing.T) {
	raw := "definitely { not json"
	rec := Repair(raw, "alice", "test-model", testNow)
	if rec.RawResponse != raw {
		t.Errorf("RawResponse = %q, want original input preserved", rec.RawResponse)
	}
	if !strings.Contains(rec.Error, "malformed") {
		t.Errorf("Error = %q, want malformed-response cause", rec.Error)
	}
}

func TestRepairSentimentOpenInterval(t *testing.T) {
	cases := []struct {
		name  string
		score string
		want  float64
	}{
		{"clamped high", `1.0`, 1 - boundEpsilon},
		{"clamped low", `-1.0`, -1 + boundEpsilon},
		{"clamped above", `3.5`, 1 - boundEpsilon},
		{"exact zero nudged", `0`, boundEpsilon},
		{"numeric string", `"0.42"`, 0.42},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := `{"linguistic_analysis":{"summary":"s","subjectivity":0.5,"sentiment_score":` + tc.score + `}}`
			rec := Repair(in, "alice", "m", testNow)
			if rec.Linguistic.SentimentScore != tc.want {
				t.Errorf("score = %v, want %v", rec.Linguistic.SentimentScore, tc.want)
			}
			if rec.Fallback {
				t.Error("numeric input should not flip the fallback flag")
			}
		})
	}
}

func TestRepairSentimentResampled(t *testing.T) {
	for _, score := range []string{`"not a number"`, `null`} {
		in := `{"linguistic_analysis":{"summary":"s","sentiment_score":` + score + `}}`
		rec := Repair(in, "alice", "m", testNow)
		if !rec.Fallback {
			t.Errorf("score %s: expected fallback flag", score)
		}
		assertScoreBounds(t, rec)
	}
}

func TestRepairLabelDerivedFromScore(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{-0.9, "negative"},
		{-0.3, "negative"},
		{-0.29, "neutral"},
		{0.29, "neutral"},
		{0.3, "positive"},
		{0.9, "positive"},
	}
	for _, tc := range cases {
		if got := LabelForScore(tc.score); got != tc.want {
			t.Errorf("LabelForScore(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestRepairBogusLabelReplaced(t *testing.T) {
	in := `{"linguistic_analysis":{"summary":"s","sentiment_score":0.8,"sentiment_label":"ecstatic"}}`
	rec := Repair(in, "alice", "m", testNow)
	if rec.Linguistic.SentimentLabel != "positive" {
		t.Errorf("label = %q, want derived %q", rec.Linguistic.SentimentLabel, "positive")
	}
}

func TestRepairGraphOwnerAndPruning(t *testing.T) {
	in := `{"network_connections":{
		"nodes":[{"id":"bob_x","label":"Bob","type":"Person"}],
		"edges":[
			{"from":"profile_owner","to":"bob_x","label":"mentions"},
			{"source":"profile_owner","target":"ghost","label":"dangling"}
		]}}`
	rec := Repair(in, "alice", "m", testNow)
	g := rec.Network
	if len(g.Nodes) != 2 || g.Nodes[0].ID != ProfileOwnerID {
		t.Fatalf("owner node missing or misplaced: %+v", g.Nodes)
	}
	if len(g.Edges) != 1 {
		t.Fatalf("dangling edge not pruned: %+v", g.Edges)
	}
	if g.Edges[0].To != "bob_x" {
		t.Errorf("surviving edge = %+v", g.Edges[0])
	}
}

func TestRepairGraphAliasKeys(t *testing.T) {
	for _, key := range []string{"network_connections", "network_connections_explicit", "graph_data"} {
		in := `{"` + key + `":{"nodes":[{"id":"n1","label":"N","type":"Topic"}],"edges":[]}}`
		rec := Repair(in, "alice", "m", testNow)
		if len(rec.Network.Nodes) != 2 {
			t.Errorf("alias %q: nodes = %d, want owner plus one", key, len(rec.Network.Nodes))
		}
	}
}

func TestRepairSpeculationConfidence(t *testing.T) {
	in := `{"inferred_analysis":{"potential_interests":[
		{"label":"hiking","reasoning":"bio","confidence":"HIGH"},
		{"interest":"golang","confidence":"certain"},
		{"reasoning":"no label, skipped"}
	]}}`
	rec := Repair(in, "alice", "m", testNow)
	got := rec.Inferred.Interests
	if len(got) != 2 {
		t.Fatalf("interests = %+v, want 2 entries", got)
	}
	if got[0].Confidence != "high" {
		t.Errorf("confidence = %q, want normalized %q", got[0].Confidence, "high")
	}
	if got[1].Label != "golang" || got[1].Confidence != "low" {
		t.Errorf("alias entry = %+v", got[1])
	}
}

func TestRepairListsNeverNil(t *testing.T) {
	rec := Repair(`{}`, "alice", "m", testNow)
	if rec.Entities.Mentions == nil || rec.Linguistic.Keywords == nil ||
		rec.Inferred.Interests == nil || rec.Threat.ExtremismKeywords == nil ||
		rec.CrossPlatform == nil || rec.Suggestions.SimilarUsers == nil {
		t.Error("expected all list fields to be non-nil on empty input")
	}
	if len(rec.Network.Nodes) != 1 || rec.Network.Nodes[0].ID != ProfileOwnerID {
		t.Errorf("expected lone owner node, got %+v", rec.Network.Nodes)
	}
}

func TestNewFallbackRecord(t *testing.T) {
	rec := NewFallbackRecord("alice", "m", ErrCredentialMissing, "", testNow)
	if !rec.Fallback {
		t.Error("fallback flag not set")
	}
	if rec.Error == "" {
		t.Error("cause not recorded")
	}
	assertScoreBounds(t, rec)
}

func TestResampleAvoidsZeroBand(t *testing.T) {
	for i := 0; i < 500; i++ {
		f := resample(-1, 1)
		if f < -0.8 || f > 0.8 {
			t.Fatalf("resample out of middle band: %v", f)
		}
		if math.Abs(f) < zeroBand {
			t.Fatalf("resample landed in zero band: %v", f)
		}
	}
}

func assertScoreBounds(t *testing.T, rec Record) {
	t.Helper()
	s := rec.Linguistic.SentimentScore
	if s <= -1 || s >= 1 || s == 0 {
		t.Errorf("sentiment score %v outside open interval (-1, 1) or exactly zero", s)
	}
	subj := rec.Linguistic.Subjectivity
	if subj <= 0 || subj >= 1 {
		t.Errorf("subjectivity %v outside open interval (0, 1)", subj)
	}
}
