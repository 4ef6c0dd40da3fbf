package analysis

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"
)

// Sentiment label thresholds shared with the report layer.
const (
	SentimentNegativeThreshold = -0.3
	SentimentPositiveThreshold = 0.3
)

const (
	boundEpsilon = 0.001
	zeroBand     = 0.05
)

// StripFences removes a surrounding markdown code fence (```json ... ``` or
// bare ``` ... ```) from an LLM reply.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// Repair coerces a raw structured-extraction reply into a fully populated
// Record. Malformed input never produces an error: parse failures yield a
// fallback-populated record with Error set and the raw text preserved for
// audit. Missing fields are filled with type-appropriate defaults; bounded
// scores are clamped into strict open intervals. Repair is deterministic for
// the same input except where a randomized fallback value is synthesized, and
// any synthesized value flips the Fallback flag.
func Repair(raw, username, model string, now time.Time) Record {
	rec := emptyRecord(username, model, now)
	text := StripFences(raw)
	if text == "" {
		rec.Error = "empty response"
		fillFallback(&rec)
		return rec
	}

	var m map[string]any
	if err := json.Unmarshal([]byte(text), &m); err != nil {
		rec.Error = fmt.Sprintf("%v: %v", ErrMalformedResponse, err)
		rec.RawResponse = raw
		fillFallback(&rec)
		return rec
	}

	if msg, ok := asString(m, "error"); ok && msg != "" {
		rec.Error = msg
	}

	if meta := childMap(m, "analysis_metadata"); meta != nil {
		if ts, ok := asString(meta, "timestamp_utc"); ok {
			rec.Metadata.TimestampUTC = ts
		}
		if mu, ok := asString(meta, "model_used"); ok {
			rec.Metadata.Model = mu
		}
	}
	if pc := childMap(m, "profile_context"); pc != nil {
		if u, ok := asString(pc, "username"); ok && u != "" {
			rec.ProfileContext.Username = u
		}
		if bio, ok := asString(pc, "biography_text"); ok {
			rec.ProfileContext.Biography = bio
		}
	}

	repairLinguistic(&rec, childMap(m, "linguistic_analysis"))
	repairEntities(&rec, childMap(m, "entity_extraction"))
	repairGraph(&rec, childMap(m, "network_connections", "network_connections_explicit", "graph_data"), username)
	repairInferred(&rec, childMap(m, "inferred_analysis"))
	repairThreat(&rec, childMap(m, "threat_indicators", "threat_indicators_potential"))
	repairCrossPlatform(&rec, m)
	repairSuggestions(&rec, childMap(m, "investigation_suggestions", "suggestions_for_investigation"))

	return rec
}

// NewFallbackRecord builds a record for a run whose structured task never
// produced output (credential missing, timeout, transport failure).
func NewFallbackRecord(username, model string, cause error, raw string, now time.Time) Record {
	rec := emptyRecord(username, model, now)
	rec.Error = cause.Error()
	rec.RawResponse = raw
	fillFallback(&rec)
	return rec
}

// LabelForScore derives a sentiment label from a compound score.
func LabelForScore(score float64) string {
	switch {
	case score <= SentimentNegativeThreshold:
		return "negative"
	case score >= SentimentPositiveThreshold:
		return "positive"
	default:
		return "neutral"
	}
}

func fillFallback(rec *Record) {
	rec.Fallback = true
	rec.Linguistic.SentimentScore = resample(-1, 1)
	rec.Linguistic.SentimentLabel = LabelForScore(rec.Linguistic.SentimentScore)
	rec.Linguistic.Subjectivity = resample(0, 1)
	rec.Linguistic.Summary = "Analysis incomplete; fallback values synthesized."
	rec.Linguistic.Language = "unknown"
}

func repairLinguistic(rec *Record, m map[string]any) {
	if m == nil {
		fillFallback(rec)
		return
	}
	if s, ok := asString(m, "summary"); ok && s != "" {
		rec.Linguistic.Summary = s
	} else {
		rec.Linguistic.Summary = "No summary provided."
	}
	if s, ok := asString(m, "language"); ok && s != "" {
		rec.Linguistic.Language = s
	} else {
		rec.Linguistic.Language = "unknown"
	}
	if s, ok := asString(m, "writing_style_notes"); ok {
		rec.Linguistic.WritingStyleNotes = s
	}
	rec.Linguistic.Keywords = asStringList(m, "keywords")
	rec.Linguistic.Topics = asStringList(m, "topics")

	score, synthesized := sanitizeScore(m, "sentiment_score", "sentiment_overall_score", -1, 1)
	rec.Linguistic.SentimentScore = score
	if synthesized {
		rec.Fallback = true
	}
	label, ok := asString(m, "sentiment_label")
	if !ok {
		label, ok = asString(m, "sentiment_overall_label")
	}
	label = strings.ToLower(strings.TrimSpace(label))
	switch label {
	case "positive", "neutral", "negative":
		rec.Linguistic.SentimentLabel = label
	default:
		rec.Linguistic.SentimentLabel = LabelForScore(score)
	}

	subj, synthesized := sanitizeScore(m, "subjectivity", "", 0, 1)
	rec.Linguistic.Subjectivity = subj
	if synthesized {
		rec.Fallback = true
	}
}

func repairEntities(rec *Record, m map[string]any) {
	if m == nil {
		return
	}
	rec.Entities.Mentions = asStringList(m, "mentions")
	rec.Entities.Hashtags = asStringList(m, "hashtags")
	rec.Entities.URLs = asStringList(m, "urls")
	rec.Entities.Emails = asStringList(m, "emails")
	rec.Entities.PhoneNumbers = asStringList(m, "phone_numbers")
	rec.Entities.Locations = asStringList(m, "locations")
	rec.Entities.Organizations = asStringList(m, "organizations")
	rec.Entities.Persons = asStringList(m, "persons")
	rec.Entities.Technologies = asStringList(m, "technologies_tools")
	rec.Entities.Projects = asStringList(m, "projects_products")
}

func repairGraph(rec *Record, m map[string]any, owner string) {
	if m == nil {
		return
	}
	g := Graph{Nodes: []Node{}, Edges: []Edge{}}
	if raw, ok := m["nodes"].([]any); ok {
		for _, v := range raw {
			nm, ok := v.(map[string]any)
			if !ok {
				continue
			}
			id, _ := asString(nm, "id")
			if id == "" {
				continue
			}
			label, _ := asString(nm, "label")
			typ, _ := asString(nm, "type")
			g.Nodes = append(g.Nodes, Node{ID: id, Label: label, Type: typ})
		}
	}
	if raw, ok := m["edges"].([]any); ok {
		for _, v := range raw {
			em, ok := v.(map[string]any)
			if !ok {
				continue
			}
			from, _ := asString(em, "from")
			if from == "" {
				from, _ = asString(em, "source")
			}
			to, _ := asString(em, "to")
			if to == "" {
				to, _ = asString(em, "target")
			}
			label, _ := asString(em, "label")
			ctx, _ := asString(em, "context")
			g.Edges = append(g.Edges, Edge{From: from, To: to, Label: label, Context: ctx})
		}
	}
	g.EnsureOwner(owner)
	g.PruneEdges()
	rec.Network = g
}

func repairInferred(rec *Record, m map[string]any) {
	if m == nil {
		return
	}
	rec.Inferred.Interests = asSpeculations(m, "potential_interests", "interest")
	rec.Inferred.Affiliations = asSpeculations(m, "potential_affiliations", "affiliation")
	rec.Inferred.Skills = asSpeculations(m, "potential_skills", "skill")
	rec.Inferred.Locations = asSpeculations(m, "potential_locations", "location")
}

func repairThreat(rec *Record, m map[string]any) {
	if m == nil {
		return
	}
	rec.Threat.ExtremismKeywords = asStringList(m, "violent_extremism_keywords")
	rec.Threat.MisinformationThemes = asStringList(m, "misinformation_themes")
	rec.Threat.HateSpeechIndicators = asStringList(m, "hate_speech_indicators")
	rec.Threat.SelfHarmIndicators = asStringList(m, "self_harm_indicators")
	if s, ok := asString(m, "overall_risk_assessment"); ok {
		rec.Threat.OverallAssessment = s
	} else if s, ok := asString(m, "overall_risk_assessment_llm"); ok {
		rec.Threat.OverallAssessment = s
	}
}

func repairCrossPlatform(rec *Record, m map[string]any) {
	raw, ok := m["cross_platform_links"].([]any)
	if !ok {
		raw, ok = m["cross_platform_links_potential"].([]any)
	}
	if !ok {
		return
	}
	links := []PlatformLink{}
	for _, v := range raw {
		lm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		platform, _ := asString(lm, "platform")
		identifier, _ := asString(lm, "identifier")
		if platform == "" && identifier == "" {
			continue
		}
		reasoning, _ := asString(lm, "reasoning")
		links = append(links, PlatformLink{Platform: platform, Identifier: identifier, Reasoning: reasoning})
	}
	rec.CrossPlatform = links
}

func repairSuggestions(rec *Record, m map[string]any) {
	if m == nil {
		return
	}
	rec.Suggestions.SimilarUsers = asSuggestionList(m, "similar_users_suggested", "similar_users")
	rec.Suggestions.Hashtags = asSuggestionList(m, "relevant_hashtags_suggested", "similar_hashtags")
	rec.Suggestions.TopicsToMonitor = asStringList(m, "topics_to_monitor")
}

// sanitizeScore pulls a bounded score out of m, resampling when the value is
// missing or non-numeric and clamping out-of-range values just inside the
// bounds. The returned value is never exactly lo, hi, or zero. The second
// return reports whether the value was synthesized.
func sanitizeScore(m map[string]any, key, altKey string, lo, hi float64) (float64, bool) {
	v, ok := m[key]
	if !ok && altKey != "" {
		v, ok = m[altKey]
	}
	f, numeric := toFloat(v)
	if !ok || !numeric {
		return resample(lo, hi), true
	}
	if f <= lo {
		f = lo + boundEpsilon
	}
	if f >= hi {
		f = hi - boundEpsilon
	}
	if f == 0 {
		f = boundEpsilon
	}
	return f, false
}

// resample draws a plausible value from the middle 80% of (lo, hi), avoiding
// the near-zero band so sentiment-like consumers never see ~0.
func resample(lo, hi float64) float64 {
	margin := (hi - lo) * 0.1
	for {
		f := lo + margin + rand.Float64()*(hi-lo-2*margin)
		if math.Abs(f) >= zeroBand {
			return f
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func childMap(m map[string]any, keys ...string) map[string]any {
	for _, k := range keys {
		if child, ok := m[k].(map[string]any); ok {
			return child
		}
	}
	return nil
}

func asString(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func asStringList(m map[string]any, key string) []string {
	out := []string{}
	raw, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, v := range raw {
		switch s := v.(type) {
		case string:
			if s != "" {
				out = append(out, s)
			}
		case float64:
			out = append(out, strconv.FormatFloat(s, 'g', -1, 64))
		}
	}
	return out
}

// asSpeculations reads a list of {label|<alias>, reasoning, confidence}
// objects, tolerating the per-section label key the prompt uses.
func asSpeculations(m map[string]any, key, labelAlias string) []Speculation {
	out := []Speculation{}
	raw, ok := m[key].([]any)
	if !ok {
		return out
	}
	for _, v := range raw {
		sm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		label, _ := asString(sm, "label")
		if label == "" {
			label, _ = asString(sm, labelAlias)
		}
		if label == "" {
			continue
		}
		reasoning, _ := asString(sm, "reasoning")
		confidence, _ := asString(sm, "confidence")
		switch strings.ToLower(confidence) {
		case "low", "medium", "high":
			confidence = strings.ToLower(confidence)
		default:
			confidence = "low"
		}
		out = append(out, Speculation{Label: label, Reasoning: reasoning, Confidence: confidence})
	}
	return out
}

func asSuggestionList(m map[string]any, keys ...string) []Suggestion {
	out := []Suggestion{}
	var raw []any
	for _, k := range keys {
		if list, ok := m[k].([]any); ok {
			raw = list
			break
		}
	}
	for _, v := range raw {
		sm, ok := v.(map[string]any)
		if !ok {
			continue
		}
		suggestion, _ := asString(sm, "suggestion")
		if suggestion == "" {
			continue
		}
		reasoning, _ := asString(sm, "reasoning")
		out = append(out, Suggestion{Suggestion: suggestion, Reasoning: reasoning})
	}
	return out
}
