// Package prompts builds the per-run LLM task specifications. Each builder is
// pure text assembly; dispatch and validation live elsewhere.
package prompts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rizaldyaw/socmint/internal/domain/analysis"
)

const reportTemplate = `**Task:** Generate an "Initial Profile Reconnaissance" report based only on the provided username and biography text. Output ONLY plain text.

**Username Context:** Analyze potential implications of the username (%s) itself if relevant.
**Biography Text:** %s

**Report Structure (Use Plain Text Headings/Lists):**
1. Profile Overview: Briefly mention the username (%s).
2. Biography Summary: Summarize the key themes, stated purpose, or activities mentioned in the biography text (2-4 sentences). If empty or nonsensical, state that.
3. Sentiment Analysis: State the inferred overall sentiment of the biography text (Positive, Negative, Neutral, Mixed, or Not Applicable).
4. Key Information Extraction: List explicitly mentioned entities such as locations, organizations, projects, or skills found directly in the bio text. If none, state "No specific entities mentioned."
5. Potential Interests (Inferred): Mention 1-2 potential high-level interests that might be speculatively inferred, clearly labeled as such. If none, state "No specific interests could be reasonably inferred."
6. Concluding Remark: Note that the analysis is based solely on the provided bio text.

**Output:** Generate ONLY the plain text report. Do NOT use any markdown formatting.`

const forensicTemplate = `**Task:** Analyze the provided biography text strictly for potential digital forensic points of interest. Focus only on patterns and explicit mentions within the text provided. Do not make assumptions beyond the text. Output ONLY plain text.

**Biography Text:** %s

**Analysis Points (Use Plain Text Headings/Lists):**
1. Potential PII Indicators: Note patterns resembling PII (email formats, phone number patterns, specific location names). If none, state "No direct PII pattern indicators identified in the bio text."
2. Explicitly Mentioned Locations: List specific cities, states, countries, or landmarks mentioned. If none, state "No locations mentioned."
3. Explicit Mentions/Connections: List other usernames (@mentions) or URLs found directly in the text. If none, state "No external usernames or URLs mentioned."
4. Keywords/Themes of Interest: List 3-5 key terms or concepts directly present in the bio relevant for further investigation. If none, state "No specific keywords/themes identified."
5. Language/Tone Notes: Comment briefly if the language seems unusual, coded, highly technical, or otherwise noteworthy.

**Output:** Generate ONLY the analysis notes as plain text with simple headings and lists. No markdown. State clearly when nothing was found for a point.`

const structuredTemplate = `**Task:** Perform a detailed forensic analysis of the provided username and biography. Generate ONLY a single, valid JSON object adhering strictly to the structure below. Be exhaustive in extracting explicit graph data, even from simple bios, and clearly mark speculation.

**Username:** %q
**Biography Text:** %s

**JSON Output Structure:**
{
  "analysis_metadata": {"timestamp_utc": %q, "model_used": %q},
  "profile_context": {"username": %q, "biography_text": %s},
  "linguistic_analysis": {
    "summary": "string", "language": "string",
    "sentiment_label": "positive|neutral|negative", "sentiment_score": 0.0,
    "subjectivity": 0.0, "keywords": [], "topics": [], "writing_style_notes": "string"
  },
  "entity_extraction": {
    "mentions": [], "hashtags": [], "urls": [], "emails": [], "phone_numbers": [],
    "locations": [], "organizations": [], "persons": [], "technologies_tools": [], "projects_products": []
  },
  "network_connections": {
    "nodes": [{"id": "profile_owner", "label": %q, "type": "ProfileOwner"}],
    "edges": []
  },
  "inferred_analysis": {
    "potential_interests": [{"label": "string", "reasoning": "string", "confidence": "low|medium|high"}],
    "potential_affiliations": [], "potential_skills": [], "potential_locations": []
  },
  "threat_indicators": {
    "violent_extremism_keywords": [], "misinformation_themes": [],
    "hate_speech_indicators": [], "self_harm_indicators": [],
    "overall_risk_assessment": "string"
  },
  "cross_platform_links": [{"platform": "string", "identifier": "string", "reasoning": "string"}],
  "investigation_suggestions": {
    "similar_users_suggested": [{"suggestion": "string", "reasoning": "string"}],
    "relevant_hashtags_suggested": [{"suggestion": "string", "reasoning": "string"}],
    "topics_to_monitor": []
  }
}

**Instructions & Constraints:**
1. Populate every field. Use empty lists when no data applies.
2. sentiment_score in (-1, 1) and never exactly 0; subjectivity in (0, 1).
3. Interpret every activity, skill, or concept stated in the bio as an explicit node and connect it to profile_owner with an appropriate relationship label. Always include profile_owner.
4. Mark inferred/generated sections as speculative and populate them even for sparse bios.
5. Output MUST be a single valid JSON object. No extra text, comments, or code fences.`

// ReportTask builds the narrative reconnaissance report task.
func ReportTask(model, username, biography string) analysis.Task {
	return analysis.Task{
		ID:          analysis.TaskReport,
		Prompt:      fmt.Sprintf(reportTemplate, username, quote(biography), username),
		Model:       model,
		MaxTokens:   1000,
		Temperature: 0.5,
	}
}

// ForensicTask builds the forensic points-of-interest task.
func ForensicTask(model, biography string) analysis.Task {
	return analysis.Task{
		ID:          analysis.TaskForensicNotes,
		Prompt:      fmt.Sprintf(forensicTemplate, quote(biography)),
		Model:       model,
		MaxTokens:   1000,
		Temperature: 0.4,
	}
}

// StructuredTask builds the structured JSON extraction task. The biography is
// JSON-escaped before embedding so quotes in bios cannot break the prompt.
func StructuredTask(model, username, biography string, now time.Time) analysis.Task {
	escaped := quote(biography)
	timestamp := now.UTC().Format(time.RFC3339)
	return analysis.Task{
		ID: analysis.TaskStructured,
		Prompt: fmt.Sprintf(structuredTemplate,
			username, escaped,
			timestamp, model,
			username, escaped,
			username),
		Model:       model,
		MaxTokens:   6000,
		Temperature: 0.5,
	}
}

func quote(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
