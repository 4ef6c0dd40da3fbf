package analysis

import "time"

// Record is the fixed schema every structured-extraction response is coerced
// into. All sections are always present after Repair; consumers never branch
// on missing keys.
type Record struct {
	Metadata       RecordMetadata  `json:"analysis_metadata"`
	ProfileContext ProfileContext  `json:"profile_context"`
	Linguistic     Linguistic      `json:"linguistic_analysis"`
	Entities       Entities        `json:"entity_extraction"`
	Network        Graph           `json:"network_connections"`
	Inferred       Inferred        `json:"inferred_analysis"`
	Threat         Threat          `json:"threat_indicators"`
	CrossPlatform  []PlatformLink  `json:"cross_platform_links"`
	Suggestions    Suggestions     `json:"investigation_suggestions"`

	// Error holds the parse/validation diagnostic when repair had to step in.
	Error string `json:"error,omitempty"`
	// Fallback is true when any value was synthesized rather than extracted.
	Fallback bool `json:"fallback,omitempty"`
	// RawResponse preserves the unparseable upstream text for audit.
	RawResponse string `json:"raw_response,omitempty"`
}

type RecordMetadata struct {
	TimestampUTC string `json:"timestamp_utc"`
	Model        string `json:"model_used"`
}

type ProfileContext struct {
	Username  string `json:"username"`
	Biography string `json:"biography_text"`
}

type Linguistic struct {
	Summary           string   `json:"summary"`
	Language          string   `json:"language"`
	SentimentLabel    string   `json:"sentiment_label"`
	SentimentScore    float64  `json:"sentiment_score"`
	Subjectivity      float64  `json:"subjectivity"`
	Keywords          []string `json:"keywords"`
	Topics            []string `json:"topics"`
	WritingStyleNotes string   `json:"writing_style_notes"`
}

type Entities struct {
	Mentions      []string `json:"mentions"`
	Hashtags      []string `json:"hashtags"`
	URLs          []string `json:"urls"`
	Emails        []string `json:"emails"`
	PhoneNumbers  []string `json:"phone_numbers"`
	Locations     []string `json:"locations"`
	Organizations []string `json:"organizations"`
	Persons       []string `json:"persons"`
	Technologies  []string `json:"technologies_tools"`
	Projects      []string `json:"projects_products"`
}

// Speculation is one inferred item with its reasoning and confidence.
type Speculation struct {
	Label      string `json:"label"`
	Reasoning  string `json:"reasoning"`
	Confidence string `json:"confidence"`
}

type Inferred struct {
	Interests    []Speculation `json:"potential_interests"`
	Affiliations []Speculation `json:"potential_affiliations"`
	Skills       []Speculation `json:"potential_skills"`
	Locations    []Speculation `json:"potential_locations"`
}

type Threat struct {
	ExtremismKeywords    []string `json:"violent_extremism_keywords"`
	MisinformationThemes []string `json:"misinformation_themes"`
	HateSpeechIndicators []string `json:"hate_speech_indicators"`
	SelfHarmIndicators   []string `json:"self_harm_indicators"`
	OverallAssessment    string   `json:"overall_risk_assessment"`
}

type PlatformLink struct {
	Platform   string `json:"platform"`
	Identifier string `json:"identifier"`
	Reasoning  string `json:"reasoning"`
}

// Suggestion pairs a speculative lead with the reasoning behind it.
type Suggestion struct {
	Suggestion string `json:"suggestion"`
	Reasoning  string `json:"reasoning"`
}

type Suggestions struct {
	SimilarUsers    []Suggestion `json:"similar_users_suggested"`
	Hashtags        []Suggestion `json:"relevant_hashtags_suggested"`
	TopicsToMonitor []string     `json:"topics_to_monitor"`
}

// emptyRecord returns a Record with every list non-nil and the fixed sections
// stamped, so serialized output always carries the full shape.
func emptyRecord(username, model string, now time.Time) Record {
	return Record{
		Metadata: RecordMetadata{
			TimestampUTC: now.UTC().Format(time.RFC3339),
			Model:        model,
		},
		ProfileContext: ProfileContext{Username: username},
		Linguistic: Linguistic{
			Keywords: []string{},
			Topics:   []string{},
		},
		Entities: Entities{
			Mentions:      []string{},
			Hashtags:      []string{},
			URLs:          []string{},
			Emails:        []string{},
			PhoneNumbers:  []string{},
			Locations:     []string{},
			Organizations: []string{},
			Persons:       []string{},
			Technologies:  []string{},
			Projects:      []string{},
		},
		Network: Graph{
			Nodes: []Node{OwnerNode(username)},
			Edges: []Edge{},
		},
		Inferred: Inferred{
			Interests:    []Speculation{},
			Affiliations: []Speculation{},
			Skills:       []Speculation{},
			Locations:    []Speculation{},
		},
		Threat: Threat{
			ExtremismKeywords:    []string{},
			MisinformationThemes: []string{},
			HateSpeechIndicators: []string{},
			SelfHarmIndicators:   []string{},
		},
		CrossPlatform: []PlatformLink{},
		Suggestions: Suggestions{
			SimilarUsers:    []Suggestion{},
			Hashtags:        []Suggestion{},
			TopicsToMonitor: []string{},
		},
	}
}
