// Package evidence defines the preserved-artifact model: collected items,
// their integrity sidecars, and the append-only case log events.
package evidence

// Item is one unit of collected content. Created once at collection time and
// never mutated; preservation only wraps it.
type Item struct {
	ID          string `json:"id"`
	Platform    string `json:"platform"`
	Target      string `json:"target"`
	CollectedAt string `json:"collected_at_utc"`
	Content     string `json:"content"`
	SourceURL   string `json:"source_url"`
	Query       string `json:"collection_query,omitempty"`
}

// Metadata is the integrity sidecar written one-to-one with an Item. It is
// never modified after creation; corrections create new items, not edits.
type Metadata struct {
	DataFilename        string         `json:"data_filename"`
	CollectionTimestamp string         `json:"collection_timestamp_utc"`
	HashAlgorithm       string         `json:"hash_algorithm"`
	DataHash            string         `json:"data_hash"`
	CollectionMethod    string         `json:"collection_method"`
	SourcePlatform      string         `json:"source_platform"`
	TargetIdentifier    string         `json:"target_identifier"`
	Parameters          map[string]any `json:"collection_parameters"`
}

// Event types in the forensic log.
const (
	EventBatchStart       = "BATCH_START"
	EventItemPreservation = "ITEM_PRESERVATION"
	EventError            = "ERROR"
	EventBatchEnd         = "BATCH_END"
)

// LogEvent is one record in the append-only per-case journal. Events are only
// ever added, never edited or removed.
type LogEvent struct {
	Timestamp string `json:"log_timestamp_utc"`
	Actor     string `json:"actor"`
	Type      string `json:"event_type"`

	CaseName  string   `json:"case_name,omitempty"`
	BatchID   string   `json:"batch_id,omitempty"`
	Target    string   `json:"target,omitempty"`
	Platforms []string `json:"platforms,omitempty"`
	ItemCount int      `json:"item_count,omitempty"`

	ItemID           string `json:"item_id,omitempty"`
	DataFilename     string `json:"data_filename,omitempty"`
	MetadataFilename string `json:"metadata_filename,omitempty"`
	DataHash         string `json:"data_hash,omitempty"`
	SourceURL        string `json:"source_url,omitempty"`

	Stage  string `json:"stage,omitempty"`
	Error  string `json:"error_message,omitempty"`
	Status string `json:"status,omitempty"`

	PreservedCount int `json:"items_preserved_count,omitempty"`
}

// CollectionContext describes how a batch of items was gathered.
type CollectionContext struct {
	Target     string
	Platforms  []string
	Method     string
	Parameters map[string]any
}

// PreservedItemSummary reports one successfully preserved item.
type PreservedItemSummary struct {
	ItemID       string `json:"item_id"`
	DataFile     string `json:"data_file"`
	MetadataFile string `json:"metadata_file"`
	Hash         string `json:"hash"`
}
