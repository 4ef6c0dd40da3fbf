package casefs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rizaldyaw/socmint/internal/domain/evidence"
)

const timestampFormat = "2006-01-02T15:04:05Z"

// Preserver writes collected items, their integrity sidecars, and the
// append-only forensic log for a case. Writes to a given case's log are
// serialized; different cases proceed fully in parallel.
type Preserver struct {
	store *Store
	actor string
	now   func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewPreserver creates a Preserver recording actor as the log event author.
func NewPreserver(store *Store, actor string) *Preserver {
	if actor == "" {
		actor = "socmint"
	}
	return &Preserver{
		store: store,
		actor: actor,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

func (p *Preserver) caseLock(name string) *sync.Mutex {
	p.mu.Lock()
	defer p.mu.Unlock()
	l, ok := p.locks[name]
	if !ok {
		l = &sync.Mutex{}
		p.locks[name] = l
	}
	return l
}

// Preserve runs the per-item pipeline Collected → Written → Hashed →
// MetadataWritten → Logged for every item in the batch. A failing item is
// logged as an ERROR event and skipped; the batch always runs to completion.
// Only structural failures (bad case name, unusable case layout) return an
// error.
func (p *Preserver) Preserve(caseName string, items []evidence.Item, cctx evidence.CollectionContext) ([]evidence.PreservedItemSummary, error) {
	paths, err := p.store.Ensure(caseName)
	if err != nil {
		return nil, err
	}

	lock := p.caseLock(paths.Name)
	lock.Lock()
	defer lock.Unlock()

	logPath := filepath.Join(paths.Metadata, "forensic_log.jsonl")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("casefs: open forensic log: %w", err)
	}
	defer logFile.Close()

	batchID := uuid.New().String()
	p.appendEvent(logFile, evidence.LogEvent{
		Type:      evidence.EventBatchStart,
		CaseName:  paths.Name,
		BatchID:   batchID,
		Target:    cctx.Target,
		Platforms: cctx.Platforms,
		ItemCount: len(items),
	})

	summary := []evidence.PreservedItemSummary{}
	for i, item := range items {
		itemID := item.ID
		if itemID == "" {
			itemID = fmt.Sprintf("item_%d_%s", i, uuid.New().String())
		}
		if err := p.preserveItem(paths.Data, paths.Metadata, itemID, item, cctx, logFile, batchID, &summary); err != nil {
			slog.Error("item preservation failed",
				slog.String("case", paths.Name),
				slog.String("item_id", itemID),
				slog.String("error", err.Error()))
			p.appendEvent(logFile, evidence.LogEvent{
				Type:     evidence.EventError,
				CaseName: paths.Name,
				BatchID:  batchID,
				ItemID:   itemID,
				Stage:    "preservation",
				Error:    err.Error(),
			})
		}
	}

	p.appendEvent(logFile, evidence.LogEvent{
		Type:           evidence.EventBatchEnd,
		CaseName:       paths.Name,
		BatchID:        batchID,
		PreservedCount: len(summary),
	})
	return summary, nil
}

func (p *Preserver) preserveItem(dataDir, metaDir, itemID string, item evidence.Item, cctx evidence.CollectionContext, logFile *os.File, batchID string, summary *[]evidence.PreservedItemSummary) error {
	dataFilename := itemID + ".json"
	metaFilename := itemID + "_meta.json"

	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dataDir, dataFilename), data, 0o644); err != nil {
		return fmt.Errorf("write data file: %w", err)
	}

	hash, err := CanonicalHash(item)
	if err != nil {
		return err
	}

	platform := item.Platform
	if platform == "" {
		platform = "unknown"
	}
	method := cctx.Method
	if method == "" {
		method = "unknown"
	}
	params := cctx.Parameters
	if params == nil {
		params = map[string]any{}
	}
	meta := evidence.Metadata{
		DataFilename:        dataFilename,
		CollectionTimestamp: p.now().UTC().Format(timestampFormat),
		HashAlgorithm:       HashAlgorithm,
		DataHash:            hash,
		CollectionMethod:    method,
		SourcePlatform:      platform,
		TargetIdentifier:    cctx.Target,
		Parameters:          params,
	}
	metaBytes, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	// Sidecar is written before moving on so a crash mid-batch loses at most
	// the current item.
	if err := os.WriteFile(filepath.Join(metaDir, metaFilename), metaBytes, 0o644); err != nil {
		return fmt.Errorf("write metadata file: %w", err)
	}

	p.appendEvent(logFile, evidence.LogEvent{
		Type:             evidence.EventItemPreservation,
		BatchID:          batchID,
		ItemID:           itemID,
		DataFilename:     dataFilename,
		MetadataFilename: metaFilename,
		DataHash:         hash,
		SourceURL:        item.SourceURL,
	})

	*summary = append(*summary, evidence.PreservedItemSummary{
		ItemID:       itemID,
		DataFile:     dataFilename,
		MetadataFile: metaFilename,
		Hash:         hash,
	})
	return nil
}

// appendEvent writes one self-contained JSON line. The line is emitted in a
// single Write so a reader never sees interleaved fragments from one case.
func (p *Preserver) appendEvent(f *os.File, ev evidence.LogEvent) {
	ev.Timestamp = p.now().UTC().Format(timestampFormat)
	ev.Actor = p.actor
	line, err := json.Marshal(ev)
	if err != nil {
		slog.Error("forensic log marshal failed", slog.String("error", err.Error()))
		return
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		slog.Error("forensic log write failed", slog.String("error", err.Error()))
	}
}
