package agentcortex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/oklog/ulid/v2"
)

// SnapshotVersion is the export format version this build reads and
// writes.
const SnapshotVersion = "1.0"

// exportLimit bounds how many episodic records one snapshot carries.
const exportLimit = 10000

// ErrInvalidSnapshot reports a malformed snapshot on import. Import
// fails fast on it; nothing has been written.
var ErrInvalidSnapshot = errors.New("invalid memory snapshot")

// SnapshotRecord is one exported episodic record.
type SnapshotRecord struct {
	Content    string         `json:"content"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"created_at"`
	Importance int            `json:"importance"`
}

// Snapshot is a portable dump of an agent's episodic memory. The
// working window is session-scoped and semantic entries are
// re-derivable from episodic content, so neither tier is included.
type Snapshot struct {
	Version    string           `json:"version"`
	SnapshotID string           `json:"snapshot_id"`
	AgentID    string           `json:"agent_id"`
	ExportedAt time.Time        `json:"exported_at"`
	Episodic   []SnapshotRecord `json:"episodic"`
}

// Export dumps the episodic tier into a snapshot.
func (s *MemoryStore) Export(ctx context.Context) (*Snapshot, error) {
	records, err := s.log.RecallRecent(ctx, exportLimit)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	snap := &Snapshot{
		Version:    SnapshotVersion,
		SnapshotID: ulid.Make().String(),
		AgentID:    s.cfg.AgentID,
		ExportedAt: time.Now().UTC(),
		Episodic:   make([]SnapshotRecord, 0, len(records)),
	}
	for _, r := range records {
		snap.Episodic = append(snap.Episodic, SnapshotRecord{
			Content:    r.Content,
			Metadata:   r.Metadata,
			CreatedAt:  r.CreatedAt,
			Importance: r.Importance,
		})
	}
	return snap, nil
}

// ExportTo writes the snapshot to w as indented JSON.
func (s *MemoryStore) ExportTo(ctx context.Context, w io.Writer) error {
	snap, err := s.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// Import restores episodic records from a snapshot and reports how
// many were written. With merge false the namespace is cleared first,
// making the result an exact restoration; with merge true the records
// land alongside existing ones. Timestamps are re-stamped on insert.
// Importing a snapshot taken under a different agent id is allowed.
func (s *MemoryStore) Import(ctx context.Context, snap *Snapshot, merge bool) (int, error) {
	if err := validateSnapshot(snap); err != nil {
		return 0, err
	}
	if !merge {
		if err := s.log.Clear(ctx); err != nil {
			return 0, fmt.Errorf("clear before import: %w", err)
		}
	}

	imported := 0
	for _, r := range snap.Episodic {
		importance := r.Importance
		if importance == 0 {
			importance = DefaultImportance
		}
		if err := s.log.Store(ctx, r.Content, r.Metadata, importance); err != nil {
			return imported, fmt.Errorf("import record: %w", err)
		}
		imported++
	}
	return imported, nil
}

// ImportFrom decodes a snapshot from r and imports it.
func (s *MemoryStore) ImportFrom(ctx context.Context, r io.Reader, merge bool) (int, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return s.Import(ctx, &snap, merge)
}

func validateSnapshot(snap *Snapshot) error {
	switch {
	case snap == nil:
		return fmt.Errorf("%w: nil snapshot", ErrInvalidSnapshot)
	case snap.Version == "":
		return fmt.Errorf("%w: missing version", ErrInvalidSnapshot)
	case snap.Version != SnapshotVersion:
		return fmt.Errorf("%w: unsupported version %q", ErrInvalidSnapshot, snap.Version)
	case snap.AgentID == "":
		return fmt.Errorf("%w: missing agent id", ErrInvalidSnapshot)
	}
	return nil
}
