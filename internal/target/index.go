// SKU identity index over the target catalog's current contents.
package target

import (
	"context"
	"fmt"
	"strings"

	"github.com/mesh-intelligence/portage/internal/logger"
)

// MetadataKey is the metadata sub-object on target records owned by the
// migration. It carries the source system snapshot, including the SKU used
// for identity resolution.
const MetadataKey = "legacy"

// Entry points at one target record reachable under a normalized SKU.
type Entry struct {
	ID       string
	Metadata map[string]any
}

// Index maps normalized SKUs to target records. It is single-owner mutable
// state: built once before the reconciliation loop, then read and updated by
// that same serialized loop, so no locking is needed.
type Index struct {
	entries    map[string]Entry
	collisions int
	log        *logger.Logger
}

// NewIndex returns an empty index.
func NewIndex(log *logger.Logger) *Index {
	return &Index{
		entries: make(map[string]Entry),
		log:     log.With("component", "index"),
	}
}

// NormalizeSKU case-folds and trims an identity key. Index reads and writes
// both go through this normalization.
func NormalizeSKU(sku string) string {
	return strings.ToLower(strings.TrimSpace(sku))
}

// BuildIndex pages through the target catalog and registers every record
// under its own metadata SKU and every nested variant SKU, so a lookup by
// any known SKU resolves to the owning top-level record. A transport failure
// aborts indexing: reconciling against a partial index would turn existing
// records into duplicate creates.
func BuildIndex(ctx context.Context, client *Client, pageSize int, log *logger.Logger) (*Index, error) {
	idx := NewIndex(log)
	offset := 0
	for {
		page, err := client.List(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("listing target records at offset %d: %w", offset, err)
		}
		if len(page.Items) == 0 {
			break
		}
		for _, item := range page.Items {
			idx.registerRecord(item)
		}
		offset += len(page.Items)
		if offset >= page.Count {
			break
		}
	}
	idx.log.Info("identity index built", "entries", idx.Len(), "collisions", idx.collisions)
	return idx, nil
}

// registerRecord indexes one target record under all of its known SKUs.
func (ix *Index) registerRecord(rec Record) {
	entry := Entry{ID: rec.ID, Metadata: rec.Metadata}
	if sku := metadataSKU(rec.Metadata); sku != "" {
		ix.Register(sku, entry)
	}
	for _, v := range rec.Variants {
		if v.SKU != "" {
			ix.Register(v.SKU, entry)
		}
	}
}

// Register maps a SKU to a target record. When two distinct records claim
// the same normalized key the last registration wins and the collision is
// logged loudly; the earlier record becomes unreachable for updates.
func (ix *Index) Register(sku string, entry Entry) {
	key := NormalizeSKU(sku)
	if key == "" {
		return
	}
	if existing, ok := ix.entries[key]; ok && existing.ID != entry.ID {
		ix.collisions++
		ix.log.Warn("identity collision, last registration wins",
			"sku", key, "kept", entry.ID, "displaced", existing.ID)
	}
	ix.entries[key] = entry
}

// Lookup resolves a SKU to its target record, if any.
func (ix *Index) Lookup(sku string) (Entry, bool) {
	entry, ok := ix.entries[NormalizeSKU(sku)]
	return entry, ok
}

// Len returns the number of distinct normalized SKUs indexed.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Collisions returns how many cross-record SKU collisions were observed.
func (ix *Index) Collisions() int {
	return ix.collisions
}

// metadataSKU extracts the migration-owned SKU from a record's metadata.
func metadataSKU(metadata map[string]any) string {
	sub, ok := metadata[MetadataKey].(map[string]any)
	if !ok {
		return ""
	}
	sku, _ := sub["sku"].(string)
	return sku
}
