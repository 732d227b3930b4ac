// Package migrate drives the reconciliation of the legacy catalog against
// the target system: all lookups and the identity index are materialized up
// front, then records are processed one at a time in source order. The run
// always completes; failures are per record and reported through RunResult.
package migrate

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/portage/internal/canonical"
	"github.com/mesh-intelligence/portage/internal/eav"
	"github.com/mesh-intelligence/portage/internal/logger"
	"github.com/mesh-intelligence/portage/internal/target"
	"github.com/mesh-intelligence/portage/pkg/types"
)

// Runner orchestrates one migration run.
type Runner struct {
	cfg    types.Config
	store  *eav.Store
	client *target.Client
	log    *logger.Logger
}

// NewRunner wires a runner over an open source store and target client.
func NewRunner(cfg types.Config, store *eav.Store, client *target.Client, log *logger.Logger) *Runner {
	return &Runner{cfg: cfg, store: store, client: client, log: log.With("component", "migrate")}
}

// Run executes the migration. Errors returned here are fatal (configuration,
// source connectivity, index build); everything after the reconciliation
// loop starts is captured per record instead.
func (r *Runner) Run(ctx context.Context) (types.RunResult, error) {
	runID, err := uuid.NewV7()
	if err != nil {
		return types.RunResult{}, fmt.Errorf("generating run id: %w", err)
	}
	result := types.RunResult{RunID: runID.String()}
	log := r.log.With("run_id", result.RunID)

	entityTypeID, err := r.store.EntityTypeID(ctx, eav.ProductEntityType)
	if err != nil {
		return result, err
	}
	defs, err := r.store.AttributeDefinitions(ctx, entityTypeID)
	if err != nil {
		return result, err
	}
	records, err := r.store.Records(ctx)
	if err != nil {
		return result, err
	}
	attrs, err := r.store.ResolveAttributeValues(ctx, defs, records)
	if err != nil {
		return result, err
	}
	names, err := r.store.CategoryNames(ctx)
	if err != nil {
		return result, err
	}
	categories, err := r.store.CategoryLinks(ctx, names)
	if err != nil {
		return result, err
	}
	media, err := r.store.MediaAssets(ctx)
	if err != nil {
		return result, err
	}
	log.Info("source catalog loaded",
		"records", len(records), "attributes", len(defs), "categories", len(names))

	idx, err := target.BuildIndex(ctx, r.client, r.cfg.Target.PageSize, log)
	if err != nil {
		return result, err
	}

	for _, rec := range records {
		// Cancellation aborts between records, never mid-record.
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("run cancelled: %w", err)
		}

		if strings.TrimSpace(rec.SKU) == "" {
			result.Skipped++
			log.Debug("skipping record without identity", "entity_id", rec.EntityID)
			continue
		}

		record := canonical.Build(rec, attrs[rec.EntityID], categories[rec.EntityID], media[rec.EntityID])
		created, err := r.reconcile(ctx, idx, record)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", record.Identity, err))
			log.Error("record failed", "sku", record.Identity, "error", err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Updated++
		}
	}

	log.Info("run complete",
		"created", result.Created, "updated", result.Updated,
		"skipped", result.Skipped, "failed", result.Failed)
	return result, nil
}

// reconcile creates or updates one canonical record against the target.
// Reports created=true when a new target record was made.
func (r *Runner) reconcile(ctx context.Context, idx *target.Index, record types.CanonicalRecord) (bool, error) {
	if entry, ok := idx.Lookup(record.Identity); ok {
		merged := mergeMetadata(entry.Metadata, record)
		if err := r.client.Update(ctx, entry.ID, target.UpdateRecord{Metadata: merged}); err != nil {
			return false, fmt.Errorf("updating record %s: %w", entry.ID, err)
		}
		// Refresh the entry so later source rows sharing this SKU see the
		// merged state.
		idx.Register(record.Identity, target.Entry{ID: entry.ID, Metadata: merged})
		return false, nil
	}

	payload := target.CreateRecord{
		Title:       record.Title,
		Handle:      record.Handle,
		Subtitle:    record.Subtitle,
		Description: record.Description,
		Status:      record.Status,
		Metadata:    map[string]any{target.MetadataKey: sourceMetadata(record)},
	}
	created, err := r.client.Create(ctx, payload)
	if err != nil {
		return false, fmt.Errorf("creating record: %w", err)
	}
	// Register under the record's own identity so a later source row with
	// the same SKU becomes an update, not a second create.
	idx.Register(record.Identity, target.Entry{ID: created.ID, Metadata: payload.Metadata})
	return true, nil
}

// mergeMetadata shallow-merges at the top level, fully replacing the
// migration-owned sub-object and leaving every other key untouched.
func mergeMetadata(existing map[string]any, record types.CanonicalRecord) map[string]any {
	merged := make(map[string]any, len(existing)+1)
	for k, v := range existing {
		merged[k] = v
	}
	merged[target.MetadataKey] = sourceMetadata(record)
	return merged
}

// sourceMetadata builds the migration-owned metadata sub-object.
func sourceMetadata(record types.CanonicalRecord) map[string]any {
	return map[string]any{
		"sku":               record.Identity,
		"status":            record.Status,
		"discountable":      record.Discountable,
		"plain_description": record.PlainDescription,
		"snapshot":          record.Snapshot,
	}
}
