// Attribute value resolution: one winning, type-coerced value per
// (record, attribute) pair across the five backend-type value tables.
package eav

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/portage/pkg/types"
)

// valueBackends lists the backend types with a physical value table, in the
// fixed order the tables are queried.
var valueBackends = []string{
	types.BackendVarchar,
	types.BackendInt,
	types.BackendText,
	types.BackendDecimal,
	types.BackendDatetime,
}

// valueKey identifies one (record, attribute) resolution slot.
type valueKey struct {
	recordID    int64
	attributeID int64
}

// rawValueRow is one parsed value-table row.
type rawValueRow struct {
	recordID    int64
	attributeID int64
	value       any
	storeID     sql.NullInt64
}

// ResolveAttributeValues loads the value tables for every definition and
// resolves one winner per (record, attribute) pair using store-priority
// ranking, then coerces the winner per its backend type. Each record
// additionally gets one synthesized static "sku" attribute so downstream
// lookups treat the identity field uniformly with schema attributes.
// Per-record lists are sorted by attribute code for deterministic diffing.
func (s *Store) ResolveAttributeValues(ctx context.Context, defs []types.AttributeDefinition, records []types.SourceRecord) (map[int64][]types.ResolvedAttribute, error) {
	defByID := make(map[int64]types.AttributeDefinition, len(defs))
	byBackend := make(map[string][]int64)
	for _, def := range defs {
		defByID[def.ID] = def
		byBackend[def.BackendType] = append(byBackend[def.BackendType], def.ID)
	}
	knownRecords := make(map[int64]bool, len(records))
	for _, rec := range records {
		knownRecords[rec.EntityID] = true
	}

	priority := s.storePriority()

	type winner struct {
		rank int
		raw  any
	}
	best := make(map[valueKey]winner)

	for _, backend := range valueBackends {
		ids := byBackend[backend]
		table := s.table("catalog_product_entity_" + backend)
		for _, chunk := range chunkIDs(ids, attributeChunkSize) {
			query := fmt.Sprintf(
				"SELECT entity_id, attribute_id, value, store_id FROM %s WHERE attribute_id IN (%s) AND store_id IN (%s)",
				table, placeholders(len(chunk)), placeholders(len(priority)),
			)
			args := append(int64Args(chunk), int64Args(priority)...)

			rows, err := s.db.QueryContext(ctx, query, args...)
			if err != nil {
				return nil, fmt.Errorf("querying %s values: %w", backend, err)
			}
			err = func() error {
				defer rows.Close()
				for rows.Next() {
					row, ok := scanValueRow(rows)
					if !ok {
						continue
					}
					if !knownRecords[row.recordID] {
						continue
					}
					if _, known := defByID[row.attributeID]; !known {
						continue
					}
					rank := storeRank(priority, row.storeID)
					key := valueKey{row.recordID, row.attributeID}
					// Replace only on strictly lower rank: rows arrive in
					// query order, so equal ranks keep the first seen.
					if current, seen := best[key]; !seen || rank < current.rank {
						best[key] = winner{rank: rank, raw: row.value}
					}
				}
				return rows.Err()
			}()
			if err != nil {
				return nil, fmt.Errorf("reading %s values: %w", backend, err)
			}
		}
	}

	resolved := make(map[int64][]types.ResolvedAttribute, len(records))
	for key, win := range best {
		def := defByID[key.attributeID]
		resolved[key.recordID] = append(resolved[key.recordID], types.ResolvedAttribute{
			Code:        def.Code,
			BackendType: def.BackendType,
			Label:       def.Label,
			Value:       coerceValue(def.BackendType, win.raw),
			AttributeID: def.ID,
		})
	}
	for _, rec := range records {
		resolved[rec.EntityID] = append(resolved[rec.EntityID], types.ResolvedAttribute{
			Code:        "sku",
			BackendType: types.BackendStatic,
			Value:       rec.SKU,
		})
		attrs := resolved[rec.EntityID]
		// Code first, attribute id second: the map iteration above has no
		// order, so equal codes need the id tie-break to stay deterministic.
		sort.SliceStable(attrs, func(i, j int) bool {
			if attrs[i].Code != attrs[j].Code {
				return attrs[i].Code < attrs[j].Code
			}
			return attrs[i].AttributeID < attrs[j].AttributeID
		})
	}
	return resolved, nil
}

// scanValueRow parses one value-table row. A row that cannot be scanned or
// that lacks a record or attribute id yields ok=false and is skipped:
// malformed rows are routine schema drift, not errors.
func scanValueRow(rows *sql.Rows) (rawValueRow, bool) {
	var (
		recordID    sql.NullInt64
		attributeID sql.NullInt64
		value       any
		storeID     sql.NullInt64
	)
	if err := rows.Scan(&recordID, &attributeID, &value, &storeID); err != nil {
		return rawValueRow{}, false
	}
	if !recordID.Valid || !attributeID.Valid {
		return rawValueRow{}, false
	}
	return rawValueRow{
		recordID:    recordID.Int64,
		attributeID: attributeID.Int64,
		value:       value,
		storeID:     storeID,
	}, true
}
