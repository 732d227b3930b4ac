// Media gallery resolution, tolerant of the two historical gallery shapes.
package eav

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/mesh-intelligence/portage/pkg/types"
)

// Gallery table names (joined to Store.table for the configured prefix).
const (
	galleryTable         = "catalog_product_entity_media_gallery"
	galleryValueTable    = "catalog_product_entity_media_gallery_value"
	galleryToEntityTable = "catalog_product_entity_media_gallery_value_to_entity"
)

// MediaAssets resolves the ordered, de-duplicated media list per record.
// Two gallery shapes exist in the wild: the gallery table joined through a
// separate value_to_entity link table, or the gallery table carrying the
// record id directly. The shape is probed once per run, not per record.
// Only rows whose media type is "image" or unspecified are considered. Per
// gallery value id the best store-priority row wins; the winning path is
// prefixed with the configured media base URL when one is set. Per-record
// lists are sorted by position ascending, non-finite positions sorting as 0.
func (s *Store) MediaAssets(ctx context.Context) (map[int64][]types.MediaAsset, error) {
	priority := s.storePriority()

	var query string
	if s.hasTable(ctx, s.table(galleryToEntityTable)) {
		query = fmt.Sprintf(
			"SELECT e.entity_id, g.value_id, g.value, g.media_type, v.label, v.position, v.store_id "+
				"FROM %s g JOIN %s e ON e.value_id = g.value_id "+
				"LEFT JOIN %s v ON v.value_id = g.value_id AND v.store_id IN (%s)",
			s.table(galleryTable), s.table(galleryToEntityTable), s.table(galleryValueTable),
			placeholders(len(priority)),
		)
	} else {
		query = fmt.Sprintf(
			"SELECT g.entity_id, g.value_id, g.value, g.media_type, v.label, v.position, v.store_id "+
				"FROM %s g LEFT JOIN %s v ON v.value_id = g.value_id AND v.store_id IN (%s)",
			s.table(galleryTable), s.table(galleryValueTable),
			placeholders(len(priority)),
		)
	}

	rows, err := s.db.QueryContext(ctx, query, int64Args(priority)...)
	if err != nil {
		return nil, fmt.Errorf("querying media gallery: %w", err)
	}
	defer rows.Close()

	type mediaKey struct {
		recordID int64
		valueID  int64
	}
	type winner struct {
		rank  int
		asset types.MediaAsset
	}
	best := make(map[mediaKey]winner)
	var order []mediaKey

	for rows.Next() {
		var (
			recordID  sql.NullInt64
			valueID   sql.NullInt64
			path      sql.NullString
			mediaType sql.NullString
			label     sql.NullString
			position  sql.NullFloat64
			storeID   sql.NullInt64
		)
		if err := rows.Scan(&recordID, &valueID, &path, &mediaType, &label, &position, &storeID); err != nil {
			continue
		}
		if !recordID.Valid || !valueID.Valid || path.String == "" {
			continue
		}
		if mediaType.String != "" && mediaType.String != "image" {
			continue
		}

		pos := position.Float64
		if !position.Valid || math.IsNaN(pos) || math.IsInf(pos, 0) {
			pos = 0
		}

		rank := storeRank(priority, storeID)
		key := mediaKey{recordID: recordID.Int64, valueID: valueID.Int64}
		current, seen := best[key]
		if !seen {
			order = append(order, key)
		}
		if !seen || rank < current.rank {
			best[key] = winner{rank: rank, asset: types.MediaAsset{
				URL:      s.mediaURL(path.String),
				Label:    label.String,
				Position: pos,
			}}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading media gallery: %w", err)
	}

	assets := make(map[int64][]types.MediaAsset)
	for _, key := range order {
		assets[key.recordID] = append(assets[key.recordID], best[key].asset)
	}
	for _, list := range assets {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position < list[j].Position })
	}
	return assets, nil
}

// mediaURL rewrites a gallery path into an absolute URL when a media base
// URL is configured; otherwise the path stays relative.
func (s *Store) mediaURL(path string) string {
	base := strings.TrimRight(s.cfg.MediaBaseURL, "/")
	if base == "" {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

// hasTable probes for a table's existence with a no-op select. Used once
// per run to detect which gallery shape the schema carries.
func (s *Store) hasTable(ctx context.Context, name string) bool {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", name))
	if err != nil {
		return false
	}
	rows.Close()
	return true
}
