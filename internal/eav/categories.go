// Category name and link resolution.
package eav

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"

	"github.com/mesh-intelligence/portage/pkg/types"
)

// categoryEntityType is the legacy entity type code for categories.
const categoryEntityType = "catalog_category"

// CategoryNames resolves one display name per category id, using the same
// store-priority ranking as attribute values but scoped to the category
// entity type's "name" attribute. A schema without that attribute yields an
// empty map; every category then carries an empty name.
func (s *Store) CategoryNames(ctx context.Context) (map[int64]string, error) {
	entityTypeID, err := s.EntityTypeID(ctx, categoryEntityType)
	if err != nil {
		return nil, err
	}

	var nameAttrID int64
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT attribute_id FROM %s WHERE entity_type_id = ? AND attribute_code = ?", s.table("eav_attribute")),
		entityTypeID, "name",
	).Scan(&nameAttrID)
	if err == sql.ErrNoRows {
		return map[int64]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolving category name attribute: %w", err)
	}

	priority := s.storePriority()
	query := fmt.Sprintf(
		"SELECT entity_id, value, store_id FROM %s WHERE attribute_id = ? AND store_id IN (%s)",
		s.table("catalog_category_entity_varchar"), placeholders(len(priority)),
	)
	args := append([]any{nameAttrID}, int64Args(priority)...)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying category names: %w", err)
	}
	defer rows.Close()

	type winner struct {
		rank int
		name string
	}
	best := make(map[int64]winner)
	for rows.Next() {
		var (
			categoryID sql.NullInt64
			name       sql.NullString
			storeID    sql.NullInt64
		)
		if err := rows.Scan(&categoryID, &name, &storeID); err != nil {
			continue
		}
		if !categoryID.Valid {
			continue
		}
		rank := storeRank(priority, storeID)
		if current, seen := best[categoryID.Int64]; !seen || rank < current.rank {
			best[categoryID.Int64] = winner{rank: rank, name: name.String}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading category names: %w", err)
	}

	names := make(map[int64]string, len(best))
	for id, win := range best {
		names[id] = win.name
	}
	return names, nil
}

// categoryLink pairs a public CategoryRef with its transient sort position.
// Position is an internal sort key only; it never leaves this resolver.
type categoryLink struct {
	ref types.CategoryRef
	pos int64
}

// CategoryLinks loads every record-to-category association, attaches the
// resolved display name, and returns per-record lists sorted by position
// ascending. A missing position defaults to the record's current list
// length, preserving append order.
func (s *Store) CategoryLinks(ctx context.Context, names map[int64]string) (map[int64][]types.CategoryRef, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT product_id, category_id, position FROM %s ORDER BY product_id", s.table("catalog_category_product")),
	)
	if err != nil {
		return nil, fmt.Errorf("querying category links: %w", err)
	}
	defer rows.Close()

	links := make(map[int64][]categoryLink)
	for rows.Next() {
		var (
			recordID   sql.NullInt64
			categoryID sql.NullInt64
			pos        sql.NullInt64
		)
		if err := rows.Scan(&recordID, &categoryID, &pos); err != nil {
			continue
		}
		if !recordID.Valid || !categoryID.Valid {
			continue
		}
		position := pos.Int64
		if !pos.Valid {
			position = int64(len(links[recordID.Int64]))
		}
		links[recordID.Int64] = append(links[recordID.Int64], categoryLink{
			ref: types.CategoryRef{
				ID:       categoryID.Int64,
				Name:     names[categoryID.Int64],
				SourceID: strconv.FormatInt(categoryID.Int64, 10),
			},
			pos: position,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading category links: %w", err)
	}

	out := make(map[int64][]types.CategoryRef, len(links))
	for recordID, list := range links {
		sort.SliceStable(list, func(i, j int) bool { return list[i].pos < list[j].pos })
		refs := make([]types.CategoryRef, len(list))
		for i, link := range list {
			refs[i] = link.ref
		}
		out[recordID] = refs
	}
	return out, nil
}
