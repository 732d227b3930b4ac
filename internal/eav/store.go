// Package eav reads the legacy Entity-Attribute-Value catalog schema and
// resolves it into plain per-record values: attribute definitions, winning
// attribute values per store priority, category names and links, and media
// gallery assets. All lookups are materialized fully in memory before the
// reconciliation loop consumes them.
package eav

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/portage/internal/logger"
	"github.com/mesh-intelligence/portage/pkg/types"
)

// ProductEntityType is the legacy entity type code for products.
const ProductEntityType = "catalog_product"

// Store reads the legacy catalog through database/sql. It owns the
// connection for the duration of one migration run.
type Store struct {
	db  *sql.DB
	cfg types.Config
	log *logger.Logger
}

// Open connects to the legacy store described by cfg.Source.
func Open(cfg types.Config, log *logger.Logger) (*Store, error) {
	db, err := sql.Open(cfg.Source.Driver, cfg.Source.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening source store: %w", err)
	}
	return NewStore(db, cfg, log), nil
}

// NewStore wraps an already-open connection. The store takes ownership;
// Close closes the connection.
func NewStore(db *sql.DB, cfg types.Config, log *logger.Logger) *Store {
	return &Store{db: db, cfg: cfg, log: log.With("component", "eav")}
}

// Ping verifies connectivity to the legacy store.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging source store: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// table returns the physical table name with the configured prefix applied.
func (s *Store) table(name string) string {
	return s.cfg.Source.TablePrefix + name
}

// storePriority returns the ranked store view ids used for value resolution:
// the preferred store followed by the universal fallback store 0,
// deduplicated, preference order preserved.
func (s *Store) storePriority() []int64 {
	priority := []int64{s.cfg.StoreID}
	if s.cfg.StoreID != 0 {
		priority = append(priority, 0)
	}
	return priority
}

// EntityTypeID resolves an entity type code to its numeric id. A missing
// code is a configuration error and wraps types.ErrEntityTypeNotFound.
func (s *Store) EntityTypeID(ctx context.Context, code string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT entity_type_id FROM %s WHERE entity_type_code = ?", s.table("eav_entity_type")),
		code,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", types.ErrEntityTypeNotFound, code)
	}
	if err != nil {
		return 0, fmt.Errorf("resolving entity type %s: %w", code, err)
	}
	return id, nil
}

// AttributeDefinitions loads the schema-level attribute list for an entity
// type. Rows with an empty id or code are discarded.
func (s *Store) AttributeDefinitions(ctx context.Context, entityTypeID int64) ([]types.AttributeDefinition, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT attribute_id, attribute_code, backend_type, frontend_label FROM %s WHERE entity_type_id = ? ORDER BY attribute_id", s.table("eav_attribute")),
		entityTypeID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading attribute definitions: %w", err)
	}
	defer rows.Close()

	var defs []types.AttributeDefinition
	for rows.Next() {
		var (
			id          sql.NullInt64
			code        sql.NullString
			backendType sql.NullString
			label       sql.NullString
		)
		if err := rows.Scan(&id, &code, &backendType, &label); err != nil {
			return nil, fmt.Errorf("scanning attribute definition: %w", err)
		}
		if !id.Valid || id.Int64 == 0 || code.String == "" {
			continue
		}
		defs = append(defs, types.AttributeDefinition{
			ID:          id.Int64,
			Code:        code.String,
			BackendType: backendType.String,
			Label:       label.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading attribute definitions: %w", err)
	}
	return defs, nil
}

// Records loads every row of the base product entity table in source order.
func (s *Store) Records(ctx context.Context) ([]types.SourceRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT entity_id, sku FROM %s ORDER BY entity_id", s.table("catalog_product_entity")),
	)
	if err != nil {
		return nil, fmt.Errorf("loading source records: %w", err)
	}
	defer rows.Close()

	var records []types.SourceRecord
	for rows.Next() {
		var (
			id  int64
			sku sql.NullString
		)
		if err := rows.Scan(&id, &sku); err != nil {
			return nil, fmt.Errorf("scanning source record: %w", err)
		}
		records = append(records, types.SourceRecord{EntityID: id, SKU: sku.String})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading source records: %w", err)
	}
	return records, nil
}
