// Shared sqlite fixtures for eav package tests. Each test seeds exactly the
// rows it needs; the fixture only creates the legacy schema.
package eav

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/portage/internal/logger"
	"github.com/mesh-intelligence/portage/pkg/types"
)

// fixtureSchema creates the legacy EAV tables.
var fixtureSchema = []string{
	`CREATE TABLE eav_entity_type (
		entity_type_id INTEGER PRIMARY KEY,
		entity_type_code TEXT NOT NULL
	)`,
	`CREATE TABLE eav_attribute (
		attribute_id INTEGER PRIMARY KEY,
		entity_type_id INTEGER NOT NULL,
		attribute_code TEXT,
		backend_type TEXT,
		frontend_label TEXT
	)`,
	`CREATE TABLE catalog_product_entity (
		entity_id INTEGER PRIMARY KEY,
		sku TEXT
	)`,
	`CREATE TABLE catalog_product_entity_varchar (
		value_id INTEGER PRIMARY KEY AUTOINCREMENT,
		attribute_id INTEGER,
		store_id INTEGER,
		entity_id INTEGER,
		value TEXT
	)`,
	`CREATE TABLE catalog_product_entity_int (
		value_id INTEGER PRIMARY KEY AUTOINCREMENT,
		attribute_id INTEGER,
		store_id INTEGER,
		entity_id INTEGER,
		value INTEGER
	)`,
	`CREATE TABLE catalog_product_entity_text (
		value_id INTEGER PRIMARY KEY AUTOINCREMENT,
		attribute_id INTEGER,
		store_id INTEGER,
		entity_id INTEGER,
		value TEXT
	)`,
	`CREATE TABLE catalog_product_entity_decimal (
		value_id INTEGER PRIMARY KEY AUTOINCREMENT,
		attribute_id INTEGER,
		store_id INTEGER,
		entity_id INTEGER,
		value REAL
	)`,
	`CREATE TABLE catalog_product_entity_datetime (
		value_id INTEGER PRIMARY KEY AUTOINCREMENT,
		attribute_id INTEGER,
		store_id INTEGER,
		entity_id INTEGER,
		value TEXT
	)`,
	`CREATE TABLE catalog_category_entity (
		entity_id INTEGER PRIMARY KEY
	)`,
	`CREATE TABLE catalog_category_entity_varchar (
		value_id INTEGER PRIMARY KEY AUTOINCREMENT,
		attribute_id INTEGER,
		store_id INTEGER,
		entity_id INTEGER,
		value TEXT
	)`,
	`CREATE TABLE catalog_category_product (
		category_id INTEGER,
		product_id INTEGER,
		position INTEGER
	)`,
	`CREATE TABLE catalog_product_entity_media_gallery (
		value_id INTEGER PRIMARY KEY,
		attribute_id INTEGER,
		value TEXT,
		media_type TEXT,
		entity_id INTEGER
	)`,
	`CREATE TABLE catalog_product_entity_media_gallery_value (
		value_id INTEGER,
		store_id INTEGER,
		entity_id INTEGER,
		label TEXT,
		position REAL
	)`,
}

// galleryLinkTable is only created for the modern gallery shape.
const galleryLinkTable = `CREATE TABLE catalog_product_entity_media_gallery_value_to_entity (
	value_id INTEGER,
	entity_id INTEGER
)`

// Entity type ids used across fixtures.
const (
	productTypeID  = 4
	categoryTypeID = 3
)

// fixtureConfig tweaks the fixture before the store is built.
type fixtureConfig struct {
	cfg       types.Config
	linkTable bool
}

type fixtureOption func(*fixtureConfig)

func withStoreID(id int64) fixtureOption {
	return func(f *fixtureConfig) { f.cfg.StoreID = id }
}

func withMediaBaseURL(url string) fixtureOption {
	return func(f *fixtureConfig) { f.cfg.MediaBaseURL = url }
}

func withoutGalleryLinkTable() fixtureOption {
	return func(f *fixtureConfig) { f.linkTable = false }
}

// openFixture creates a temp sqlite database with the legacy schema and
// wraps it in a Store. The modern gallery link table is created unless the
// test opts out with withoutGalleryLinkTable.
func openFixture(t *testing.T, opts ...fixtureOption) *Store {
	t.Helper()

	fixture := fixtureConfig{
		cfg: types.Config{
			Source: types.SourceConfig{
				Driver: types.DriverSQLite,
				DSN:    filepath.Join(t.TempDir(), "legacy.db"),
			},
		},
		linkTable: true,
	}
	for _, opt := range opts {
		opt(&fixture)
	}

	db, err := sql.Open(fixture.cfg.Source.Driver, fixture.cfg.Source.DSN)
	require.NoError(t, err)

	for _, stmt := range fixtureSchema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	if fixture.linkTable {
		_, err := db.Exec(galleryLinkTable)
		require.NoError(t, err)
	}

	store := NewStore(db, fixture.cfg, logger.NewNop())
	t.Cleanup(func() { store.Close() })
	return store
}

// mustExec runs one statement against the fixture database.
func mustExec(t *testing.T, s *Store, query string, args ...any) {
	t.Helper()
	_, err := s.db.Exec(query, args...)
	require.NoError(t, err)
}

// seedEntityTypes registers the standard product and category entity types.
func seedEntityTypes(t *testing.T, s *Store) {
	t.Helper()
	mustExec(t, s, "INSERT INTO eav_entity_type (entity_type_id, entity_type_code) VALUES (?, ?)", productTypeID, ProductEntityType)
	mustExec(t, s, "INSERT INTO eav_entity_type (entity_type_id, entity_type_code) VALUES (?, ?)", categoryTypeID, categoryEntityType)
}

// seedAttribute registers one product attribute definition.
func seedAttribute(t *testing.T, s *Store, id int64, code, backendType string) {
	t.Helper()
	mustExec(t, s,
		"INSERT INTO eav_attribute (attribute_id, entity_type_id, attribute_code, backend_type, frontend_label) VALUES (?, ?, ?, ?, ?)",
		id, productTypeID, code, backendType, code)
}

// seedProduct inserts one base entity row.
func seedProduct(t *testing.T, s *Store, entityID int64, sku string) {
	t.Helper()
	mustExec(t, s, "INSERT INTO catalog_product_entity (entity_id, sku) VALUES (?, ?)", entityID, sku)
}

// seedValue inserts one value-table row for the given backend type.
func seedValue(t *testing.T, s *Store, backendType string, attributeID, storeID, entityID int64, value any) {
	t.Helper()
	mustExec(t, s,
		"INSERT INTO catalog_product_entity_"+backendType+" (attribute_id, store_id, entity_id, value) VALUES (?, ?, ?, ?)",
		attributeID, storeID, entityID, value)
}
