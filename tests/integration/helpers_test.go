// Package integration provides shared helpers for end-to-end migration
// tests: a seeded legacy sqlite database and a fake target catalog server.
package integration

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/portage/internal/target"
)

// legacySchema mirrors the legacy catalog layout: the entity registry, the
// per-backend-type value tables, category links, and the media gallery with
// its link table.
var legacySchema = []string{
	`CREATE TABLE eav_entity_type (entity_type_id INTEGER PRIMARY KEY, entity_type_code TEXT)`,
	`CREATE TABLE eav_attribute (attribute_id INTEGER PRIMARY KEY, entity_type_id INTEGER, attribute_code TEXT, backend_type TEXT, frontend_label TEXT)`,
	`CREATE TABLE catalog_product_entity (entity_id INTEGER PRIMARY KEY, sku TEXT)`,
	`CREATE TABLE catalog_product_entity_varchar (value_id INTEGER PRIMARY KEY AUTOINCREMENT, attribute_id INTEGER, store_id INTEGER, entity_id INTEGER, value TEXT)`,
	`CREATE TABLE catalog_product_entity_int (value_id INTEGER PRIMARY KEY AUTOINCREMENT, attribute_id INTEGER, store_id INTEGER, entity_id INTEGER, value INTEGER)`,
	`CREATE TABLE catalog_product_entity_text (value_id INTEGER PRIMARY KEY AUTOINCREMENT, attribute_id INTEGER, store_id INTEGER, entity_id INTEGER, value TEXT)`,
	`CREATE TABLE catalog_product_entity_decimal (value_id INTEGER PRIMARY KEY AUTOINCREMENT, attribute_id INTEGER, store_id INTEGER, entity_id INTEGER, value REAL)`,
	`CREATE TABLE catalog_product_entity_datetime (value_id INTEGER PRIMARY KEY AUTOINCREMENT, attribute_id INTEGER, store_id INTEGER, entity_id INTEGER, value TEXT)`,
	`CREATE TABLE catalog_category_entity (entity_id INTEGER PRIMARY KEY)`,
	`CREATE TABLE catalog_category_entity_varchar (value_id INTEGER PRIMARY KEY AUTOINCREMENT, attribute_id INTEGER, store_id INTEGER, entity_id INTEGER, value TEXT)`,
	`CREATE TABLE catalog_category_product (category_id INTEGER, product_id INTEGER, position INTEGER)`,
	`CREATE TABLE catalog_product_entity_media_gallery (value_id INTEGER PRIMARY KEY, attribute_id INTEGER, value TEXT, media_type TEXT, entity_id INTEGER)`,
	`CREATE TABLE catalog_product_entity_media_gallery_value (value_id INTEGER, store_id INTEGER, entity_id INTEGER, label TEXT, position REAL)`,
	`CREATE TABLE catalog_product_entity_media_gallery_value_to_entity (value_id INTEGER, entity_id INTEGER)`,
}

// attribute ids used by the seed helpers.
const (
	attrName        = 10
	attrDescription = 11
	attrURLKey      = 12
	attrStatus      = 13
	attrPrice       = 14
	attrCatName     = 41
)

// newLegacyDB creates a temp sqlite database with the legacy schema, entity
// types, and a standard attribute set. Returns the handle and the DSN.
func newLegacyDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "legacy.db")
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	for _, stmt := range legacySchema {
		mustExec(t, db, stmt)
	}
	mustExec(t, db, `INSERT INTO eav_entity_type (entity_type_id, entity_type_code) VALUES (4, 'catalog_product'), (3, 'catalog_category')`)
	mustExec(t, db, `INSERT INTO eav_attribute (attribute_id, entity_type_id, attribute_code, backend_type, frontend_label) VALUES
		(?, 4, 'name', 'varchar', 'Name'),
		(?, 4, 'description', 'text', 'Description'),
		(?, 4, 'url_key', 'varchar', 'URL Key'),
		(?, 4, 'status', 'int', 'Status'),
		(?, 4, 'price', 'decimal', 'Price'),
		(?, 3, 'name', 'varchar', 'Name')`,
		attrName, attrDescription, attrURLKey, attrStatus, attrPrice, attrCatName)
	return db, dsn
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func seedProduct(t *testing.T, db *sql.DB, entityID int64, sku string) {
	t.Helper()
	mustExec(t, db, "INSERT INTO catalog_product_entity (entity_id, sku) VALUES (?, ?)", entityID, sku)
}

// seedValue inserts one row into the value table for the given backend type.
func seedValue(t *testing.T, db *sql.DB, backend string, attributeID, storeID, entityID int64, value any) {
	t.Helper()
	table := "catalog_product_entity_" + backend
	mustExec(t, db,
		fmt.Sprintf("INSERT INTO %s (attribute_id, store_id, entity_id, value) VALUES (?, ?, ?, ?)", table),
		attributeID, storeID, entityID, value)
}

func seedCategory(t *testing.T, db *sql.DB, categoryID int64, name string, productID int64, position any) {
	t.Helper()
	mustExec(t, db, "INSERT INTO catalog_category_entity (entity_id) VALUES (?)", categoryID)
	mustExec(t, db, "INSERT INTO catalog_category_entity_varchar (attribute_id, store_id, entity_id, value) VALUES (?, 0, ?, ?)",
		attrCatName, categoryID, name)
	mustExec(t, db, "INSERT INTO catalog_category_product (category_id, product_id, position) VALUES (?, ?, ?)",
		categoryID, productID, position)
}

func seedImage(t *testing.T, db *sql.DB, valueID, entityID int64, path string, position float64) {
	t.Helper()
	mustExec(t, db, "INSERT INTO catalog_product_entity_media_gallery (value_id, attribute_id, value, media_type) VALUES (?, 90, ?, 'image')",
		valueID, path)
	mustExec(t, db, "INSERT INTO catalog_product_entity_media_gallery_value_to_entity (value_id, entity_id) VALUES (?, ?)",
		valueID, entityID)
	mustExec(t, db, "INSERT INTO catalog_product_entity_media_gallery_value (value_id, store_id, entity_id, label, position) VALUES (?, 0, ?, '', ?)",
		valueID, entityID, position)
}

// catalogServer is an in-memory target catalog API. It accepts the paginated
// list endpoint plus record create and update.
type catalogServer struct {
	mu      sync.Mutex
	records []target.Record
	nextID  int
	token   string
}

func newCatalogServer(t *testing.T, token string) (*catalogServer, string) {
	t.Helper()
	cs := &catalogServer{token: token}
	srv := httptest.NewServer(cs.handler())
	t.Cleanup(srv.Close)
	return cs, srv.URL
}

func (cs *catalogServer) get(id string) (target.Record, bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	for _, rec := range cs.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return target.Record{}, false
}

func (cs *catalogServer) all() []target.Record {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	out := make([]target.Record, len(cs.records))
	copy(out, cs.records)
	return out
}

func (cs *catalogServer) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /records", func(w http.ResponseWriter, r *http.Request) {
		if !cs.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		cs.mu.Lock()
		defer cs.mu.Unlock()
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		end := offset + limit
		if end > len(cs.records) {
			end = len(cs.records)
		}
		var items []target.Record
		if offset < len(cs.records) {
			items = cs.records[offset:end]
		}
		json.NewEncoder(w).Encode(target.Page{Items: items, Count: len(cs.records)})
	})

	mux.HandleFunc("POST /records", func(w http.ResponseWriter, r *http.Request) {
		if !cs.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		cs.mu.Lock()
		defer cs.mu.Unlock()
		var payload target.CreateRecord
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cs.nextID++
		rec := target.Record{
			ID:       fmt.Sprintf("rec_%d", cs.nextID),
			Title:    payload.Title,
			Handle:   payload.Handle,
			Metadata: payload.Metadata,
		}
		cs.records = append(cs.records, rec)
		json.NewEncoder(w).Encode(rec)
	})

	mux.HandleFunc("PATCH /records/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !cs.authorized(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		cs.mu.Lock()
		defer cs.mu.Unlock()
		var payload target.UpdateRecord
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		id := r.PathValue("id")
		for i := range cs.records {
			if cs.records[i].ID != id {
				continue
			}
			if cs.records[i].Metadata == nil {
				cs.records[i].Metadata = map[string]any{}
			}
			for k, v := range payload.Metadata {
				cs.records[i].Metadata[k] = v
			}
			json.NewEncoder(w).Encode(cs.records[i])
			return
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	return mux
}

func (cs *catalogServer) authorized(r *http.Request) bool {
	if cs.token == "" {
		return true
	}
	return r.Header.Get("Authorization") == "Bearer "+cs.token
}
