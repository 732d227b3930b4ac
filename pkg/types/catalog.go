// Catalog entity types shared between the EAV reader, the canonical record
// builder, and the reconciliation driver.
package types

import "errors"

// Attribute backend types as stored in the legacy schema. The backend type
// selects which physical value table holds an attribute's rows.
const (
	BackendVarchar  = "varchar"
	BackendInt      = "int"
	BackendText     = "text"
	BackendDecimal  = "decimal"
	BackendDatetime = "datetime"
	BackendStatic   = "static"
)

// Record status values on the target catalog.
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Catalog lookup errors.
var (
	ErrEntityTypeNotFound = errors.New("entity type not found")
)

// AttributeDefinition is one schema-level attribute of an entity type.
// Definitions with an empty id or code are discarded at load time.
type AttributeDefinition struct {
	ID          int64
	Code        string
	BackendType string
	Label       string
}

// SourceRecord is one row of the base product entity table.
type SourceRecord struct {
	EntityID int64
	SKU      string
}

// ResolvedAttribute is the winning value for one (record, attribute) pair
// after store-priority resolution and backend-type coercion. Value is nil
// when the raw value could not be coerced (non-finite numbers).
type ResolvedAttribute struct {
	Code        string `json:"code"`
	BackendType string `json:"backend_type"`
	Label       string `json:"label,omitempty"`
	Value       any    `json:"value"`
	AttributeID int64  `json:"attribute_id,omitempty"`
}

// CategoryRef is one category association of a record, ordered by the
// source's position column. Name is empty when the category's display name
// could not be resolved.
type CategoryRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	SourceID string `json:"source_id"`
}

// MediaAsset is one media gallery entry of a record, ordered by position.
type MediaAsset struct {
	URL      string  `json:"url"`
	Label    string  `json:"label,omitempty"`
	Position float64 `json:"position"`
}

// CanonicalRecord is the fully resolved, self-contained representation of one
// source record, ready to be written to the target catalog. Built once per
// record and never mutated afterwards.
type CanonicalRecord struct {
	Identity         string
	Title            string
	Subtitle         string
	Description      string
	PlainDescription string
	Handle           string
	Status           string
	Discountable     bool
	Media            []MediaAsset
	Categories       []CategoryRef
	Attributes       []ResolvedAttribute

	// Snapshot retains the raw record, the flattened code->value attribute
	// map, categories, and media for audit and round-trip fidelity. It is
	// carried into target metadata but never drives reconciliation decisions.
	Snapshot map[string]any
}
