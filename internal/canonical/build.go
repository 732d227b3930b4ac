package canonical

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/portage/pkg/types"
)

// Attribute codes consulted when assembling a canonical record.
const (
	attrName         = "name"
	attrDescription  = "description"
	attrSubtitle     = "short_description"
	attrURLKey       = "url_key"
	attrStatus       = "status"
	attrDiscountable = "is_discountable"
	attrSalable      = "is_salable"
)

// Build assembles one canonical record from a source record and its resolved
// attribute, category, and media lookups. Pure function: same inputs, same
// record, no I/O.
func Build(rec types.SourceRecord, attrs []types.ResolvedAttribute, categories []types.CategoryRef, media []types.MediaAsset) types.CanonicalRecord {
	values := Flatten(attrs)
	fallback := fmt.Sprintf("record-%d", rec.EntityID)

	identity := strings.TrimSpace(rec.SKU)

	title := stringOf(values[attrName])
	if title == "" {
		title = identity
	}
	if title == "" {
		title = fallback
	}

	description := stringOf(values[attrDescription])
	subtitle := StripTags(stringOf(values[attrSubtitle]))

	handle := Slugify(stringOf(values[attrURLKey]))
	if handle == "" {
		handle = Slugify(rec.SKU)
	}
	if handle == "" {
		handle = fallback
	}

	status := types.StatusDraft
	if published, ok := Truthy(values[attrStatus]); ok && published {
		status = types.StatusPublished
	}

	discountable := true
	if v, ok := Truthy(values[attrDiscountable]); ok {
		discountable = v
	} else if v, ok := Truthy(values[attrSalable]); ok {
		discountable = v
	}

	return types.CanonicalRecord{
		Identity:         identity,
		Title:            title,
		Subtitle:         subtitle,
		Description:      description,
		PlainDescription: StripTags(description),
		Handle:           handle,
		Status:           status,
		Discountable:     discountable,
		Media:            media,
		Categories:       categories,
		Attributes:       attrs,
		Snapshot: map[string]any{
			"record": map[string]any{
				"entity_id": rec.EntityID,
				"sku":       rec.SKU,
			},
			"attributes": values,
			"categories": categories,
			"media":      media,
		},
	}
}

// Flatten collapses a resolved attribute list into a code->value map.
// Last write wins on duplicate codes.
func Flatten(attrs []types.ResolvedAttribute) map[string]any {
	values := make(map[string]any, len(attrs))
	for _, attr := range attrs {
		values[attr.Code] = attr.Value
	}
	return values
}

// stringOf renders an attribute value as a string; nil renders empty.
func stringOf(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
