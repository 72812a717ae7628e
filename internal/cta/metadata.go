package cta

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Canonical metadata keys.
const (
	KeyCategoryID    = "categoryId"
	KeySubcategoryID = "subcategoryId"
	KeyMonth         = "month"
	KeyTransactionID = "transactionId"
)

// aliases lists, per canonical key, the spellings older writers used.
// Earlier entries win when several are present.
var aliases = map[string][]string{
	KeyCategoryID:    {"category_id", "category", "filter_category"},
	KeySubcategoryID: {"subcategory_id", "subcategory", "filter_subcategory"},
	KeyMonth:         {"reference_month", "referenceMonth", "month_key"},
	KeyTransactionID: {"transaction_id", "entityId", "entity_id"},
}

// Metadata is a flat string bag read from a notification's stored JSON.
type Metadata struct {
	values map[string]string
}

// Get returns the value under key, or "".
func (m Metadata) Get(key string) string {
	return m.values[key]
}

// Len returns the number of keys.
func (m Metadata) Len() int {
	return len(m.values)
}

// ParseMetadata reads a JSON object permissively. Double-encoded objects (a JSON
// string holding JSON) are unwrapped; anything else that is not an object yields
// an empty bag. Scalar values are kept as strings, nested values are dropped.
// Canonical keys missing from the object are backfilled from their aliases.
func ParseMetadata(raw []byte) Metadata {
	obj := decodeObject(raw, 2)
	values := make(map[string]string, len(obj))
	for k, v := range obj {
		if s, ok := scalarString(v); ok {
			values[k] = s
		}
	}

	for canonical, names := range aliases {
		if values[canonical] != "" {
			continue
		}
		for _, name := range names {
			if v := values[name]; v != "" {
				values[canonical] = v
				break
			}
		}
	}
	return Metadata{values: values}
}

// MergeMetadata overlays override on base.
func MergeMetadata(base, override Metadata) Metadata {
	merged := make(map[string]string, base.Len()+override.Len())
	for k, v := range base.values {
		merged[k] = v
	}
	for k, v := range override.values {
		if v != "" {
			merged[k] = v
		}
	}
	return Metadata{values: merged}
}

func decodeObject(raw []byte, depth int) map[string]any {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || depth < 0 {
		return nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
		return obj
	}

	var wrapped string
	if err := json.Unmarshal([]byte(trimmed), &wrapped); err == nil {
		return decodeObject([]byte(wrapped), depth-1)
	}
	return nil
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x), true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}
