package odoo

import (
	"encoding/json"

	"github.com/spf13/cast"
)

// Record is a single result row from search_read. Odoo represents null
// fields as boolean false, which every accessor below treats as absent.
type Record map[string]interface{}

// Has reports whether key is present and non-null.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	if !ok || v == nil {
		return false
	}
	if b, isBool := v.(bool); isBool && !b {
		return false
	}
	return true
}

// Str returns the string value of key, or "" when absent/null.
func (r Record) Str(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if b, isBool := v.(bool); isBool && !b {
		return ""
	}
	return cast.ToString(v)
}

// Float returns the numeric value of key, or 0 when absent/null.
func (r Record) Float(key string) float64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	if _, isBool := v.(bool); isBool {
		return 0
	}
	return cast.ToFloat64(v)
}

// Int returns the integer value of key, or 0 when absent/null.
func (r Record) Int(key string) int64 {
	v, ok := r[key]
	if !ok || v == nil {
		return 0
	}
	if _, isBool := v.(bool); isBool {
		return 0
	}
	return cast.ToInt64(v)
}

// IDs returns a one2many field as a slice of ids.
func (r Record) IDs(key string) []int64 {
	items, ok := r[key].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, cast.ToInt64(item))
	}
	return ids
}

// Ref returns a many2one field as a typed reference. Odoo serializes
// these as an [id, "display name"] pair, or false when unset.
func (r Record) Ref(key string) Ref {
	pair, ok := r[key].([]interface{})
	if !ok || len(pair) < 2 {
		return Ref{}
	}
	return Ref{
		ID:    cast.ToInt64(pair[0]),
		Name:  cast.ToString(pair[1]),
		Valid: true,
	}
}

// Ref is a many2one value. Valid is false when the source field was
// null; such a Ref marshals back to JSON false, keeping API responses
// shaped exactly like the raw Odoo records.
type Ref struct {
	ID    int64
	Name  string
	Valid bool
}

// PlaceholderRef builds a synthetic reference with id 0, used when a
// partner has to be invented from surrounding data.
func PlaceholderRef(name string) Ref {
	return Ref{ID: 0, Name: name, Valid: true}
}

// MarshalJSON emits the Odoo wire shape: [id, "name"] or false.
func (r Ref) MarshalJSON() ([]byte, error) {
	if !r.Valid {
		return []byte("false"), nil
	}
	return json.Marshal([]interface{}{r.ID, r.Name})
}
