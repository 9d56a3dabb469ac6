package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document is an open-shaped record as stored in a collection. Callers may
// post arbitrary fields; only the ones this service relies on get accessors.
type Document map[string]interface{}

// ID returns the store-generated identifier, if the document carries one.
func (d Document) ID() (primitive.ObjectID, bool) {
	id, ok := d[FieldID].(primitive.ObjectID)
	return id, ok
}

// Lookup resolves a dotted path such as "buyer.email" through nested documents.
func (d Document) Lookup(path string) (interface{}, bool) {
	var cur interface{} = d
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set assigns value at a dotted path, creating intermediate documents as needed.
func (d Document) Set(path string, value interface{}) {
	parts := strings.Split(path, ".")
	m := map[string]interface{}(d)
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(m[part])
		if !ok {
			next = map[string]interface{}{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// StringAt returns the string stored at path, or "" when absent or not a string.
func (d Document) StringAt(path string) string {
	v, ok := d.Lookup(path)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func (d Document) Title() string      { return d.StringAt(FieldTitle) }
func (d Document) Category() string   { return d.StringAt(FieldCategory) }
func (d Document) BuyerEmail() string { return d.StringAt(FieldBuyerEmail) }
func (d Document) Status() string     { return d.StringAt(FieldStatus) }

// BidCount reads bid_count whatever numeric type the store or JSON decoder
// produced. Absent or non-numeric values count as zero.
func (d Document) BidCount() int64 {
	n, _ := AsInt64(d[FieldBidCount])
	return n
}

// Clone returns a deep copy of nested documents and arrays.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return CloneValue(d).(Document)
}

// AsInt64 converts the numeric types produced by encoding/json and the BSON
// decoder into an int64.
func AsInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case Document:
		return m, true
	case map[string]interface{}:
		return m, true
	case primitive.M:
		return m, true
	default:
		return nil, false
	}
}

// CloneValue deep-copies maps and arrays; other values are returned as is.
func CloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case Document:
		out := make(Document, len(t))
		for k, val := range t {
			out[k] = CloneValue(val)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = CloneValue(val)
		}
		return out
	case primitive.M:
		out := make(primitive.M, len(t))
		for k, val := range t {
			out[k] = CloneValue(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = CloneValue(val)
		}
		return out
	case primitive.A:
		out := make(primitive.A, len(t))
		for i, val := range t {
			out[i] = CloneValue(val)
		}
		return out
	default:
		return v
	}
}
