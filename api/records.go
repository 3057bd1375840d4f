package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

const errFieldMissing = "record has no %q field"

// Record is one schema-less object returned by a list endpoint. Numbers are
// kept as json.Number so large identifiers survive a decode/encode cycle.
type Record map[string]any

// ResultSet is the concatenation of every page of one logical fetch.
type ResultSet []Record

// DecodeRecords decodes a response body holding either a list of objects or
// a single object. An empty body yields an empty ResultSet.
func DecodeRecords(body []byte) (ResultSet, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ResultSet{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	switch trimmed[0] {
	case '[':
		var result ResultSet
		if err := dec.Decode(&result); err != nil {
			return nil, err
		}
		if result == nil {
			result = ResultSet{}
		}
		return result, nil
	case '{':
		var record Record
		if err := dec.Decode(&record); err != nil {
			return nil, err
		}
		return ResultSet{record}, nil
	default:
		return nil, errors.New("response body is neither a JSON object nor a JSON array")
	}
}

// Project reduces the record to exactly the whitelisted fields. Fields the
// record lacks are present in the result with a nil value.
func (r Record) Project(whitelist []string) Record {
	result := make(Record, len(whitelist))
	for _, field := range whitelist {
		result[field] = r[field]
	}
	return result
}

func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (r Record) String(field string) (string, bool) {
	v, ok := r.Get(field)
	if !ok {
		return "", false
	}

	switch t := v.(type) {
	case string:
		return t, true
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

func (r Record) Int(field string) (int64, bool) {
	v, ok := r.Get(field)
	if !ok {
		return 0, false
	}
	return toInt(v)
}

func (r Record) Float(field string) (float64, bool) {
	v, ok := r.Get(field)
	if !ok {
		return 0, false
	}

	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (r Record) Map(field string) (Record, bool) {
	v, ok := r.Get(field)
	if !ok {
		return nil, false
	}

	switch t := v.(type) {
	case Record:
		return t, true
	case map[string]any:
		return Record(t), true
	default:
		return nil, false
	}
}

func (r Record) Slice(field string) ([]any, bool) {
	v, ok := r.Get(field)
	if !ok {
		return nil, false
	}
	s, ok := v.([]any)
	return s, ok
}

// ID returns the record's "id" field, failing when it is absent or not an
// integer.
func (r Record) ID() (int64, error) {
	return r.RequireInt("id")
}

func (r Record) RequireInt(field string) (int64, error) {
	v, ok := r.Get(field)
	if !ok {
		return 0, fmt.Errorf(errFieldMissing, field)
	}
	id, ok := toInt(v)
	if !ok {
		return 0, fmt.Errorf("field %q is not an integer: %v", field, v)
	}
	return id, nil
}

func (r Record) RequireString(field string) (string, error) {
	if _, ok := r.Get(field); !ok {
		return "", fmt.Errorf(errFieldMissing, field)
	}
	s, ok := r.String(field)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", field)
	}
	return s, nil
}

// AsRecord converts an element of a decoded JSON array to a Record.
func AsRecord(v any) (Record, bool) {
	switch t := v.(type) {
	case Record:
		return t, true
	case map[string]any:
		return Record(t), true
	default:
		return nil, false
	}
}

func toInt(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		i, err := t.Int64()
		return i, err == nil
	case float64:
		if t != float64(int64(t)) {
			return 0, false
		}
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		i, err := strconv.ParseInt(t, 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
