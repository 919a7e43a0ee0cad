package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/rdswitchboard/doinorm/internal/prop"
)

// span is the byte range of one property value inside a stored map.
type span struct {
	start, end int
}

// storedFields indexes the top level of a stored property map without
// decoding any value.
type storedFields struct {
	values map[string]json.RawMessage
	spans  map[string]span

	// closing is the offset of the map's closing brace, or -1 when the
	// stored text is empty or null.
	closing int
}

// indexFields records each property's raw value and where it sits in data.
// For a repeated name the last occurrence wins, as with encoding/json.
func indexFields(data []byte) (*storedFields, error) {
	f := &storedFields{
		values:  map[string]json.RawMessage{},
		spans:   map[string]span{},
		closing: -1,
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return f, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode properties: not a JSON object")
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("decode properties: %w", err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("decode properties: unexpected %v", tok)
		}
		keyEnd := int(dec.InputOffset())

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode properties: property %q: %w", name, err)
		}
		end := int(dec.InputOffset())
		start := keyEnd + valueOffset(data[keyEnd:end])

		f.values[name] = json.RawMessage(data[start:end])
		f.spans[name] = span{start: start, end: end}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("decode properties: %w", err)
	}
	f.closing = int(dec.InputOffset()) - 1

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode properties: trailing data after object")
	}
	return f, nil
}

// valueOffset skips the whitespace and colon between a key and its value.
func valueOffset(b []byte) int {
	for i, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r', ':':
		default:
			return i
		}
	}
	return len(b)
}

// replace returns data with the value of name set to value. An existing
// value is swapped in place; a new name is appended before the closing
// brace. All other bytes of data are kept.
func (f *storedFields) replace(data []byte, name string, value []byte) ([]byte, error) {
	if s, ok := f.spans[name]; ok {
		out := make([]byte, 0, len(data)-(s.end-s.start)+len(value))
		out = append(out, data[:s.start]...)
		out = append(out, value...)
		return append(out, data[s.end:]...), nil
	}

	key, err := prop.MarshalCanonical(prop.String(name))
	if err != nil {
		return nil, err
	}
	entry := append(append(key, ':'), value...)

	if f.closing < 0 {
		out := append([]byte{'{'}, entry...)
		return append(out, '}'), nil
	}

	out := make([]byte, 0, len(data)+len(entry)+1)
	out = append(out, data[:f.closing]...)
	if len(f.values) > 0 {
		out = append(out, ',')
	}
	out = append(out, entry...)
	return append(out, data[f.closing:]...), nil
}
