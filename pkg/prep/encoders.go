package prep

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// EncoderSet holds the encoders of a run in the order they were fitted.
type EncoderSet struct {
	order    []string
	encoders map[string]*Encoder
}

// NewEncoderSet creates an empty set.
func NewEncoderSet() *EncoderSet {
	return &EncoderSet{encoders: make(map[string]*Encoder)}
}

// Add stores an encoder, replacing any previous encoder of the same column.
func (s *EncoderSet) Add(e *Encoder) {
	if _, ok := s.encoders[e.Column]; !ok {
		s.order = append(s.order, e.Column)
	}
	s.encoders[e.Column] = e
}

// Get returns the encoder of a column.
func (s *EncoderSet) Get(column string) (*Encoder, bool) {
	e, ok := s.encoders[column]
	return e, ok
}

// Columns returns the encoded column names in fit order.
func (s *EncoderSet) Columns() []string {
	return append([]string(nil), s.order...)
}

// Len returns the number of encoders.
func (s *EncoderSet) Len() int { return len(s.order) }

// MarshalJSON renders {column: {class: code}} keeping column fit order and
// class code order.
func (s *EncoderSet) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range s.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, col); err != nil {
			return nil, err
		}
		buf.WriteString(":{")
		for code, class := range s.encoders[col].Classes {
			if code > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(&buf, class); err != nil {
				return nil, err
			}
			fmt.Fprintf(&buf, ":%d", code)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads the format written by MarshalJSON. Codes of each column
// must be exactly 0..n-1.
func (s *EncoderSet) UnmarshalJSON(data []byte) error {
	var raw map[string]map[string]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	order, err := objectKeys(data)
	if err != nil {
		return err
	}

	*s = *NewEncoderSet()
	for _, col := range order {
		mapping := raw[col]
		classes := make([]string, len(mapping))
		filled := make([]bool, len(mapping))
		for class, code := range mapping {
			if code < 0 || code >= len(mapping) || filled[code] {
				return fmt.Errorf("encoder %q: codes must be a permutation of 0..%d", col, len(mapping)-1)
			}
			classes[code] = class
			filled[code] = true
		}
		enc, err := NewEncoder(col, classes)
		if err != nil {
			return err
		}
		s.Add(enc)
	}
	return nil
}

// ReadEncoders loads an encoder mapping file.
func ReadEncoders(path string) (*EncoderSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	set := NewEncoderSet()
	if err := json.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return set, nil
}

// writeJSONString writes s as a JSON string without HTML escaping, so labels
// such as "<30" stay readable.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

// objectKeys returns the top-level keys of a JSON object in document order.
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected an object key")
		}
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
		if !seen[key] {
			keys = append(keys, key)
			seen[key] = true
		}
	}
	return keys, nil
}
