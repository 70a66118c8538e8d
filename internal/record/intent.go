package record

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FieldChange is one field/value pair of an update intent. Values are
// JSON-untyped: string, float64, bool or nil.
type FieldChange struct {
	Name  string
	Value any
}

// Intent is the ordered set of field changes a caller wants applied to one
// record. Order matters: the engine validates and applies changes in the
// order supplied, so Intent keeps pairs as a slice instead of a map.
type Intent struct {
	Changes []FieldChange
}

// Set appends a change, mostly for building intents in code and tests.
func (in *Intent) Set(name string, value any) {
	in.Changes = append(in.Changes, FieldChange{Name: name, Value: value})
}

// Empty reports whether the intent carries no changes.
func (in Intent) Empty() bool { return len(in.Changes) == 0 }

// Fields returns the changed field names in intent order.
func (in Intent) Fields() []string {
	names := make([]string, len(in.Changes))
	for i, ch := range in.Changes {
		names[i] = ch.Name
	}
	return names
}

// UnmarshalJSON decodes a JSON object into ordered pairs. The token stream
// is walked directly because map-based decoding would lose key order.
func (in *Intent) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("update intent must be a JSON object")
	}

	changes := make([]FieldChange, 0, 4)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("update intent has a non-string key")
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return err
		}
		changes = append(changes, FieldChange{Name: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	in.Changes = changes
	return nil
}

// MarshalJSON writes the changes back as an object in their original order.
func (in Intent) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ch := range in.Changes {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ch.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(ch.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
