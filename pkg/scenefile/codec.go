// Package scenefile reads and writes the editor's JSON scene documents.
//
// Decoding is strict: every required field of every record must be present
// with the right JSON type, and vectors must have exactly the expected
// number of components. The first violation is reported as a *FieldError.
package scenefile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrMalformed    = errors.New("malformed scene document")
	ErrMissingField = errors.New("missing required field")
	ErrInvalidField = errors.New("invalid field value")
)

// FieldError locates a decoding failure. Record is -1 for problems with the
// document itself.
type FieldError struct {
	Record int
	Field  string
	Err    error
}

func (e *FieldError) Error() string {
	switch {
	case e.Record < 0:
		return e.Err.Error()
	case e.Field == "":
		return fmt.Sprintf("record %d: %v", e.Record, e.Err)
	default:
		return fmt.Sprintf("record %d: field %q: %v", e.Record, e.Field, e.Err)
	}
}

func (e *FieldError) Unwrap() error { return e.Err }

const rootKey = "SceneObjects"

// Decode parses a scene document
func Decode(data []byte) (*Document, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, &FieldError{Record: -1, Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	raw, ok := root[rootKey]
	if !ok || isNull(raw) {
		return nil, &FieldError{Record: -1, Field: rootKey, Err: fmt.Errorf("%w: no %q array", ErrMalformed, rootKey)}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &FieldError{Record: -1, Field: rootKey, Err: fmt.Errorf("%w: %q is not an array", ErrMalformed, rootKey)}
	}

	doc := &Document{SceneObjects: make([]Record, 0, len(items))}
	for i, item := range items {
		rec, err := decodeRecord(item)
		if err != nil {
			err.Record = i
			return nil, err
		}
		doc.SceneObjects = append(doc.SceneObjects, rec)
	}
	return doc, nil
}

func decodeRecord(data json.RawMessage) (Record, *FieldError) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Record{}, &FieldError{Err: fmt.Errorf("%w: record is not an object", ErrMalformed)}
	}

	var rec Record
	required := []struct {
		name string
		dst  any
	}{
		{FieldType, &rec.Type},
		{FieldTag, &rec.Tag},
		{FieldTexture, &rec.Texture},
		{FieldShader, &rec.Shader},
		{FieldIsActive, &rec.IsActive},
		{FieldIsLight, &rec.IsLight},
	}
	for _, f := range required {
		raw, ok := fields[f.name]
		if !ok || isNull(raw) {
			return Record{}, &FieldError{Field: f.name, Err: ErrMissingField}
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			return Record{}, &FieldError{Field: f.name, Err: fmt.Errorf("%w: %v", ErrInvalidField, err)}
		}
	}

	vectors := []struct {
		name string
		dst  *[3]float32
	}{
		{FieldPosition, &rec.Position},
		{FieldRotation, &rec.Rotation},
		{FieldScale, &rec.Scale},
	}
	for _, v := range vectors {
		raw, ok := fields[v.name]
		if !ok || isNull(raw) {
			return Record{}, &FieldError{Field: v.name, Err: ErrMissingField}
		}
		if err := decodeVector(raw, v.dst[:]); err != nil {
			return Record{}, &FieldError{Field: v.name, Err: err}
		}
	}

	if raw, ok := fields[FieldColor]; ok && !isNull(raw) {
		var c [4]float32
		if err := decodeVector(raw, c[:]); err != nil {
			return Record{}, &FieldError{Field: FieldColor, Err: err}
		}
		rec.Color = &c
	}

	if raw, ok := fields[FieldAttenuation]; ok && !isNull(raw) {
		att, err := decodeAttenuation(raw)
		if err != nil {
			return Record{}, &FieldError{Field: FieldAttenuation, Err: err}
		}
		rec.Attenuation = att
	}

	return rec, nil
}

func decodeVector(raw json.RawMessage, dst []float32) error {
	var vals []float32
	if err := json.Unmarshal(raw, &vals); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if len(vals) != len(dst) {
		return fmt.Errorf("%w: want %d numbers, got %d", ErrInvalidField, len(dst), len(vals))
	}
	copy(dst, vals)
	return nil
}

func decodeAttenuation(raw json.RawMessage) (*Attenuation, error) {
	var a struct {
		Constant  *float32 `json:"constant"`
		Linear    *float32 `json:"linear"`
		Quadratic *float32 `json:"quadratic"`
	}
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if a.Constant == nil || a.Linear == nil || a.Quadratic == nil {
		return nil, fmt.Errorf("%w: attenuation needs constant, linear and quadratic", ErrMissingField)
	}
	return &Attenuation{Constant: *a.Constant, Linear: *a.Linear, Quadratic: *a.Quadratic}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Marshal encodes doc as indented JSON with a trailing newline
func Marshal(doc *Document) ([]byte, error) {
	if doc.SceneObjects == nil {
		doc = &Document{SceneObjects: []Record{}}
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteFile replaces path with data. The bytes go to a temporary file in the
// same directory which is synced and then renamed over path, so readers see
// either the old or the new document.
func WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
