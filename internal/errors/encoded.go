package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// SchemaVersion is the schema version stamped on every encoded error
// document (grounded on the teacher's internal/schema version constants).
const SchemaVersion = "effectlang.error/v1"

// Fix represents a suggested remediation with a confidence score, carried
// through unchanged from the teacher's internal/errors.Fix shape.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Encoded is a structured error report in JSON form, field-for-field the
// shape of the teacher's internal/errors.Encoded.
type Encoded struct {
	Schema     string      `json:"schema"`
	Phase      string      `json:"phase"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Fix        Fix         `json:"fix,omitempty"`
	Context    interface{} `json:"context,omitempty"`
	SourceSpan string      `json:"source_span,omitempty"`
}

// Error satisfies the error interface so Encoded can be returned/wrapped
// like any other Go error.
func (e *Encoded) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Phase, e.Message)
}

// New builds an Encoded error for the given phase/code/message.
func New(phase, code, message string) *Encoded {
	return &Encoded{Schema: SchemaVersion, Phase: phase, Code: code, Message: message}
}

// WithContext attaches free-form structured context (e.g. the two types
// that failed to unify) and returns the receiver for chaining.
func (e *Encoded) WithContext(ctx interface{}) *Encoded {
	e.Context = ctx
	return e
}

// WithSpan attaches an opaque forwarded source-location string.
func (e *Encoded) WithSpan(span string) *Encoded {
	e.SourceSpan = span
	return e
}

// MarshalDeterministic marshals v to JSON with sorted object keys, so two
// runs over identical input produce byte-identical output (grounded on the
// teacher's internal/schema.MarshalDeterministic technique).
func MarshalDeterministic(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return raw, nil
	}
	return marshalSorted(generic)
}

func marshalSorted(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalSorted(val[k])
			if err != nil {
				return nil, err
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	case []interface{}:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			eb, err := marshalSorted(e)
			if err != nil {
				return nil, err
			}
			buf.Write(eb)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	default:
		return json.Marshal(val)
	}
}
