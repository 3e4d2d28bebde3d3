package jsonl

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/shopspring/decimal"
)

type field struct {
	key   string
	value json.RawMessage
}

// objectWriter builds a JSON object whose fields keep the order they were
// added in, so that lines are stable and diff well. Its zero value is ready to use.
type objectWriter struct {
	fields []field
	err    error
}

// Append adds a field, the value is marshaled with json.Marshal.
func (w *objectWriter) Append(key string, value any) *objectWriter {
	if w.err != nil {
		return w
	}
	raw, err := json.Marshal(value)
	if err != nil {
		w.err = fmt.Errorf("cannot marshal %q: %w", key, err)
		return w
	}
	w.fields = append(w.fields, field{key, raw})
	return w
}

// Optional adds the field unless value is the zero value of its type.
func (w *objectWriter) Optional(key string, value any) *objectWriter {
	if v := reflect.ValueOf(value); !v.IsValid() || v.IsZero() {
		return w
	}
	return w.Append(key, value)
}

// Decimal adds a nullable decimal, omitted when null.
func (w *objectWriter) Decimal(key string, value decimal.NullDecimal) *objectWriter {
	if !value.Valid {
		return w
	}
	return w.Append(key, value.Decimal)
}

func (w *objectWriter) MarshalJSON() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := []byte{'{'}
	for i, f := range w.fields {
		if i > 0 {
			out = append(out, ',')
		}
		key, _ := json.Marshal(f.key)
		out = append(out, key...)
		out = append(out, ':')
		out = append(out, f.value...)
	}
	return append(out, '}'), nil
}
