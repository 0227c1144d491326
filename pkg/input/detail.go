package input

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/go-drift/nativebind/pkg/errors"
	"github.com/go-drift/nativebind/pkg/platform"
)

// ChangeEventDetail is the payload of a widget change event. Value extracts
// the bound value it carries; decode failures are reported by the payload
// type itself.
type ChangeEventDetail[T any] interface {
	Value() (T, error)
}

// DetailDecoder turns a raw change-event payload into a detail.
type DetailDecoder[D any] func(payload []byte) (D, error)

// JSONDecoder decodes payloads with the platform codec.
func JSONDecoder[D any]() DetailDecoder[D] {
	return func(payload []byte) (D, error) {
		var d D
		err := platform.DefaultCodec.DecodeInto(payload, &d)
		return d, err
	}
}

// ValueDetail is a payload of the form {"value": ...}. A payload without
// the "value" key is rejected with [ErrNoValue].
type ValueDetail[T any] struct {
	Data T `json:"value"`
}

// UnmarshalJSON decodes the "value" key of b.
func (d *ValueDetail[T]) UnmarshalJSON(b []byte) error {
	return unmarshalKey(b, "value", &d.Data)
}

// Value returns the carried value.
func (d ValueDetail[T]) Value() (T, error) {
	return d.Data, nil
}

// CheckedDetail is a payload of the form {"checked": true}. A payload
// without the "checked" key is rejected with [ErrNoValue].
type CheckedDetail struct {
	Checked bool `json:"checked"`
}

// UnmarshalJSON decodes the "checked" key of b.
func (d *CheckedDetail) UnmarshalJSON(b []byte) error {
	return unmarshalKey(b, "checked", &d.Checked)
}

func unmarshalKey(b []byte, key string, v any) error {
	r := gjson.GetBytes(b, key)
	if !r.Exists() {
		return fmt.Errorf("%w: missing %q in %s", ErrNoValue, key, b)
	}
	return json.Unmarshal([]byte(r.Raw), v)
}

// Value returns the checked state.
func (d CheckedDetail) Value() (bool, error) {
	return d.Checked, nil
}

// DefaultDetailPath is the gjson path read by JSONDetail when Path is empty.
const DefaultDetailPath = "value"

// JSONDetail keeps the raw payload and extracts the value at Path on demand.
// Use [JSONPathDecoder] to decode payloads whose value is nested.
type JSONDetail[T any] struct {
	Raw  []byte
	Path string
}

// UnmarshalJSON stores the raw payload.
func (d *JSONDetail[T]) UnmarshalJSON(b []byte) error {
	d.Raw = append(d.Raw[:0], b...)
	return nil
}

// Value unmarshals the match at Path into T.
func (d JSONDetail[T]) Value() (T, error) {
	var v T
	path := d.Path
	if path == "" {
		path = DefaultDetailPath
	}
	r := gjson.GetBytes(d.Raw, path)
	if !r.Exists() {
		return v, &errors.ParseError{Channel: path, DataType: fmt.Sprintf("%T", v), Got: string(d.Raw)}
	}
	if err := json.Unmarshal([]byte(r.Raw), &v); err != nil {
		return v, &errors.ParseError{Channel: path, DataType: fmt.Sprintf("%T", v), Got: r.Value(), Err: err}
	}
	return v, nil
}

// JSONPathDecoder decodes payloads into a JSONDetail reading path.
func JSONPathDecoder[T any](path string) DetailDecoder[JSONDetail[T]] {
	return func(payload []byte) (JSONDetail[T], error) {
		raw := make([]byte, len(payload))
		copy(raw, payload)
		return JSONDetail[T]{Raw: raw, Path: path}, nil
	}
}
