package source

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type scalarKind uint8

const (
	scalarAbsent scalarKind = iota
	scalarString
	scalarNumber
	scalarBool
	scalarComposite
)

// Scalar is a loosely typed JSON value kept as text. Exports write numbers as
// strings and strings as numbers interchangeably, so every leaf field uses it.
type Scalar struct {
	raw  string
	kind scalarKind
}

// Str builds a string Scalar.
func Str(s string) Scalar {
	return Scalar{raw: s, kind: scalarString}
}

// Num builds a numeric Scalar.
func Num(f float64) Scalar {
	return Scalar{raw: strconv.FormatFloat(f, 'f', -1, 64), kind: scalarNumber}
}

func (s *Scalar) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*s = Scalar{}
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar{raw: str, kind: scalarString}
	case bytes.Equal(data, []byte("true")), bytes.Equal(data, []byte("false")):
		*s = Scalar{raw: string(data), kind: scalarBool}
	case data[0] == '{' || data[0] == '[':
		*s = Scalar{raw: string(data), kind: scalarComposite}
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		*s = Num(f)
	}
	return nil
}

func (s Scalar) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case scalarAbsent:
		return []byte("null"), nil
	case scalarString:
		return json.Marshal(s.raw)
	default:
		return []byte(s.raw), nil
	}
}

func (s Scalar) String() string {
	return s.raw
}

// Present reports whether the field was given a non-null value.
func (s Scalar) Present() bool {
	return s.kind != scalarAbsent
}

// IsSet reports whether the field is present and not an empty string.
func (s Scalar) IsSet() bool {
	return s.Present() && !(s.kind == scalarString && s.raw == "")
}

// Truthy follows the export tool's loose boolean semantics.
func (s Scalar) Truthy() bool {
	switch s.kind {
	case scalarAbsent:
		return false
	case scalarString:
		return s.raw != ""
	case scalarNumber:
		return s.raw != "0"
	case scalarBool:
		return s.raw == "true"
	default:
		return true
	}
}

// Or returns s when present, else fallback.
func (s Scalar) Or(fallback Scalar) Scalar {
	if s.Present() {
		return s
	}
	return fallback
}

// OrString returns the text of s when present, else fallback.
func (s Scalar) OrString(fallback string) string {
	if s.Present() {
		return s.raw
	}
	return fallback
}

// OneOrMany accepts either a single JSON value or an array of them.
type OneOrMany[T any] struct {
	Items []T
	Set   bool
}

func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*o = OneOrMany[T]{}
		return nil
	}
	if data[0] == '[' {
		var items []T
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*o = OneOrMany[T]{Items: items, Set: true}
		return nil
	}
	var one T
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*o = OneOrMany[T]{Items: []T{one}, Set: true}
	return nil
}

// TraitList accepts a list or a delimited string of trait names.
type TraitList []string

func (t *TraitList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = nil
		return nil
	}
	var many []Scalar
	if err := json.Unmarshal(data, &many); err == nil {
		out := make(TraitList, 0, len(many))
		for _, s := range many {
			if v := strings.TrimSpace(s.String()); v != "" {
				out = append(out, v)
			}
		}
		*t = out
		return nil
	}
	var one Scalar
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*t = splitTraits(one.String())
	return nil
}

func splitTraits(s string) TraitList {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ';' || r == ',' || r == '\n'
	})
	out := make(TraitList, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// ScalarMap is a keyed group of loose values. Anything other than an object
// decodes as empty.
type ScalarMap map[string]Scalar

func (m *ScalarMap) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*m = nil
		return nil
	}
	var out map[string]Scalar
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*m = out
	return nil
}

// List is an array field. Anything other than an array decodes as empty.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '[' {
		*l = nil
		return nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*l = out
	return nil
}
