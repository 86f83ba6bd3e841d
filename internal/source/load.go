package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrNotArray = errors.New("record file is not a JSON array")
	ErrEmpty    = errors.New("record file is empty")
)

// RecordError reports one array element that could not be decoded.
type RecordError struct {
	Index int
	Name  string
	Err   error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// DecodeError lists the elements of a record file that failed to decode. Decode
// returns it together with the elements that did decode.
type DecodeError struct {
	Records []*RecordError
}

func (e *DecodeError) Error() string {
	if len(e.Records) == 1 {
		return e.Records[0].Error()
	}
	return fmt.Sprintf("%d records could not be decoded, first: %v", len(e.Records), e.Records[0])
}

// Decode parses a record file whose top level is a JSON array. Each element is
// decoded on its own; elements that fail are reported in a *DecodeError while the
// rest are returned.
func Decode[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimLeft(data, "\ufeff\n\r\t ")
	if len(trimmed) == 0 {
		return nil, ErrEmpty
	}
	if trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	records := make([]T, 0, len(elems))
	var failed []*RecordError
	for i, elem := range elems {
		var rec T
		if err := json.Unmarshal(elem, &rec); err != nil {
			failed = append(failed, &RecordError{Index: i, Name: elementName(elem), Err: err})
			continue
		}
		records = append(records, rec)
	}
	if len(failed) > 0 {
		return records, &DecodeError{Records: failed}
	}
	return records, nil
}

func elementName(elem json.RawMessage) string {
	var m Meta
	if err := json.Unmarshal(elem, &m); err != nil {
		return "(unnamed)"
	}
	return m.DisplayName()
}

// LoadFile reads and decodes one record file. Like Decode, it may return records
// alongside a *DecodeError.
func LoadFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	records, err := Decode[T](data)
	if err != nil {
		return records, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}
