package mutations

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// previewRunes bounds the offending line quoted in a ParseError.
const previewRunes = 80

// maxLineBytes bounds a single JSONL line.
const maxLineBytes = 16 << 20

// ParseError reports the first line of a batch that could not be turned into
// an operation.
type ParseError struct {
	Line    int
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Preview)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func preview(line string) string {
	if utf8.RuneCountInString(line) <= previewRunes {
		return line
	}
	runes := []rune(line)
	return string(runes[:previewRunes]) + "..."
}

// wireOperation is one JSONL line. Pointer fields distinguish absent from empty.
type wireOperation struct {
	Op                 string      `json:"op"`
	Type               string      `json:"type"`
	ID                 *string     `json:"id"`
	Label              *string     `json:"label"`
	StartID            *string     `json:"start_id"`
	EndID              *string     `json:"end_id"`
	SetProperties      *Properties `json:"set_properties"`
	RemoveProperties   *[]string   `json:"remove_properties"`
	RequiredProperties *[]string   `json:"required_properties"`
	OptionalProperties *[]string   `json:"optional_properties"`
	Description        *string     `json:"description"`
	ExampleFilePath    *string     `json:"example_file_path"`
	ExampleInFilePath  *string     `json:"example_in_file_path"`
}

// ParseBatch reads newline-delimited operations, skipping blank lines. It
// stops at the first bad line and returns a *ParseError.
func ParseBatch(r io.Reader) ([]Operation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var ops []Operation
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		op, err := ParseOperation([]byte(line))
		if err != nil {
			return nil, &ParseError{Line: lineNo, Preview: preview(line), Err: err}
		}
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, &ParseError{Line: lineNo + 1, Err: err}
	}
	return ops, nil
}

// ParseOperation decodes and validates one JSON operation.
func ParseOperation(data []byte) (Operation, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var w wireOperation
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOperation, err)
	}
	if dec.More() {
		return nil, invalidf("trailing data after JSON object")
	}

	op, err := w.toOperation()
	if err != nil {
		return nil, err
	}
	if err := op.Validate(); err != nil {
		return nil, err
	}
	return op, nil
}

func (w *wireOperation) forbid(fields map[string]bool) error {
	var present []string
	for _, f := range []struct {
		name string
		set  bool
	}{
		{"id", w.ID != nil},
		{"label", w.Label != nil},
		{"start_id", w.StartID != nil},
		{"end_id", w.EndID != nil},
		{"set_properties", w.SetProperties != nil},
		{"remove_properties", w.RemoveProperties != nil},
		{"required_properties", w.RequiredProperties != nil},
		{"optional_properties", w.OptionalProperties != nil},
		{"description", w.Description != nil},
		{"example_file_path", w.ExampleFilePath != nil},
		{"example_in_file_path", w.ExampleInFilePath != nil},
	} {
		if f.set && fields[f.name] {
			present = append(present, f.name)
		}
	}
	if len(present) > 0 {
		return invalidf("%s %s may not set %s", w.Op, w.Type, strings.Join(present, ", "))
	}
	return nil
}

var defineOnly = []string{"required_properties", "optional_properties", "description", "example_file_path", "example_in_file_path"}

func fieldSet(names ...[]string) map[string]bool {
	out := map[string]bool{}
	for _, group := range names {
		for _, n := range group {
			out[n] = true
		}
	}
	return out
}

func (w *wireOperation) toOperation() (Operation, error) {
	entity := EntityType(w.Type)
	if !entity.Valid() {
		return nil, invalidf("type must be node or edge, got %q", w.Type)
	}

	switch OpType(w.Op) {
	case OpDefine:
		if err := w.forbid(fieldSet([]string{"id", "start_id", "end_id", "set_properties", "remove_properties"})); err != nil {
			return nil, err
		}
		return &DefineOperation{
			EntityType:         entity,
			Label:              deref(w.Label),
			Description:        deref(w.Description),
			ExampleFilePath:    deref(w.ExampleFilePath),
			ExampleInFilePath:  deref(w.ExampleInFilePath),
			RequiredProperties: derefSlice(w.RequiredProperties),
			OptionalProperties: derefSlice(w.OptionalProperties),
		}, nil

	case OpCreate:
		forbidden := []string{"remove_properties"}
		if entity == EntityNode {
			forbidden = append(forbidden, "start_id", "end_id")
		}
		if err := w.forbid(fieldSet(forbidden, defineOnly)); err != nil {
			return nil, err
		}
		if entity == EntityNode {
			return &CreateNodeOperation{
				ID:            deref(w.ID),
				Label:         deref(w.Label),
				SetProperties: w.SetProperties,
			}, nil
		}
		return &CreateEdgeOperation{
			ID:            deref(w.ID),
			Label:         deref(w.Label),
			StartID:       deref(w.StartID),
			EndID:         deref(w.EndID),
			SetProperties: w.SetProperties,
		}, nil

	case OpUpdate:
		if err := w.forbid(fieldSet([]string{"start_id", "end_id"}, defineOnly)); err != nil {
			return nil, err
		}
		return &UpdateOperation{
			EntityType:       entity,
			ID:               deref(w.ID),
			Label:            deref(w.Label),
			SetProperties:    w.SetProperties,
			RemoveProperties: derefSlice(w.RemoveProperties),
		}, nil

	case OpDelete:
		if err := w.forbid(fieldSet([]string{"label", "start_id", "end_id", "set_properties", "remove_properties"}, defineOnly)); err != nil {
			return nil, err
		}
		return &DeleteOperation{EntityType: entity, ID: deref(w.ID)}, nil
	}

	return nil, invalidf("op must be one of DEFINE, CREATE, UPDATE, DELETE, got %q", w.Op)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefSlice(s *[]string) []string {
	if s == nil {
		return nil
	}
	return *s
}

// IsParseError reports whether err came from ParseBatch.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
