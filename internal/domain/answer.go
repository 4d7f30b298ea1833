package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AnswerKind tags the shape of an Answer.
type AnswerKind uint8

const (
	// AnswerScalar is a single string (free-text or one selected choice).
	AnswerScalar AnswerKind = iota
	// AnswerSet is an unordered collection of choice texts.
	AnswerSet
)

// Answer is either Scalar(string) or Set([]string). The zero value is Scalar("").
// On the wire a scalar is a JSON string, a set is a JSON array and null decodes to Scalar("").
type Answer struct {
	kind   AnswerKind
	scalar string
	set    []string
}

// Scalar builds a single-string answer.
func Scalar(s string) Answer {
	return Answer{kind: AnswerScalar, scalar: s}
}

// Set builds a multi-value answer. The slice is copied.
func Set(values ...string) Answer {
	cp := make([]string, len(values))
	copy(cp, values)
	return Answer{kind: AnswerSet, set: cp}
}

func (a Answer) Kind() AnswerKind { return a.kind }

func (a Answer) IsSet() bool { return a.kind == AnswerSet }

// Value returns the scalar payload; empty for sets.
func (a Answer) Value() string { return a.scalar }

// Values returns a copy of the set payload; nil for scalars.
func (a Answer) Values() []string {
	if a.kind != AnswerSet {
		return nil
	}
	cp := make([]string, len(a.set))
	copy(cp, a.set)
	return cp
}

// AsSet returns the answer in list form; a scalar becomes a one-element list.
func (a Answer) AsSet() []string {
	if a.kind == AnswerSet {
		return a.Values()
	}
	return []string{a.scalar}
}

func (a Answer) String() string {
	if a.kind == AnswerSet {
		return fmt.Sprintf("%q", a.set)
	}
	return fmt.Sprintf("%q", a.scalar)
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if a.kind == AnswerSet {
		if a.set == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.set)
	}
	return json.Marshal(a.scalar)
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*a = Scalar("")
		return nil
	case trimmed[0] == '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return fmt.Errorf("decode answer list: %w", err)
		}
		values := make([]string, 0, len(raw))
		for _, item := range raw {
			s, err := scalarText(item)
			if err != nil {
				return err
			}
			values = append(values, s)
		}
		*a = Answer{kind: AnswerSet, set: values}
		return nil
	default:
		s, err := scalarText(trimmed)
		if err != nil {
			return err
		}
		*a = Scalar(s)
		return nil
	}
}

// scalarText accepts strings, numbers and booleans since spreadsheet cells and
// free-text inputs both end up here.
func scalarText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("decode answer: %w", err)
		}
		return s, nil
	}
	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return "", fmt.Errorf("decode answer: %w", err)
	}
	switch v.(type) {
	case float64, bool:
		return string(trimmed), nil
	default:
		return "", fmt.Errorf("decode answer: unsupported value %s", trimmed)
	}
}
