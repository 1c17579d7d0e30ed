package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// NumericInput holds a questionnaire value that arrives either as a JSON number
// or as a legacy string encoding such as "under-24M", "1.5억" or "1-4".
// Exactly one of Number and Text is meaningful; Number wins when both are set.
type NumericInput struct {
	Number *float64
	Text   string
}

// NumberInput wraps a numeric value.
func NumberInput(v float64) NumericInput {
	return NumericInput{Number: &v}
}

// IntInput wraps an integer value.
func IntInput(v int) NumericInput {
	return NumberInput(float64(v))
}

// TextInput wraps a legacy string value.
func TextInput(s string) NumericInput {
	return NumericInput{Text: s}
}

// IsNumber reports whether the value arrived as a usable number.
func (n NumericInput) IsNumber() bool {
	return n.Number != nil && !math.IsNaN(*n.Number)
}

// Int returns the numeric value truncated toward zero, or 0 when the value is text.
func (n NumericInput) Int() int {
	if !n.IsNumber() || math.IsInf(*n.Number, 0) {
		return 0
	}
	return int(*n.Number)
}

// String renders the value the way it was supplied.
func (n NumericInput) String() string {
	if n.IsNumber() {
		return strconv.FormatFloat(*n.Number, 'f', -1, 64)
	}
	return n.Text
}

// UnmarshalJSON accepts a number, a string or null.
func (n *NumericInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*n = NumericInput{}
		return nil
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("invalid numeric input: %w", err)
		}
		*n = TextInput(s)
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return fmt.Errorf("numeric input must be a number or a string: %w", err)
	}
	*n = NumberInput(f)
	return nil
}

// MarshalJSON writes numbers as numbers and legacy values as strings.
func (n NumericInput) MarshalJSON() ([]byte, error) {
	if n.IsNumber() {
		return json.Marshal(*n.Number)
	}
	if n.Text == "" {
		return []byte("null"), nil
	}
	return json.Marshal(n.Text)
}
