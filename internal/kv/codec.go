package kv

import (
	"encoding/json"
	"fmt"
)

// Encode serializes a value to its stored JSON text.
func Encode(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal value: %w", err)
	}
	return string(data), nil
}

// Decode parses stored JSON text back into a generic value: numbers become
// float64, objects map[string]any, arrays []any.
func Decode(text string) (any, error) {
	var value any
	if err := DecodeInto(text, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// DecodeInto parses stored JSON text into dest.
func DecodeInto(text string, dest any) error {
	if err := json.Unmarshal([]byte(text), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value: %w", err)
	}
	return nil
}
