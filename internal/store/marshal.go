package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// marshalDraws converts recorded draws to JSON TEXT.
// encoding/json writes the shortest decimal that parses back to the same
// float64, so replayed draws are bit-identical.
func marshalDraws(d Draws) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return "", fmt.Errorf("marshal draws: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalDraws parses JSON TEXT written by marshalDraws.
func unmarshalDraws(data string) (Draws, error) {
	var d Draws
	if data == "" || data == "{}" {
		return d, nil
	}
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return d, fmt.Errorf("unmarshal draws: %w", err)
	}
	return d, nil
}
