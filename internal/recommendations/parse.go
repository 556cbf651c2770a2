package recommendations

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const fence = "```"

// StripCodeFences removes an optional leading ```json (or bare ```) marker and
// an optional trailing ``` marker, then trims surrounding whitespace.
func StripCodeFences(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, fence) {
		s = s[len(fence):]
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, fence)
	return strings.TrimSpace(s)
}

// ParseModelOutput strips code fences from raw and returns the compacted JSON.
func ParseModelOutput(raw string) (json.RawMessage, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, errors.New("empty model output")
	}

	dec := json.NewDecoder(strings.NewReader(cleaned))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unexpected data after JSON value at offset %d", dec.InputOffset())
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(cleaned)); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}
