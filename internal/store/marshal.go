package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/hdlorder/internal/ir"
)

// marshalItems converts trigger-set items to canonical JSON TEXT for storage.
// Items are stored in their rendered form, e.g. ["negedge rst","posedge clk"].
func marshalItems(t *ir.SenTree) (string, error) {
	data, err := ir.MarshalCanonical(t.Texts())
	if err != nil {
		return "", fmt.Errorf("marshal items: %w", err)
	}
	return string(data), nil
}

// unmarshalItems parses canonical JSON TEXT back to rendered items.
func unmarshalItems(data string) ([]string, error) {
	if data == "" || data == "[]" {
		return []string{}, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	return items, nil
}

// Timestamps are stored as RFC 3339 text in UTC so that they sort and
// compare as strings.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at %q: %w", s, err)
	}
	return t, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
