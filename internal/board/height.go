package board

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

const autoMarker = "auto"

// Height is either a fixed number or content-driven ("auto"). The zero value
// is auto.
type Height struct {
	value float64
	fixed bool
}

// Fixed returns a fixed height of v.
func Fixed(v float64) Height { return Height{value: v, fixed: true} }

// Auto returns a content-driven height.
func Auto() Height { return Height{} }

// IsAuto reports whether the height follows content.
func (h Height) IsAuto() bool { return !h.fixed }

// Value returns the fixed height and true, or 0 and false for auto.
func (h Height) Value() (float64, bool) { return h.value, h.fixed }

// Or returns the fixed height, or fallback when auto.
func (h Height) Or(fallback float64) float64 {
	if h.fixed {
		return h.value
	}
	return fallback
}

func (h Height) String() string {
	if !h.fixed {
		return autoMarker
	}
	return strconv.FormatFloat(h.value, 'f', -1, 64)
}

// MarshalJSON writes a number, or the string "auto".
func (h Height) MarshalJSON() ([]byte, error) {
	if !h.fixed {
		return []byte(`"` + autoMarker + `"`), nil
	}
	return json.Marshal(h.value)
}

// UnmarshalJSON accepts a number, "auto", or null (auto).
func (h *Height) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*h = Auto()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == autoMarker || s == "" {
			*h = Auto()
			return nil
		}
		// Numeric strings are accepted for snapshots written by hand.
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("board: height %q is neither a number nor %q", s, autoMarker)
		}
		*h = Fixed(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("board: height: %w", err)
	}
	*h = Fixed(v)
	return nil
}
