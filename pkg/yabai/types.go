package yabai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Layout is the window arrangement policy of a space.
type Layout string

const (
	LayoutFloat Layout = "float"
	LayoutBsp   Layout = "bsp"
)

// ParseLayout normalizes a layout name as yabai reports it. Matching
// is case-insensitive, the canonical form is lowercase.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(s) {
	case "float":
		return LayoutFloat, nil
	case "bsp":
		return LayoutBsp, nil
	}

	return "", fmt.Errorf("unknown layout %q", s)
}

// Opposite returns the other layout mode.
func (l Layout) Opposite() Layout {
	if l == LayoutBsp {
		return LayoutFloat
	}
	return LayoutBsp
}

func (l *Layout) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("layout field: %w", err)
	}

	parsed, err := ParseLayout(s)
	if err != nil {
		return err
	}

	*l = parsed
	return nil
}

// Space is the response of `yabai -m query --spaces --space`. Only
// Type feeds the tracker, the other fields are kept so the response
// always parses cleanly.
type Space struct {
	ID      uint32 `json:"id"`
	UUID    string `json:"uuid"`
	Index   uint32 `json:"index"`
	Type    Layout `json:"type"`
	Label   string `json:"label"`
	Display uint32 `json:"display"`
}
