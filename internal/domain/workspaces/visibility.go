package workspaces

import "strings"

type Visibility string

const (
	VisibilityOpen      Visibility = "open"
	VisibilityProtected Visibility = "protected"
)

// ParseVisibility accepts only the known visibility values.
func ParseVisibility(raw string) (Visibility, bool) {
	switch Visibility(strings.ToLower(strings.TrimSpace(raw))) {
	case VisibilityOpen:
		return VisibilityOpen, true
	case VisibilityProtected:
		return VisibilityProtected, true
	default:
		return "", false
	}
}
