package mysql

import "strings"

// stringOrDash substitutes "-" for empty or whitespace-only values so the
// index never stores blank display fields.
func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
