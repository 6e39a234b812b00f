package registry

import "strings"

// Normalize trims whitespace and a single leading "v" from a version token,
// so "v3.58.0" and "3.58.0" name the same release.
func Normalize(id string) string {
	id = strings.TrimSpace(id)
	if strings.HasPrefix(id, "v") || strings.HasPrefix(id, "V") {
		id = id[1:]
	}
	return id
}
