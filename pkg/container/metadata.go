package container

import (
	"maps"
	"strings"
)

// MergeMetadata folds records into one field map in file order; later records
// override earlier keys.
func MergeMetadata(records []Metadata) map[string]string {
	merged := map[string]string{}

	for _, rec := range records {
		maps.Copy(merged, rec.Fields)
	}

	return merged
}

// Unquote trims surrounding whitespace and double quotes from a metadata value.
func Unquote(v string) string {
	return strings.Trim(strings.TrimSpace(v), `"`)
}
