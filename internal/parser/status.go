package parser

import "strings"

// statusDelimiter joins the consolidated status sources. Downstream
// filtering splits on the same delimiter to enumerate status keywords.
const statusDelimiter = " | "

// statusNoise are placeholder cells that carry no status information.
var statusNoise = map[string]bool{"-": true, "nan": true, "none": true}

// Consolidate combines the status-like source columns into one searchable
// annotation. Sources are joined in a fixed order (land status, CATATAN,
// K3, map status), skipping empties and placeholders. Case-insensitive
// duplicates collapse to their first occurrence.
func Consolidate(landStatus, note, claim, mapStatus string) string {
	sources := []string{landStatus, note, claim, mapStatus}

	seen := make(map[string]bool, len(sources))
	var parts []string
	for _, src := range sources {
		v := cleanText(src)
		if v == "" || statusNoise[strings.ToLower(v)] {
			continue
		}
		key := strings.ToLower(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, v)
	}

	return strings.Join(parts, statusDelimiter)
}

// SplitStatus breaks a consolidated annotation back into its parts.
// Used by filter-option extraction. Empty segments are skipped.
func SplitStatus(status string) []string {
	if status == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(status, "|") {
		if v := cleanText(p); v != "" {
			parts = append(parts, v)
		}
	}
	return parts
}
