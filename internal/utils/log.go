package utils

import "strings"

// TruncateForLog flattens s onto a single line and cuts it to limit runes,
// marking the cut with an ellipsis. Prompts and model replies span many lines
// and would otherwise break console log output.
func TruncateForLog(s string, limit int) string {
	if limit <= 0 {
		return ""
	}

	flat := strings.Join(strings.Fields(s), " ")
	if runes := []rune(flat); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return flat
}
