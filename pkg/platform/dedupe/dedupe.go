// Package dedupe removes repeats from id lists and config lists.
package dedupe

import (
	"strings"
)

// IDs drops duplicates and non-positive ids from a slice. Order of first
// appearance is preserved. The input is not modified.
//
// Example:
//
//	IDs([]int64{3, 0, 1, 3, -2})
//	// Returns: []int64{3, 1}
func IDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}

	seen := make(map[int64]struct{}, len(ids))
	result := make([]int64, 0, len(ids))

	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			result = append(result, id)
		}
	}

	return result
}

// SplitTrim splits a comma separated value, trimming whitespace and dropping
// empty and repeated elements.
//
// Example:
//
//	SplitTrim(" kafka-1:9092, kafka-2:9092,,kafka-1:9092")
//	// Returns: []string{"kafka-1:9092", "kafka-2:9092"}
func SplitTrim(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	seen := make(map[string]struct{}, len(parts))
	result := make([]string, 0, len(parts))

	for _, v := range parts {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
