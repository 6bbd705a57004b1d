// Package dedupe removes repeated values from slices while keeping the
// first-seen order.
package dedupe

import "strings"

// Values drops repeated elements. Order is preserved.
func Values[T comparable](values []T) []T {
	if len(values) == 0 {
		return values
	}
	seen := make(map[T]struct{}, len(values))
	out := make([]T, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Trimmed trims each element, drops empty ones and removes duplicates.
//
//	Trimmed([]string{"  kafka-1:9092 ", "kafka-2:9092", "kafka-1:9092", " "})
//	// []string{"kafka-1:9092", "kafka-2:9092"}
func Trimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return Values(out)
}
