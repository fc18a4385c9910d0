package models

import (
	"fmt"
	"sort"
	"strings"
)

// Stats holds the free-form counters returned by the statistics endpoints.
type Stats map[string]any

// StatEntry is one labelled counter.
type StatEntry struct {
	Key   string
	Label string
	Value string
}

// Entries returns the counters sorted by key with a readable label.
func (s Stats) Entries() []StatEntry {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]StatEntry, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, StatEntry{Key: k, Label: humanize(k), Value: formatStat(s[k])})
	}
	return entries
}

func humanize(key string) string {
	label := strings.ReplaceAll(key, "_", " ")
	if label == "" {
		return label
	}
	return strings.ToUpper(label[:1]) + label[1:]
}

func formatStat(v any) string {
	switch t := v.(type) {
	case nil:
		return "N/A"
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	case map[string]any:
		parts := make([]string, 0, len(t))
		for _, e := range Stats(t).Entries() {
			parts = append(parts, e.Label+": "+e.Value)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
