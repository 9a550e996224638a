package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// PickerItem is one candidate in the client jump picker.
type PickerItem struct {
	ID    string
	Label string
	Meta  string
}

// RankItems filters and orders picker candidates for a query. Substring
// hits come first in input order; near-misses follow ranked by edit
// distance, so a typo still finds the client.
func RankItems(items []PickerItem, query string) []PickerItem {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return items
	}

	type scored struct {
		item PickerItem
		dist int
	}
	var hits []PickerItem
	var near []scored
	for _, it := range items {
		label := strings.ToLower(it.Label)
		if strings.Contains(label, query) || strings.Contains(strings.ToLower(it.Meta), query) {
			hits = append(hits, it)
			continue
		}
		dist := levenshtein.ComputeDistance(query, label)
		// allow roughly one typo per three query characters
		if dist <= len(query)/3+1 {
			near = append(near, scored{item: it, dist: dist})
		}
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].dist < near[j].dist })
	for _, s := range near {
		hits = append(hits, s.item)
	}
	return hits
}
