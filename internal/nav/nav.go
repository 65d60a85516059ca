// Package nav derives the ordered navigation index from a parsed page set.
package nav

import (
	"encoding/json"
	"sort"

	"github.com/docsmith/docsmith/internal/page"
)

// Entry is one navigation menu item.
type Entry struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Index is the ordered navigation menu, fully regenerated each build.
type Index struct {
	Entries []Entry `json:"entries"`
}

// Build computes the navigation index from the given pages.
//
// Ordering policy (total and deterministic):
//   - pages with nav_order sort ascending; equal values break ties by path
//     lexical order
//   - pages without nav_order follow all ordered pages, keeping their input
//     order (discovery order) among themselves
//
// Build never fails; an empty page set yields an empty index.
func Build(pages []*page.Page) Index {
	ordered := make([]*page.Page, 0, len(pages))
	trailing := make([]*page.Page, 0)

	for _, p := range pages {
		if p.HasNavOrder() {
			ordered = append(ordered, p)
		} else {
			trailing = append(trailing, p)
		}
	}

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := *ordered[i].NavOrder, *ordered[j].NavOrder
		if a != b {
			return a < b
		}
		return ordered[i].Path < ordered[j].Path
	})

	idx := Index{Entries: make([]Entry, 0, len(pages))}
	for _, p := range ordered {
		idx.Entries = append(idx.Entries, Entry{Title: p.Title, Path: p.Path})
	}
	for _, p := range trailing {
		idx.Entries = append(idx.Entries, Entry{Title: p.Title, Path: p.Path})
	}
	return idx
}

// MarshalJSON keeps the artifact shape stable even for an empty index.
func (x Index) MarshalJSON() ([]byte, error) {
	entries := x.Entries
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(struct {
		Entries []Entry `json:"entries"`
	}{Entries: entries})
}

// Paths returns the ordered page paths, mostly for tests and diagnostics.
func (x Index) Paths() []string {
	out := make([]string, len(x.Entries))
	for i, e := range x.Entries {
		out[i] = e.Path
	}
	return out
}
