// Package filter holds the user's selected item categories.
package filter

// DefaultFallback is the item set queried when nothing is selected: the first six
// known category ids. An empty selection never means "all" or "none".
var DefaultFallback = []int64{1, 2, 3, 4, 5, 6}

// Selection is an ordered set of item ids. The zero value is the empty selection.
// Selections are immutable; Toggle returns a new value.
type Selection struct {
	ids []int64
}

// NewSelection builds a selection from ids, dropping duplicates after the first.
func NewSelection(ids ...int64) Selection {
	var s Selection
	for _, id := range ids {
		if !s.Contains(id) {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Toggle removes id when present and appends it otherwise.
func (s Selection) Toggle(id int64) Selection {
	next := make([]int64, 0, len(s.ids)+1)
	found := false
	for _, existing := range s.ids {
		if existing == id {
			found = true
			continue
		}
		next = append(next, existing)
	}
	if !found {
		next = append(next, id)
	}
	return Selection{ids: next}
}

// Contains reports whether id is selected.
func (s Selection) Contains(id int64) bool {
	for _, existing := range s.ids {
		if existing == id {
			return true
		}
	}
	return false
}

// Len returns the number of selected ids.
func (s Selection) Len() int { return len(s.ids) }

// Empty reports whether no explicit filter is selected.
func (s Selection) Empty() bool { return len(s.ids) == 0 }

// IDs returns a copy of the selected ids, oldest addition first.
func (s Selection) IDs() []int64 {
	return append([]int64(nil), s.ids...)
}

// Effective resolves the ids to query: fallback when s is empty, s verbatim otherwise.
func (s Selection) Effective(fallback []int64) []int64 {
	if s.Empty() {
		return append([]int64(nil), fallback...)
	}
	return s.IDs()
}
