package tui

// MultiSelect tracks checkbox-style selection over a list of ids. The
// single-select case is just a cursor plus linear lookup and needs no type.
type MultiSelect[ID comparable] struct {
	selected map[ID]struct{}
}

func NewMultiSelect[ID comparable]() *MultiSelect[ID] {
	return &MultiSelect[ID]{selected: map[ID]struct{}{}}
}

// Toggle flips membership of one id.
func (s *MultiSelect[ID]) Toggle(id ID) {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}
	s.selected[id] = struct{}{}
}

// Has reports whether the id is selected.
func (s *MultiSelect[ID]) Has(id ID) bool {
	_, ok := s.selected[id]
	return ok
}

// Len returns the number of selected ids.
func (s *MultiSelect[ID]) Len() int { return len(s.selected) }

// SelectAll selects every id in items.
func (s *MultiSelect[ID]) SelectAll(items []ID) {
	for _, id := range items {
		s.selected[id] = struct{}{}
	}
}

// ClearAll deselects everything.
func (s *MultiSelect[ID]) ClearAll() {
	s.selected = map[ID]struct{}{}
}

// ToggleAll selects all when not everything is selected, clears otherwise.
// Applying it twice returns to the original all-or-nothing state.
func (s *MultiSelect[ID]) ToggleAll(items []ID) {
	if s.IsAllSelected(len(items)) {
		s.ClearAll()
		return
	}
	s.SelectAll(items)
}

// IsAllSelected reports whether every one of n items is selected.
func (s *MultiSelect[ID]) IsAllSelected(n int) bool {
	return n > 0 && len(s.selected) == n
}

// IsPartiallySelected reports the indeterminate checkbox state:
// some but not all items selected.
func (s *MultiSelect[ID]) IsPartiallySelected(n int) bool {
	return len(s.selected) > 0 && len(s.selected) < n
}

// IDs returns the selected ids in unspecified order.
func (s *MultiSelect[ID]) IDs() []ID {
	out := make([]ID, 0, len(s.selected))
	for id := range s.selected {
		out = append(out, id)
	}
	return out
}
