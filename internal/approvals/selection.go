package approvals

// Selection tracks which scan-result ids the user has marked for
// revocation. It is plain UI state with pure transitions: mutated only
// by explicit toggles, select-all, or Clear. Replacing the scan result
// must Clear the selection — ids from a previous scan are meaningless
// against the new one.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips membership of id. Toggling twice restores the prior state.
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

// SelectAll replaces the selection with every given id.
func (s *Selection) SelectAll(ids []string) {
	s.ids = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.ids = make(map[string]struct{})
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s *Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids in unspecified order. Use Resolve for
// result-ordered items.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	return out
}

// Resolve returns the selected items present in the given scan result,
// in result order. Selected ids that no longer resolve (stale, from an
// earlier scan) are skipped.
func (s *Selection) Resolve(items []Item) []Item {
	out := make([]Item, 0, len(s.ids))
	for _, it := range items {
		if s.Has(it.ID) {
			out = append(out, it)
		}
	}
	return out
}
