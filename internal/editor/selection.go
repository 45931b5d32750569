package editor

import "evalforge/internal/model"

// Selection tracks which item the properties panel is editing.
// It only stores the id; the item itself is always read from the store.
type Selection struct {
	selectedID string
}

// SelectedID returns the selected item id, or "" when nothing is selected
func (s *Selection) SelectedID() string {
	return s.selectedID
}

// Item returns the live view of the selected item
func (s *Selection) Item(store *Store) (model.Item, bool) {
	if s.selectedID == "" {
		return model.Item{}, false
	}
	idx := store.IndexOf(s.selectedID)
	if idx < 0 {
		return model.Item{}, false
	}
	return store.At(idx)
}

// Select makes id the active item if it exists in the store
func (s *Selection) Select(store *Store, id string) bool {
	if store.IndexOf(id) < 0 {
		return false
	}
	s.selectedID = id
	return true
}

// Clear drops the selection
func (s *Selection) Clear() {
	s.selectedID = ""
}

// afterDelete moves the selection off an item that was removed from index.
// The item that shifted into the slot wins, then the new last item, then nothing.
func (s *Selection) afterDelete(store *Store, deletedID string, index int) {
	if s.selectedID != deletedID {
		return
	}
	switch n := store.Len(); {
	case n == 0:
		s.selectedID = ""
	case index < n:
		it, _ := store.At(index)
		s.selectedID = it.ID
	default:
		it, _ := store.At(n - 1)
		s.selectedID = it.ID
	}
}

// reconcile drops a selection whose item no longer exists
func (s *Selection) reconcile(store *Store) {
	if s.selectedID != "" && store.IndexOf(s.selectedID) < 0 {
		s.selectedID = ""
	}
}

// autoSelect picks the first editable item when nothing is selected
func (s *Selection) autoSelect(store *Store) {
	if s.selectedID != "" {
		return
	}
	for _, it := range store.tmpl.Items {
		if !it.ReadOnly {
			s.selectedID = it.ID
			return
		}
	}
}
