package editor

import (
	"fmt"

	"evalforge/internal/model"
)

// Store holds the working copy of a template.
// Every mutation swaps in a freshly allocated item slice, so a Template value handed out
// earlier never observes a later change.
type Store struct {
	tmpl model.Template
}

// NewStore creates a store holding a copy of t
func NewStore(t model.Template) *Store {
	s := &Store{}
	s.SetTemplate(t)
	return s
}

// Template returns a deep copy of the current template
func (s *Store) Template() model.Template {
	return s.tmpl.Clone()
}

// Items returns a copy of the ordered items
func (s *Store) Items() []model.Item {
	return s.Template().Items
}

// Len returns the number of items
func (s *Store) Len() int {
	return len(s.tmpl.Items)
}

// At returns the item at index i
func (s *Store) At(i int) (model.Item, bool) {
	if i < 0 || i >= len(s.tmpl.Items) {
		return model.Item{}, false
	}
	return s.tmpl.Items[i].Clone(), true
}

// IndexOf returns the position of the item with the given id, or -1
func (s *Store) IndexOf(id string) int {
	for i, it := range s.tmpl.Items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// SetTemplate replaces the whole template
func (s *Store) SetTemplate(t model.Template) {
	t = t.Clone()
	if t.Items == nil {
		t.Items = []model.Item{}
	}
	s.tmpl = t
}

// InsertItem appends it to the item list
func (s *Store) InsertItem(it model.Item) {
	items := make([]model.Item, len(s.tmpl.Items), len(s.tmpl.Items)+1)
	copy(items, s.tmpl.Items)
	s.tmpl.Items = append(items, it.Clone())
}

// MoveItem removes the item at from and reinserts it at to, shifting the items in between.
func (s *Store) MoveItem(from, to int) error {
	n := len(s.tmpl.Items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d items", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	moved := s.tmpl.Items[from]
	items := make([]model.Item, 0, n)
	for i, it := range s.tmpl.Items {
		if i != from {
			items = append(items, it)
		}
	}
	items = append(items, model.Item{})
	copy(items[to+1:], items[to:])
	items[to] = moved
	s.tmpl.Items = items
	return nil
}

// ItemPatch carries the fields to change on an item; nil fields are left alone
type ItemPatch struct {
	Label      *string
	Required   *bool
	ReadOnly   *bool
	ImageURL   *string
	VariableID *string
	Config     model.ItemConfig
}

// UpdateItem merges p into the item with the given id. An unknown id is a no-op.
// Label and variableId are not editable on read-only items.
func (s *Store) UpdateItem(id string, p ItemPatch) error {
	idx := s.IndexOf(id)
	if idx < 0 {
		return nil
	}
	it := s.tmpl.Items[idx].Clone()

	if p.Config != nil && p.Config.ItemType() != it.Type {
		return fmt.Errorf("%w: %s item cannot take a %s configuration", ErrConfigMismatch, it.Type, p.Config.ItemType())
	}

	if !it.ReadOnly {
		if p.Label != nil {
			it.Label = *p.Label
		}
		if p.VariableID != nil {
			v := NormalizeVariableID(*p.VariableID)
			if it.Type.Scored() && s.variableTaken(v, id) {
				return fmt.Errorf("%w: %q", ErrDuplicateVariableID, v)
			}
			it.VariableID = v
		}
	}
	if p.Required != nil {
		it.Required = *p.Required
	}
	if p.ReadOnly != nil {
		it.ReadOnly = *p.ReadOnly
	}
	if p.ImageURL != nil && it.Type != model.ItemSectionHeader {
		it.ImageURL = *p.ImageURL
	}
	if p.Config != nil {
		it.Config = p.Config.Clone()
		if err := it.CheckConfig(); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigMismatch, err)
		}
	}

	items := make([]model.Item, len(s.tmpl.Items))
	copy(items, s.tmpl.Items)
	items[idx] = it
	s.tmpl.Items = items
	return nil
}

func (s *Store) variableTaken(v, exceptID string) bool {
	for _, it := range s.tmpl.Items {
		if it.ID != exceptID && it.Type.Scored() && it.VariableID == v {
			return true
		}
	}
	return false
}

// DeleteItem removes the item with the given id and reports the index it occupied.
func (s *Store) DeleteItem(id string) (int, bool) {
	idx := s.IndexOf(id)
	if idx < 0 {
		return -1, false
	}
	items := make([]model.Item, 0, len(s.tmpl.Items)-1)
	items = append(items, s.tmpl.Items[:idx]...)
	items = append(items, s.tmpl.Items[idx+1:]...)
	s.tmpl.Items = items
	return idx, true
}

// MetadataPatch carries template-level fields to change
type MetadataPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateMetadata merges p into the title and description
func (s *Store) UpdateMetadata(p MetadataPatch) {
	if p.Title != nil {
		s.tmpl.Title = *p.Title
	}
	if p.Description != nil {
		s.tmpl.Description = *p.Description
	}
}
