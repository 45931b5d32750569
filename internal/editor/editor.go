// Package editor implements the form-template editing model: the item factory, the
// copy-on-write template store, the selection that follows store mutations and the
// drag protocol that maps gestures onto store operations.
//
// An Editor is not safe for concurrent use. Callers serialise commands per editor,
// each command running to completion before the next one starts.
package editor

import (
	"fmt"

	"evalforge/internal/model"
)

// Editor bundles the store, the selection and the drag state of one open template
type Editor struct {
	store *Store
	sel   Selection
	drag  DragController
}

// New opens t for editing and auto-selects the first editable item
func New(t model.Template) *Editor {
	e := &Editor{store: NewStore(t)}
	e.sel.autoSelect(e.store)
	return e
}

// Restore rebuilds an editor from a persisted session
func Restore(s model.EditorSession) *Editor {
	e := &Editor{store: NewStore(s.Template)}
	e.sel.selectedID = s.SelectedID
	e.sel.reconcile(e.store)
	if s.DragSubject != "" {
		if src, err := ParseDragSource(s.DragSubject); err == nil {
			e.drag.subject = &src
		}
	}
	return e
}

// Snapshot writes the editor state into s, keeping the session identity fields
func (e *Editor) Snapshot(s *model.EditorSession) {
	s.Template = e.store.Template()
	s.SelectedID = e.sel.SelectedID()
	s.DragSubject = ""
	if src, ok := e.drag.Dragging(); ok {
		s.DragSubject = src.Tag()
	}
}

// Template returns a copy of the working template
func (e *Editor) Template() model.Template {
	return e.store.Template()
}

// Store exposes the underlying template store
func (e *Editor) Store() *Store {
	return e.store
}

// SelectedID returns the selected item id
func (e *Editor) SelectedID() string {
	return e.sel.SelectedID()
}

// Selected returns the live view of the selected item
func (e *Editor) Selected() (model.Item, bool) {
	return e.sel.Item(e.store)
}

// Select makes id the active item. Unknown ids leave the selection unchanged.
func (e *Editor) Select(id string) bool {
	if id == "" {
		e.sel.Clear()
		return true
	}
	return e.sel.Select(e.store, id)
}

// Load replaces the template, e.g. after a load or save round trip.
// A selection that still exists survives; otherwise the first editable item is picked.
func (e *Editor) Load(t model.Template) {
	e.store.SetTemplate(t)
	e.sel.reconcile(e.store)
	e.sel.autoSelect(e.store)
	if src, ok := e.drag.Dragging(); ok && !src.IsPalette() && e.store.IndexOf(src.ItemID) < 0 {
		e.drag.Cancel()
	}
}

// AddItem creates an item of type typ at the end of the list and selects it
func (e *Editor) AddItem(typ model.ItemType, label ...string) (model.Item, error) {
	it, err := CreateItem(typ, e.store.tmpl.Items, label...)
	if err != nil {
		return model.Item{}, err
	}
	e.store.InsertItem(it)
	e.sel.selectedID = it.ID
	return it, nil
}

// UpdateItem merges p into the item with the given id
func (e *Editor) UpdateItem(id string, p ItemPatch) error {
	return e.store.UpdateItem(id, p)
}

// DeleteItem removes the item and moves the selection if it pointed at it
func (e *Editor) DeleteItem(id string) bool {
	idx, ok := e.store.DeleteItem(id)
	if !ok {
		return false
	}
	e.sel.afterDelete(e.store, id, idx)
	if src, dragging := e.drag.Dragging(); dragging && src.ItemID == id {
		e.drag.Cancel()
	}
	return true
}

// MoveItem repositions an item by index
func (e *Editor) MoveItem(from, to int) error {
	return e.store.MoveItem(from, to)
}

// UpdateMetadata changes title and description
func (e *Editor) UpdateMetadata(p MetadataPatch) {
	e.store.UpdateMetadata(p)
}

// BeginDrag starts a gesture from a source tag
func (e *Editor) BeginDrag(tag string) error {
	src, err := ParseDragSource(tag)
	if err != nil {
		return err
	}
	return e.drag.Begin(src)
}

// CancelDrag abandons the current gesture
func (e *Editor) CancelDrag() {
	e.drag.Cancel()
}

// Dragging reports the subject of the gesture in flight
func (e *Editor) Dragging() (DragSource, bool) {
	return e.drag.Dragging()
}

// DropEffect reports what a drop did
type DropEffect string

const (
	DropNoop     DropEffect = "none"
	DropInserted DropEffect = "inserted"
	DropMoved    DropEffect = "moved"
)

// DropResult describes the outcome of a drop
type DropResult struct {
	Effect DropEffect `json:"effect"`
	ItemID string     `json:"itemId,omitempty"`
	From   int        `json:"from,omitempty"`
	To     int        `json:"to,omitempty"`
}

// Drop ends the gesture over target. The editor is back in Idle afterwards whatever the outcome;
// either the whole insert or move happens or nothing does.
func (e *Editor) Drop(target string) (DropResult, error) {
	src, ok := e.drag.finish()
	if !ok {
		return DropResult{Effect: DropNoop}, nil
	}

	act := resolveDrop(e.store, src, target)
	switch act.kind {
	case dropInsert:
		it, err := e.AddItem(act.itemType)
		if err != nil {
			return DropResult{Effect: DropNoop}, err
		}
		return DropResult{Effect: DropInserted, ItemID: it.ID}, nil
	case dropMove:
		if err := e.store.MoveItem(act.from, act.to); err != nil {
			return DropResult{Effect: DropNoop}, fmt.Errorf("drop %s on %s: %w", src.ItemID, target, err)
		}
		return DropResult{Effect: DropMoved, ItemID: src.ItemID, From: act.from, To: act.to}, nil
	}
	return DropResult{Effect: DropNoop}, nil
}
