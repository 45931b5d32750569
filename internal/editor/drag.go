package editor

import (
	"fmt"
	"strings"

	"evalforge/internal/model"
)

// PaletteSourcePrefix marks a drag that starts from the "add item" palette
const PaletteSourcePrefix = "palette:"

// Drop targets besides item ids. The edges position a reordered item; a palette drop
// accepts every target but always appends the new item, as InsertItem does.
const (
	DropCanvas = "canvas"
	DropStart  = "edge:start"
	DropEnd    = "edge:end"
)

// DragSource is the subject of a drag gesture: either a palette entry or an existing item
type DragSource struct {
	PaletteType model.ItemType `json:"paletteType,omitempty"`
	ItemID      string         `json:"itemId,omitempty"`
}

// IsPalette reports whether the gesture creates a new item
func (d DragSource) IsPalette() bool {
	return d.PaletteType != ""
}

// Tag encodes the source the way the client sends it
func (d DragSource) Tag() string {
	if d.IsPalette() {
		return PaletteSourcePrefix + string(d.PaletteType)
	}
	return d.ItemID
}

// ParseDragSource decodes a gesture-source tag
func ParseDragSource(tag string) (DragSource, error) {
	if rest, ok := strings.CutPrefix(tag, PaletteSourcePrefix); ok {
		typ := model.ItemType(rest)
		if !typ.Valid() {
			return DragSource{}, fmt.Errorf("%w: %w: %q", ErrInvalidDragSource, ErrUnknownItemType, rest)
		}
		return DragSource{PaletteType: typ}, nil
	}
	if tag == "" {
		return DragSource{}, fmt.Errorf("%w: empty tag", ErrInvalidDragSource)
	}
	return DragSource{ItemID: tag}, nil
}

// DragController is the per-gesture state machine: Idle -> Dragging(subject) -> Idle.
// Only one gesture may be in flight.
type DragController struct {
	subject *DragSource
}

// Dragging returns the current subject, if a gesture is in flight
func (d *DragController) Dragging() (DragSource, bool) {
	if d.subject == nil {
		return DragSource{}, false
	}
	return *d.subject, true
}

// Begin moves from Idle to Dragging
func (d *DragController) Begin(src DragSource) error {
	if d.subject != nil {
		return fmt.Errorf("%w: %s", ErrDragInProgress, d.subject.Tag())
	}
	d.subject = &src
	return nil
}

// Cancel abandons the gesture without touching the template
func (d *DragController) Cancel() {
	d.subject = nil
}

// finish returns the subject and goes back to Idle
func (d *DragController) finish() (DragSource, bool) {
	src, ok := d.Dragging()
	d.subject = nil
	return src, ok
}

type dropKind int

const (
	dropNone dropKind = iota
	dropInsert
	dropMove
)

// dropAction is the single store operation a drop resolves to
type dropAction struct {
	kind     dropKind
	itemType model.ItemType
	from, to int
}

// resolveDrop maps a finished gesture onto at most one store operation.
// Palette sources resolve to an append whatever valid target they land on.
func resolveDrop(store *Store, src DragSource, target string) dropAction {
	if src.IsPalette() {
		switch target {
		case DropCanvas, DropStart, DropEnd:
			return dropAction{kind: dropInsert, itemType: src.PaletteType}
		}
		if store.IndexOf(target) >= 0 {
			return dropAction{kind: dropInsert, itemType: src.PaletteType}
		}
		return dropAction{}
	}

	from := store.IndexOf(src.ItemID)
	if from < 0 || target == src.ItemID {
		return dropAction{}
	}

	var to int
	switch target {
	case DropStart:
		to = 0
	case DropEnd:
		to = store.Len() - 1
	default:
		to = store.IndexOf(target)
	}
	if to < 0 || to == from {
		return dropAction{}
	}
	return dropAction{kind: dropMove, from: from, to: to}
}
