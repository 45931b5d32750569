package editor

import (
	"fmt"

	"evalforge/internal/model"
)

// ImportMode says how imported items combine with the current template
type ImportMode string

const (
	ImportAppend  ImportMode = "append"
	ImportReplace ImportMode = "replace"
)

// Rekey gives every item and option a fresh id. Labels, variableIds and configuration
// content are kept; a choice-like item that arrives without configuration gets the
// factory defaults for its type. A rating scale out of bounds falls back to the default
// scale and one whose options do not match its max is renumbered.
func Rekey(items []model.Item) ([]model.Item, error) {
	out := make([]model.Item, 0, len(items))
	for i, it := range items {
		if !it.Type.Valid() {
			return nil, fmt.Errorf("item %d: %w: %q", i, ErrUnknownItemType, it.Type)
		}
		it = it.Clone()
		it.ID = newID()

		switch c := it.Config.(type) {
		case model.ChoiceConfig:
			it.Config = model.ChoiceConfig{Options: rekeyOptions(c.Options)}
		case model.RatingConfig:
			switch {
			case c.Max < model.MinRatingMax || c.Max > model.MaxRatingMax:
				it.Config = DefaultConfig(it.Type)
			case len(c.Options) != c.Max:
				it.Config = model.RatingConfig{Max: c.Max, Options: model.RatingOptions(c.Max, newID)}
			default:
				it.Config = model.RatingConfig{Max: c.Max, Options: rekeyOptions(c.Options)}
			}
		case model.MatrixConfig:
			it.Config = model.MatrixConfig{Rows: c.Rows, Columns: rekeyOptions(c.Columns)}
		case nil:
			it.Config = DefaultConfig(it.Type)
		}
		if it.Config != nil && it.Config.ItemType() != it.Type {
			it.Config = DefaultConfig(it.Type)
		}
		out = append(out, it)
	}
	return out, nil
}

func rekeyOptions(opts []model.Option) []model.Option {
	out := make([]model.Option, len(opts))
	for i, o := range opts {
		o.ID = newID()
		out[i] = o
	}
	return out
}

// Import re-keys externally built items and adds them to the template.
// A variableId that collides with an item already present gets the factory suffix,
// and an empty one is derived from the label.
func (e *Editor) Import(s model.TemplateSuggestion, mode ImportMode) ([]model.Item, error) {
	items, err := Rekey(s.Items)
	if err != nil {
		return nil, err
	}

	var base []model.Item
	if mode != ImportReplace {
		base = e.store.tmpl.Items
	}

	seen := make([]model.Item, len(base), len(base)+len(items))
	copy(seen, base)
	for i := range items {
		v := items[i].VariableID
		if v == "" {
			v = NormalizeVariableID(items[i].Label)
		}
		items[i].VariableID = UniqueVariableID(v, seen)
		seen = append(seen, items[i])
	}

	t := e.store.Template()
	if mode == ImportReplace {
		if s.Title != "" {
			t.Title = s.Title
		}
		if s.Description != "" {
			t.Description = s.Description
		}
	}
	t.Items = seen
	e.Load(t)
	if len(items) > 0 {
		e.sel.selectedID = items[0].ID
	}
	return items, nil
}
