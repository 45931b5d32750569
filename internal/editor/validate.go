package editor

import (
	"fmt"

	"evalforge/internal/model"
)

// Sanitize checks a template coming from outside the editor before it enters a store.
// A template that breaks an invariant is rejected with ErrInvalidTemplate. Options that
// arrive without an id get one.
func Sanitize(t model.Template) (model.Template, error) {
	if err := t.Validate(); err != nil {
		return model.Template{}, fmt.Errorf("%w: %w", ErrInvalidTemplate, err)
	}
	t = t.Clone()
	if t.Items == nil {
		t.Items = []model.Item{}
	}
	for i, it := range t.Items {
		switch c := it.Config.(type) {
		case model.ChoiceConfig:
			c.Options = withOptionIDs(c.Options)
			t.Items[i].Config = c
		case model.RatingConfig:
			c.Options = withOptionIDs(c.Options)
			t.Items[i].Config = c
		case model.MatrixConfig:
			c.Columns = withOptionIDs(c.Columns)
			t.Items[i].Config = c
		}
	}
	return t, nil
}
