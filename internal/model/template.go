package model

import (
	"errors"
	"fmt"
	"time"
)

// Template is an evaluation form owned by a host
type Template struct {
	ID          string    `json:"id,omitempty"`
	HostID      string    `json:"hostId,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Items       []Item    `json:"items"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy that shares no slices with t
func (t Template) Clone() Template {
	out := t
	if t.Items != nil {
		out.Items = make([]Item, len(t.Items))
		for i, it := range t.Items {
			out.Items[i] = it.Clone()
		}
	}
	return out
}

// IsSaved reports whether the backend has assigned an id
func (t Template) IsSaved() bool {
	return t.ID != ""
}

// Validate checks the template invariants and returns every violation joined together.
func (t Template) Validate() error {
	var errs []error
	ids := make(map[string]bool, len(t.Items))
	vars := make(map[string]string, len(t.Items))

	for i, it := range t.Items {
		if it.ID == "" {
			errs = append(errs, fmt.Errorf("item %d: missing id", i))
		} else if ids[it.ID] {
			errs = append(errs, fmt.Errorf("item %d: duplicate id %q", i, it.ID))
		}
		ids[it.ID] = true

		if !it.Type.Valid() {
			errs = append(errs, fmt.Errorf("item %d: unknown type %q", i, it.Type))
			continue
		}
		if err := it.CheckConfig(); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
		}

		if !it.Type.Scored() || it.VariableID == "" {
			continue
		}
		if other, ok := vars[it.VariableID]; ok {
			errs = append(errs, fmt.Errorf("item %d: variableId %q already used by item %s", i, it.VariableID, other))
			continue
		}
		vars[it.VariableID] = it.ID
	}
	return errors.Join(errs...)
}

// FindItem returns the item with the given id
func (t Template) FindItem(id string) (Item, bool) {
	for _, it := range t.Items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
