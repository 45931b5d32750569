package model

import "fmt"

// ItemType is the kind of a form element
type ItemType string

const (
	ItemMultipleChoice ItemType = "Multiple Choice"
	ItemTextInput      ItemType = "Text Input"
	ItemSlider         ItemType = "Slider"
	ItemRatingScale    ItemType = "Rating Scale"
	ItemSectionHeader  ItemType = "Section Header"
	ItemMatrixTable    ItemType = "Matrix Table"
	ItemFileUpload     ItemType = "File Upload"
)

// ItemTypes lists the palette in display order
var ItemTypes = []ItemType{
	ItemMultipleChoice,
	ItemTextInput,
	ItemSlider,
	ItemRatingScale,
	ItemSectionHeader,
	ItemMatrixTable,
	ItemFileUpload,
}

// Valid reports whether t belongs to the closed set of item types
func (t ItemType) Valid() bool {
	for _, known := range ItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Scored reports whether answers to items of this type are referenced by variableId
func (t ItemType) Scored() bool {
	return t != ItemSectionHeader
}

// Option is a labelled choice; Value is the score weight
type Option struct {
	ID    string  `json:"id"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Item is a single element of a template
type Item struct {
	ID         string   `json:"id"`
	Type       ItemType `json:"type"`
	Label      string   `json:"label"`
	Required   bool     `json:"required"`
	ReadOnly   bool     `json:"readOnly"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	VariableID string   `json:"variableId"`

	// Config is nil for Text Input and Section Header
	Config ItemConfig `json:"-"`
}

// Clone returns a deep copy of the item
func (it Item) Clone() Item {
	out := it
	if it.Config != nil {
		out.Config = it.Config.Clone()
	}
	return out
}

// Choice returns the Multiple Choice configuration
func (it Item) Choice() (ChoiceConfig, bool) {
	c, ok := it.Config.(ChoiceConfig)
	return c, ok && it.Type == ItemMultipleChoice
}

// Rating returns the Rating Scale configuration
func (it Item) Rating() (RatingConfig, bool) {
	c, ok := it.Config.(RatingConfig)
	return c, ok && it.Type == ItemRatingScale
}

// Slider returns the Slider configuration
func (it Item) Slider() (SliderConfig, bool) {
	c, ok := it.Config.(SliderConfig)
	return c, ok && it.Type == ItemSlider
}

// Matrix returns the Matrix Table configuration
func (it Item) Matrix() (MatrixConfig, bool) {
	c, ok := it.Config.(MatrixConfig)
	return c, ok && it.Type == ItemMatrixTable
}

// FileUpload returns the File Upload configuration
func (it Item) FileUpload() (FileUploadConfig, bool) {
	c, ok := it.Config.(FileUploadConfig)
	return c, ok && it.Type == ItemFileUpload
}

// Options returns the scored options of choice-like items
func (it Item) Options() []Option {
	switch c := it.Config.(type) {
	case ChoiceConfig:
		return c.Options
	case RatingConfig:
		return c.Options
	case MatrixConfig:
		return c.Columns
	}
	return nil
}

// CheckConfig reports whether the item's configuration fits its type and bounds
func (it Item) CheckConfig() error {
	want := ConfigTypeFor(it.Type)
	switch {
	case it.Config == nil && want:
		return fmt.Errorf("%s item %s has no configuration", it.Type, it.ID)
	case it.Config != nil && !want:
		return fmt.Errorf("%s item %s carries a %s configuration", it.Type, it.ID, it.Config.ItemType())
	case it.Config != nil && it.Config.ItemType() != it.Type:
		return fmt.Errorf("%s item %s carries a %s configuration", it.Type, it.ID, it.Config.ItemType())
	}
	if c, ok := it.Config.(RatingConfig); ok {
		if err := checkRatingMax(c.Max); err != nil {
			return fmt.Errorf("item %s: %w", it.ID, err)
		}
		if len(c.Options) != c.Max {
			return fmt.Errorf("item %s: rating max %d with %d options", it.ID, c.Max, len(c.Options))
		}
	}
	return nil
}

// ConfigTypeFor reports whether items of type t carry a configuration
func ConfigTypeFor(t ItemType) bool {
	switch t {
	case ItemMultipleChoice, ItemRatingScale, ItemSlider, ItemMatrixTable, ItemFileUpload:
		return true
	}
	return false
}
