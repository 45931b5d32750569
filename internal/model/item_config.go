package model

import (
	"encoding/json"
	"fmt"
)

// ItemConfig is the type-specific configuration of an item.
// The set of implementations is closed: only the config types in this file satisfy it.
type ItemConfig interface {
	ItemType() ItemType
	Clone() ItemConfig
	sealed()
}

// ChoiceConfig configures a Multiple Choice item
type ChoiceConfig struct {
	Options []Option `json:"options"`
}

// Bounds of RatingConfig.Max
const (
	MinRatingMax = 1
	MaxRatingMax = 100
)

// RatingConfig configures a Rating Scale item. Options are numbered 1..Max for rendering.
type RatingConfig struct {
	Max     int      `json:"max"`
	Options []Option `json:"options"`
}

// SliderConfig configures a Slider item
type SliderConfig struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// MatrixConfig configures a Matrix Table item
type MatrixConfig struct {
	Rows    []string `json:"rows"`
	Columns []Option `json:"columns"`
}

// FileUploadConfig configures a File Upload item
type FileUploadConfig struct {
	AllowedTypes []string `json:"allowedTypes"`
	MaxSizeMB    float64  `json:"maxSizeMB"`
}

func (ChoiceConfig) ItemType() ItemType     { return ItemMultipleChoice }
func (RatingConfig) ItemType() ItemType     { return ItemRatingScale }
func (SliderConfig) ItemType() ItemType     { return ItemSlider }
func (MatrixConfig) ItemType() ItemType     { return ItemMatrixTable }
func (FileUploadConfig) ItemType() ItemType { return ItemFileUpload }

func (ChoiceConfig) sealed()     {}
func (RatingConfig) sealed()     {}
func (SliderConfig) sealed()     {}
func (MatrixConfig) sealed()     {}
func (FileUploadConfig) sealed() {}

func (c ChoiceConfig) Clone() ItemConfig {
	return ChoiceConfig{Options: cloneOptions(c.Options)}
}

func (c RatingConfig) Clone() ItemConfig {
	return RatingConfig{Max: c.Max, Options: cloneOptions(c.Options)}
}

func (c SliderConfig) Clone() ItemConfig {
	return c
}

func (c MatrixConfig) Clone() ItemConfig {
	return MatrixConfig{Rows: cloneStrings(c.Rows), Columns: cloneOptions(c.Columns)}
}

func (c FileUploadConfig) Clone() ItemConfig {
	return FileUploadConfig{AllowedTypes: cloneStrings(c.AllowedTypes), MaxSizeMB: c.MaxSizeMB}
}

func cloneOptions(in []Option) []Option {
	if in == nil {
		return nil
	}
	out := make([]Option, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// itemWire is the flat shape exchanged with the web client
type itemWire struct {
	ID               string            `json:"id"`
	Type             ItemType          `json:"type"`
	Label            string            `json:"label"`
	Required         bool              `json:"required"`
	ReadOnly         bool              `json:"readOnly"`
	ImageURL         string            `json:"imageUrl,omitempty"`
	VariableID       string            `json:"variableId"`
	Options          []Option          `json:"options,omitempty"`
	RatingConfig     *ratingWire       `json:"ratingConfig,omitempty"`
	SliderConfig     *SliderConfig     `json:"sliderConfig,omitempty"`
	MatrixConfig     *MatrixConfig     `json:"matrixConfig,omitempty"`
	FileUploadConfig *FileUploadConfig `json:"fileUploadConfig,omitempty"`
}

type ratingWire struct {
	Max int `json:"max"`
}

// MarshalJSON writes the configuration block that matches the item type
func (it Item) MarshalJSON() ([]byte, error) {
	w := itemWire{
		ID:         it.ID,
		Type:       it.Type,
		Label:      it.Label,
		Required:   it.Required,
		ReadOnly:   it.ReadOnly,
		ImageURL:   it.ImageURL,
		VariableID: it.VariableID,
	}
	switch c := it.Config.(type) {
	case ChoiceConfig:
		w.Options = c.Options
	case RatingConfig:
		w.Options = c.Options
		w.RatingConfig = &ratingWire{Max: c.Max}
	case SliderConfig:
		w.SliderConfig = &c
	case MatrixConfig:
		w.MatrixConfig = &c
	case FileUploadConfig:
		w.FileUploadConfig = &c
	}
	return json.Marshal(w)
}

// UnmarshalJSON keeps only the configuration block matching the item type
func (it *Item) UnmarshalJSON(data []byte) error {
	var w itemWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*it = Item{
		ID:         w.ID,
		Type:       w.Type,
		Label:      w.Label,
		Required:   w.Required,
		ReadOnly:   w.ReadOnly,
		ImageURL:   w.ImageURL,
		VariableID: w.VariableID,
	}

	switch w.Type {
	case ItemMultipleChoice:
		if w.Options != nil {
			it.Config = ChoiceConfig{Options: w.Options}
		}
	case ItemRatingScale:
		if w.RatingConfig != nil {
			if err := checkRatingMax(w.RatingConfig.Max); err != nil {
				return err
			}
			opts := w.Options
			if len(opts) == 0 {
				opts = RatingOptions(w.RatingConfig.Max, nil)
			}
			it.Config = RatingConfig{Max: w.RatingConfig.Max, Options: opts}
		}
	case ItemSlider:
		if w.SliderConfig != nil {
			it.Config = *w.SliderConfig
		}
	case ItemMatrixTable:
		if w.MatrixConfig != nil {
			it.Config = *w.MatrixConfig
		}
	case ItemFileUpload:
		if w.FileUploadConfig != nil {
			it.Config = *w.FileUploadConfig
		}
	case ItemTextInput, ItemSectionHeader:
	default:
		return fmt.Errorf("unknown item type %q", w.Type)
	}
	return nil
}

// RatingOptions numbers options 1..max. newID may be nil, in which case options carry no id.
// A max outside MinRatingMax..MaxRatingMax yields no options.
func RatingOptions(max int, newID func() string) []Option {
	if checkRatingMax(max) != nil {
		return nil
	}
	opts := make([]Option, max)
	for i := range opts {
		n := i + 1
		opts[i] = Option{Label: fmt.Sprint(n), Value: float64(n)}
		if newID != nil {
			opts[i].ID = newID()
		}
	}
	return opts
}

func checkRatingMax(max int) error {
	if max < MinRatingMax || max > MaxRatingMax {
		return fmt.Errorf("rating max %d outside %d..%d", max, MinRatingMax, MaxRatingMax)
	}
	return nil
}
