package editor

import (
	"encoding/json"
	"errors"
	"fmt"

	"evalforge/internal/model"
)

type itemPatchWire struct {
	Label            *string                 `json:"label"`
	Required         *bool                   `json:"required"`
	ReadOnly         *bool                   `json:"readOnly"`
	ImageURL         *string                 `json:"imageUrl"`
	VariableID       *string                 `json:"variableId"`
	Options          []model.Option          `json:"options"`
	RatingConfig     *ratingPatch            `json:"ratingConfig"`
	SliderConfig     *model.SliderConfig     `json:"sliderConfig"`
	MatrixConfig     *model.MatrixConfig     `json:"matrixConfig"`
	FileUploadConfig *model.FileUploadConfig `json:"fileUploadConfig"`
}

type ratingPatch struct {
	Max int `json:"max"`
}

// UnmarshalJSON accepts the same flat configuration blocks as model.Item.
// At most one configuration block may be present.
func (p *ItemPatch) UnmarshalJSON(data []byte) error {
	var w itemPatchWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = ItemPatch{
		Label:      w.Label,
		Required:   w.Required,
		ReadOnly:   w.ReadOnly,
		ImageURL:   w.ImageURL,
		VariableID: w.VariableID,
	}

	var configs []model.ItemConfig
	if w.RatingConfig != nil {
		n := w.RatingConfig.Max
		if n < model.MinRatingMax || n > model.MaxRatingMax {
			return fmt.Errorf("%w: rating max %d outside %d..%d", ErrConfigMismatch, n, model.MinRatingMax, model.MaxRatingMax)
		}
		configs = append(configs, model.RatingConfig{Max: n, Options: model.RatingOptions(n, newID)})
	} else if w.Options != nil {
		configs = append(configs, model.ChoiceConfig{Options: withOptionIDs(w.Options)})
	}
	if w.SliderConfig != nil {
		configs = append(configs, *w.SliderConfig)
	}
	if w.MatrixConfig != nil {
		m := *w.MatrixConfig
		m.Columns = withOptionIDs(m.Columns)
		configs = append(configs, m)
	}
	if w.FileUploadConfig != nil {
		configs = append(configs, *w.FileUploadConfig)
	}

	switch len(configs) {
	case 0:
	case 1:
		p.Config = configs[0]
	default:
		return errors.New("item patch carries more than one configuration block")
	}
	return nil
}

// withOptionIDs assigns ids to options added by the client without one
func withOptionIDs(opts []model.Option) []model.Option {
	out := make([]model.Option, len(opts))
	for i, o := range opts {
		if o.ID == "" {
			o.ID = newID()
		}
		out[i] = o
	}
	return out
}
