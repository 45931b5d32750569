package editor

import (
	"fmt"

	"github.com/google/uuid"

	"evalforge/internal/model"
)

// DefaultTemplateTitle is used for templates seeded by CreateDefaultTemplate
const DefaultTemplateTitle = "Untitled Evaluation"

// DefaultAllowedUploadTypes is the allow-list of a new File Upload item
var DefaultAllowedUploadTypes = []string{"image/jpeg", "image/png", "application/pdf"}

const defaultMaxUploadMB = 100

func newID() string {
	return uuid.NewString()
}

// CreateItem builds a new item of type typ whose variableId does not collide with existing.
// An optional label replaces the generated placeholder.
func CreateItem(typ model.ItemType, existing []model.Item, label ...string) (model.Item, error) {
	if !typ.Valid() {
		return model.Item{}, fmt.Errorf("%w: %q", ErrUnknownItemType, typ)
	}

	text := placeholderLabel(typ)
	if len(label) > 0 && label[0] != "" {
		text = label[0]
	}

	return model.Item{
		ID:         newID(),
		Type:       typ,
		Label:      text,
		VariableID: UniqueVariableID(NormalizeVariableID(text), existing),
		Config:     DefaultConfig(typ),
	}, nil
}

func placeholderLabel(typ model.ItemType) string {
	if typ == model.ItemSectionHeader {
		return "New Section"
	}
	return "New " + string(typ) + " Question"
}

// DefaultConfig returns the configuration a freshly created item of type typ starts with.
// Types without configuration return nil.
func DefaultConfig(typ model.ItemType) model.ItemConfig {
	switch typ {
	case model.ItemMultipleChoice:
		return model.ChoiceConfig{Options: []model.Option{
			{ID: newID(), Label: "Option 1", Value: 1},
			{ID: newID(), Label: "Option 2", Value: 2},
		}}
	case model.ItemRatingScale:
		return model.RatingConfig{Max: 5, Options: model.RatingOptions(5, newID)}
	case model.ItemSlider:
		return model.SliderConfig{Min: 0, Max: 100, Step: 1}
	case model.ItemMatrixTable:
		return model.MatrixConfig{
			Rows: []string{"Row 1", "Row 2"},
			Columns: []model.Option{
				{ID: newID(), Label: "Column 1", Value: 1},
				{ID: newID(), Label: "Column 2", Value: 2},
				{ID: newID(), Label: "Column 3", Value: 3},
			},
		}
	case model.ItemFileUpload:
		allowed := make([]string, len(DefaultAllowedUploadTypes))
		copy(allowed, DefaultAllowedUploadTypes)
		return model.FileUploadConfig{AllowedTypes: allowed, MaxSizeMB: defaultMaxUploadMB}
	}
	return nil
}

// CreateDefaultTemplate seeds an unsaved template that captures the respondent's name and email.
func CreateDefaultTemplate() model.Template {
	t := model.Template{Title: DefaultTemplateTitle, Items: []model.Item{}}
	for _, label := range []string{"First Name", "Last Name", "Email"} {
		it, _ := CreateItem(model.ItemTextInput, t.Items, label)
		it.Required = true
		t.Items = append(t.Items, it)
	}
	return t
}
