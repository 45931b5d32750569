package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"evalforge/internal/model"
)

// templateDocument is the MongoDB schema of a template
type templateDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	HostID      string             `bson:"hostId"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Items       []itemDocument     `bson:"items"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// itemDocument stores the item configuration as optional sub-documents; at most one is set
type itemDocument struct {
	ID         string              `bson:"id"`
	Type       string              `bson:"type"`
	Label      string              `bson:"label"`
	Required   bool                `bson:"required"`
	ReadOnly   bool                `bson:"readOnly"`
	ImageURL   string              `bson:"imageUrl,omitempty"`
	VariableID string              `bson:"variableId"`
	Choice     *choiceDocument     `bson:"choice,omitempty"`
	Rating     *ratingDocument     `bson:"rating,omitempty"`
	Slider     *sliderDocument     `bson:"slider,omitempty"`
	Matrix     *matrixDocument     `bson:"matrix,omitempty"`
	FileUpload *fileUploadDocument `bson:"fileUpload,omitempty"`
}

type optionDocument struct {
	ID    string  `bson:"id"`
	Label string  `bson:"label"`
	Value float64 `bson:"value"`
}

type choiceDocument struct {
	Options []optionDocument `bson:"options"`
}

type ratingDocument struct {
	Max     int              `bson:"max"`
	Options []optionDocument `bson:"options"`
}

type sliderDocument struct {
	Min  float64 `bson:"min"`
	Max  float64 `bson:"max"`
	Step float64 `bson:"step"`
}

type matrixDocument struct {
	Rows    []string         `bson:"rows"`
	Columns []optionDocument `bson:"columns"`
}

type fileUploadDocument struct {
	AllowedTypes []string `bson:"allowedTypes"`
	MaxSizeMB    float64  `bson:"maxSizeMB"`
}

func toTemplateDocument(t *model.Template) (templateDocument, error) {
	doc := templateDocument{
		HostID:      t.HostID,
		Title:       t.Title,
		Description: t.Description,
		Items:       make([]itemDocument, len(t.Items)),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.ID != "" {
		oid, err := primitive.ObjectIDFromHex(t.ID)
		if err != nil {
			return templateDocument{}, err
		}
		doc.ID = oid
	}
	for i, it := range t.Items {
		doc.Items[i] = toItemDocument(it)
	}
	return doc, nil
}

func toItemDocument(it model.Item) itemDocument {
	doc := itemDocument{
		ID:         it.ID,
		Type:       string(it.Type),
		Label:      it.Label,
		Required:   it.Required,
		ReadOnly:   it.ReadOnly,
		ImageURL:   it.ImageURL,
		VariableID: it.VariableID,
	}
	switch c := it.Config.(type) {
	case model.ChoiceConfig:
		doc.Choice = &choiceDocument{Options: toOptionDocuments(c.Options)}
	case model.RatingConfig:
		doc.Rating = &ratingDocument{Max: c.Max, Options: toOptionDocuments(c.Options)}
	case model.SliderConfig:
		doc.Slider = &sliderDocument{Min: c.Min, Max: c.Max, Step: c.Step}
	case model.MatrixConfig:
		doc.Matrix = &matrixDocument{Rows: c.Rows, Columns: toOptionDocuments(c.Columns)}
	case model.FileUploadConfig:
		doc.FileUpload = &fileUploadDocument{AllowedTypes: c.AllowedTypes, MaxSizeMB: c.MaxSizeMB}
	}
	return doc
}

func toOptionDocuments(opts []model.Option) []optionDocument {
	out := make([]optionDocument, len(opts))
	for i, o := range opts {
		out[i] = optionDocument{ID: o.ID, Label: o.Label, Value: o.Value}
	}
	return out
}

func (d templateDocument) toModel() *model.Template {
	t := &model.Template{
		ID:          d.ID.Hex(),
		HostID:      d.HostID,
		Title:       d.Title,
		Description: d.Description,
		Items:       make([]model.Item, len(d.Items)),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	for i, it := range d.Items {
		t.Items[i] = it.toModel()
	}
	return t
}

// toModel picks the sub-document that matches the stored type; stray ones are ignored
func (d itemDocument) toModel() model.Item {
	it := model.Item{
		ID:         d.ID,
		Type:       model.ItemType(d.Type),
		Label:      d.Label,
		Required:   d.Required,
		ReadOnly:   d.ReadOnly,
		ImageURL:   d.ImageURL,
		VariableID: d.VariableID,
	}
	switch it.Type {
	case model.ItemMultipleChoice:
		if d.Choice != nil {
			it.Config = model.ChoiceConfig{Options: toOptions(d.Choice.Options)}
		}
	case model.ItemRatingScale:
		if d.Rating != nil {
			it.Config = model.RatingConfig{Max: d.Rating.Max, Options: toOptions(d.Rating.Options)}
		}
	case model.ItemSlider:
		if d.Slider != nil {
			it.Config = model.SliderConfig{Min: d.Slider.Min, Max: d.Slider.Max, Step: d.Slider.Step}
		}
	case model.ItemMatrixTable:
		if d.Matrix != nil {
			it.Config = model.MatrixConfig{Rows: d.Matrix.Rows, Columns: toOptions(d.Matrix.Columns)}
		}
	case model.ItemFileUpload:
		if d.FileUpload != nil {
			it.Config = model.FileUploadConfig{AllowedTypes: d.FileUpload.AllowedTypes, MaxSizeMB: d.FileUpload.MaxSizeMB}
		}
	}
	return it
}

func toOptions(docs []optionDocument) []model.Option {
	out := make([]model.Option, len(docs))
	for i, d := range docs {
		out[i] = model.Option{ID: d.ID, Label: d.Label, Value: d.Value}
	}
	return out
}
