package main

import (
	"evalforge/internal/editor"
	"evalforge/internal/model"
)

func defaultTemplate() model.Template {
	return editor.CreateDefaultTemplate()
}

// reviewRubric builds a scored rubric through the editor so it gets the same ids
// and variable names a host would get from the palette.
func reviewRubric() (model.Template, error) {
	e := editor.New(editor.CreateDefaultTemplate())

	title := "Code Review Rubric"
	desc := "Scores a submission on correctness, readability and test coverage."
	e.UpdateMetadata(editor.MetadataPatch{Title: &title, Description: &desc})

	steps := []struct {
		typ    model.ItemType
		label  string
		config model.ItemConfig
	}{
		{model.ItemSectionHeader, "Assessment", nil},
		{model.ItemRatingScale, "Correctness", nil},
		{model.ItemMultipleChoice, "Readability", model.ChoiceConfig{Options: []model.Option{
			{Label: "Hard to follow", Value: 0},
			{Label: "Acceptable", Value: 2},
			{Label: "Clear", Value: 4},
		}}},
		{model.ItemSlider, "Test coverage", model.SliderConfig{Min: 0, Max: 10, Step: 1}},
		{model.ItemMatrixTable, "Conventions", model.MatrixConfig{
			Rows: []string{"Naming", "Error handling"},
			Columns: []model.Option{
				{Label: "Poor", Value: 0},
				{Label: "Fair", Value: 1},
				{Label: "Good", Value: 2},
			},
		}},
		{model.ItemTextInput, "Reviewer notes", nil},
	}

	required := true
	for _, s := range steps {
		it, err := e.AddItem(s.typ, s.label)
		if err != nil {
			return model.Template{}, err
		}
		patch := editor.ItemPatch{Config: s.config}
		if s.typ != model.ItemSectionHeader && s.typ != model.ItemTextInput {
			patch.Required = &required
		}
		if err := e.UpdateItem(it.ID, patch); err != nil {
			return model.Template{}, err
		}
	}
	return editor.Sanitize(e.Template())
}
