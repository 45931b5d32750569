package model

import "time"

// Answer is a respondent's value for one item, keyed by variableId
type Answer struct {
	Text       string            `json:"text,omitempty" bson:"text,omitempty"`             // Text Input
	OptionID   string            `json:"optionId,omitempty" bson:"optionId,omitempty"`     // Multiple Choice, Rating Scale
	Number     *float64          `json:"number,omitempty" bson:"number,omitempty"`         // Slider
	MatrixRows map[string]string `json:"matrixRows,omitempty" bson:"matrixRows,omitempty"` // row label -> column option id
	FileURLs   []string          `json:"fileUrls,omitempty" bson:"fileUrls,omitempty"`     // File Upload
}

// IsEmpty reports whether no value was given
func (a Answer) IsEmpty() bool {
	return a.Text == "" && a.OptionID == "" && a.Number == nil && len(a.MatrixRows) == 0 && len(a.FileURLs) == 0
}

// Response is one submission against a template
type Response struct {
	ID          string             `json:"id" bson:"_id,omitempty"`
	TemplateID  string             `json:"templateId" bson:"templateId"`
	HostID      string             `json:"hostId" bson:"hostId"`
	Respondent  string             `json:"respondent,omitempty" bson:"respondent,omitempty"`
	Answers     map[string]Answer  `json:"answers" bson:"answers"`
	Scores      map[string]float64 `json:"scores" bson:"scores"`
	TotalScore  float64            `json:"totalScore" bson:"totalScore"`
	SubmittedAt time.Time          `json:"submittedAt" bson:"submittedAt"`
}
