package model

import "time"

// VariableStats aggregates the scores of one variable across responses
type VariableStats struct {
	VariableID string  `json:"variableId" bson:"variableId"`
	Label      string  `json:"label" bson:"label"`
	Count      int     `json:"count" bson:"count"`
	Mean       float64 `json:"mean" bson:"mean"`
	Min        float64 `json:"min" bson:"min"`
	Max        float64 `json:"max" bson:"max"`
}

// RankEntry is a response ranked by total score
type RankEntry struct {
	ResponseID string  `json:"responseId"`
	Respondent string  `json:"respondent,omitempty"`
	Score      float64 `json:"score"`
	Rank       int     `json:"rank"`
}

// TemplateReport summarises the responses collected for a template
type TemplateReport struct {
	TemplateID     string          `json:"templateId"`
	Title          string          `json:"title"`
	ResponseCount  int             `json:"responseCount"`
	MeanTotal      float64         `json:"meanTotal"`
	Variables      []VariableStats `json:"variables"`
	TopRespondents []RankEntry     `json:"topRespondents"`
	GeneratedAt    time.Time       `json:"generatedAt"`
}
