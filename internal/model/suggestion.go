package model

// TemplateSuggestion is a candidate template produced by the AI collaborator
type TemplateSuggestion struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Items       []Item `json:"items"`
}

// VariableRef describes an item that a scoring formula may reference
type VariableRef struct {
	VariableID string   `json:"variableId"`
	Label      string   `json:"label"`
	Type       ItemType `json:"type"`
	MinValue   float64  `json:"minValue"`
	MaxValue   float64  `json:"maxValue"`
}

// FormulaSuggestion is a scoring formula proposed by the AI collaborator
type FormulaSuggestion struct {
	Formula     string   `json:"formula"`
	Explanation string   `json:"explanation"`
	Variables   []string `json:"variables"`
}
