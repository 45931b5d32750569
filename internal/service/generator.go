package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"evalforge/internal/config"
	"evalforge/internal/editor"
	"evalforge/internal/model"
)

// Generator produces AI suggestions for the editor. The implementation is chosen once at start-up.
type Generator interface {
	SuggestTemplate(ctx context.Context, prompt string) (*model.TemplateSuggestion, error)
	SuggestFormula(ctx context.Context, goal string, vars []model.VariableRef) (*model.FormulaSuggestion, error)
}

// NewGenerator returns a Gemini-backed generator when an API key is configured and the mock otherwise
func NewGenerator(ctx context.Context, cfg *config.AIConfig, log *zap.Logger) (Generator, error) {
	if !cfg.IsEnabled() {
		log.Info("GEMINI_API_KEY not set, using mock suggestions")
		return MockGenerator{}, nil
	}
	return NewGeminiGenerator(ctx, cfg, log)
}

// GeminiGenerator asks Gemini for suggestions in JSON mode
type GeminiGenerator struct {
	client *genai.Client
	config *config.AIConfig
	log    *zap.Logger
}

// NewGeminiGenerator creates a new Gemini client
func NewGeminiGenerator(ctx context.Context, cfg *config.AIConfig, log *zap.Logger) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{
		client: client,
		config: cfg,
		log:    log,
	}, nil
}

// SuggestTemplate turns a free-form description into candidate items
func (g *GeminiGenerator) SuggestTemplate(ctx context.Context, prompt string) (*model.TemplateSuggestion, error) {
	response, err := g.callGemini(ctx, g.config.Models.Template, buildTemplatePrompt(prompt))
	if err != nil {
		return nil, err
	}

	var suggestion model.TemplateSuggestion
	if err := json.Unmarshal([]byte(response), &suggestion); err != nil {
		g.log.Warn("unparseable template suggestion", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	return &suggestion, nil
}

// SuggestFormula proposes a scoring formula over the given variables
func (g *GeminiGenerator) SuggestFormula(ctx context.Context, goal string, vars []model.VariableRef) (*model.FormulaSuggestion, error) {
	response, err := g.callGemini(ctx, g.config.Models.Formula, buildFormulaPrompt(goal, vars))
	if err != nil {
		return nil, err
	}

	var suggestion model.FormulaSuggestion
	if err := json.Unmarshal([]byte(response), &suggestion); err != nil {
		g.log.Warn("unparseable formula suggestion", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}
	return &suggestion, nil
}

func (g *GeminiGenerator) callGemini(ctx context.Context, modelName, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout())
	defer cancel()

	resp, err := g.client.Models.GenerateContent(ctx, modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		g.log.Error("gemini request failed", zap.String("model", modelName), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAIUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrAIUnavailable)
	}
	// Strip markdown fences if the model added them anyway
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text), nil
}

func buildTemplatePrompt(prompt string) string {
	types := make([]string, len(model.ItemTypes))
	for i, t := range model.ItemTypes {
		types[i] = fmt.Sprintf("%q", t)
	}

	return fmt.Sprintf(`You design evaluation forms. Return ONLY valid JSON:
{
  "title": "form title",
  "description": "one sentence",
  "items": [
    {"type": "Multiple Choice", "label": "question text", "required": true, "variableId": "snake_case_name",
     "options": [{"label": "Poor", "value": 1}, {"label": "Good", "value": 2}]},
    {"type": "Rating Scale", "label": "...", "ratingConfig": {"max": 5}},
    {"type": "Slider", "label": "...", "sliderConfig": {"min": 0, "max": 100, "step": 1}},
    {"type": "Matrix Table", "label": "...", "matrixConfig": {"rows": ["..."], "columns": [{"label": "...", "value": 1}]}},
    {"type": "Text Input", "label": "..."}
  ]
}

Allowed types: %s.
Give every scored item a short snake_case variableId.

Form description: %s`, strings.Join(types, ", "), prompt)
}

func buildFormulaPrompt(goal string, vars []model.VariableRef) string {
	var sb strings.Builder
	for _, v := range vars {
		sb.WriteString(fmt.Sprintf("- %s (%s, %s): %g..%g\n", v.VariableID, v.Label, v.Type, v.MinValue, v.MaxValue))
	}

	return fmt.Sprintf(`Write a scoring formula over the variables of an evaluation form. Return ONLY valid JSON:
{
  "formula": "arithmetic expression using only the variable ids below",
  "explanation": "one or two sentences",
  "variables": ["variable ids used"]
}

Variables:
%s
Goal: %s`, sb.String(), goal)
}

// MockGenerator returns canned suggestions when no API key is configured
type MockGenerator struct{}

func (MockGenerator) SuggestTemplate(_ context.Context, prompt string) (*model.TemplateSuggestion, error) {
	quality, err := editor.CreateItem(model.ItemRatingScale, nil, "Overall quality")
	if err != nil {
		return nil, err
	}
	comments, err := editor.CreateItem(model.ItemTextInput, []model.Item{quality}, "Comments")
	if err != nil {
		return nil, err
	}
	return &model.TemplateSuggestion{
		Title:       "Suggested Evaluation",
		Description: "Mock suggestion for: " + prompt,
		Items:       []model.Item{quality, comments},
	}, nil
}

func (MockGenerator) SuggestFormula(_ context.Context, _ string, vars []model.VariableRef) (*model.FormulaSuggestion, error) {
	ids := make([]string, 0, len(vars))
	for _, v := range vars {
		if v.Type.Scored() && v.Type != model.ItemTextInput && v.Type != model.ItemFileUpload {
			ids = append(ids, v.VariableID)
		}
	}
	if len(ids) == 0 {
		return &model.FormulaSuggestion{
			Formula:     "0",
			Explanation: "No numeric variables to combine.",
			Variables:   []string{},
		}, nil
	}
	return &model.FormulaSuggestion{
		Formula:     fmt.Sprintf("(%s) / %d", strings.Join(ids, " + "), len(ids)),
		Explanation: "Mock formula: the mean of every numeric variable.",
		Variables:   ids,
	}, nil
}
