package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"evalforge/internal/cache"
	"evalforge/internal/model"
)

// SuggestionService fronts the generator with a Redis cache
type SuggestionService struct {
	generator Generator
	cache     cache.SuggestionCache
	log       *zap.Logger
}

// NewSuggestionService creates a new suggestion service
func NewSuggestionService(generator Generator, suggestionCache cache.SuggestionCache, log *zap.Logger) *SuggestionService {
	return &SuggestionService{
		generator: generator,
		cache:     suggestionCache,
		log:       log,
	}
}

// SuggestTemplate returns candidate items for a form description
func (s *SuggestionService) SuggestTemplate(ctx context.Context, prompt string) (*model.TemplateSuggestion, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return nil, ErrEmptyPrompt
	}

	var cached model.TemplateSuggestion
	if s.lookup(ctx, "template", prompt, &cached) {
		return &cached, nil
	}

	suggestion, err := s.generator.SuggestTemplate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if suggestion.Items == nil {
		suggestion.Items = []model.Item{}
	}
	s.store(ctx, "template", prompt, suggestion)
	return suggestion, nil
}

// SuggestFormula proposes a scoring formula over the numeric variables of t
func (s *SuggestionService) SuggestFormula(ctx context.Context, t model.Template, goal string) (*model.FormulaSuggestion, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, ErrEmptyPrompt
	}
	vars := VariablesOf(t)

	var key strings.Builder
	key.WriteString(goal)
	for _, v := range vars {
		key.WriteString("|" + v.VariableID + ":" + string(v.Type))
	}

	var cached model.FormulaSuggestion
	if s.lookup(ctx, "formula", key.String(), &cached) {
		return &cached, nil
	}

	suggestion, err := s.generator.SuggestFormula(ctx, goal, vars)
	if err != nil {
		return nil, err
	}
	s.store(ctx, "formula", key.String(), suggestion)
	return suggestion, nil
}

func (s *SuggestionService) lookup(ctx context.Context, kind, request string, out interface{}) bool {
	found, err := s.cache.Get(ctx, kind, request, out)
	if err != nil {
		s.log.Warn("suggestion cache read failed", zap.String("kind", kind), zap.Error(err))
		return false
	}
	return found
}

func (s *SuggestionService) store(ctx context.Context, kind, request string, value interface{}) {
	if err := s.cache.Set(ctx, kind, request, value); err != nil {
		s.log.Warn("suggestion cache write failed", zap.String("kind", kind), zap.Error(err))
	}
}
