package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"evalforge/internal/cache"
	"evalforge/internal/model"
	"evalforge/internal/repository"
)

// DefaultTopRespondents is how many ranked respondents a report lists
const DefaultTopRespondents = 10

// ReportService aggregates the responses collected for a template
type ReportService struct {
	templates    *TemplateService
	responseRepo repository.ResponseRepo
	ranking      cache.RankingCache
	reportCache  cache.ReportCache
	log          *zap.Logger
}

// NewReportService creates a new report service
func NewReportService(
	templates *TemplateService,
	responseRepo repository.ResponseRepo,
	ranking cache.RankingCache,
	reportCache cache.ReportCache,
	log *zap.Logger,
) *ReportService {
	return &ReportService{
		templates:    templates,
		responseRepo: responseRepo,
		ranking:      ranking,
		reportCache:  reportCache,
		log:          log,
	}
}

// GetReport returns the cached report or builds a fresh one
func (s *ReportService) GetReport(ctx context.Context, hostID, templateID string) (*model.TemplateReport, error) {
	t, err := s.templates.Get(ctx, hostID, templateID)
	if err != nil {
		return nil, err
	}

	if cached, err := s.reportCache.Get(ctx, templateID); err != nil {
		s.log.Warn("report cache read failed", zap.String("templateId", templateID), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	responses, err := s.responseRepo.GetByTemplateID(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("load responses: %w", err)
	}

	report := BuildReport(*t, responses)
	report.TopRespondents, err = s.topRespondents(ctx, templateID, responses)
	if err != nil {
		return nil, err
	}

	if err := s.reportCache.Set(ctx, report); err != nil {
		s.log.Warn("report cache write failed", zap.String("templateId", templateID), zap.Error(err))
	}
	return report, nil
}

// topRespondents reads the ranking, rebuilding it from the stored responses when Redis lost it
func (s *ReportService) topRespondents(ctx context.Context, templateID string, responses []*model.Response) ([]model.RankEntry, error) {
	entries, err := s.ranking.GetTop(ctx, templateID, DefaultTopRespondents)
	if err != nil {
		return nil, fmt.Errorf("read ranking: %w", err)
	}
	if len(entries) == 0 && len(responses) > 0 {
		for _, r := range responses {
			if err := s.ranking.UpdateScore(ctx, templateID, r.ID, r.TotalScore); err != nil {
				return nil, fmt.Errorf("rebuild ranking: %w", err)
			}
		}
		entries, err = s.ranking.GetTop(ctx, templateID, DefaultTopRespondents)
		if err != nil {
			return nil, fmt.Errorf("read ranking: %w", err)
		}
	}

	byID := make(map[string]*model.Response, len(responses))
	for _, r := range responses {
		byID[r.ID] = r
	}
	for i := range entries {
		if r, ok := byID[entries[i].ResponseID]; ok {
			entries[i].Respondent = r.Respondent
		}
	}
	return entries, nil
}

// BuildReport computes per-variable statistics over responses
func BuildReport(t model.Template, responses []*model.Response) *model.TemplateReport {
	report := &model.TemplateReport{
		TemplateID:     t.ID,
		Title:          t.Title,
		ResponseCount:  len(responses),
		Variables:      []model.VariableStats{},
		TopRespondents: []model.RankEntry{},
		GeneratedAt:    time.Now().UTC(),
	}

	var total float64
	for _, r := range responses {
		total += r.TotalScore
	}
	if len(responses) > 0 {
		report.MeanTotal = total / float64(len(responses))
	}

	for _, v := range VariablesOf(t) {
		stats := model.VariableStats{VariableID: v.VariableID, Label: v.Label}
		var sum float64
		for _, r := range responses {
			score, ok := r.Scores[v.VariableID]
			if !ok {
				continue
			}
			if stats.Count == 0 || score < stats.Min {
				stats.Min = score
			}
			if stats.Count == 0 || score > stats.Max {
				stats.Max = score
			}
			stats.Count++
			sum += score
		}
		if stats.Count > 0 {
			stats.Mean = sum / float64(stats.Count)
		}
		report.Variables = append(report.Variables, stats)
	}
	return report
}
