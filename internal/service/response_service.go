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

// ResponseService collects and scores respondent submissions
type ResponseService struct {
	templates    *TemplateService
	responseRepo repository.ResponseRepo
	ranking      cache.RankingCache
	reportCache  cache.ReportCache
	log          *zap.Logger
}

// NewResponseService creates a new response service
func NewResponseService(
	templates *TemplateService,
	responseRepo repository.ResponseRepo,
	ranking cache.RankingCache,
	reportCache cache.ReportCache,
	log *zap.Logger,
) *ResponseService {
	return &ResponseService{
		templates:    templates,
		responseRepo: responseRepo,
		ranking:      ranking,
		reportCache:  reportCache,
		log:          log,
	}
}

// SubmitRequest is the body of a response submission
type SubmitRequest struct {
	Respondent string                  `json:"respondent"`
	Answers    map[string]model.Answer `json:"answers"`
}

// Submit validates answers against the template, scores them and stores the response.
// Answers are keyed by variableId; keys that match no item are dropped.
func (s *ResponseService) Submit(ctx context.Context, templateID string, req SubmitRequest) (*model.Response, error) {
	t, err := s.templates.GetPublic(ctx, templateID)
	if err != nil {
		return nil, err
	}

	resp := &model.Response{
		TemplateID:  t.ID,
		HostID:      t.HostID,
		Respondent:  req.Respondent,
		Answers:     make(map[string]model.Answer),
		Scores:      make(map[string]float64),
		SubmittedAt: time.Now().UTC(),
	}

	for _, it := range t.Items {
		if it.Type == model.ItemSectionHeader {
			continue
		}
		key := AnswerKey(it)
		ans, ok := req.Answers[key]
		if !ok || ans.IsEmpty() {
			if it.Required {
				return nil, fmt.Errorf("%w: %q", ErrMissingAnswer, it.Label)
			}
			continue
		}

		score, scored, err := ScoreAnswer(it, ans)
		if err != nil {
			return nil, err
		}
		resp.Answers[key] = ans
		if scored {
			resp.Scores[key] = score
			resp.TotalScore += score
		}
	}

	if err := s.responseRepo.Create(ctx, resp); err != nil {
		return nil, fmt.Errorf("store response: %w", err)
	}

	if err := s.ranking.UpdateScore(ctx, t.ID, resp.ID, resp.TotalScore); err != nil {
		s.log.Warn("failed to update ranking", zap.String("templateId", t.ID), zap.Error(err))
	}
	if err := s.reportCache.Invalidate(ctx, t.ID); err != nil {
		s.log.Warn("failed to invalidate report", zap.String("templateId", t.ID), zap.Error(err))
	}

	s.log.Info("response submitted",
		zap.String("templateId", t.ID),
		zap.String("responseId", resp.ID),
		zap.Float64("totalScore", resp.TotalScore))
	return resp, nil
}

// DeleteForTemplate removes every response of a template along with its ranking and report
func (s *ResponseService) DeleteForTemplate(ctx context.Context, templateID string) error {
	n, err := s.responseRepo.DeleteByTemplateID(ctx, templateID)
	if err != nil {
		return fmt.Errorf("delete responses: %w", err)
	}
	if err := s.ranking.Delete(ctx, templateID); err != nil {
		s.log.Warn("failed to delete ranking", zap.String("templateId", templateID), zap.Error(err))
	}
	if err := s.reportCache.Invalidate(ctx, templateID); err != nil {
		s.log.Warn("failed to invalidate report", zap.String("templateId", templateID), zap.Error(err))
	}
	s.log.Info("responses deleted", zap.String("templateId", templateID), zap.Int64("count", n))
	return nil
}
