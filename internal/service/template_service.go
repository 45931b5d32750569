package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"evalforge/internal/editor"
	"evalforge/internal/model"
	"evalforge/internal/repository"
)

// TemplateService loads and saves templates on behalf of a host
type TemplateService struct {
	templateRepo repository.TemplateRepo
	log          *zap.Logger
}

// NewTemplateService creates a new template service
func NewTemplateService(templateRepo repository.TemplateRepo, log *zap.Logger) *TemplateService {
	return &TemplateService{
		templateRepo: templateRepo,
		log:          log,
	}
}

// Get loads a template owned by hostID. A stored template that fails validation is
// reported as ErrInvalidTemplate instead of being handed to an editor.
func (s *TemplateService) Get(ctx context.Context, hostID, id string) (*model.Template, error) {
	t, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}
	if t == nil {
		return nil, ErrTemplateNotFound
	}
	if t.HostID != hostID {
		return nil, ErrForbidden
	}

	clean, err := editor.Sanitize(*t)
	if err != nil {
		s.log.Warn("stored template is malformed",
			zap.String("templateId", id),
			zap.Error(err))
		return nil, err
	}
	return &clean, nil
}

// List returns the host's templates, most recently updated first
func (s *TemplateService) List(ctx context.Context, hostID string) ([]*model.Template, error) {
	templates, err := s.templateRepo.GetByHostID(ctx, hostID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	if templates == nil {
		templates = []*model.Template{}
	}
	return templates, nil
}

// Save creates an unsaved template or replaces a saved one, then returns the persisted copy.
// The caller should adopt the returned template since it carries the assigned id and timestamps.
func (s *TemplateService) Save(ctx context.Context, hostID string, t model.Template) (*model.Template, error) {
	clean, err := editor.Sanitize(t)
	if err != nil {
		return nil, err
	}
	clean.HostID = hostID

	if !clean.IsSaved() {
		id, err := s.templateRepo.Create(ctx, &clean)
		if err != nil {
			return nil, fmt.Errorf("create template: %w", err)
		}
		s.log.Info("template created",
			zap.String("templateId", id),
			zap.String("hostId", hostID),
			zap.Int("items", len(clean.Items)))
		return s.reload(ctx, id)
	}

	existing, err := s.templateRepo.GetByID(ctx, clean.ID)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", clean.ID, err)
	}
	if existing == nil {
		return nil, ErrTemplateNotFound
	}
	if existing.HostID != hostID {
		return nil, ErrForbidden
	}
	clean.CreatedAt = existing.CreatedAt

	if err := s.templateRepo.Update(ctx, &clean); err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return nil, ErrTemplateNotFound
		}
		return nil, fmt.Errorf("update template %s: %w", clean.ID, err)
	}
	s.log.Info("template saved",
		zap.String("templateId", clean.ID),
		zap.Int("items", len(clean.Items)))
	return s.reload(ctx, clean.ID)
}

func (s *TemplateService) reload(ctx context.Context, id string) (*model.Template, error) {
	saved, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reload template %s: %w", id, err)
	}
	if saved == nil {
		return nil, ErrTemplateNotFound
	}
	if saved.Items == nil {
		saved.Items = []model.Item{}
	}
	return saved, nil
}

// Delete removes a template owned by hostID
func (s *TemplateService) Delete(ctx context.Context, hostID, id string) error {
	t, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load template %s: %w", id, err)
	}
	if t == nil {
		return ErrTemplateNotFound
	}
	if t.HostID != hostID {
		return ErrForbidden
	}
	if err := s.templateRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoDocument) {
			return ErrTemplateNotFound
		}
		return fmt.Errorf("delete template %s: %w", id, err)
	}
	s.log.Info("template deleted", zap.String("templateId", id))
	return nil
}

// GetPublic loads a template without an ownership check, for respondents
func (s *TemplateService) GetPublic(ctx context.Context, id string) (*model.Template, error) {
	t, err := s.templateRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load template %s: %w", id, err)
	}
	if t == nil {
		return nil, ErrTemplateNotFound
	}
	return t, nil
}
