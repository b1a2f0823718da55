package service

import (
	"context"
	"strings"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

// TemplateLibrary stores reusable email bodies and campaign starting points.
type TemplateLibrary struct {
	EmailTemplates    repository.EmailTemplateRepositoryInterface
	CampaignTemplates repository.CampaignTemplateRepositoryInterface
}

// ====================== Email templates ======================

func (s *TemplateLibrary) ListEmailTemplates(ctx context.Context, actor model.Identity) ([]*model.EmailTemplate, error) {
	return s.EmailTemplates.ListVisible(ctx, actor.UserID)
}

func (s *TemplateLibrary) CreateEmailTemplate(ctx context.Context, actor model.Identity, in model.EmailTemplateInput) (*model.EmailTemplate, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, appErrors.Validation("name is required")
	case strings.TrimSpace(in.HTMLContent) == "":
		return nil, appErrors.Validation("html_content is required")
	}
	t := &model.EmailTemplate{
		Name:        strings.TrimSpace(in.Name),
		Subject:     in.Subject,
		HTMLContent: in.HTMLContent,
		CreatedBy:   actor.UserID,
		IsPublic:    in.IsPublic,
	}
	if err := s.EmailTemplates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateLibrary) DeleteEmailTemplate(ctx context.Context, actor model.Identity, id string) error {
	t, err := s.EmailTemplates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.CreatedBy != actor.UserID && !actor.CanManage() {
		return appErrors.ErrForbidden
	}
	return s.EmailTemplates.Delete(ctx, id)
}

// ====================== Campaign templates ======================

func (s *TemplateLibrary) ListCampaignTemplates(ctx context.Context, category string) ([]*model.CampaignTemplate, error) {
	return s.CampaignTemplates.List(ctx, strings.TrimSpace(category))
}

func (s *TemplateLibrary) CreateCampaignTemplate(ctx context.Context, actor model.Identity, in model.CampaignTemplateInput) (*model.CampaignTemplate, error) {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return nil, appErrors.Validation("name is required")
	case strings.TrimSpace(in.HTMLContent) == "":
		return nil, appErrors.Validation("html_content is required")
	}
	creator := actor.UserID
	t := &model.CampaignTemplate{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    strings.TrimSpace(in.Category),
		HTMLContent: in.HTMLContent,
		Thumbnail:   in.Thumbnail,
		CreatedBy:   &creator,
	}
	if err := s.CampaignTemplates.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// InstallSystemTemplate stores a built-in template with no creator.
func (s *TemplateLibrary) InstallSystemTemplate(ctx context.Context, t *model.CampaignTemplate) error {
	if strings.TrimSpace(t.Name) == "" || strings.TrimSpace(t.HTMLContent) == "" {
		return appErrors.Validation("system template needs a name and html_content")
	}
	t.IsSystem = true
	t.CreatedBy = nil
	return s.CampaignTemplates.Create(ctx, t)
}

// DeleteCampaignTemplate removes a user template. System templates are
// never deleted.
func (s *TemplateLibrary) DeleteCampaignTemplate(ctx context.Context, actor model.Identity, id string) error {
	t, err := s.CampaignTemplates.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if t.IsSystem {
		return appErrors.Validation("system templates cannot be deleted")
	}
	if !actor.CanManage() && (t.CreatedBy == nil || *t.CreatedBy != actor.UserID) {
		return appErrors.ErrForbidden
	}
	return s.CampaignTemplates.Delete(ctx, id)
}

// CampaignFromTemplate starts a draft campaign from a campaign template's HTML.
func (s *TemplateLibrary) CampaignFromTemplate(ctx context.Context, campaigns *CampaignService, actor model.Identity, templateID string, in CampaignInput) (*model.Campaign, error) {
	t, err := s.CampaignTemplates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.FormHTML) == "" {
		in.FormHTML = t.HTMLContent
	}
	if strings.TrimSpace(in.Name) == "" {
		in.Name = t.Name
	}
	return campaigns.CreateCampaign(ctx, actor, in)
}
