package service

import (
	"context"
	"encoding/json"

	appErrors "github.com/unclebandit/campaign-mailer/internal/errors"
	"github.com/unclebandit/campaign-mailer/internal/model"
	"github.com/unclebandit/campaign-mailer/internal/repository"
)

// ResponseService serves the hosted form and stores what recipients submit.
type ResponseService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	ResponseRepo repository.FormResponseRepositoryInterface
}

// Form returns the campaign body personalized for the contact.
func (s *ResponseService) Form(ctx context.Context, campaignID, contactID string) (string, error) {
	campaign, err := s.CampaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return "", err
	}
	contact, err := s.ContactRepo.GetByID(ctx, contactID)
	if err != nil {
		return "", err
	}
	return RenderTemplate(campaign.FormHTML, RecipientTokens(contact, "")), nil
}

func (s *ResponseService) Submit(ctx context.Context, campaignID, contactID string, data json.RawMessage, ip string) (*model.FormResponse, error) {
	if len(data) > 0 && !json.Valid(data) {
		return nil, appErrors.Validation("response data must be JSON")
	}
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	contact, err := s.ContactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	resp := &model.FormResponse{
		CampaignID:   campaignID,
		ContactEmail: contact.Email,
		ResponseData: data,
		IPAddress:    ip,
	}
	if err := s.ResponseRepo.Create(ctx, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *ResponseService) List(ctx context.Context, campaignID string) ([]*model.FormResponse, error) {
	if _, err := s.CampaignRepo.GetByID(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.ResponseRepo.ListByCampaign(ctx, campaignID)
}
